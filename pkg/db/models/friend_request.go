package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

// FriendRequest is keyed by the deterministic ordered pair "{from}__{to}", so
// at most one live request per ordered pair can exist without any locking.
// A declined row is deleted on resend, freeing the key.
type FriendRequest struct {
	PairKey     string                    `gorm:"column:pair_key;type:text;primaryKey"`
	FromUID     uuid.UUID                 `gorm:"column:from_uid;type:uuid;not null"`
	FromName    string                    `gorm:"column:from_name;type:text;not null"`
	ToUID       uuid.UUID                 `gorm:"column:to_uid;type:uuid;not null;index"`
	ToName      string                    `gorm:"column:to_name;type:text;not null"`
	Status      enums.FriendRequestStatus `gorm:"type:friend_request_status;not null;default:'pending'"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime"`
	RespondedAt *time.Time                `gorm:"column:responded_at"`
}

// FriendRequestKey builds the identity key for the ordered pair (from, to).
func FriendRequestKey(from, to uuid.UUID) string {
	return fmt.Sprintf("%s__%s", from, to)
}
