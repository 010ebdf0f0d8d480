package models

import (
	"time"

	"github.com/google/uuid"
)

// FriendshipEdge is one user's own record that another user is their friend.
// Each side owns an independent copy; the mirrored copy is written best-effort
// and the two are never transactionally linked, so a one-sided edge is a
// tolerated state, not corruption.
type FriendshipEdge struct {
	OwnerID    uuid.UUID `gorm:"column:owner_id;type:uuid;primaryKey"`
	FriendID   uuid.UUID `gorm:"column:friend_id;type:uuid;primaryKey"`
	FriendName string    `gorm:"column:friend_name;type:text;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (FriendshipEdge) TableName() string { return "friendship_edges" }
