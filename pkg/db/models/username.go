package models

import (
	"time"

	"github.com/google/uuid"
)

// Username is the reverse index from a case-normalized handle to its owner.
// Prefix search and friend-request target resolution read this table instead
// of scanning users.
type Username struct {
	Username  string    `gorm:"type:text;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (Username) TableName() string { return "usernames" }
