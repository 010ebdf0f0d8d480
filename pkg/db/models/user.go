package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string           `gorm:"type:text;not null;uniqueIndex"`
	Username     string           `gorm:"type:text;not null;uniqueIndex"`
	DisplayName  string           `gorm:"column:display_name;not null"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Role         enums.MemberRole `gorm:"type:member_role;not null;default:'member'"`
	FriendCount  int              `gorm:"column:friend_count;not null;default:0"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time       `gorm:"column:last_login_at"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
