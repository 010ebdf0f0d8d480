package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

// Notification stores an in-app notification addressed to one recipient.
// Rows are only ever mutated to flip Read; deletion happens at the recipient's
// request or through the retention job.
type Notification struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID              `gorm:"column:recipient_id;type:uuid;not null;index"`
	Type        enums.NotificationType `gorm:"type:notification_type;not null"`
	Title       string                 `gorm:"type:text;not null"`
	Message     string                 `gorm:"type:text;not null"`
	TargetID    *string                `gorm:"column:target_id;type:text"`
	TargetType  *string                `gorm:"column:target_type;type:text"`
	CommentID   *string                `gorm:"column:comment_id;type:text"`
	Read        bool                   `gorm:"not null;default:false"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
