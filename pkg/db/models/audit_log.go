package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

// AuditLogEntry is an immutable record of a state-changing moderation action.
// Rows are append-only; nothing in the normal flow updates or deletes them.
type AuditLogEntry struct {
	ID         uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Action     enums.AuditAction    `gorm:"type:audit_action;not null"`
	TargetID   string               `gorm:"column:target_id;type:text;not null;index"`
	TargetType string               `gorm:"column:target_type;type:text;not null"`
	UserID     uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	UserName   string               `gorm:"column:user_name;type:text;not null"`
	Changes    dbtypes.FieldChanges `gorm:"type:jsonb"`
	Details    *string              `gorm:"type:text"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (AuditLogEntry) TableName() string { return "audit_logs" }
