package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

// EditRequest is a member-proposed field-level change to a committed record.
// Every key in Changes existed on the target at submission time with the
// recorded Old value; staleness is not re-checked at approval.
type EditRequest struct {
	ID            uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TargetType    enums.SubmissionKind   `gorm:"column:target_type;type:submission_kind;not null"`
	TargetSlug    string                 `gorm:"column:target_slug;type:text;not null"`
	TargetName    string                 `gorm:"column:target_name;type:text;not null"`
	Changes       dbtypes.FieldChanges   `gorm:"type:jsonb;not null"`
	Reason        string                 `gorm:"type:text"`
	Status        enums.SubmissionStatus `gorm:"type:submission_status;not null;default:'pending'"`
	SubmittedBy   *uuid.UUID             `gorm:"column:submitted_by;type:uuid"`
	SubmittedName string                 `gorm:"column:submitted_name"`
	SubmittedAt   time.Time              `gorm:"column:submitted_at;autoCreateTime"`
	ReviewedBy    *uuid.UUID             `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt    *time.Time             `gorm:"column:reviewed_at"`
	ReviewNotes   *string                `gorm:"column:review_notes"`
}
