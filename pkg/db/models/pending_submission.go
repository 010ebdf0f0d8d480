package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

// PendingSubmission is a member-proposed entity awaiting moderation. The same
// shape backs the pending_idols and pending_groups tables; repositories select
// the table by SubmissionKind.
//
// Submissions are never destroyed. Approval writes a separate committed record
// and stamps CommittedSlug; the row itself stays behind as history.
type PendingSubmission struct {
	ID            uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string                 `gorm:"type:text;not null"`
	Profile       dbtypes.StringMap      `gorm:"type:jsonb;not null;default:'{}'"`
	Status        enums.SubmissionStatus `gorm:"type:submission_status;not null;default:'pending'"`
	SubmittedBy   *uuid.UUID             `gorm:"column:submitted_by;type:uuid"`
	SubmittedName string                 `gorm:"column:submitted_name"`
	SubmittedAt   time.Time              `gorm:"column:submitted_at;autoCreateTime"`
	ReviewedBy    *uuid.UUID             `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt    *time.Time             `gorm:"column:reviewed_at"`
	ReviewNotes   *string                `gorm:"column:review_notes"`
	CommittedSlug *string                `gorm:"column:committed_slug"`
}
