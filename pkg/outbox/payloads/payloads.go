package payloads

import (
	"github.com/google/uuid"

	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

// ModerationDecision is the event payload emitted when a moderator resolves a
// pending submission or edit request.
type ModerationDecision struct {
	Kind         enums.SubmissionKind   `json:"kind"`
	SubmissionID uuid.UUID              `json:"submissionId"`
	Status       enums.SubmissionStatus `json:"status"`
	TargetSlug   string                 `json:"targetSlug,omitempty"`
	TargetName   string                 `json:"targetName"`
	SubmittedBy  *uuid.UUID             `json:"submittedBy,omitempty"`
	ReviewNotes  string                 `json:"reviewNotes,omitempty"`
}

// Broadcast is the event payload for an admin message fanned out to all users.
type Broadcast struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
