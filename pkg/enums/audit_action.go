package enums

import "fmt"

// AuditAction maps to the audit_action enum in Postgres. Entries are
// append-only; the set only ever grows.
type AuditAction string

const (
	AuditActionApprovePendingIdol  AuditAction = "approve_pending_idol"
	AuditActionApprovePendingGroup AuditAction = "approve_pending_group"
	AuditActionApproveEditRequest  AuditAction = "approve_edit_request"
	AuditActionRejectEditRequest   AuditAction = "reject_edit_request"
	AuditActionBroadcastMessage    AuditAction = "broadcast_message"
)

var validAuditActions = []AuditAction{
	AuditActionApprovePendingIdol,
	AuditActionApprovePendingGroup,
	AuditActionApproveEditRequest,
	AuditActionRejectEditRequest,
	AuditActionBroadcastMessage,
}

// ApproveActionForKind returns the audit action recorded when a pending
// submission of the given kind is approved.
func ApproveActionForKind(kind SubmissionKind) AuditAction {
	if kind == SubmissionKindGroup {
		return AuditActionApprovePendingGroup
	}
	return AuditActionApprovePendingIdol
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
