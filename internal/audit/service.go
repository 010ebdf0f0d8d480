package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
	pkgerrors "github.com/haneulpark/idolbase-backend/pkg/errors"
)

const defaultHistoryLimit = 50

// Entry describes one state-changing action to be recorded.
type Entry struct {
	Action     enums.AuditAction
	TargetID   string
	TargetType string
	UserID     uuid.UUID
	UserName   string
	Changes    dbtypes.FieldChanges
	Details    *string
}

// Service records and serves the moderation audit trail.
type Service interface {
	Record(ctx context.Context, entry Entry) error
	HistoryForTarget(ctx context.Context, targetType enums.SubmissionKind, targetID string) ([]models.AuditLogEntry, error)
	Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

type service struct {
	repo Repository
}

// NewService constructs an audit service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, entry Entry) error {
	if !entry.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid audit action")
	}
	if entry.TargetID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "audit target id is required")
	}
	row := &models.AuditLogEntry{
		ID:         uuid.New(),
		Action:     entry.Action,
		TargetID:   entry.TargetID,
		TargetType: entry.TargetType,
		UserID:     entry.UserID,
		UserName:   entry.UserName,
		Changes:    entry.Changes,
		Details:    entry.Details,
	}
	if err := s.repo.Append(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit entry")
	}
	return nil
}

func (s *service) HistoryForTarget(ctx context.Context, targetType enums.SubmissionKind, targetID string) ([]models.AuditLogEntry, error) {
	if !targetType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target type")
	}
	entries, err := s.repo.ListByTarget(ctx, string(targetType), targetID, defaultHistoryLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list audit history")
	}
	return entries, nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}
	entries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recent audit entries")
	}
	return entries, nil
}
