package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/internal/audit"
	"github.com/haneulpark/idolbase-backend/internal/catalog"
	"github.com/haneulpark/idolbase-backend/internal/submissions"
	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
	pkgerrors "github.com/haneulpark/idolbase-backend/pkg/errors"
	"github.com/haneulpark/idolbase-backend/pkg/logger"
	"github.com/haneulpark/idolbase-backend/pkg/metrics"
	"github.com/haneulpark/idolbase-backend/pkg/outbox"
	"github.com/haneulpark/idolbase-backend/pkg/outbox/payloads"
)

// Moderator identifies the reviewer taking a moderation action.
type Moderator struct {
	ID       uuid.UUID
	Username string
	Role     enums.MemberRole
}

// Service coordinates moderation decisions: each decision commits its writes,
// its audit entry, and its outbox event in one transaction.
type Service interface {
	ApproveSubmission(ctx context.Context, kind enums.SubmissionKind, submissionID uuid.UUID, moderator Moderator) (*models.Entity, error)
	RejectSubmission(ctx context.Context, kind enums.SubmissionKind, submissionID uuid.UUID, moderator Moderator, reason string) error
	ApproveEditRequest(ctx context.Context, requestID uuid.UUID, moderator Moderator) (*models.Entity, error)
	RejectEditRequest(ctx context.Context, requestID uuid.UUID, moderator Moderator, reason string) error
	Broadcast(ctx context.Context, moderator Moderator, title, message string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db          txRunner
	submissions submissions.Repository
	catalog     catalog.Repository
	audit       audit.Repository
	outbox      eventEmitter
	logg        *logger.Logger
}

// ServiceParams bundles moderation dependencies.
type ServiceParams struct {
	DB          txRunner
	Submissions submissions.Repository
	Catalog     catalog.Repository
	Audit       audit.Repository
	Outbox      eventEmitter
	Logger      *logger.Logger
}

// NewService constructs the moderation coordinator.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Submissions == nil {
		return nil, fmt.Errorf("submissions repository is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		db:          params.DB,
		submissions: params.Submissions,
		catalog:     params.Catalog,
		audit:       params.Audit,
		outbox:      params.Outbox,
		logg:        params.Logger,
	}, nil
}

func requireModerator(moderator Moderator) error {
	if moderator.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "moderator identity required")
	}
	if !moderator.Role.CanModerate() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "moderator role required")
	}
	return nil
}

// ApproveSubmission commits a pending submission as a new catalog record. The
// slug is derived from the display name; a collision fails the approval so
// the moderator can adjust the name first.
func (s *service) ApproveSubmission(ctx context.Context, kind enums.SubmissionKind, submissionID uuid.UUID, moderator Moderator) (*models.Entity, error) {
	if err := requireModerator(moderator); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid submission kind")
	}

	var entity *models.Entity
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		subRepo := s.submissions.WithTx(tx)
		catRepo := s.catalog.WithTx(tx)

		submission, err := subRepo.GetPending(ctx, kind, submissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load submission")
		}
		if submission.Status != enums.SubmissionStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, "submission already reviewed")
		}

		slug := Slugify(submission.Name)
		if slug == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "submission name yields an empty slug")
		}
		exists, err := catRepo.Exists(ctx, kind, slug)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check slug")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("a %s with slug %q already exists", kind, slug))
		}

		entity = &models.Entity{
			Slug:      slug,
			Name:      submission.Name,
			Profile:   submission.Profile.Clone(),
			CreatedBy: submission.SubmittedBy,
		}
		if err := catRepo.Create(ctx, kind, entity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "commit record")
		}

		now := time.Now().UTC()
		if err := subRepo.MarkPendingReviewed(ctx, kind, submissionID, submissions.ReviewUpdate{
			Status:        enums.SubmissionStatusApproved,
			ReviewedBy:    moderator.ID,
			ReviewedAt:    now,
			CommittedSlug: &slug,
		}); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "submission already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark submission reviewed")
		}

		if err := s.audit.WithTx(tx).Append(ctx, &models.AuditLogEntry{
			ID:         uuid.New(),
			Action:     enums.ApproveActionForKind(kind),
			TargetID:   slug,
			TargetType: string(kind),
			UserID:     moderator.ID,
			UserName:   moderator.Username,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record audit entry")
		}

		return s.emitDecision(ctx, tx, enums.EventSubmissionApproved, moderator, payloads.ModerationDecision{
			Kind:         kind,
			SubmissionID: submissionID,
			Status:       enums.SubmissionStatusApproved,
			TargetSlug:   slug,
			TargetName:   submission.Name,
			SubmittedBy:  submission.SubmittedBy,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.ModerationDecisions.WithLabelValues(string(kind), "approved").Inc()
	return entity, nil
}

// RejectSubmission marks a pending submission rejected. No audit entry is
// written for plain submission rejections; the submission row itself keeps
// the review stamp.
func (s *service) RejectSubmission(ctx context.Context, kind enums.SubmissionKind, submissionID uuid.UUID, moderator Moderator, reason string) error {
	if err := requireModerator(moderator); err != nil {
		return err
	}
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid submission kind")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a rejection reason is required")
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		subRepo := s.submissions.WithTx(tx)

		submission, err := subRepo.GetPending(ctx, kind, submissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load submission")
		}
		if submission.Status != enums.SubmissionStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, "submission already reviewed")
		}

		if err := subRepo.MarkPendingReviewed(ctx, kind, submissionID, submissions.ReviewUpdate{
			Status:      enums.SubmissionStatusRejected,
			ReviewedBy:  moderator.ID,
			ReviewedAt:  time.Now().UTC(),
			ReviewNotes: &reason,
		}); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "submission already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark submission reviewed")
		}

		return s.emitDecision(ctx, tx, enums.EventSubmissionRejected, moderator, payloads.ModerationDecision{
			Kind:         kind,
			SubmissionID: submissionID,
			Status:       enums.SubmissionStatusRejected,
			TargetName:   submission.Name,
			SubmittedBy:  submission.SubmittedBy,
			ReviewNotes:  reason,
		})
	})
	if err != nil {
		return err
	}
	metrics.ModerationDecisions.WithLabelValues(string(kind), "rejected").Inc()
	return nil
}

// ApproveEditRequest applies the recorded changes to the committed record.
// Changes apply as written; the stored Old values are not re-checked against
// the current record, so the newest approval wins.
func (s *service) ApproveEditRequest(ctx context.Context, requestID uuid.UUID, moderator Moderator) (*models.Entity, error) {
	if err := requireModerator(moderator); err != nil {
		return nil, err
	}

	var entity *models.Entity
	var kind enums.SubmissionKind
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		subRepo := s.submissions.WithTx(tx)
		catRepo := s.catalog.WithTx(tx)

		request, err := subRepo.GetEditRequest(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "edit request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load edit request")
		}
		if request.Status != enums.SubmissionStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, "edit request already reviewed")
		}
		kind = request.TargetType

		entity, err = catRepo.Get(ctx, request.TargetType, request.TargetSlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "edit target no longer exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load edit target")
		}

		if entity.Profile == nil {
			entity.Profile = dbtypes.StringMap{}
		}
		for field, change := range request.Changes {
			if field == "name" {
				entity.Name = change.New
				continue
			}
			entity.Profile[field] = change.New
		}
		if err := catRepo.Save(ctx, request.TargetType, entity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply changes")
		}

		if err := subRepo.MarkEditRequestReviewed(ctx, requestID, submissions.ReviewUpdate{
			Status:     enums.SubmissionStatusApproved,
			ReviewedBy: moderator.ID,
			ReviewedAt: time.Now().UTC(),
		}); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "edit request already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark edit request reviewed")
		}

		if err := s.audit.WithTx(tx).Append(ctx, &models.AuditLogEntry{
			ID:         uuid.New(),
			Action:     enums.AuditActionApproveEditRequest,
			TargetID:   request.TargetSlug,
			TargetType: string(request.TargetType),
			UserID:     moderator.ID,
			UserName:   moderator.Username,
			Changes:    request.Changes,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record audit entry")
		}

		return s.emitDecision(ctx, tx, enums.EventEditRequestApproved, moderator, payloads.ModerationDecision{
			Kind:         request.TargetType,
			SubmissionID: requestID,
			Status:       enums.SubmissionStatusApproved,
			TargetSlug:   request.TargetSlug,
			TargetName:   request.TargetName,
			SubmittedBy:  request.SubmittedBy,
		})
	})
	if err != nil {
		return nil, err
	}
	metrics.ModerationDecisions.WithLabelValues(string(kind), "edit_approved").Inc()
	return entity, nil
}

// RejectEditRequest marks an edit request rejected and, unlike plain
// submission rejections, records an audit entry carrying the reason.
func (s *service) RejectEditRequest(ctx context.Context, requestID uuid.UUID, moderator Moderator, reason string) error {
	if err := requireModerator(moderator); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a rejection reason is required")
	}

	var kind enums.SubmissionKind
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		subRepo := s.submissions.WithTx(tx)

		request, err := subRepo.GetEditRequest(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "edit request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load edit request")
		}
		if request.Status != enums.SubmissionStatusPending {
			return pkgerrors.New(pkgerrors.CodeConflict, "edit request already reviewed")
		}
		kind = request.TargetType

		if err := subRepo.MarkEditRequestReviewed(ctx, requestID, submissions.ReviewUpdate{
			Status:      enums.SubmissionStatusRejected,
			ReviewedBy:  moderator.ID,
			ReviewedAt:  time.Now().UTC(),
			ReviewNotes: &reason,
		}); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "edit request already reviewed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark edit request reviewed")
		}

		details := reason
		if err := s.audit.WithTx(tx).Append(ctx, &models.AuditLogEntry{
			ID:         uuid.New(),
			Action:     enums.AuditActionRejectEditRequest,
			TargetID:   request.TargetSlug,
			TargetType: string(request.TargetType),
			UserID:     moderator.ID,
			UserName:   moderator.Username,
			Changes:    request.Changes,
			Details:    &details,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record audit entry")
		}

		return s.emitDecision(ctx, tx, enums.EventEditRequestRejected, moderator, payloads.ModerationDecision{
			Kind:         request.TargetType,
			SubmissionID: requestID,
			Status:       enums.SubmissionStatusRejected,
			TargetSlug:   request.TargetSlug,
			TargetName:   request.TargetName,
			SubmittedBy:  request.SubmittedBy,
			ReviewNotes:  reason,
		})
	})
	if err != nil {
		return err
	}
	metrics.ModerationDecisions.WithLabelValues(string(kind), "edit_rejected").Inc()
	return nil
}

// Broadcast queues an admin message for fanout. The actual notification
// writes happen in the worker consuming the broadcast event.
func (s *service) Broadcast(ctx context.Context, moderator Moderator, title, message string) error {
	if err := requireModerator(moderator); err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title and message are required")
	}

	broadcastID := uuid.New()
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.audit.WithTx(tx).Append(ctx, &models.AuditLogEntry{
			ID:         uuid.New(),
			Action:     enums.AuditActionBroadcastMessage,
			TargetID:   broadcastID.String(),
			TargetType: "broadcast",
			UserID:     moderator.ID,
			UserName:   moderator.Username,
			Details:    &title,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record audit entry")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBroadcastRequested,
			AggregateType: enums.AggregateBroadcast,
			AggregateID:   broadcastID,
			Actor: &outbox.ActorRef{
				UserID:   moderator.ID,
				Username: moderator.Username,
				Role:     string(moderator.Role),
			},
			Data: payloads.Broadcast{Title: title, Message: message},
		})
	})
}

func (s *service) emitDecision(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, moderator Moderator, payload payloads.ModerationDecision) error {
	aggregate := enums.AggregateSubmission
	if eventType == enums.EventEditRequestApproved || eventType == enums.EventEditRequestRejected {
		aggregate = enums.AggregateEditRequest
	}
	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: aggregate,
		AggregateID:   payload.SubmissionID,
		Actor: &outbox.ActorRef{
			UserID:   moderator.ID,
			Username: moderator.Username,
			Role:     string(moderator.Role),
		},
		Data: payload,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue decision event")
	}
	return nil
}
