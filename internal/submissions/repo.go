package submissions

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/pkg/db"
	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

// Repository persists pending submissions and edit requests. Pending
// submissions live in per-kind tables selected at call time; edit requests
// share a single table with a target_type column.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePending(ctx context.Context, kind enums.SubmissionKind, submission *models.PendingSubmission) error
	GetPending(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID) (*models.PendingSubmission, error)
	ListPending(ctx context.Context, kind enums.SubmissionKind, limit int) ([]models.PendingSubmission, error)
	UpdatePendingProfile(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID, update ProfileUpdate) error
	MarkPendingReviewed(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID, update ReviewUpdate) error

	CreateEditRequest(ctx context.Context, request *models.EditRequest) error
	GetEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error)
	ListEditRequests(ctx context.Context, limit int) ([]models.EditRequest, error)
	MarkEditRequestReviewed(ctx context.Context, id uuid.UUID, update ReviewUpdate) error
}

// ProfileUpdate carries an in-place correction to a still-pending submission.
type ProfileUpdate struct {
	Name    *string
	Profile dbtypes.StringMap
}

// ReviewUpdate captures the terminal review stamp applied to a submission.
type ReviewUpdate struct {
	Status        enums.SubmissionStatus
	ReviewedBy    uuid.UUID
	ReviewedAt    time.Time
	ReviewNotes   *string
	CommittedSlug *string
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a submissions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) pendingTable(ctx context.Context, kind enums.SubmissionKind) *gorm.DB {
	return r.db.WithContext(ctx).Table(kind.PendingCollection())
}

func (r *repositoryImpl) CreatePending(ctx context.Context, kind enums.SubmissionKind, submission *models.PendingSubmission) error {
	return r.pendingTable(ctx, kind).Create(submission).Error
}

func (r *repositoryImpl) GetPending(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID) (*models.PendingSubmission, error) {
	var submission models.PendingSubmission
	if err := r.pendingTable(ctx, kind).Where("id = ?", id).Take(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListPending returns pending-status submissions newest first. When the
// backend cannot serve the ordering it falls back to an unordered scan and
// sorts in memory, so the review queue stays available while the index is
// being provisioned.
func (r *repositoryImpl) ListPending(ctx context.Context, kind enums.SubmissionKind, limit int) ([]models.PendingSubmission, error) {
	var pending []models.PendingSubmission
	err := r.pendingTable(ctx, kind).
		Where("status = ?", enums.SubmissionStatusPending).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&pending).Error
	if db.IsMissingOrderingSupport(err) {
		pending = pending[:0]
		if err = r.pendingTable(ctx, kind).
			Where("status = ?", enums.SubmissionStatusPending).
			Limit(limit).
			Find(&pending).Error; err != nil {
			return nil, err
		}
		sort.SliceStable(pending, func(i, j int) bool {
			return pending[i].SubmittedAt.After(pending[j].SubmittedAt)
		})
		return pending, nil
	}
	if err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *repositoryImpl) UpdatePendingProfile(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID, update ProfileUpdate) error {
	fields := map[string]any{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Profile != nil {
		fields["profile"] = update.Profile
	}
	if len(fields) == 0 {
		return nil
	}
	result := r.pendingTable(ctx, kind).
		Where("id = ? AND status = ?", id, enums.SubmissionStatusPending).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) MarkPendingReviewed(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID, update ReviewUpdate) error {
	fields := map[string]any{
		"status":      update.Status,
		"reviewed_by": update.ReviewedBy,
		"reviewed_at": update.ReviewedAt,
	}
	if update.ReviewNotes != nil {
		fields["review_notes"] = *update.ReviewNotes
	}
	if update.CommittedSlug != nil {
		fields["committed_slug"] = *update.CommittedSlug
	}
	result := r.pendingTable(ctx, kind).
		Where("id = ? AND status = ?", id, enums.SubmissionStatusPending).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) CreateEditRequest(ctx context.Context, request *models.EditRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repositoryImpl) GetEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error) {
	var request models.EditRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repositoryImpl) ListEditRequests(ctx context.Context, limit int) ([]models.EditRequest, error) {
	var requests []models.EditRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.SubmissionStatusPending).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&requests).Error
	if db.IsMissingOrderingSupport(err) {
		requests = requests[:0]
		if err = r.db.WithContext(ctx).
			Where("status = ?", enums.SubmissionStatusPending).
			Limit(limit).
			Find(&requests).Error; err != nil {
			return nil, err
		}
		sort.SliceStable(requests, func(i, j int) bool {
			return requests[i].SubmittedAt.After(requests[j].SubmittedAt)
		})
		return requests, nil
	}
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repositoryImpl) MarkEditRequestReviewed(ctx context.Context, id uuid.UUID, update ReviewUpdate) error {
	fields := map[string]any{
		"status":      update.Status,
		"reviewed_by": update.ReviewedBy,
		"reviewed_at": update.ReviewedAt,
	}
	if update.ReviewNotes != nil {
		fields["review_notes"] = *update.ReviewNotes
	}
	result := r.db.WithContext(ctx).
		Model(&models.EditRequest{}).
		Where("id = ? AND status = ?", id, enums.SubmissionStatusPending).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
