package social

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/pkg/db"
	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

// Repository persists friend requests and friendship edges. Requests are
// keyed by the ordered pair key, edges by (owner, friend); neither table has
// a surrogate id.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetRequest(ctx context.Context, pairKey string) (*models.FriendRequest, error)
	CreateRequest(ctx context.Context, request *models.FriendRequest) error
	DeleteRequest(ctx context.Context, pairKey string) error
	MarkResponded(ctx context.Context, pairKey string, status enums.FriendRequestStatus, at time.Time) error
	ListIncoming(ctx context.Context, toUID uuid.UUID, limit int) ([]models.FriendRequest, error)
	CountPendingIncoming(ctx context.Context, toUID uuid.UUID) (int64, error)

	CreateEdge(ctx context.Context, edge *models.FriendshipEdge) error
	DeleteEdge(ctx context.Context, ownerID, friendID uuid.UUID) error
	EdgeExists(ctx context.Context, ownerID, friendID uuid.UUID) (bool, error)
	ListEdges(ctx context.Context, ownerID uuid.UUID) ([]models.FriendshipEdge, error)
	AdjustFriendCount(ctx context.Context, userID uuid.UUID, delta int) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a social repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) GetRequest(ctx context.Context, pairKey string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.db.WithContext(ctx).Where("pair_key = ?", pairKey).Take(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repositoryImpl) CreateRequest(ctx context.Context, request *models.FriendRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repositoryImpl) DeleteRequest(ctx context.Context, pairKey string) error {
	return r.db.WithContext(ctx).
		Where("pair_key = ?", pairKey).
		Delete(&models.FriendRequest{}).Error
}

// MarkResponded stamps a terminal status on a still-pending request. A request
// already responded to reports gorm.ErrRecordNotFound so callers can surface
// the conflict.
func (r *repositoryImpl) MarkResponded(ctx context.Context, pairKey string, status enums.FriendRequestStatus, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("pair_key = ? AND status = ?", pairKey, enums.FriendRequestStatusPending).
		Updates(map[string]any{
			"status":       status,
			"responded_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListIncoming returns pending requests addressed to the user, newest first.
func (r *repositoryImpl) ListIncoming(ctx context.Context, toUID uuid.UUID, limit int) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("to_uid = ? AND status = ?", toUID, enums.FriendRequestStatusPending).
		Order("created_at DESC").
		Limit(limit).
		Find(&requests).Error
	if db.IsMissingOrderingSupport(err) {
		requests = requests[:0]
		if err = r.db.WithContext(ctx).
			Where("to_uid = ? AND status = ?", toUID, enums.FriendRequestStatusPending).
			Limit(limit).
			Find(&requests).Error; err != nil {
			return nil, err
		}
		sort.SliceStable(requests, func(i, j int) bool {
			return requests[i].CreatedAt.After(requests[j].CreatedAt)
		})
		return requests, nil
	}
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repositoryImpl) CountPendingIncoming(ctx context.Context, toUID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("to_uid = ? AND status = ?", toUID, enums.FriendRequestStatusPending).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CreateEdge(ctx context.Context, edge *models.FriendshipEdge) error {
	return r.db.WithContext(ctx).Create(edge).Error
}

func (r *repositoryImpl) DeleteEdge(ctx context.Context, ownerID, friendID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ? AND friend_id = ?", ownerID, friendID).
		Delete(&models.FriendshipEdge{}).Error
}

func (r *repositoryImpl) EdgeExists(ctx context.Context, ownerID, friendID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FriendshipEdge{}).
		Where("owner_id = ? AND friend_id = ?", ownerID, friendID).
		Count(&count).Error
	return count > 0, err
}

// AdjustFriendCount applies a signed delta to the user's friend count. The
// caller's own decrement runs inside the removal transaction; counterparty
// adjustments reuse the same method outside one.
func (r *repositoryImpl) AdjustFriendCount(ctx context.Context, userID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("friend_count", gorm.Expr("friend_count + ?", delta)).Error
}

func (r *repositoryImpl) ListEdges(ctx context.Context, ownerID uuid.UUID) ([]models.FriendshipEdge, error) {
	var edges []models.FriendshipEdge
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("friend_name ASC").
		Find(&edges).Error
	if db.IsMissingOrderingSupport(err) {
		edges = edges[:0]
		if err = r.db.WithContext(ctx).
			Where("owner_id = ?", ownerID).
			Find(&edges).Error; err != nil {
			return nil, err
		}
		sort.SliceStable(edges, func(i, j int) bool {
			return edges[i].FriendName < edges[j].FriendName
		})
		return edges, nil
	}
	if err != nil {
		return nil, err
	}
	return edges, nil
}
