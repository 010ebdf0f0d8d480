package audit

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/pkg/db"
	"github.com/haneulpark/idolbase-backend/pkg/db/models"
)

// Repository persists audit log entries. The table is append-only; there are
// deliberately no update or delete operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, entry *models.AuditLogEntry) error
	ListByTarget(ctx context.Context, targetType, targetID string, limit int) ([]models.AuditLogEntry, error)
	ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByTarget returns the newest entries for a target first, falling back to
// an in-memory sort when the ordering cannot be served.
func (r *repositoryImpl) ListByTarget(ctx context.Context, targetType, targetID string, limit int) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if db.IsMissingOrderingSupport(err) {
		entries = entries[:0]
		if err = r.db.WithContext(ctx).
			Where("target_type = ? AND target_id = ?", targetType, targetID).
			Limit(limit).
			Find(&entries).Error; err != nil {
			return nil, err
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		})
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repositoryImpl) ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
