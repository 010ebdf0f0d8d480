package catalog

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/pkg/db"
	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

// Repository exposes persistence helpers for committed idol and group records.
// The same repository serves both tables; every call selects the table by kind.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, kind enums.SubmissionKind, slug string) (*models.Entity, error)
	Exists(ctx context.Context, kind enums.SubmissionKind, slug string) (bool, error)
	Create(ctx context.Context, kind enums.SubmissionKind, entity *models.Entity) error
	Save(ctx context.Context, kind enums.SubmissionKind, entity *models.Entity) error
	List(ctx context.Context, kind enums.SubmissionKind, limit int) ([]models.Entity, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) table(ctx context.Context, kind enums.SubmissionKind) *gorm.DB {
	return r.db.WithContext(ctx).Table(kind.CommittedCollection())
}

func (r *repositoryImpl) Get(ctx context.Context, kind enums.SubmissionKind, slug string) (*models.Entity, error) {
	var entity models.Entity
	if err := r.table(ctx, kind).Where("slug = ?", slug).Take(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *repositoryImpl) Exists(ctx context.Context, kind enums.SubmissionKind, slug string) (bool, error) {
	var count int64
	if err := r.table(ctx, kind).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) Create(ctx context.Context, kind enums.SubmissionKind, entity *models.Entity) error {
	return r.table(ctx, kind).Create(entity).Error
}

func (r *repositoryImpl) Save(ctx context.Context, kind enums.SubmissionKind, entity *models.Entity) error {
	return r.table(ctx, kind).Where("slug = ?", entity.Slug).Updates(map[string]any{
		"name":    entity.Name,
		"profile": entity.Profile,
	}).Error
}

func (r *repositoryImpl) List(ctx context.Context, kind enums.SubmissionKind, limit int) ([]models.Entity, error) {
	var entities []models.Entity
	err := r.table(ctx, kind).Order("name ASC").Limit(limit).Find(&entities).Error
	if db.IsMissingOrderingSupport(err) {
		entities = entities[:0]
		if err = r.table(ctx, kind).Limit(limit).Find(&entities).Error; err != nil {
			return nil, err
		}
		sort.SliceStable(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })
		return entities, nil
	}
	if err != nil {
		return nil, err
	}
	return entities, nil
}
