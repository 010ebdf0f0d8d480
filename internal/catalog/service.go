package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
	pkgerrors "github.com/haneulpark/idolbase-backend/pkg/errors"
)

// Service exposes read access to the committed reference catalog.
type Service interface {
	Get(ctx context.Context, kind enums.SubmissionKind, slug string) (*models.Entity, error)
	List(ctx context.Context, kind enums.SubmissionKind, limit int) ([]models.Entity, error)
}

type service struct {
	repo Repository
}

// NewService constructs a catalog service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, kind enums.SubmissionKind, slug string) (*models.Entity, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid record kind")
	}
	entity, err := s.repo.Get(ctx, kind, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %q not found", kind, slug))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load record")
	}
	return entity, nil
}

func (s *service) List(ctx context.Context, kind enums.SubmissionKind, limit int) ([]models.Entity, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid record kind")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entities, err := s.repo.List(ctx, kind, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list records")
	}
	return entities, nil
}
