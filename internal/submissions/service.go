package submissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
	pkgerrors "github.com/haneulpark/idolbase-backend/pkg/errors"
)

const defaultQueueLimit = 100

// Service handles member-facing submission flows: proposing new records and
// proposing field edits to committed ones.
type Service interface {
	SubmitNew(ctx context.Context, req NewSubmissionRequest) (*models.PendingSubmission, error)
	SubmitEdit(ctx context.Context, req EditSubmissionRequest) (*models.EditRequest, error)
	GetPending(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID) (*models.PendingSubmission, error)
	ListPending(ctx context.Context, kind enums.SubmissionKind) ([]models.PendingSubmission, error)
	AmendPending(ctx context.Context, req AmendSubmissionRequest) (*models.PendingSubmission, error)
	GetEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error)
	ListEditRequests(ctx context.Context) ([]models.EditRequest, error)
}

// NewSubmissionRequest proposes a brand-new idol or group record.
type NewSubmissionRequest struct {
	Kind          enums.SubmissionKind
	Name          string
	Profile       map[string]string
	SubmittedBy   uuid.UUID
	SubmittedName string
}

// EditSubmissionRequest proposes field-level changes to a committed record.
type EditSubmissionRequest struct {
	Kind          enums.SubmissionKind
	TargetSlug    string
	Changes       map[string]dbtypes.FieldChange
	Reason        string
	SubmittedBy   uuid.UUID
	SubmittedName string
}

// AmendSubmissionRequest corrects a still-pending submission in place during
// review. Name and Profile are applied only when set.
type AmendSubmissionRequest struct {
	Kind    enums.SubmissionKind
	ID      uuid.UUID
	Name    *string
	Profile map[string]string
}

type catalogReader interface {
	Get(ctx context.Context, kind enums.SubmissionKind, slug string) (*models.Entity, error)
}

type service struct {
	repo    Repository
	catalog catalogReader
}

// ServiceParams bundles dependencies for the submissions service.
type ServiceParams struct {
	Repo    Repository
	Catalog catalogReader
}

// NewService constructs a submissions service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("submissions repository is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader is required")
	}
	return &service{repo: params.Repo, catalog: params.Catalog}, nil
}

func (s *service) SubmitNew(ctx context.Context, req NewSubmissionRequest) (*models.PendingSubmission, error) {
	if !req.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid submission kind")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	profile := dbtypes.StringMap{}
	for field, value := range req.Profile {
		field = strings.TrimSpace(field)
		if field == "" || field == "name" {
			continue
		}
		profile[field] = strings.TrimSpace(value)
	}

	submittedBy := req.SubmittedBy
	submission := &models.PendingSubmission{
		ID:            uuid.New(),
		Name:          name,
		Profile:       profile,
		Status:        enums.SubmissionStatusPending,
		SubmittedBy:   &submittedBy,
		SubmittedName: req.SubmittedName,
	}
	if err := s.repo.CreatePending(ctx, req.Kind, submission); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pending submission")
	}
	return submission, nil
}

func (s *service) SubmitEdit(ctx context.Context, req EditSubmissionRequest) (*models.EditRequest, error) {
	if !req.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid submission kind")
	}
	if len(req.Changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "changes must not be empty")
	}

	target, err := s.catalog.Get(ctx, req.Kind, req.TargetSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %q not found", req.Kind, req.TargetSlug))
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load edit target")
	}

	changes := dbtypes.FieldChanges{}
	for field, change := range req.Changes {
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "change field name must not be empty")
		}
		current, ok := target.FieldValue(field)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("field %q does not exist on target", field))
		}
		if change.Old != current {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("field %q has changed since it was read", field))
		}
		if change.New == change.Old {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("field %q proposes no change", field))
		}
		changes[field] = change
	}

	submittedBy := req.SubmittedBy
	request := &models.EditRequest{
		ID:            uuid.New(),
		TargetType:    req.Kind,
		TargetSlug:    target.Slug,
		TargetName:    target.Name,
		Changes:       changes,
		Reason:        strings.TrimSpace(req.Reason),
		Status:        enums.SubmissionStatusPending,
		SubmittedBy:   &submittedBy,
		SubmittedName: req.SubmittedName,
	}
	if err := s.repo.CreateEditRequest(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create edit request")
	}
	return request, nil
}

func (s *service) GetPending(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID) (*models.PendingSubmission, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid submission kind")
	}
	submission, err := s.repo.GetPending(ctx, kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load submission")
	}
	return submission, nil
}

func (s *service) ListPending(ctx context.Context, kind enums.SubmissionKind) ([]models.PendingSubmission, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid submission kind")
	}
	pending, err := s.repo.ListPending(ctx, kind, defaultQueueLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending submissions")
	}
	return pending, nil
}

func (s *service) AmendPending(ctx context.Context, req AmendSubmissionRequest) (*models.PendingSubmission, error) {
	if !req.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid submission kind")
	}

	update := ProfileUpdate{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		update.Name = &name
	}
	if req.Profile != nil {
		profile := dbtypes.StringMap{}
		for field, value := range req.Profile {
			field = strings.TrimSpace(field)
			if field == "" || field == "name" {
				continue
			}
			profile[field] = strings.TrimSpace(value)
		}
		update.Profile = profile
	}
	if update.Name == nil && update.Profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	if err := s.repo.UpdatePendingProfile(ctx, req.Kind, req.ID, update); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "submission is no longer pending")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "amend pending submission")
	}
	return s.GetPending(ctx, req.Kind, req.ID)
}

func (s *service) GetEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error) {
	request, err := s.repo.GetEditRequest(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "edit request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load edit request")
	}
	return request, nil
}

func (s *service) ListEditRequests(ctx context.Context) ([]models.EditRequest, error) {
	requests, err := s.repo.ListEditRequests(ctx, defaultQueueLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list edit requests")
	}
	return requests, nil
}
