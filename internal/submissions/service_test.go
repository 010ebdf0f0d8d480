package submissions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
	pkgerrors "github.com/haneulpark/idolbase-backend/pkg/errors"
)

type stubSubmissionsRepo struct {
	pending      map[enums.SubmissionKind][]models.PendingSubmission
	editRequests []models.EditRequest
}

func newStubSubmissionsRepo() *stubSubmissionsRepo {
	return &stubSubmissionsRepo{pending: map[enums.SubmissionKind][]models.PendingSubmission{}}
}

func (s *stubSubmissionsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubSubmissionsRepo) CreatePending(ctx context.Context, kind enums.SubmissionKind, submission *models.PendingSubmission) error {
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	s.pending[kind] = append(s.pending[kind], *submission)
	return nil
}

func (s *stubSubmissionsRepo) GetPending(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID) (*models.PendingSubmission, error) {
	for i := range s.pending[kind] {
		if s.pending[kind][i].ID == id {
			sub := s.pending[kind][i]
			return &sub, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubmissionsRepo) ListPending(ctx context.Context, kind enums.SubmissionKind, limit int) ([]models.PendingSubmission, error) {
	var out []models.PendingSubmission
	for _, sub := range s.pending[kind] {
		if sub.Status == enums.SubmissionStatusPending {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *stubSubmissionsRepo) UpdatePendingProfile(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID, update ProfileUpdate) error {
	for i := range s.pending[kind] {
		sub := &s.pending[kind][i]
		if sub.ID != id || sub.Status != enums.SubmissionStatusPending {
			continue
		}
		if update.Name != nil {
			sub.Name = *update.Name
		}
		if update.Profile != nil {
			sub.Profile = update.Profile
		}
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (s *stubSubmissionsRepo) MarkPendingReviewed(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID, update ReviewUpdate) error {
	for i := range s.pending[kind] {
		if s.pending[kind][i].ID == id && s.pending[kind][i].Status == enums.SubmissionStatusPending {
			s.pending[kind][i].Status = update.Status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubSubmissionsRepo) CreateEditRequest(ctx context.Context, request *models.EditRequest) error {
	s.editRequests = append(s.editRequests, *request)
	return nil
}

func (s *stubSubmissionsRepo) GetEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error) {
	for i := range s.editRequests {
		if s.editRequests[i].ID == id {
			req := s.editRequests[i]
			return &req, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubmissionsRepo) ListEditRequests(ctx context.Context, limit int) ([]models.EditRequest, error) {
	return append([]models.EditRequest(nil), s.editRequests...), nil
}

func (s *stubSubmissionsRepo) MarkEditRequestReviewed(ctx context.Context, id uuid.UUID, update ReviewUpdate) error {
	for i := range s.editRequests {
		if s.editRequests[i].ID == id && s.editRequests[i].Status == enums.SubmissionStatusPending {
			s.editRequests[i].Status = update.Status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubCatalogReader struct {
	entities map[string]*models.Entity
}

func (s *stubCatalogReader) Get(ctx context.Context, kind enums.SubmissionKind, slug string) (*models.Entity, error) {
	if entity, ok := s.entities[string(kind)+"/"+slug]; ok {
		return entity, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newSubmissionsTestService(t *testing.T) (Service, *stubSubmissionsRepo, *stubCatalogReader) {
	t.Helper()
	repo := newStubSubmissionsRepo()
	catalog := &stubCatalogReader{entities: map[string]*models.Entity{}}
	svc, err := NewService(ServiceParams{Repo: repo, Catalog: catalog})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, catalog
}

func TestSubmitNewCreatesPendingSubmission(t *testing.T) {
	svc, repo, _ := newSubmissionsTestService(t)

	submitter := uuid.New()
	sub, err := svc.SubmitNew(context.Background(), NewSubmissionRequest{
		Kind:          enums.SubmissionKindIdol,
		Name:          "  Kim Minji  ",
		Profile:       map[string]string{"birthdate": "2004-05-07", "name": "ignored"},
		SubmittedBy:   submitter,
		SubmittedName: "fan_account",
	})
	if err != nil {
		t.Fatalf("submit new: %v", err)
	}

	if sub.Status != enums.SubmissionStatusPending {
		t.Fatalf("expected pending status, got %s", sub.Status)
	}
	if sub.Name != "Kim Minji" {
		t.Fatalf("expected trimmed name, got %q", sub.Name)
	}
	if _, ok := sub.Profile["name"]; ok {
		t.Fatalf("profile must not shadow the name field")
	}
	if len(repo.pending[enums.SubmissionKindIdol]) != 1 {
		t.Fatalf("expected one stored submission")
	}
}

func TestSubmitNewRejectsBlankName(t *testing.T) {
	svc, _, _ := newSubmissionsTestService(t)

	_, err := svc.SubmitNew(context.Background(), NewSubmissionRequest{
		Kind: enums.SubmissionKindIdol,
		Name: "   ",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitEditValidatesAgainstTarget(t *testing.T) {
	svc, repo, catalog := newSubmissionsTestService(t)
	catalog.entities["idol/haerin"] = &models.Entity{
		Slug:    "haerin",
		Name:    "Kang Haerin",
		Profile: dbtypes.StringMap{"height": "160cm"},
	}

	req, err := svc.SubmitEdit(context.Background(), EditSubmissionRequest{
		Kind:       enums.SubmissionKindIdol,
		TargetSlug: "haerin",
		Changes: map[string]dbtypes.FieldChange{
			"height": {Old: "160cm", New: "162cm"},
		},
		Reason:        "official profile update",
		SubmittedBy:   uuid.New(),
		SubmittedName: "fan_account",
	})
	if err != nil {
		t.Fatalf("submit edit: %v", err)
	}
	if req.TargetName != "Kang Haerin" {
		t.Fatalf("expected target name denormalized, got %q", req.TargetName)
	}
	if len(repo.editRequests) != 1 {
		t.Fatalf("expected one stored edit request")
	}
}

func TestSubmitEditRejectsEmptyChanges(t *testing.T) {
	svc, _, catalog := newSubmissionsTestService(t)
	catalog.entities["idol/haerin"] = &models.Entity{Slug: "haerin", Name: "Kang Haerin"}

	_, err := svc.SubmitEdit(context.Background(), EditSubmissionRequest{
		Kind:       enums.SubmissionKindIdol,
		TargetSlug: "haerin",
		Changes:    map[string]dbtypes.FieldChange{},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitEditRejectsUnknownField(t *testing.T) {
	svc, _, catalog := newSubmissionsTestService(t)
	catalog.entities["idol/haerin"] = &models.Entity{
		Slug:    "haerin",
		Name:    "Kang Haerin",
		Profile: dbtypes.StringMap{},
	}

	_, err := svc.SubmitEdit(context.Background(), EditSubmissionRequest{
		Kind:       enums.SubmissionKindIdol,
		TargetSlug: "haerin",
		Changes: map[string]dbtypes.FieldChange{
			"shoe_size": {Old: "", New: "250mm"},
		},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown field, got %v", err)
	}
}

func TestSubmitEditRejectsStaleOldValue(t *testing.T) {
	svc, _, catalog := newSubmissionsTestService(t)
	catalog.entities["idol/haerin"] = &models.Entity{
		Slug:    "haerin",
		Name:    "Kang Haerin",
		Profile: dbtypes.StringMap{"height": "162cm"},
	}

	_, err := svc.SubmitEdit(context.Background(), EditSubmissionRequest{
		Kind:       enums.SubmissionKindIdol,
		TargetSlug: "haerin",
		Changes: map[string]dbtypes.FieldChange{
			"height": {Old: "160cm", New: "163cm"},
		},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error for stale value, got %v", err)
	}
}

func TestSubmitEditRejectsMissingTarget(t *testing.T) {
	svc, _, _ := newSubmissionsTestService(t)

	_, err := svc.SubmitEdit(context.Background(), EditSubmissionRequest{
		Kind:       enums.SubmissionKindGroup,
		TargetSlug: "nonexistent",
		Changes: map[string]dbtypes.FieldChange{
			"name": {Old: "A", New: "B"},
		},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestEditRequestOnNameField(t *testing.T) {
	svc, repo, catalog := newSubmissionsTestService(t)
	catalog.entities["group/newjeans"] = &models.Entity{
		Slug:    "newjeans",
		Name:    "NewJeans",
		Profile: dbtypes.StringMap{},
	}

	req, err := svc.SubmitEdit(context.Background(), EditSubmissionRequest{
		Kind:       enums.SubmissionKindGroup,
		TargetSlug: "newjeans",
		Changes: map[string]dbtypes.FieldChange{
			"name": {Old: "NewJeans", New: "NJZ"},
		},
	})
	if err != nil {
		t.Fatalf("submit edit on name: %v", err)
	}
	if req.Changes["name"].New != "NJZ" {
		t.Fatalf("expected name change to be recorded")
	}
	if len(repo.editRequests) != 1 {
		t.Fatalf("expected stored edit request")
	}
}

func TestAmendPendingUpdatesInPlace(t *testing.T) {
	svc, repo, _ := newSubmissionsTestService(t)

	created, err := svc.SubmitNew(context.Background(), NewSubmissionRequest{
		Kind:    enums.SubmissionKindIdol,
		Name:    "Kang Haerin",
		Profile: map[string]string{"birthdate": "2006-05-15"},
	})
	if err != nil {
		t.Fatalf("submit new: %v", err)
	}

	name := "Kang Hae-rin"
	amended, err := svc.AmendPending(context.Background(), AmendSubmissionRequest{
		Kind:    enums.SubmissionKindIdol,
		ID:      created.ID,
		Name:    &name,
		Profile: map[string]string{"birthdate": "2006-05-15", "position": "vocalist"},
	})
	if err != nil {
		t.Fatalf("amend pending: %v", err)
	}
	if amended.Name != "Kang Hae-rin" {
		t.Fatalf("expected amended name, got %q", amended.Name)
	}
	if amended.Profile["position"] != "vocalist" {
		t.Fatalf("expected amended profile to carry the new field")
	}
	if got := repo.pending[enums.SubmissionKindIdol][0].Name; got != "Kang Hae-rin" {
		t.Fatalf("expected stored submission updated, got %q", got)
	}
}

func TestAmendPendingRejectsEmptyUpdate(t *testing.T) {
	svc, _, _ := newSubmissionsTestService(t)

	_, err := svc.AmendPending(context.Background(), AmendSubmissionRequest{
		Kind: enums.SubmissionKindIdol,
		ID:   uuid.New(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAmendPendingConflictsWhenReviewed(t *testing.T) {
	svc, repo, _ := newSubmissionsTestService(t)

	created, err := svc.SubmitNew(context.Background(), NewSubmissionRequest{
		Kind: enums.SubmissionKindGroup,
		Name: "NewJeans",
	})
	if err != nil {
		t.Fatalf("submit new: %v", err)
	}
	repo.pending[enums.SubmissionKindGroup][0].Status = enums.SubmissionStatusApproved

	name := "NJZ"
	_, err = svc.AmendPending(context.Background(), AmendSubmissionRequest{
		Kind: enums.SubmissionKindGroup,
		ID:   created.ID,
		Name: &name,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}
