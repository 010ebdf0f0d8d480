package moderation

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/internal/audit"
	"github.com/haneulpark/idolbase-backend/internal/catalog"
	"github.com/haneulpark/idolbase-backend/internal/submissions"
	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
	pkgerrors "github.com/haneulpark/idolbase-backend/pkg/errors"
	"github.com/haneulpark/idolbase-backend/pkg/logger"
	"github.com/haneulpark/idolbase-backend/pkg/outbox"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeSubmissionsRepo struct {
	pending      map[string]*models.PendingSubmission
	editRequests map[uuid.UUID]*models.EditRequest
}

func newFakeSubmissionsRepo() *fakeSubmissionsRepo {
	return &fakeSubmissionsRepo{
		pending:      map[string]*models.PendingSubmission{},
		editRequests: map[uuid.UUID]*models.EditRequest{},
	}
}

func pendingKey(kind enums.SubmissionKind, id uuid.UUID) string {
	return string(kind) + "/" + id.String()
}

func (f *fakeSubmissionsRepo) WithTx(tx *gorm.DB) submissions.Repository { return f }

func (f *fakeSubmissionsRepo) CreatePending(ctx context.Context, kind enums.SubmissionKind, submission *models.PendingSubmission) error {
	f.pending[pendingKey(kind, submission.ID)] = submission
	return nil
}

func (f *fakeSubmissionsRepo) GetPending(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID) (*models.PendingSubmission, error) {
	if sub, ok := f.pending[pendingKey(kind, id)]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionsRepo) ListPending(ctx context.Context, kind enums.SubmissionKind, limit int) ([]models.PendingSubmission, error) {
	return nil, nil
}

func (f *fakeSubmissionsRepo) UpdatePendingProfile(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID, update submissions.ProfileUpdate) error {
	sub, ok := f.pending[pendingKey(kind, id)]
	if !ok || sub.Status != enums.SubmissionStatusPending {
		return gorm.ErrRecordNotFound
	}
	if update.Name != nil {
		sub.Name = *update.Name
	}
	if update.Profile != nil {
		sub.Profile = update.Profile
	}
	return nil
}

func (f *fakeSubmissionsRepo) MarkPendingReviewed(ctx context.Context, kind enums.SubmissionKind, id uuid.UUID, update submissions.ReviewUpdate) error {
	sub, ok := f.pending[pendingKey(kind, id)]
	if !ok || sub.Status != enums.SubmissionStatusPending {
		return gorm.ErrRecordNotFound
	}
	sub.Status = update.Status
	reviewedBy := update.ReviewedBy
	sub.ReviewedBy = &reviewedBy
	reviewedAt := update.ReviewedAt
	sub.ReviewedAt = &reviewedAt
	sub.ReviewNotes = update.ReviewNotes
	sub.CommittedSlug = update.CommittedSlug
	return nil
}

func (f *fakeSubmissionsRepo) CreateEditRequest(ctx context.Context, request *models.EditRequest) error {
	f.editRequests[request.ID] = request
	return nil
}

func (f *fakeSubmissionsRepo) GetEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error) {
	if req, ok := f.editRequests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSubmissionsRepo) ListEditRequests(ctx context.Context, limit int) ([]models.EditRequest, error) {
	return nil, nil
}

func (f *fakeSubmissionsRepo) MarkEditRequestReviewed(ctx context.Context, id uuid.UUID, update submissions.ReviewUpdate) error {
	req, ok := f.editRequests[id]
	if !ok || req.Status != enums.SubmissionStatusPending {
		return gorm.ErrRecordNotFound
	}
	req.Status = update.Status
	return nil
}

type fakeCatalogRepo struct {
	entities map[string]*models.Entity
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{entities: map[string]*models.Entity{}}
}

func entityKey(kind enums.SubmissionKind, slug string) string {
	return string(kind) + "/" + slug
}

func (f *fakeCatalogRepo) WithTx(tx *gorm.DB) catalog.Repository { return f }

func (f *fakeCatalogRepo) Get(ctx context.Context, kind enums.SubmissionKind, slug string) (*models.Entity, error) {
	if entity, ok := f.entities[entityKey(kind, slug)]; ok {
		copied := *entity
		copied.Profile = entity.Profile.Clone()
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalogRepo) Exists(ctx context.Context, kind enums.SubmissionKind, slug string) (bool, error) {
	_, ok := f.entities[entityKey(kind, slug)]
	return ok, nil
}

func (f *fakeCatalogRepo) Create(ctx context.Context, kind enums.SubmissionKind, entity *models.Entity) error {
	f.entities[entityKey(kind, entity.Slug)] = entity
	return nil
}

func (f *fakeCatalogRepo) Save(ctx context.Context, kind enums.SubmissionKind, entity *models.Entity) error {
	f.entities[entityKey(kind, entity.Slug)] = entity
	return nil
}

func (f *fakeCatalogRepo) List(ctx context.Context, kind enums.SubmissionKind, limit int) ([]models.Entity, error) {
	return nil, nil
}

type fakeAuditRepo struct {
	entries []models.AuditLogEntry
}

func (f *fakeAuditRepo) WithTx(tx *gorm.DB) audit.Repository { return f }

func (f *fakeAuditRepo) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) ListByTarget(ctx context.Context, targetType, targetID string, limit int) ([]models.AuditLogEntry, error) {
	return nil, nil
}

func (f *fakeAuditRepo) ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	return nil, nil
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type moderationFixture struct {
	service     Service
	submissions *fakeSubmissionsRepo
	catalog     *fakeCatalogRepo
	audit       *fakeAuditRepo
	emitter     *fakeEmitter
}

func newModerationFixture(t *testing.T) *moderationFixture {
	t.Helper()
	subs := newFakeSubmissionsRepo()
	cat := newFakeCatalogRepo()
	aud := &fakeAuditRepo{}
	emitter := &fakeEmitter{}
	svc, err := NewService(ServiceParams{
		DB:          stubTxRunner{},
		Submissions: subs,
		Catalog:     cat,
		Audit:       aud,
		Outbox:      emitter,
		Logger:      logger.New(logger.Options{Level: zerolog.Disabled, Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &moderationFixture{service: svc, submissions: subs, catalog: cat, audit: aud, emitter: emitter}
}

func testModerator() Moderator {
	return Moderator{ID: uuid.New(), Username: "mod_hana", Role: enums.MemberRoleModerator}
}

func seedSubmission(f *moderationFixture, kind enums.SubmissionKind, name string) *models.PendingSubmission {
	submitter := uuid.New()
	sub := &models.PendingSubmission{
		ID:          uuid.New(),
		Name:        name,
		Profile:     dbtypes.StringMap{"birthdate": "2004-05-07"},
		Status:      enums.SubmissionStatusPending,
		SubmittedBy: &submitter,
		SubmittedAt: time.Now().UTC(),
	}
	f.submissions.pending[pendingKey(kind, sub.ID)] = sub
	return sub
}

func TestApproveSubmissionCommitsRecord(t *testing.T) {
	f := newModerationFixture(t)
	sub := seedSubmission(f, enums.SubmissionKindIdol, "Kim Minji")
	mod := testModerator()

	entity, err := f.service.ApproveSubmission(context.Background(), enums.SubmissionKindIdol, sub.ID, mod)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if entity.Slug != "kim-minji" {
		t.Fatalf("expected derived slug, got %q", entity.Slug)
	}
	if entity.Profile["birthdate"] != "2004-05-07" {
		t.Fatalf("expected profile carried over")
	}
	stored := f.submissions.pending[pendingKey(enums.SubmissionKindIdol, sub.ID)]
	if stored.Status != enums.SubmissionStatusApproved {
		t.Fatalf("submission should be approved, got %s", stored.Status)
	}
	if stored.CommittedSlug == nil || *stored.CommittedSlug != "kim-minji" {
		t.Fatalf("expected committed slug stamped")
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != enums.AuditActionApprovePendingIdol {
		t.Fatalf("expected one approve audit entry, got %+v", f.audit.entries)
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventSubmissionApproved {
		t.Fatalf("expected approval event emitted")
	}
}

func TestApproveSubmissionCommitsExactlyOnce(t *testing.T) {
	f := newModerationFixture(t)
	sub := seedSubmission(f, enums.SubmissionKindIdol, "Kim Minji")
	mod := testModerator()
	ctx := context.Background()

	if _, err := f.service.ApproveSubmission(ctx, enums.SubmissionKindIdol, sub.ID, mod); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	_, err := f.service.ApproveSubmission(ctx, enums.SubmissionKindIdol, sub.ID, mod)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on second approve, got %v", err)
	}
	if len(f.catalog.entities) != 1 {
		t.Fatalf("expected exactly one committed record")
	}
	if len(f.emitter.events) != 1 {
		t.Fatalf("second approve must not emit another event")
	}
}

func TestApproveSubmissionRejectsSlugCollision(t *testing.T) {
	f := newModerationFixture(t)
	f.catalog.entities[entityKey(enums.SubmissionKindIdol, "kim-minji")] = &models.Entity{
		Slug: "kim-minji", Name: "Kim Minji", Profile: dbtypes.StringMap{},
	}
	sub := seedSubmission(f, enums.SubmissionKindIdol, "Kim Minji")
	mod := testModerator()

	_, err := f.service.ApproveSubmission(context.Background(), enums.SubmissionKindIdol, sub.ID, mod)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for slug collision, got %v", err)
	}
	stored := f.submissions.pending[pendingKey(enums.SubmissionKindIdol, sub.ID)]
	if stored.Status != enums.SubmissionStatusPending {
		t.Fatalf("submission must stay pending after failed approval")
	}
}

func TestRejectSubmissionRequiresReason(t *testing.T) {
	f := newModerationFixture(t)
	sub := seedSubmission(f, enums.SubmissionKindGroup, "NewJeans")
	mod := testModerator()

	err := f.service.RejectSubmission(context.Background(), enums.SubmissionKindGroup, sub.ID, mod, "   ")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without reason, got %v", err)
	}
}

func TestRejectSubmissionLeavesNoAuditEntry(t *testing.T) {
	f := newModerationFixture(t)
	sub := seedSubmission(f, enums.SubmissionKindGroup, "NewJeans")
	mod := testModerator()

	if err := f.service.RejectSubmission(context.Background(), enums.SubmissionKindGroup, sub.ID, mod, "duplicate of an existing group"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if len(f.audit.entries) != 0 {
		t.Fatalf("plain submission rejections are not audited, got %+v", f.audit.entries)
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventSubmissionRejected {
		t.Fatalf("expected rejection event emitted")
	}
	stored := f.submissions.pending[pendingKey(enums.SubmissionKindGroup, sub.ID)]
	if stored.Status != enums.SubmissionStatusRejected {
		t.Fatalf("expected rejected status")
	}
	if stored.ReviewNotes == nil || *stored.ReviewNotes != "duplicate of an existing group" {
		t.Fatalf("expected reason stored on the submission")
	}
}

func TestApproveEditRequestAppliesChanges(t *testing.T) {
	f := newModerationFixture(t)
	f.catalog.entities[entityKey(enums.SubmissionKindIdol, "haerin")] = &models.Entity{
		Slug:    "haerin",
		Name:    "Haerin",
		Profile: dbtypes.StringMap{"height": "160cm", "position": "vocalist"},
	}
	submitter := uuid.New()
	request := &models.EditRequest{
		ID:         uuid.New(),
		TargetType: enums.SubmissionKindIdol,
		TargetSlug: "haerin",
		TargetName: "Haerin",
		Changes: dbtypes.FieldChanges{
			"height": {Old: "160cm", New: "162cm"},
			"name":   {Old: "Haerin", New: "Kang Haerin"},
		},
		Status:      enums.SubmissionStatusPending,
		SubmittedBy: &submitter,
	}
	f.submissions.editRequests[request.ID] = request
	mod := testModerator()

	entity, err := f.service.ApproveEditRequest(context.Background(), request.ID, mod)
	if err != nil {
		t.Fatalf("approve edit: %v", err)
	}

	if entity.Name != "Kang Haerin" {
		t.Fatalf("expected name change applied, got %q", entity.Name)
	}
	if entity.Profile["height"] != "162cm" {
		t.Fatalf("expected height change applied")
	}
	if entity.Profile["position"] != "vocalist" {
		t.Fatalf("untouched fields must survive")
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != enums.AuditActionApproveEditRequest {
		t.Fatalf("expected edit approval audited")
	}
	if f.audit.entries[0].Changes["height"].New != "162cm" {
		t.Fatalf("audit entry should carry the applied changes")
	}
}

func TestRejectEditRequestIsAuditedWithReason(t *testing.T) {
	f := newModerationFixture(t)
	request := &models.EditRequest{
		ID:         uuid.New(),
		TargetType: enums.SubmissionKindIdol,
		TargetSlug: "haerin",
		TargetName: "Haerin",
		Changes:    dbtypes.FieldChanges{"height": {Old: "160cm", New: "190cm"}},
		Status:     enums.SubmissionStatusPending,
	}
	f.submissions.editRequests[request.ID] = request
	mod := testModerator()

	err := f.service.RejectEditRequest(context.Background(), request.ID, mod, "")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without reason, got %v", err)
	}

	if err := f.service.RejectEditRequest(context.Background(), request.ID, mod, "implausible value"); err != nil {
		t.Fatalf("reject edit: %v", err)
	}

	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != enums.AuditActionRejectEditRequest {
		t.Fatalf("edit rejections must be audited")
	}
	if f.audit.entries[0].Details == nil || *f.audit.entries[0].Details != "implausible value" {
		t.Fatalf("audit entry should carry the rejection reason")
	}
}

func TestModerationRequiresModeratorRole(t *testing.T) {
	f := newModerationFixture(t)
	sub := seedSubmission(f, enums.SubmissionKindIdol, "Kim Minji")
	member := Moderator{ID: uuid.New(), Username: "fan", Role: enums.MemberRoleMember}

	_, err := f.service.ApproveSubmission(context.Background(), enums.SubmissionKindIdol, sub.ID, member)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for member, got %v", err)
	}
}

func TestBroadcastEmitsEventAndAudit(t *testing.T) {
	f := newModerationFixture(t)
	mod := Moderator{ID: uuid.New(), Username: "admin_sol", Role: enums.MemberRoleAdmin}

	if err := f.service.Broadcast(context.Background(), mod, "Maintenance", "Down at midnight KST."); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventBroadcastRequested {
		t.Fatalf("expected broadcast event queued")
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != enums.AuditActionBroadcastMessage {
		t.Fatalf("expected broadcast audited")
	}
}
