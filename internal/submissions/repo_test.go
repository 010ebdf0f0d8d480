package submissions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

func setupSubmissionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, table := range []string{"pending_idols", "pending_groups"} {
		stmt := `
CREATE TABLE IF NOT EXISTS ` + table + ` (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  profile TEXT NOT NULL DEFAULT '{}',
  status TEXT NOT NULL DEFAULT 'pending',
  submitted_by TEXT,
  submitted_name TEXT,
  submitted_at DATETIME,
  reviewed_by TEXT,
  reviewed_at DATETIME,
  review_notes TEXT,
  committed_slug TEXT
);`
		require.NoError(t, db.Exec(stmt).Error)
	}

	editRequests := `
CREATE TABLE IF NOT EXISTS edit_requests (
  id TEXT PRIMARY KEY,
  target_type TEXT NOT NULL,
  target_slug TEXT NOT NULL,
  target_name TEXT NOT NULL,
  changes TEXT NOT NULL,
  reason TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  submitted_by TEXT,
  submitted_name TEXT,
  submitted_at DATETIME,
  reviewed_by TEXT,
  reviewed_at DATETIME,
  review_notes TEXT
);`
	require.NoError(t, db.Exec(editRequests).Error)
	return db
}

func seedPending(t *testing.T, repo Repository, kind enums.SubmissionKind, name string, at time.Time) *models.PendingSubmission {
	t.Helper()
	sub := &models.PendingSubmission{
		ID:          uuid.New(),
		Name:        name,
		Profile:     dbtypes.StringMap{},
		Status:      enums.SubmissionStatusPending,
		SubmittedAt: at,
	}
	require.NoError(t, repo.CreatePending(context.Background(), kind, sub))
	return sub
}

func TestListPendingReturnsNewestFirst(t *testing.T) {
	db := setupSubmissionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedPending(t, repo, enums.SubmissionKindIdol, "third", base.Add(2*time.Hour))
	seedPending(t, repo, enums.SubmissionKindIdol, "first", base)
	seedPending(t, repo, enums.SubmissionKindIdol, "second", base.Add(time.Hour))

	pending, err := repo.ListPending(ctx, enums.SubmissionKindIdol, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, "third", pending[0].Name)
	assert.Equal(t, "second", pending[1].Name)
	assert.Equal(t, "first", pending[2].Name)
}

func TestListPendingScopedByKind(t *testing.T) {
	db := setupSubmissionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedPending(t, repo, enums.SubmissionKindIdol, "an idol", time.Now().UTC())
	seedPending(t, repo, enums.SubmissionKindGroup, "a group", time.Now().UTC())

	idols, err := repo.ListPending(ctx, enums.SubmissionKindIdol, 10)
	require.NoError(t, err)
	require.Len(t, idols, 1)
	assert.Equal(t, "an idol", idols[0].Name)

	groups, err := repo.ListPending(ctx, enums.SubmissionKindGroup, 10)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "a group", groups[0].Name)
}

func TestMarkPendingReviewedIsTerminal(t *testing.T) {
	db := setupSubmissionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sub := seedPending(t, repo, enums.SubmissionKindIdol, "Kim Minji", time.Now().UTC())

	slug := "kim-minji"
	update := ReviewUpdate{
		Status:        enums.SubmissionStatusApproved,
		ReviewedBy:    uuid.New(),
		ReviewedAt:    time.Now().UTC(),
		CommittedSlug: &slug,
	}
	require.NoError(t, repo.MarkPendingReviewed(ctx, enums.SubmissionKindIdol, sub.ID, update))

	// A second decision on the same submission must not go through.
	err := repo.MarkPendingReviewed(ctx, enums.SubmissionKindIdol, sub.ID, ReviewUpdate{
		Status:     enums.SubmissionStatusRejected,
		ReviewedBy: uuid.New(),
		ReviewedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.GetPending(ctx, enums.SubmissionKindIdol, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SubmissionStatusApproved, got.Status)
	require.NotNil(t, got.CommittedSlug)
	assert.Equal(t, "kim-minji", *got.CommittedSlug)
}

func TestEditRequestLifecycle(t *testing.T) {
	db := setupSubmissionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	request := &models.EditRequest{
		ID:         uuid.New(),
		TargetType: enums.SubmissionKindIdol,
		TargetSlug: "haerin",
		TargetName: "Kang Haerin",
		Changes: dbtypes.FieldChanges{
			"height": {Old: "160cm", New: "162cm"},
		},
		Status:      enums.SubmissionStatusPending,
		SubmittedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateEditRequest(ctx, request))

	listed, err := repo.ListEditRequests(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "haerin", listed[0].TargetSlug)
	assert.Equal(t, "162cm", listed[0].Changes["height"].New)

	notes := "matches official profile"
	require.NoError(t, repo.MarkEditRequestReviewed(ctx, request.ID, ReviewUpdate{
		Status:      enums.SubmissionStatusApproved,
		ReviewedBy:  uuid.New(),
		ReviewedAt:  time.Now().UTC(),
		ReviewNotes: &notes,
	}))

	got, err := repo.GetEditRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SubmissionStatusApproved, got.Status)

	// Approved requests leave the review queue.
	listed, err = repo.ListEditRequests(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestUpdatePendingProfileOnlyWhilePending(t *testing.T) {
	db := setupSubmissionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sub := seedPending(t, repo, enums.SubmissionKindIdol, "Kim Minji", time.Now().UTC())

	name := "Kim Min-ji"
	require.NoError(t, repo.UpdatePendingProfile(ctx, enums.SubmissionKindIdol, sub.ID, ProfileUpdate{
		Name:    &name,
		Profile: dbtypes.StringMap{"position": "leader"},
	}))

	got, err := repo.GetPending(ctx, enums.SubmissionKindIdol, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kim Min-ji", got.Name)
	assert.Equal(t, "leader", got.Profile["position"])

	require.NoError(t, repo.MarkPendingReviewed(ctx, enums.SubmissionKindIdol, sub.ID, ReviewUpdate{
		Status:     enums.SubmissionStatusApproved,
		ReviewedBy: uuid.New(),
		ReviewedAt: time.Now().UTC(),
	}))

	err = repo.UpdatePendingProfile(ctx, enums.SubmissionKindIdol, sub.ID, ProfileUpdate{Name: &name})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
