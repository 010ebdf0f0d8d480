package audit

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

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	stmt := `
CREATE TABLE IF NOT EXISTS audit_logs (
  id TEXT PRIMARY KEY,
  action TEXT NOT NULL,
  target_id TEXT NOT NULL,
  target_type TEXT NOT NULL,
  user_id TEXT NOT NULL,
  user_name TEXT NOT NULL,
  changes TEXT,
  details TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(stmt).Error)
	return db
}

func TestAuditHistoryNewestFirst(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	moderator := uuid.New()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	for i, action := range []enums.AuditAction{
		enums.AuditActionApprovePendingIdol,
		enums.AuditActionApproveEditRequest,
		enums.AuditActionRejectEditRequest,
	} {
		entry := &models.AuditLogEntry{
			ID:         uuid.New(),
			Action:     action,
			TargetID:   "kim-minji",
			TargetType: string(enums.SubmissionKindIdol),
			UserID:     moderator,
			UserName:   "mod_hana",
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Append(ctx, entry))
	}

	entries, err := repo.ListByTarget(ctx, "idol", "kim-minji", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, enums.AuditActionRejectEditRequest, entries[0].Action)
	assert.Equal(t, enums.AuditActionApprovePendingIdol, entries[2].Action)
}

func TestAuditHistoryScopedToTarget(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, &models.AuditLogEntry{
		ID:         uuid.New(),
		Action:     enums.AuditActionApprovePendingGroup,
		TargetID:   "newjeans",
		TargetType: string(enums.SubmissionKindGroup),
		UserID:     uuid.New(),
		UserName:   "mod_hana",
		Changes:    dbtypes.FieldChanges{"debut": {Old: "", New: "2022-07-22"}},
	}))
	require.NoError(t, repo.Append(ctx, &models.AuditLogEntry{
		ID:         uuid.New(),
		Action:     enums.AuditActionApprovePendingIdol,
		TargetID:   "kim-minji",
		TargetType: string(enums.SubmissionKindIdol),
		UserID:     uuid.New(),
		UserName:   "mod_hana",
	}))

	entries, err := repo.ListByTarget(ctx, "group", "newjeans", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2022-07-22", entries[0].Changes["debut"].New)
}
