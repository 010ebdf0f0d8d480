package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupNotificationTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	stmt := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  recipient_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  target_id TEXT,
  target_type TEXT,
  comment_id TEXT,
  read BOOLEAN NOT NULL DEFAULT FALSE,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(stmt).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, read bool, createdAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := db.Exec(
		"INSERT INTO notifications (id, recipient_id, type, title, message, read, created_at) VALUES (?, ?, 'system', 'title', 'message', ?, ?)",
		id, uuid.New(), read, createdAt,
	).Error
	require.NoError(t, err)
	return id
}

func TestDeleteOlderThanSparesUnread(t *testing.T) {
	db := setupNotificationTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cutoff := time.Now().UTC().Add(-30 * 24 * time.Hour)
	stale := cutoff.Add(-time.Hour)
	fresh := cutoff.Add(time.Hour)

	staleRead := seedNotification(t, db, true, stale)
	staleUnread := seedNotification(t, db, false, stale)
	freshRead := seedNotification(t, db, true, fresh)

	deleted, err := repo.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	var remaining []string
	require.NoError(t, db.Raw("SELECT id FROM notifications ORDER BY id").Scan(&remaining).Error)
	assert.NotContains(t, remaining, staleRead.String())
	assert.Contains(t, remaining, staleUnread.String())
	assert.Contains(t, remaining, freshRead.String())
}
