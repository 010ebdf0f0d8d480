package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/pkg/db/models"
	dbtypes "github.com/haneulpark/idolbase-backend/pkg/db/types"
	"github.com/haneulpark/idolbase-backend/pkg/enums"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, table := range []string{"idols", "groups"} {
		stmt := `
CREATE TABLE IF NOT EXISTS ` + table + ` (
  slug TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  profile TEXT NOT NULL DEFAULT '{}',
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestCatalogRepositorySelectsTableByKind(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	idol := &models.Entity{
		Slug:    "kim-minji",
		Name:    "Kim Minji",
		Profile: dbtypes.StringMap{"birthdate": "2004-05-07"},
	}
	group := &models.Entity{
		Slug:    "newjeans",
		Name:    "NewJeans",
		Profile: dbtypes.StringMap{"debut": "2022-07-22"},
	}

	require.NoError(t, repo.Create(ctx, enums.SubmissionKindIdol, idol))
	require.NoError(t, repo.Create(ctx, enums.SubmissionKindGroup, group))

	got, err := repo.Get(ctx, enums.SubmissionKindIdol, "kim-minji")
	require.NoError(t, err)
	assert.Equal(t, "Kim Minji", got.Name)
	assert.Equal(t, "2004-05-07", got.Profile["birthdate"])

	_, err = repo.Get(ctx, enums.SubmissionKindGroup, "kim-minji")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repo.Exists(ctx, enums.SubmissionKindGroup, "newjeans")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCatalogRepositorySaveUpdatesNameAndProfile(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	entity := &models.Entity{
		Slug:    "haerin",
		Name:    "Haerin",
		Profile: dbtypes.StringMap{"height": "160cm"},
	}
	require.NoError(t, repo.Create(ctx, enums.SubmissionKindIdol, entity))

	entity.Name = "Kang Haerin"
	entity.Profile["height"] = "162cm"
	require.NoError(t, repo.Save(ctx, enums.SubmissionKindIdol, entity))

	got, err := repo.Get(ctx, enums.SubmissionKindIdol, "haerin")
	require.NoError(t, err)
	assert.Equal(t, "Kang Haerin", got.Name)
	assert.Equal(t, "162cm", got.Profile["height"])
}

func TestCatalogRepositoryListOrdersByName(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Zuha", "Aria", "Minji"} {
		require.NoError(t, repo.Create(ctx, enums.SubmissionKindIdol, &models.Entity{
			Slug: name, Name: name, Profile: dbtypes.StringMap{},
		}))
	}

	listed, err := repo.List(ctx, enums.SubmissionKindIdol, 10)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "Aria", listed[0].Name)
	assert.Equal(t, "Minji", listed[1].Name)
	assert.Equal(t, "Zuha", listed[2].Name)
}
