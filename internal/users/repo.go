package users

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/haneulpark/idolbase-backend/pkg/db/models"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user together with its username index row.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		index := &models.Username{
			Username: strings.ToLower(user.Username),
			UserID:   user.ID,
		}
		return tx.Create(index).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername loads a user by their exact username (case-insensitive).
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var index models.Username
	if err := r.db.WithContext(ctx).First(&index, "username = ?", strings.ToLower(username)).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, index.UserID)
}

// likePattern escapes LIKE metacharacters so a prefix containing % or _
// matches only itself.
var likePattern = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByUsernamePrefix returns up to limit users whose username starts
// with the given prefix, ordered lexicographically.
func (r *Repository) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]models.User, error) {
	var indexes []models.Username
	err := r.db.WithContext(ctx).
		Where(`username LIKE ? ESCAPE '\'`, likePattern.Replace(strings.ToLower(prefix))+"%").
		Order("username ASC").
		Limit(limit).
		Find(&indexes).Error
	if err != nil {
		return nil, err
	}
	if len(indexes) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(indexes))
	for _, idx := range indexes {
		ids = append(ids, idx.UserID)
	}
	var found []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	results := make([]models.User, 0, len(indexes))
	for _, idx := range indexes {
		if u, ok := byID[idx.UserID]; ok {
			results = append(results, u)
		}
	}
	return results, nil
}

// ListActiveIDs returns the ids of every active user. Broadcast fanout is the
// only caller; it chunks the result itself.
func (r *Repository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
