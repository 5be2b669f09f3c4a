package repository

import (
	"context"
	"errors"
	"log/slog"

	"blogicum/internal/cache"
	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"gorm.io/gorm"
)

var profileColumns = []string{"username", "email", "first_name", "last_name", "updated_at"}

// ErrUsernameTaken is returned by Create and Update on a duplicate username.
var ErrUsernameTaken = models.NewValidationError("A user with that username already exists.")

// UserRepository defines user data operations.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetByUsername returns (nil, nil) when no user matches.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := readDB(r.db).WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrUsernameTaken
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Update writes the profile columns only. Users read through the cache carry
// no password hash, so a full-row save would wipe it.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(&models.User{ID: user.ID}).
		Select(profileColumns).
		Updates(user).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUsernameTaken
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	r.invalidateAuthoredPosts(ctx, user.ID)
	return nil
}

// invalidateAuthoredPosts drops cached posts that embed the old author row.
func (r *userRepository) invalidateAuthoredPosts(ctx context.Context, userID uint) {
	if cache.GetClient() == nil {
		return
	}
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		middleware.Logger.WarnContext(ctx, "listing authored posts for cache invalidation failed",
			slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
		return
	}
	for _, id := range ids {
		cache.InvalidatePost(ctx, id)
	}
}
