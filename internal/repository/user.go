package repository

import (
	"context"
	"errors"

	"karmafeed/internal/models"
	"karmafeed/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfile(ctx context.Context, id uint) (*models.UserProfile, error)
	List(ctx context.Context, limit, offset int) ([]models.UserProfile, error)
	UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error)
	Create(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

const userProfileSelect = "users.id, users.username, users.created_at, " +
	"(SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id) AS post_count, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.user_id = users.id) AS comment_count"

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err, "User", id)
	}
	return &user, nil
}

// GetByUsername returns nil, nil when no user has the given name.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetProfile(ctx context.Context, id uint) (*models.UserProfile, error) {
	defer observability.TrackQuery("select", "users")()

	var profiles []models.UserProfile
	if err := r.db.WithContext(ctx).
		Table("users").
		Select(userProfileSelect).
		Where("users.id = ?", id).
		Limit(1).
		Scan(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(profiles) == 0 {
		return nil, models.NewNotFoundError("User", id)
	}
	return &profiles[0], nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.UserProfile, error) {
	defer observability.TrackQuery("select", "users")()

	profiles := []models.UserProfile{}
	if err := r.db.WithContext(ctx).
		Table("users").
		Select(userProfileSelect).
		Order("users.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

// UsernamesByID resolves many user ids with a single IN read.
func (r *userRepository) UsernamesByID(ctx context.Context, ids []uint) (map[uint]string, error) {
	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	defer observability.TrackQuery("select", "users")()

	var users []models.User
	if err := r.db.WithContext(ctx).
		Select("id", "username").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("insert", "users")()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}
