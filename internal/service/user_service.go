package service

import (
	"context"

	"karmafeed/internal/cache"
	"karmafeed/internal/models"
	"karmafeed/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.UserProfile, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.UserProfile, error) {
	var profile *models.UserProfile
	err := cache.Aside(ctx, cache.UserKey(id), &profile, cache.UserTTL, func() error {
		var fetchErr error
		profile, fetchErr = s.userRepo.GetProfile(ctx, id)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}
