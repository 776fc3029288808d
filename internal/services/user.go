package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusevents/internal/domain"
)

type userService struct {
	userRepo domain.UserRepository
	media    domain.MediaStore
}

// NewUserService creates a UserService for profile reads and avatar uploads.
func NewUserService(userRepo domain.UserRepository, media domain.MediaStore) domain.UserService {
	return &userService{userRepo: userRepo, media: media}
}

func (s *userService) Me(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, caller domain.Caller, image *domain.Image) (*domain.User, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if err := image.Validate("avatar"); err != nil {
		return nil, err
	}
	url, err := s.media.Upload(ctx, domain.FolderAvatars, caller.ID, image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	if err := s.userRepo.UpdateImage(ctx, caller.ID, url, time.Now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}
	return s.Me(ctx, caller)
}
