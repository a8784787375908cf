package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"coworking/internal/auth"
	apperrors "coworking/internal/errors"
	"coworking/internal/model"
	"coworking/internal/repository"
)

// UserService exposes the administrative user operations used by the seed tool.
// Users are never cached so that deactivation is visible on the next request.
type UserService interface {
	EnsureAdmin(ctx context.Context, email, username, password string) (*model.User, error)
	SetActive(ctx context.Context, email string, active bool) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService over the user repository.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// EnsureAdmin creates an admin account or promotes and re-keys an existing one.
func (s *userService) EnsureAdmin(ctx context.Context, email, username, password string) (*model.User, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &model.User{
			Email:        email,
			Username:     username,
			PasswordHash: hashedPassword,
			Role:         model.RoleAdmin,
			IsActive:     true,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrUsernameTaken
			}
			return nil, fmt.Errorf("create admin: %w", err)
		}
		return user, nil
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	}

	user.PasswordHash = hashedPassword
	user.Role = model.RoleAdmin
	user.IsActive = true
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update admin: %w", err)
	}
	return user, nil
}

// SetActive flips the active flag of the user with the given e-mail.
func (s *userService) SetActive(ctx context.Context, email string, active bool) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.repo.SetActive(ctx, user.ID, active); err != nil {
		return nil, fmt.Errorf("set active: %w", err)
	}
	user.IsActive = active
	return user, nil
}
