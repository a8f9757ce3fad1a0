package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tripwell/trippy-server/internal/apperr"
	"github.com/tripwell/trippy-server/internal/logger"
	"github.com/tripwell/trippy-server/internal/store"
	"github.com/tripwell/trippy-server/models"
)

// userService is the concrete implementation of UserService.
type userService struct {
	userRepository store.UserRepository
	logger         *logger.Logger
}

// NewUserService constructs a UserService wired to the given UserRepository.
func NewUserService(userRepository store.UserRepository, logger *logger.Logger) UserService {
	return &userService{
		userRepository: userRepository,
		logger:         logger,
	}
}

// GetUser resolves an active account by id.
func (s *userService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.User{}, apperr.NotFound("no user found with that ID")
		}
		return models.User{}, fmt.Errorf("user lookup failed: %w", err)
	}

	return user, nil
}

// UpdateProfile updates the caller's name and email. Password changes go
// through AuthService.UpdatePassword and are rejected here by the handler
// layer before this method is reached.
func (s *userService) UpdateProfile(ctx context.Context, userID int64, name, email string) (models.User, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return models.User{}, apperr.ValidationFailed("name and email must not be empty")
	}

	updated, err := s.userRepository.UpdateProfile(ctx, models.User{
		UserID: userID,
		Name:   strings.TrimSpace(name),
		Email:  strings.ToLower(strings.TrimSpace(email)),
	})
	if err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return models.User{}, apperr.NotFound("no user found with that ID")
		}
		log.Err(err).Int64("user_id", userID).Msg("profile update failed")
		return models.User{}, fmt.Errorf("profile update failed: %w", err)
	}

	return updated, nil
}

// DeactivateUser soft-deletes the caller's account.
func (s *userService) DeactivateUser(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if err := s.userRepository.DeactivateUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return apperr.NotFound("no user found with that ID")
		}
		log.Err(err).Int64("user_id", userID).Msg("user deactivation failed")
		return fmt.Errorf("user deactivation failed: %w", err)
	}

	return nil
}

// ListUsers lists accounts according to the raw list parameters.
func (s *userService) ListUsers(ctx context.Context, params url.Values) ([]models.User, error) {
	users, err := s.userRepository.SelectUsers(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("user list failed: %w", err)
	}

	return users, nil
}
