package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/starterkit/backend/internal/apperrors"
	"github.com/starterkit/backend/internal/models"
)

// ProfileUserRepository is the interface that wraps methods for User table data access needed by profile service
type ProfileUserRepository interface {
	// GetByID retrieves a user by ID
	//
	// "userID" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.User, error)
}

// profileService implements ProfileService
type profileService struct {
	userRepo ProfileUserRepository
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo ProfileUserRepository) *profileService {
	return &profileService{
		userRepo: userRepo,
	}
}

// GetUser returns the user an authenticated request belongs to.
// A deleted or deactivated user is rejected as unauthenticated.
func (s *profileService) GetUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	return user, nil
}
