package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starterkit/backend/internal/apperrors"
	"github.com/starterkit/backend/internal/clock"
	"github.com/starterkit/backend/internal/events"
	"github.com/starterkit/backend/internal/models"
	"go.uber.org/zap"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database and sets its ID.
	//
	// "user" parameter is used to create a new user.
	//
	// If a user with the same email already exists, an error wrapping apperrors.ErrDuplicate will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by email.
	//
	// "email" parameter is used to retrieve a user by email.
	//
	// If user with such email does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// "email" parameter is used to check if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// PasswordHasher is the interface that wraps methods for password hashing
type PasswordHasher interface {
	// Method Hash returns a one-way hash of the password.
	Hash(password string) (string, error)
	// Method Verify reports whether the password matches the hash.
	//
	// A mismatch is reported as "false" with a nil error.
	Verify(hash, password string) (bool, error)
	// Method VerifyDummy runs a verification against a throwaway hash and discards the result.
	VerifyDummy(password string)
}

// TokenIssuer is the interface that wraps the GenerateAccessToken method.
type TokenIssuer interface {
	// Method GenerateAccessToken issues a signed access token for the user.
	GenerateAccessToken(userID int, role string) (string, error)
}

// RequestValidator is the interface that wraps the Struct method.
type RequestValidator interface {
	// Method Struct validates the request.
	//
	// Field failures are returned as *apperrors.ValidationError.
	Struct(s any) error
}

// LoginNotifier is the interface that wraps the Notify method.
type LoginNotifier interface {
	// Method Notify tells every login observer that a user logged in.
	Notify(ctx context.Context, event events.LoginEvent)
}

// LoginGuard is the interface that wraps the CheckLogin method.
type LoginGuard interface {
	// Method CheckLogin decides whether the account may log in.
	//
	// "email" parameter is the normalized email of the account.
	//
	// A refused login is reported as a 403 *apperrors.Error.
	CheckLogin(ctx context.Context, email string) error
}

// authService implements AuthService
type authService struct {
	userRepo       UserRepository
	hasher         PasswordHasher
	tokenGenerator TokenIssuer
	validator      RequestValidator
	notifier       LoginNotifier
	guard          LoginGuard
	clock          clock.Clock
	logger         *zap.Logger
}

// NewAuthService creates a new auth service.
// guard may be nil when no login guard is configured.
func NewAuthService(
	userRepo UserRepository,
	hasher PasswordHasher,
	tokenGenerator TokenIssuer,
	validator RequestValidator,
	notifier LoginNotifier,
	guard LoginGuard,
	clk clock.Clock,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		tokenGenerator: tokenGenerator,
		validator:      validator,
		notifier:       notifier,
		guard:          guard,
		clock:          clk,
		logger:         logger,
	}
}

// Register creates a new active user and logs it in
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest, meta models.RequestMeta) (*models.AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrUserAlreadyExists
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Stored columns keep microseconds
	now := s.clock.Now().Truncate(time.Microsecond)
	user := &models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.Int("userId", user.ID))

	return s.completeLogin(ctx, user, meta)
}

// Login verifies the credentials and issues an access token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest, meta models.RequestMeta) (*models.AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(req.Email)

	if s.guard != nil {
		if err := s.guard.CheckLogin(ctx, email); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.hasher.VerifyDummy(req.Password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok || !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.completeLogin(ctx, user, meta)
}

// completeLogin issues the access token and notifies login observers
func (s *authService) completeLogin(ctx context.Context, user *models.User, meta models.RequestMeta) (*models.AuthResult, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.notifier.Notify(ctx, events.LoginEvent{
		UserID:     user.ID,
		Email:      user.Email,
		At:         s.clock.Now(),
		RequestID:  meta.RequestID,
		RemoteAddr: meta.RemoteAddr,
		UserAgent:  meta.UserAgent,
	})

	return &models.AuthResult{
		AccessToken: accessToken,
		User:        user,
	}, nil
}
