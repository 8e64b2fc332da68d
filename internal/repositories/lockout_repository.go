package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/starterkit/backend/internal/apperrors"
	"go.uber.org/zap"
)

const (
	lockoutPrefix         = "lockout:"
	defaultLockoutMessage = "This account has been locked. Please contact administrator."
)

// lockoutRepository reads account lockouts placed in Redis by operators.
// A key "lockout:<email>" blocks logins for that email; a non-empty value replaces the default message.
type lockoutRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewLockoutRepository creates a new Redis lockout repository
func NewLockoutRepository(client *redis.Client, logger *zap.Logger) *lockoutRepository {
	return &lockoutRepository{
		client: client,
		logger: logger,
	}
}

// CheckLogin returns a permission error when email is locked out
func (r *lockoutRepository) CheckLogin(ctx context.Context, email string) error {
	val, err := r.client.Get(ctx, lockoutPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		r.logger.Error("failed to check lockout", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("failed to check lockout: %w", err)
	}

	if val == "" {
		val = defaultLockoutMessage
	}
	return apperrors.PermissionDenied(val)
}
