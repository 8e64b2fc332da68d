package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/starterkit/backend/internal/apperrors"
	"go.uber.org/zap"
)

const sessionPrefix = "session:"

// sessionRepository stores server-side login sessions in Redis
type sessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSessionRepository creates a new Redis session repository
func NewSessionRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *sessionRepository {
	return &sessionRepository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Create opens a session for userID and returns the session ID
func (r *sessionRepository) Create(ctx context.Context, userID int) (string, error) {
	sessionID := uuid.NewString()

	if err := r.client.Set(ctx, sessionPrefix+sessionID, userID, r.ttl).Err(); err != nil {
		r.logger.Error("failed to create session", zap.Error(err), zap.Int("userId", userID))
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return sessionID, nil
}

// GetUserID returns the user owning sessionID.
// Unknown or expired sessions are reported as apperrors.ErrNotFound.
func (r *sessionRepository) GetUserID(ctx context.Context, sessionID string) (int, error) {
	val, err := r.client.Get(ctx, sessionPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("session not found: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get session", zap.Error(err))
		return 0, fmt.Errorf("failed to get session: %w", err)
	}

	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("malformed session value: %w", err)
	}

	return userID, nil
}

// TTL returns the lifetime of new sessions
func (r *sessionRepository) TTL() time.Duration {
	return r.ttl
}
