package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/starterkit/backend/internal/apperrors"
	"github.com/starterkit/backend/internal/models"
	"go.uber.org/zap"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique key violations
const pgUniqueViolation = "23505"

const pgUserColumns = `id, name, email, password_hash, is_active, age, role, last_login, created_at, updated_at`

// postgresUserRepository implements UserRepository for PostgreSQL
type postgresUserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *sqlx.DB, logger *zap.Logger) *postgresUserRepository {
	return &postgresUserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user and stores the generated ID on user.
// A unique key violation on email is reported as apperrors.ErrDuplicate.
func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, is_active, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowxContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("failed to create user: %w", apperrors.ErrDuplicate)
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + pgUserColumns + ` FROM users WHERE lower(email) = lower($1) LIMIT 1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user by ID
func (r *postgresUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `SELECT ` + pgUserColumns + ` FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("userId", userID))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *postgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// UpdateLastLogin stores the time of the user's latest successful login
func (r *postgresUserRepository) UpdateLastLogin(ctx context.Context, userID int, at time.Time) error {
	query := `UPDATE users SET last_login = $1 WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, at, userID); err != nil {
		r.logger.Error("failed to update last login", zap.Error(err), zap.Int("userId", userID))
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}
