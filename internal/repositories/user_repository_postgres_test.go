package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/starterkit/backend/internal/apperrors"
	"github.com/starterkit/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupPostgresUserTestRepository creates a PostgreSQL user repository with a mock database
func setupPostgresUserTestRepository(t *testing.T) (*postgresUserRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresUserRepository(sqlx.NewDb(db, "sqlmock"), zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestPostgresUserRepository_Create(t *testing.T) {
	tests := []struct {
		name              string
		setupMock         func(sqlmock.Sqlmock)
		expectedError     bool
		expectedDuplicate bool
		expectedID        int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users (.+) RETURNING id`).
					WithArgs("Jane Doe", "jane@ex.com", "hashedpassword", true, models.RoleUser, testCreatedAt, testCreatedAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
			},
			expectedID: 11,
		},
		{
			name: "unique violation",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
			},
			expectedError:     true,
			expectedDuplicate: true,
		},
		{
			name: "other postgres error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pgconn.PgError{Code: "42P01", Message: "relation does not exist"})
			},
			expectedError: true,
		},
		{
			name: "connection error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(errors.New("connection refused"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupPostgresUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)
			user := newTestUser()

			err := repo.Create(context.Background(), user)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedDuplicate, errors.Is(err, apperrors.ErrDuplicate))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, user.ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresUserRepository_GetByEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupPostgresUserTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(userColumns).
			AddRow(4, "Jane Doe", "jane@ex.com", "hash", true, nil, "user", nil, testCreatedAt, testCreatedAt)
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE lower\(email\) = lower\(\$1\) LIMIT 1`).
			WithArgs("jane@ex.com").
			WillReturnRows(rows)

		user, err := repo.GetByEmail(context.Background(), "jane@ex.com")

		require.NoError(t, err)
		assert.Equal(t, 4, user.ID)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.True(t, user.IsActive)
		assert.Nil(t, user.Age)
		assert.Nil(t, user.LastLogin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupPostgresUserTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByEmail(context.Background(), "ghost@ex.com")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupPostgresUserTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WillReturnError(errors.New("database error"))

		user, err := repo.GetByEmail(context.Background(), "jane@ex.com")

		assert.Nil(t, user)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserRepository_GetByID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupPostgresUserTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows(userColumns).
			AddRow(4, "Jane Doe", "jane@ex.com", "hash", true, 41, "admin", testCreatedAt, testCreatedAt, testCreatedAt)
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs(4).
			WillReturnRows(rows)

		user, err := repo.GetByID(context.Background(), 4)

		require.NoError(t, err)
		require.NotNil(t, user.Age)
		assert.Equal(t, 41, *user.Age)
		assert.Equal(t, models.RoleAdmin, user.Role)
		require.NotNil(t, user.LastLogin)
		assert.Equal(t, testCreatedAt, *user.LastLogin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupPostgresUserTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs(4).
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByID(context.Background(), 4)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestPostgresUserRepository_ExistsByEmail(t *testing.T) {
	repo, mock, cleanup := setupPostgresUserTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("jane@ex.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("jane@ex.com").
		WillReturnError(errors.New("database error"))

	exists, err := repo.ExistsByEmail(context.Background(), "jane@ex.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(context.Background(), "jane@ex.com")
	assert.Error(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_UpdateLastLogin(t *testing.T) {
	repo, mock, cleanup := setupPostgresUserTestRepository(t)
	defer cleanup()

	at := testCreatedAt.Add(time.Minute)
	mock.ExpectExec(`UPDATE users SET last_login = \$1 WHERE id = \$2`).
		WithArgs(at, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateLastLogin(context.Background(), 4, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
