package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	authmiddleware "github.com/starterkit/backend/internal/auth/middleware"
	"github.com/starterkit/backend/internal/auth/service"
	"github.com/starterkit/backend/internal/clock"
	"github.com/starterkit/backend/internal/config"
	"github.com/starterkit/backend/internal/events"
	"github.com/starterkit/backend/internal/handlers"
	"github.com/starterkit/backend/internal/logger"
	loggerMiddleware "github.com/starterkit/backend/internal/logger/middleware"
	sharedMiddleware "github.com/starterkit/backend/internal/middleware"
	"github.com/starterkit/backend/internal/repositories"
	"github.com/starterkit/backend/internal/services"
	"github.com/starterkit/backend/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// migrationsTable keeps this service's migration history apart from other schemas in the same database
const migrationsTable = "auth_schema_migrations"

// userStore is implemented by both the MySQL and the PostgreSQL user repositories
type userStore interface {
	services.UserRepository
	services.ProfileUserRepository
	events.LastLoginStore
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting auth service", zap.String("db_driver", cfg.Database.Driver))

	// Connect to database
	db, err := connectDB(cfg.Database.Driver, cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db, cfg.Database.Driver); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	var userRepo userStore
	if cfg.Database.Driver == config.DriverPostgres {
		userRepo = repositories.NewPostgresUserRepository(sqlx.NewDb(db, "pgx"), logger.Logger)
	} else {
		userRepo = repositories.NewUserRepository(db, logger.Logger)
	}

	// Optional Redis backed sessions and login guard
	var (
		sessionCreator handlers.SessionCreator
		sessionLookup  authmiddleware.SessionLookup
		loginGuard     services.LoginGuard
	)
	if cfg.RedisEnabled() {
		redisClient, err := connectRedis(cfg)
		if err != nil {
			logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		sessionRepo := repositories.NewSessionRepository(redisClient, cfg.Session.TTL, logger.Logger)
		sessionCreator = sessionRepo
		sessionLookup = sessionRepo
		loginGuard = repositories.NewLockoutRepository(redisClient, logger.Logger)
	}

	// Login observers
	observers := []events.LoginObserver{
		events.NewLastLoginRecorder(userRepo),
		events.NewLogObserver(logger.Logger),
	}
	if cfg.NATSURL != "" {
		nc, err := events.ConnectNats(cfg.NATSURL)
		if err != nil {
			logger.Logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Drain()

		observers = append(observers, events.NewNatsPublisher(nc, logger.Logger))
	}
	notifier := events.NewNotifier(logger.Logger, observers...)

	// Initialize JWT token generator
	clk := clock.Real{}
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, clk)

	// Initialize services
	authService := services.NewAuthService(
		userRepo,
		service.NewBcryptHasher(bcrypt.DefaultCost),
		tokenGenerator,
		validation.New(),
		notifier,
		loginGuard,
		clk,
		logger.Logger,
	)
	profileService := services.NewProfileService(userRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessionCreator, logger.Logger)
	profileHandler := handlers.NewProfileHandler(profileService, logger.Logger)

	// Initialize auth middleware
	authMiddleware := authmiddleware.AuthMiddleware(tokenGenerator, sessionLookup, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(cfg.MaxRequestSize))

	// Scope router to /api
	r.Route("/api", func(r chi.Router) {
		// Register auth routes
		authHandler.RegisterRoutes(r)
		// Register identity lookup
		profileHandler.RegisterRoutes(r, authMiddleware)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(driver, dsn string) (*sql.DB, error) {
	driverName := "mysql"
	if driver == config.DriverPostgres {
		driverName = "pgx"
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// connectRedis connects to Redis and verifies the connection
func connectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// runMigrations runs database migrations for the configured driver
func runMigrations(db *sql.DB, driver string) error {
	var (
		dbDriver database.Driver
		err      error
	)
	if driver == config.DriverPostgres {
		dbDriver, err = migratepgx.WithInstance(db, &migratepgx.Config{MigrationsTable: migrationsTable})
	} else {
		dbDriver, err = mysql.WithInstance(db, &mysql.Config{MigrationsTable: migrationsTable})
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations/" + driver
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations/" + driver
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, driver, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
