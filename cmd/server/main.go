// Package main implements the entry point for the task API server:
// user registration/login with throttled credential checks and
// per-user task CRUD.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/rfoster/tasklist-api/internal/config"
	"github.com/rfoster/tasklist-api/internal/platform/logger"
	"github.com/rfoster/tasklist-api/internal/platform/postgres"
	platformredis "github.com/rfoster/tasklist-api/internal/platform/redis"
	"github.com/rfoster/tasklist-api/internal/service"
	"github.com/rfoster/tasklist-api/internal/service/auth"
	"github.com/rfoster/tasklist-api/migrations"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run wires configuration, logging, storage and services together and runs
// the HTTP server until shutdown.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	ctx := context.Background()

	db, err := setupDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", "error", err)
		}
	}()

	if err := runMigrations(db); err != nil {
		return err
	}

	rdb, err := platformredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			appLogger.Error("failed to close redis client", "error", err)
		}
	}()

	// Stores
	userStore := postgres.NewUserStore(db, appLogger)
	taskStore := postgres.NewTaskStore(db, appLogger)
	tokenStore := postgres.NewTokenStore(db, appLogger)
	attemptStore := platformredis.NewAttemptStore(rdb, appLogger)

	// Services
	tokenService, err := auth.NewTokenService(cfg.Auth, tokenStore)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}
	throttle := auth.NewLoginThrottle(
		attemptStore,
		cfg.Auth.LoginMaxAttempts,
		time.Duration(cfg.Auth.LoginWindowSeconds)*time.Second,
	)
	authService := auth.NewService(
		db,
		userStore,
		tokenService,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewBcryptVerifier(),
		throttle,
		appLogger,
	)
	taskService := service.NewTaskService(db, taskStore, appLogger)

	router := setupRouter(authService, taskService, userStore, tokenService, appLogger)

	return startHTTPServer(ctx, cfg.Server.Port, router, appLogger)
}

// setupDatabase opens the PostgreSQL connection through the pgx stdlib
// driver and configures the pool.
func setupDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations applies the embedded goose migrations.
func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database migrations applied")
	return nil
}
