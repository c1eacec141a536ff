package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rfoster/tasklist-api/internal/platform/logger"
	"github.com/rfoster/tasklist-api/internal/store"
)

// TokenStore implements the store.TokenStore interface using a PostgreSQL
// database as the storage backend. Each row represents one live access token;
// revocation deletes the row.
type TokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTokenStore creates a new PostgreSQL implementation of the TokenStore
// interface. If logger is nil, a default logger will be used.
func NewTokenStore(db store.DBTX, log *slog.Logger) *TokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &TokenStore{
		db:     db,
		logger: log.With(slog.String("component", "token_store")),
	}
}

// Ensure TokenStore implements store.TokenStore interface
var _ store.TokenStore = (*TokenStore)(nil)

// Create implements store.TokenStore.Create
func (s *TokenStore) Create(ctx context.Context, token *store.AuthToken) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO auth_tokens (id, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		token.ID,
		token.UserID,
		token.CreatedAt,
		token.ExpiresAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, token.UserID)
		}
		log.Error("failed to create auth token",
			slog.String("error", err.Error()),
			slog.String("token_id", token.ID.String()))
		return MapError(err)
	}

	log.Debug("auth token created",
		slog.String("token_id", token.ID.String()),
		slog.String("user_id", token.UserID.String()))
	return nil
}

// Get implements store.TokenStore.Get
// Returns store.ErrTokenNotFound if the token was revoked or never issued.
func (s *TokenStore) Get(ctx context.Context, id uuid.UUID) (*store.AuthToken, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, created_at, expires_at
		FROM auth_tokens
		WHERE id = $1
	`

	var token store.AuthToken
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&token.ID,
		&token.UserID,
		&token.CreatedAt,
		&token.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("auth token not found", slog.String("token_id", id.String()))
			return nil, store.ErrTokenNotFound
		}
		log.Error("failed to get auth token",
			slog.String("error", err.Error()),
			slog.String("token_id", id.String()))
		return nil, MapError(err)
	}

	return &token, nil
}

// Delete implements store.TokenStore.Delete
// Returns store.ErrTokenNotFound if the token does not exist.
func (s *TokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM auth_tokens
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete auth token",
			slog.String("error", err.Error()),
			slog.String("token_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "token"); err != nil {
		return store.ErrTokenNotFound
	}

	log.Info("auth token revoked",
		slog.String("token_id", id.String()))
	return nil
}

// WithTx implements store.TokenStore.WithTx
func (s *TokenStore) WithTx(tx *sql.Tx) store.TokenStore {
	return &TokenStore{
		db:     tx,
		logger: s.logger,
	}
}
