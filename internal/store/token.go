package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// AuthToken is a persisted record of an issued access token. The token itself
// is a signed JWT; only its jti is stored here so that individual tokens can
// be revoked. A missing row means the token is no longer valid.
type AuthToken struct {
	ID        uuid.UUID // the token's jti claim
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TokenStore defines the interface for auth token persistence.
type TokenStore interface {
	// Create records a newly issued token.
	Create(ctx context.Context, token *AuthToken) error

	// Get retrieves a token record by its ID (jti).
	// Returns ErrTokenNotFound if the token was revoked or never issued.
	Get(ctx context.Context, id uuid.UUID) (*AuthToken, error)

	// Delete revokes exactly one token by removing its record.
	// Returns ErrTokenNotFound if the token does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TokenStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) TokenStore
}
