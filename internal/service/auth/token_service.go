package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService defines operations for issuing, validating and revoking
// access tokens. A token is bound to exactly one user, and revocation
// affects exactly one token.
type TokenService interface {
	// Issue creates a signed access token for the user.
	// Returns the token string or an error if token generation fails.
	Issue(ctx context.Context, userID uuid.UUID) (string, error)

	// Validate checks the provided token string and extracts the claims.
	// Returns the claims if the token is valid, or an error if validation
	// fails (expired, invalid signature, revoked, etc.).
	Validate(ctx context.Context, tokenString string) (*Claims, error)

	// Revoke invalidates exactly one token by its ID. Other tokens issued to
	// the same user remain valid.
	Revoke(ctx context.Context, tokenID uuid.UUID) error
}

// Claims represents the validated contents of an access token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID

	// TokenID is the token's unique identifier (the jti claim), used for
	// single-token revocation.
	TokenID uuid.UUID

	// IssuedAt and ExpiresAt mirror the corresponding registered claims.
	IssuedAt  time.Time
	ExpiresAt time.Time
}
