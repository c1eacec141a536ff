package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rfoster/tasklist-api/internal/config"
	"github.com/rfoster/tasklist-api/internal/platform/logger"
	"github.com/rfoster/tasklist-api/internal/store"
)

// hmacTokenService implements TokenService using HMAC-SHA signed JWTs whose
// jti is persisted through a store.TokenStore. A token is only accepted if
// its signature checks out AND its jti row is still present; deleting the
// row revokes that single token.
type hmacTokenService struct {
	signingKey []byte
	lifetime   time.Duration
	tokens     store.TokenStore
	timeFunc   func() time.Time // Injectable for testing
	clockSkew  time.Duration    // Allowed time difference to handle clock drift
}

// tokenClaims defines the structure of the JWT claims we use.
type tokenClaims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// Ensure hmacTokenService implements TokenService interface
var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a new token service using HMAC-SHA signing with
// revocation records kept in the given TokenStore.
func NewTokenService(cfg config.AuthConfig, tokens store.TokenStore) (TokenService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}

	return &hmacTokenService{
		signingKey: []byte(cfg.JWTSecret),
		lifetime:   time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		tokens:     tokens,
		timeFunc:   time.Now,
		clockSkew:  2 * time.Minute,
	}, nil
}

// Issue creates a signed access token bound to the user and records its jti.
func (s *hmacTokenService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()
	expiresAt := now.Add(s.lifetime)
	tokenID := uuid.New()

	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        tokenID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign access token",
			"error", err,
			"user_id", userID)
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	// Persist the jti so this token can be revoked individually.
	record := &store.AuthToken{
		ID:        tokenID,
		UserID:    userID,
		CreatedAt: now.UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		log.Error("failed to record issued token",
			"error", err,
			"user_id", userID,
			"token_id", tokenID)
		return "", fmt.Errorf("failed to record issued token: %w", err)
	}

	return signedToken, nil
}

// Validate checks the token signature and time claims, then requires the
// jti record to still exist. Returns ErrRevokedToken when the record is gone.
func (s *hmacTokenService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token validation failed", "error", err)
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	tokenID, err := uuid.Parse(claims.ID)
	if err != nil || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	// The signature alone is not enough: the token must not have been
	// revoked since issuance.
	if _, err := s.tokens.Get(ctx, tokenID); err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			log.Debug("token validation failed: token revoked",
				"token_id", tokenID)
			return nil, ErrRevokedToken
		}
		return nil, fmt.Errorf("failed to check token record: %w", err)
	}

	result := &Claims{
		UserID:  claims.UserID,
		TokenID: tokenID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}

// Revoke deletes the token's jti record, invalidating exactly that token.
func (s *hmacTokenService) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	if err := s.tokens.Delete(ctx, tokenID); err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return ErrRevokedToken
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
