package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rfoster/tasklist-api/internal/service/auth"
)

// MockTokenService is a mock implementation of auth.TokenService. By default
// it issues opaque strings it can validate and revoke again; the function
// fields override individual methods.
type MockTokenService struct {
	mu     sync.Mutex
	issued map[string]auth.Claims

	IssueFn    func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
	RevokeFn   func(ctx context.Context, tokenID uuid.UUID) error
}

var _ auth.TokenService = (*MockTokenService)(nil)

// NewMockTokenService creates a new MockTokenService.
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{issued: make(map[string]auth.Claims)}
}

func (m *MockTokenService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.IssueFn != nil {
		return m.IssueFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	claims := auth.Claims{
		UserID:    userID,
		TokenID:   uuid.New(),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
	token := "mock-token-" + claims.TokenID.String()
	m.issued[token] = claims
	return token, nil
}

func (m *MockTokenService) Validate(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateFn != nil {
		return m.ValidateFn(ctx, tokenString)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	claims, ok := m.issued[tokenString]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	cp := claims
	return &cp, nil
}

func (m *MockTokenService) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, tokenID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, claims := range m.issued {
		if claims.TokenID == tokenID {
			delete(m.issued, token)
			return nil
		}
	}
	return auth.ErrRevokedToken
}
