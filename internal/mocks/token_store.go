package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/rfoster/tasklist-api/internal/store"
)

// MockTokenStore is an in-memory implementation of store.TokenStore.
type MockTokenStore struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*store.AuthToken

	CreateFn func(ctx context.Context, token *store.AuthToken) error
	GetFn    func(ctx context.Context, id uuid.UUID) (*store.AuthToken, error)
	DeleteFn func(ctx context.Context, id uuid.UUID) error
}

var _ store.TokenStore = (*MockTokenStore)(nil)

// NewMockTokenStore creates a new empty MockTokenStore.
func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{tokens: make(map[uuid.UUID]*store.AuthToken)}
}

// Len reports how many token records are currently held.
func (m *MockTokenStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

func (m *MockTokenStore) Create(ctx context.Context, token *store.AuthToken) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := *token
	m.tokens[t.ID] = &t
	return nil
}

func (m *MockTokenStore) Get(ctx context.Context, id uuid.UUID) (*store.AuthToken, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return nil, store.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[id]; !ok {
		return store.ErrTokenNotFound
	}
	delete(m.tokens, id)
	return nil
}

// WithTx returns the store itself; the mock has no transaction state.
func (m *MockTokenStore) WithTx(tx *sql.Tx) store.TokenStore { return m }
