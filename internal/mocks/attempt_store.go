package mocks

import (
	"context"
	"sync"
	"time"
)

type attemptEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryAttemptStore is an in-memory implementation of the login attempt
// counter with real expiry semantics. The clock is injectable through Now so
// tests can advance time past the decay window without sleeping.
type MemoryAttemptStore struct {
	mu      sync.Mutex
	entries map[string]attemptEntry

	// Now supplies the current time; defaults to time.Now.
	Now func() time.Time

	// Err, when set, is returned by every method. It simulates an
	// unreachable counter backend.
	Err error
}

// NewMemoryAttemptStore creates a new empty MemoryAttemptStore.
func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{
		entries: make(map[string]attemptEntry),
		Now:     time.Now,
	}
}

func (m *MemoryAttemptStore) Attempts(ctx context.Context, key string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !m.Now().Before(e.expiresAt) {
		return 0, nil
	}
	return e.count, nil
}

func (m *MemoryAttemptStore) RecordFailure(ctx context.Context, key string, window time.Duration) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	e, ok := m.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = attemptEntry{}
	}
	e.count++
	e.expiresAt = now.Add(window)
	m.entries[key] = e
	return e.count, nil
}

func (m *MemoryAttemptStore) Clear(ctx context.Context, key string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
