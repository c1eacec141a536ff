package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rfoster/tasklist-api/internal/domain"
	"github.com/rfoster/tasklist-api/internal/store"
)

// MockTaskStore is a mock implementation of store.TaskStore backed by an
// in-memory map. It mirrors the real store's scoping rules: lookups are
// restricted to the owner and soft-deleted tasks are invisible. Individual
// methods can be overridden through the function fields.
type MockTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	CreateFn      func(ctx context.Context, task *domain.Task) error
	GetOwnedFn    func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
	UpdateFn      func(ctx context.Context, task *domain.Task) error
	SoftDeleteFn  func(ctx context.Context, ownerID, id uuid.UUID) error
	ListByOwnerFn func(ctx context.Context, ownerID uuid.UUID, page, perPage int) (*store.TaskPage, error)
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a new empty MockTaskStore.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	// The real store validates before writing; keep that visible to callers.
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := *task
	m.tasks[t.ID] = &t
	return nil
}

func (m *MockTaskStore) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	if m.GetOwnedFn != nil {
		return m.GetOwnedFn(ctx, ownerID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != ownerID || t.IsDeleted() {
		return nil, store.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID || existing.IsDeleted() {
		return store.ErrTaskNotFound
	}
	t := *task
	m.tasks[t.ID] = &t
	return nil
}

func (m *MockTaskStore) SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(ctx, ownerID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != ownerID || t.IsDeleted() {
		return store.ErrTaskNotFound
	}
	now := time.Now().UTC()
	t.DeletedAt = &now
	return nil
}

func (m *MockTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, perPage int) (*store.TaskPage, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID, page, perPage)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var live []*domain.Task
	for _, t := range m.tasks {
		if t.UserID == ownerID && !t.IsDeleted() {
			cp := *t
			live = append(live, &cp)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		return live[i].ID.String() < live[j].ID.String()
	})
	total := len(live)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return &store.TaskPage{
		Tasks:   live[start:end],
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}, nil
}

// WithTx returns the store itself; the mock has no transaction state.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return m }
