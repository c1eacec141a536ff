package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rfoster/tasklist-api/internal/domain"
)

// TaskPage holds one page of tasks along with pagination metadata.
type TaskPage struct {
	Tasks   []*domain.Task
	Page    int
	PerPage int
	Total   int
}

// TaskStore defines the interface for task data persistence.
// All lookups are scoped to the owning user and exclude soft-deleted rows.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the owner does not exist.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetOwned retrieves a task by ID, restricted to the given owner.
	// Returns ErrTaskNotFound if the task does not exist, is soft-deleted,
	// or belongs to another user; callers cannot tell those cases apart.
	GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// Update persists changes to an existing task, restricted to the given
	// owner. Returns ErrTaskNotFound under the same rules as GetOwned.
	Update(ctx context.Context, task *domain.Task) error

	// SoftDelete marks a task as deleted without removing the row,
	// restricted to the given owner. Returns ErrTaskNotFound under the same
	// rules as GetOwned.
	SoftDelete(ctx context.Context, ownerID, id uuid.UUID) error

	// ListByOwner returns one page of the owner's live tasks ordered by ID.
	// Task IDs are time-ordered, so this is insertion order. Page numbers
	// start at 1.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page, perPage int) (*TaskPage, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) TaskStore
}
