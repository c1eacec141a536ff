// Package service contains the application services that sit between the
// HTTP handlers and the stores.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rfoster/tasklist-api/internal/domain"
	"github.com/rfoster/tasklist-api/internal/platform/logger"
	"github.com/rfoster/tasklist-api/internal/store"
)

// TaskPageSize is the fixed page size for task listings.
const TaskPageSize = 10

// UpdateTaskParams carries the fields of a task update. Nil pointers leave
// the corresponding field unchanged.
type UpdateTaskParams struct {
	Description *string
	Completed   *bool
	Date        *domain.Date
}

// TaskService performs ownership-scoped CRUD over tasks. Every mutating
// operation runs in its own transaction; each holds a single statement
// today, but the boundary keeps later multi-statement changes safe.
type TaskService struct {
	db     *sql.DB
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a TaskService. If log is nil, a default logger will
// be used.
func NewTaskService(db *sql.DB, tasks store.TaskStore, log *slog.Logger) *TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{
		db:     db,
		tasks:  tasks,
		logger: log.With(slog.String("component", "task_service")),
	}
}

// Create builds a new task owned by ownerID and persists it.
func (s *TaskService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	description string,
	date *domain.Date,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, description, date)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.tasks.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}

	return task, nil
}

// Update applies the given field changes to a task owned by ownerID.
// Returns (nil, nil) when no such task is owned by the caller; "not found"
// and "not yours" are deliberately indistinguishable.
func (s *TaskService) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	params UpdateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.GetOwned(ctx, ownerID, taskID)
		if err != nil {
			return err
		}

		if params.Description != nil {
			task.Description = *params.Description
		}
		if params.Completed != nil {
			task.Completed = *params.Completed
		}
		if params.Date != nil {
			task.Date = params.Date
		}
		task.UpdatedAt = time.Now().UTC()

		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})

	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, nil
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	return updated, nil
}

// Delete soft-deletes a task owned by ownerID.
// Returns store.ErrTaskNotFound when the task is absent, already deleted,
// or owned by someone else.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.tasks.WithTx(tx).SoftDelete(ctx, ownerID, taskID)
	})
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return err
		}
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// Get retrieves a single live task owned by ownerID.
// Returns store.ErrTaskNotFound under the same rules as Delete.
// Reads are single statements and run outside RunInTransaction; only
// mutations take the transaction wrapper.
func (s *TaskService) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetOwned(ctx, ownerID, taskID)
}

// List returns one page of the owner's tasks at the fixed page size,
// excluding soft-deleted rows, in insertion order. Like Get, it reads
// outside RunInTransaction.
func (s *TaskService) List(
	ctx context.Context,
	ownerID uuid.UUID,
	page int,
) (*store.TaskPage, error) {
	return s.tasks.ListByOwner(ctx, ownerID, page, TaskPageSize)
}
