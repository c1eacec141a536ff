package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfoster/tasklist-api/internal/domain"
	"github.com/rfoster/tasklist-api/internal/mocks"
	"github.com/rfoster/tasklist-api/internal/service"
	"github.com/rfoster/tasklist-api/internal/store"
)

func newTaskFixture(t *testing.T) (*service.TaskService, *mocks.MockTaskStore) {
	t.Helper()
	tasks := mocks.NewMockTaskStore()
	return service.NewTaskService(mocks.NewTxDB(), tasks, nil), tasks
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestTaskCreate(t *testing.T) {
	t.Parallel()

	svc, tasks := newTaskFixture(t)
	ownerID := uuid.New()
	due := domain.NewDate(2025, time.June, 1)

	created, err := svc.Create(context.Background(), ownerID, "water the plants", &due)
	require.NoError(t, err)
	assert.Equal(t, ownerID, created.UserID)
	assert.False(t, created.Completed)

	stored, err := tasks.GetOwned(context.Background(), ownerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "water the plants", stored.Description)
	require.NotNil(t, stored.Date)
	assert.Equal(t, "2025-06-01", stored.Date.String())

	t.Run("rejects empty description", func(t *testing.T) {
		_, err := svc.Create(context.Background(), ownerID, "", nil)
		assert.ErrorIs(t, err, domain.ErrEmptyDescription)
	})
}

func TestTaskUpdate(t *testing.T) {
	t.Parallel()

	t.Run("applies only the provided fields", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskFixture(t)
		ownerID := uuid.New()
		due := domain.NewDate(2025, time.June, 1)
		created, err := svc.Create(context.Background(), ownerID, "water the plants", &due)
		require.NoError(t, err)

		updated, err := svc.Update(context.Background(), ownerID, created.ID, service.UpdateTaskParams{
			Completed: boolPtr(true),
		})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.True(t, updated.Completed)
		assert.Equal(t, "water the plants", updated.Description, "unset fields stay as they were")
		require.NotNil(t, updated.Date)
		assert.Equal(t, "2025-06-01", updated.Date.String())

		updated, err = svc.Update(context.Background(), ownerID, created.ID, service.UpdateTaskParams{
			Description: strPtr("water the garden"),
		})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "water the garden", updated.Description)
		assert.True(t, updated.Completed)
	})

	t.Run("someone else's task yields nil and leaves the row alone", func(t *testing.T) {
		t.Parallel()
		svc, tasks := newTaskFixture(t)
		ownerID := uuid.New()
		intruderID := uuid.New()
		created, err := svc.Create(context.Background(), ownerID, "water the plants", nil)
		require.NoError(t, err)

		updated, err := svc.Update(context.Background(), intruderID, created.ID, service.UpdateTaskParams{
			Description: strPtr("hijacked"),
		})
		require.NoError(t, err)
		assert.Nil(t, updated)

		stored, err := tasks.GetOwned(context.Background(), ownerID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "water the plants", stored.Description)
	})

	t.Run("unknown task yields nil", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskFixture(t)
		updated, err := svc.Update(context.Background(), uuid.New(), uuid.New(), service.UpdateTaskParams{
			Completed: boolPtr(true),
		})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestTaskDelete(t *testing.T) {
	t.Parallel()

	t.Run("soft-deleted tasks disappear from reads", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskFixture(t)
		ownerID := uuid.New()
		created, err := svc.Create(context.Background(), ownerID, "water the plants", nil)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), ownerID, created.ID))

		_, err = svc.Get(context.Background(), ownerID, created.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		page, err := svc.List(context.Background(), ownerID, 1)
		require.NoError(t, err)
		assert.Empty(t, page.Tasks)
		assert.Zero(t, page.Total)
	})

	t.Run("deleting twice reports not found", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTaskFixture(t)
		ownerID := uuid.New()
		created, err := svc.Create(context.Background(), ownerID, "water the plants", nil)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), ownerID, created.ID))
		err = svc.Delete(context.Background(), ownerID, created.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("someone else's task reports not found", func(t *testing.T) {
		t.Parallel()
		svc, tasks := newTaskFixture(t)
		ownerID := uuid.New()
		created, err := svc.Create(context.Background(), ownerID, "water the plants", nil)
		require.NoError(t, err)

		err = svc.Delete(context.Background(), uuid.New(), created.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		// The owner still sees the task.
		_, err = tasks.GetOwned(context.Background(), ownerID, created.ID)
		assert.NoError(t, err)
	})
}

func TestTaskGetScopedToOwner(t *testing.T) {
	t.Parallel()

	svc, _ := newTaskFixture(t)
	ownerID := uuid.New()
	created, err := svc.Create(context.Background(), ownerID, "water the plants", nil)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), ownerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.Get(context.Background(), uuid.New(), created.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskList(t *testing.T) {
	t.Parallel()

	svc, _ := newTaskFixture(t)
	ownerID := uuid.New()
	otherID := uuid.New()

	for i := 0; i < 13; i++ {
		_, err := svc.Create(context.Background(), ownerID, fmt.Sprintf("task %02d", i), nil)
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), otherID, "not yours", nil)
	require.NoError(t, err)

	page, err := svc.List(context.Background(), ownerID, 1)
	require.NoError(t, err)
	assert.Len(t, page.Tasks, service.TaskPageSize)
	assert.Equal(t, 13, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, "task 00", page.Tasks[0].Description, "listing follows insertion order")

	page, err = svc.List(context.Background(), ownerID, 2)
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 3)
	assert.Equal(t, "task 10", page.Tasks[0].Description)

	for _, task := range page.Tasks {
		assert.Equal(t, ownerID, task.UserID)
	}

	page, err = svc.List(context.Background(), ownerID, 3)
	require.NoError(t, err)
	assert.Empty(t, page.Tasks, "pages past the end are empty, not an error")
}
