package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/rfoster/tasklist-api/internal/api/shared"
	"github.com/rfoster/tasklist-api/internal/domain"
	"github.com/rfoster/tasklist-api/internal/service"
	"github.com/rfoster/tasklist-api/internal/store"
)

// TaskHandler handles task CRUD API requests. All operations act on the
// authenticated user's own tasks.
type TaskHandler struct {
	taskService *service.TaskService
	users       store.UserStore
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService *service.TaskService, users store.UserStore) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		users:       users,
		validator:   validator.New(),
	}
}

// owner loads the acting user for embedding in task resources. Serialization
// tolerates a nil owner, so lookup failures only cost the embedded user.
func (h *TaskHandler) owner(r *http.Request) *domain.User {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		return nil
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		slog.Warn("failed to load task owner", "error", err, "user_id", userID)
		return nil
	}
	return user
}

// List handles GET /tasks. It returns one fixed-size page of the caller's
// live tasks in insertion order.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	taskPage, err := h.taskService.List(r.Context(), userID, page)
	if err != nil {
		slog.Error("failed to list tasks", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(taskPage, h.owner(r)))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	task, err := h.taskService.Get(r.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		slog.Error("failed to get task", "error", err, "task_id", taskID)
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to get task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResource(task, h.owner(r)))
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.Create(r.Context(), userID, req.Description, req.Date)
	if err != nil {
		slog.Error("failed to create task", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to create task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskMutationResponse{
		Message: "Task created successfully",
		Data:    NewTaskResource(task, h.owner(r)),
	})
}

// Update handles PUT and PATCH /tasks/{id}. A task the caller doesn't own
// yields "data": null rather than an error; "not found" and "not yours" are
// indistinguishable.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithJSON(w, r, http.StatusOK, TaskMutationResponse{
			Message: "Task updated successfully",
			Data:    nil,
		})
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	task, err := h.taskService.Update(r.Context(), userID, taskID, service.UpdateTaskParams{
		Description: req.Description,
		Completed:   req.Completed,
		Date:        req.Date,
	})
	if err != nil {
		slog.Error("failed to update task", "error", err, "task_id", taskID)
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to update task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskMutationResponse{
		Message: "Task updated successfully",
		Data:    NewTaskResource(task, h.owner(r)),
	})
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	if err := h.taskService.Delete(r.Context(), userID, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		slog.Error("failed to delete task", "error", err, "task_id", taskID)
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to delete task", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
