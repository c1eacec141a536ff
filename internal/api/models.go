package api

import (
	"github.com/rfoster/tasklist-api/internal/domain"
	"github.com/rfoster/tasklist-api/internal/store"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=50"`
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for the register and login
// endpoints.
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

// MeResponse defines the response for the current-user endpoint.
type MeResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// MessageResponse defines a bare acknowledgement response.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreateTaskRequest defines the payload for task creation.
type CreateTaskRequest struct {
	Description string       `json:"description" validate:"required"`
	Date        *domain.Date `json:"date,omitempty"`
}

// UpdateTaskRequest defines the payload for task updates. Absent fields are
// left unchanged.
type UpdateTaskRequest struct {
	Description *string      `json:"description,omitempty"`
	Completed   *bool        `json:"completed,omitempty"`
	Date        *domain.Date `json:"date,omitempty"`
}

// TaskResource is the wire representation of a task, embedding the owning
// user's public fields.
type TaskResource struct {
	*domain.Task
	User *domain.User `json:"user"`
}

// NewTaskResource wraps a task with its owner for serialization.
// Returns nil for a nil task so update responses can carry "data": null.
func NewTaskResource(task *domain.Task, owner *domain.User) *TaskResource {
	if task == nil {
		return nil
	}
	return &TaskResource{Task: task, User: owner}
}

// TaskMutationResponse defines the response for task create/update endpoints.
// Data is null when an update targets a task the caller doesn't own.
type TaskMutationResponse struct {
	Message string        `json:"message"`
	Data    *TaskResource `json:"data"`
}

// TaskListResponse defines the paginated task listing response.
type TaskListResponse struct {
	Data    []*TaskResource `json:"data"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Total   int             `json:"total"`
}

// NewTaskListResponse builds the listing response from a store page.
func NewTaskListResponse(page *store.TaskPage, owner *domain.User) TaskListResponse {
	resources := make([]*TaskResource, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		resources = append(resources, NewTaskResource(task, owner))
	}
	return TaskListResponse{
		Data:    resources,
		Page:    page.Page,
		PerPage: page.PerPage,
		Total:   page.Total,
	}
}
