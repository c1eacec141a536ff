package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common task validation errors. Each wraps ErrValidation so store and
// handler layers can classify them without matching individual sentinels.
var (
	ErrEmptyTaskID      = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrEmptyTaskOwner   = fmt.Errorf("%w: task owner cannot be empty", ErrValidation)
	ErrEmptyDescription = fmt.Errorf("%w: task description cannot be empty", ErrValidation)
)

// dateLayout is the wire format for calendar dates, e.g. "2021-01-01".
const dateLayout = "2006-01-02"

// Date is a calendar date without a time component. It marshals to and from
// the "YYYY-MM-DD" form used by the API and maps onto a PostgreSQL DATE column.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return Date{t}, nil
}

// String returns the date in "YYYY-MM-DD" form.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts null and the
// "YYYY-MM-DD" form.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrValidation)
	}
	d.Time = t
	return nil
}

// Task represents a single to-do item owned by exactly one user.
// Task IDs are UUIDv7 values, so they sort lexicographically in creation
// order. Deleted tasks are retained with DeletedAt set and are excluded
// from normal queries.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Date        *Date      `json:"date,omitempty"`
	DeletedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user.
// The ID is a time-ordered UUIDv7 and timestamps are set to now.
// Returns an error if validation fails.
func NewTask(userID uuid.UUID, description string, date *Date) (*Task, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          id,
		UserID:      userID,
		Description: description,
		Completed:   false,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskOwner
	}
	if t.Description == "" {
		return ErrEmptyDescription
	}
	return nil
}

// IsDeleted reports whether the task has been soft-deleted.
func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}
