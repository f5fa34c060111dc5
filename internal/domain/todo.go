package domain

import "time"

// Status is the workflow state of a todo.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus returns the Status for a wire value, false if unknown.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusNew, StatusInProgress, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

func (s Status) String() string { return string(s) }

// Domain entity: the single business object of the service.
// Does not depend on Gin, Postgres or Redis.
type Todo struct {
	ID          int64
	Title       string
	Description *string
	Status      Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
