package model

import "time"

// CollectionStatus is the outcome of a collection job run.
type CollectionStatus string

const (
	CollectionSuccess CollectionStatus = "success"
	CollectionPartial CollectionStatus = "partial"
	CollectionFailed  CollectionStatus = "failed"
)

// Valid reports whether s is a known collection status.
func (s CollectionStatus) Valid() bool {
	switch s {
	case CollectionSuccess, CollectionPartial, CollectionFailed:
		return true
	}
	return false
}

// TaskStatus is the lifecycle state of a manual entry task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskSkipped    TaskStatus = "skipped"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskSkipped:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskSkipped
}

// CanTransition reports whether a task may move from s to next.
// A task can be released back to pending from in_progress, but a
// completed or skipped task stays that way.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	if !s.Valid() || !next.Valid() || s == next {
		return false
	}
	switch s {
	case TaskPending:
		return next != TaskPending
	case TaskInProgress:
		return true
	}
	return false
}

// Task priority bounds.
const (
	PriorityHighest = 1
	PriorityLowest  = 10
	PriorityDefault = 5
)

// Payload is an opaque JSON document attached to a manual task.
// Read back, values are string, json.Number, bool, nil, []any and
// map[string]any; numbers keep their exact text.
type Payload map[string]any

// Date truncates t to a UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Ptr returns a pointer to v. Handy for optional fields.
func Ptr[T any](v T) *T {
	return &v
}
