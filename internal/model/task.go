package model

import "time"

// Task priority levels as stored in the tasks.priority column.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Task lifecycle states as stored in the tasks.status column. A task starts
// as PENDING; CompletedAt is non-null exactly while the status is DONE.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusCanceled   = "CANCELED"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusDone || s == StatusCanceled
}

// Task represents a row in the `tasks` table. Every task belongs to exactly
// one user and is only ever visible to that user; repositories filter by
// user_id on every lookup so a foreign id behaves like a missing one.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the task.
//  Title       – short summary, 1 to 120 characters.
//  Description – free text, up to 2000 characters.
//  Priority    – LOW, MEDIUM or HIGH.
//  Status      – PENDING, IN_PROGRESS, DONE or CANCELED.
//  DueDate     – optional deadline (null when unset).
//  CompletedAt – set when the task transitions to DONE, cleared otherwise.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Task struct {
	ID          uint64     // tasks.id
	UserID      uint64     // tasks.user_id
	Title       string     // tasks.title
	Description string     // tasks.description
	Priority    string     // tasks.priority
	Status      string     // tasks.status
	DueDate     *time.Time // tasks.due_date (nullable)
	CompletedAt *time.Time // tasks.completed_at (nullable)
	CreatedAt   time.Time  // tasks.created_at
	UpdatedAt   time.Time  // tasks.updated_at
}
