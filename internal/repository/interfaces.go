package repository

// Store interfaces abstract the MySQL repositories so handlers can be
// exercised in tests with in-memory fakes. The concrete types below
// (UserRepo, TaskRepo, TokenRepo, ResetRepo) are the only production
// implementations.

import (
	"context"
	"time"

	"github.com/willianramosdev-stack/todoApp/internal/model"
)

// UserStore persists user accounts.
type UserStore interface {
	// Create inserts a user and returns its id. Returns ErrEmailExists when
	// the email is already registered.
	Create(ctx context.Context, fullName string, age int, email, passwordHash string) (uint64, error)
	// GetByEmail fetches a user by normalized email. Returns ErrNotFound.
	GetByEmail(ctx context.Context, email string) (model.User, error)
	// GetByID fetches a user by id. Returns ErrNotFound.
	GetByID(ctx context.Context, id uint64) (model.User, error)
	// UpdateProfile applies only the fields present in upd. Returns
	// ErrEmailExists when a new email collides with another account.
	UpdateProfile(ctx context.Context, id uint64, upd UserUpdate) error
	// UpdatePassword overwrites the stored password hash.
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
}

// TaskStore persists tasks. Every read and write is scoped by owner; a task
// id belonging to another user behaves exactly like a missing one.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) (uint64, error)
	GetForUser(ctx context.Context, id, userID uint64) (model.Task, error)
	ListForUser(ctx context.Context, userID uint64, f TaskFilter) ([]model.Task, error)
	Replace(ctx context.Context, id, userID uint64, title, description, priority string, dueDate *time.Time) error
	Patch(ctx context.Context, id, userID uint64, p TaskPatch) error
	SetStatus(ctx context.Context, id, userID uint64, status string) error
}

// TokenStore is the refresh token registry. Tokens are stored hashed and
// individually revocable so logout and rotation can invalidate a specific
// session instead of waiting for natural expiry.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	// ValidateRefresh returns the owning user id if a non-revoked,
	// non-expired token with this hash exists.
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// ResetStore persists password reset codes and redeems them atomically.
type ResetStore interface {
	CreateReset(ctx context.Context, userID uint64, code string, expiresAt time.Time) error
	// Redeem looks up an unused, unexpired token matching code and, in one
	// transaction, rewrites the owner's password hash and marks the token
	// used. Returns ErrResetInvalid when no such token exists.
	Redeem(ctx context.Context, code, newPasswordHash string) error
}

// UserUpdate carries the optional profile fields of a partial update. A nil
// field is left untouched.
type UserUpdate struct {
	FullName *string
	Age      *int
	Email    *string
}

// TaskFilter narrows and orders a task listing. Empty strings mean "no
// filter". DueDate matches tasks due on the same calendar day. SortBy is
// either "dueDate" or "createdAt" (the default); ordering is descending.
type TaskFilter struct {
	Status   string
	Priority string
	DueDate  *time.Time
	SortBy   string
}

// TaskPatch carries the optional fields of a partial task update. Nil
// pointers are left untouched. DueDateSet distinguishes an explicit
// "dueDate": null (clear the deadline) from an omitted field.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *string
	DueDate     *time.Time
	DueDateSet  bool
}
