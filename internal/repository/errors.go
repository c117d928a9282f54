// Package repository persists users, tasks and token records in MySQL. The
// sentinel errors defined here let handlers distinguish failure scenarios
// without inspecting driver-specific errors: ErrEmailExists maps to HTTP
// 409, ErrNotFound to 404 and ErrResetInvalid to 400.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update would violate the
// unique constraint on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a referenced record does not exist. Task
// lookups also return it when the record exists but belongs to another
// user, so callers cannot probe for foreign ids.
var ErrNotFound = errors.New("record not found")

// ErrResetInvalid is returned when a password reset code does not match an
// unused, unexpired token record. Expired, already redeemed and unknown
// codes are deliberately indistinguishable.
var ErrResetInvalid = errors.New("invalid or expired reset code")
