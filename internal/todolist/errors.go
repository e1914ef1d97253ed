package todolist

import (
	"errors"
	"fmt"
)

// ErrMutationFailed is matched by every error produced when the backend
// rejects a create, toggle or delete.
var ErrMutationFailed = errors.New("mutation failed")

// ErrNotFound is reported by Load when the to-do or its items are missing.
var ErrNotFound = errors.New("todo not found")

// MutationError describes a failed mutation.
type MutationError struct {
	Op     string // "create", "toggle" or "delete"
	ItemID int64  // zero for create
	Err    error
}

func (e *MutationError) Error() string {
	if e.ItemID == 0 {
		return fmt.Sprintf("%s item failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s item %d failed: %v", e.Op, e.ItemID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// Is reports MutationFailed regardless of the underlying cause.
func (e *MutationError) Is(target error) bool {
	return target == ErrMutationFailed
}
