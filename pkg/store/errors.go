package store

import "fmt"

// PersistenceError reports a durable storage read or write failure.
// Persistence is best-effort during a session: in-memory state is the
// source of truth, so callers surface this error without rolling back.
type PersistenceError struct {
	// Op is the storage operation that failed (open, save, load, ...)
	Op string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
