package simplecms

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrNotFound indicates the requested item, revision or entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a slug is already held by another entity of the same kind
	ErrConflict = errors.New("conflict")

	// ErrInvalidState indicates the operation is not allowed from the current status
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput indicates the caller supplied an invalid payload
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage indicates the underlying persistence failed. Details are
	// logged, never returned.
	ErrStorage = errors.New("internal storage error")

	// ErrObjectNotFound indicates a blob does not exist in the blob store
	ErrObjectNotFound = errors.New("object not found")
)

// EntityError represents an error related to an operation on one entity.
type EntityError struct {
	Entity string
	ID     uuid.UUID
	Op     string
	Err    error
}

func (e *EntityError) Error() string {
	if e.ID == uuid.Nil {
		return fmt.Sprintf("%s %s failed: %v", e.Entity, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s failed for %s: %v", e.Entity, e.Op, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// IsCallerError reports whether err is something the caller can correct, as
// opposed to an internal failure.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrInvalidInput)
}

func errInvalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// invalidInput wraps a validation failure so callers can match ErrInvalidInput.
func invalidInput(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
