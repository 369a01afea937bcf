package apperr

// Package apperr defines the error kinds shared across repositories, services,
// and the HTTP layer. Services return these unchanged so callers can map them
// to transport-level responses without losing the original cause.

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that an entity id or name does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a uniqueness violation, e.g. a duplicate field or
	// document type name.
	ErrConflict = errors.New("already exists")

	// ErrOrphanedStorage signals that a file was persisted to a storage
	// backend but the corresponding record write failed and the rollback
	// delete also failed. The stored object is orphaned and needs a
	// reconciliation pass.
	ErrOrphanedStorage = errors.New("orphaned storage object")
)

// ValidationError reports a metadata value that fails its schema. It always
// carries the field name so callers can attribute the failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// Validation constructs a ValidationError for the given field.
func Validation(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundf wraps ErrNotFound with a descriptive message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Conflictf wraps ErrConflict with a descriptive message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}
