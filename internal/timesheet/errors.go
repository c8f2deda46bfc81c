package timesheet

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input. Nothing is written when it is returned.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate marks a create that collides with an existing record.
	ErrDuplicate = errors.New("already exists")
	// ErrNotFound marks a record that does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
)

// ValidationError describes which input field was rejected and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
