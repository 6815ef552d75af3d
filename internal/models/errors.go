package models

import (
	"errors"
	"fmt"
)

// Sentinel errors used with errors.Is across the layers.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOperationFailed = errors.New("operation failed")
	ErrConflict        = errors.New("conflict")
)

// ValidationError reports a single violated field constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) hold for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// NotFoundError is returned when a referenced resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// OperationFailedError is returned when a write that should have affected a row
// affected none.
type OperationFailedError struct {
	Op       string
	Resource string
	ID       string
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("failed to %s %s with ID %s", e.Op, e.Resource, e.ID)
}

func (e *OperationFailedError) Is(target error) bool {
	return target == ErrOperationFailed
}
