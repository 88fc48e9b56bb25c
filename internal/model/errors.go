package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrPrecondition     = errors.New("precondition violated")
	ErrInvalidReference = errors.New("invalid reference")
	ErrInconsistency    = errors.New("inconsistency")
)

// NotFoundError reports a failed name or ID lookup.
type NotFoundError struct {
	Field   string
	Message string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("not found %s: %s", e.Field, e.Message)
}

func (e NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError constructs NotFoundError
func NewNotFoundError(field, message string) NotFoundError {
	return NotFoundError{Field: field, Message: message}
}

// IsNotFoundError checks if error is NotFoundError
func IsNotFoundError(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}

// ValidationError represents malformed input, such as an empty name.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a new validation error
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error (including wrapped errors)
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// PreconditionError rejects an operation that would break a graph rule:
// duplicate names, deleting the last Ambito.
type PreconditionError struct {
	Field   string
	Message string
}

func (e PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed on %s: %s", e.Field, e.Message)
}

func (e PreconditionError) Unwrap() error { return ErrPrecondition }

// NewPreconditionError constructs PreconditionError
func NewPreconditionError(field, message string) PreconditionError {
	return PreconditionError{Field: field, Message: message}
}

// IsPreconditionError checks if error is PreconditionError
func IsPreconditionError(err error) bool {
	var pe PreconditionError
	return errors.As(err, &pe)
}

// InvalidReferenceError means a required selection (user, ambito, folder,
// note) is absent.
type InvalidReferenceError struct {
	Selection string
}

func (e InvalidReferenceError) Error() string {
	return fmt.Sprintf("no %s selected", e.Selection)
}

func (e InvalidReferenceError) Unwrap() error { return ErrInvalidReference }

// NewInvalidReferenceError constructs InvalidReferenceError
func NewInvalidReferenceError(selection string) InvalidReferenceError {
	return InvalidReferenceError{Selection: selection}
}

// IsInvalidReferenceError checks if error is InvalidReferenceError
func IsInvalidReferenceError(err error) bool {
	var ie InvalidReferenceError
	return errors.As(err, &ie)
}

// InconsistencyError marks a fetched batch that does not belong to the
// build in progress.
type InconsistencyError struct {
	Stage   string
	Message string
}

func (e InconsistencyError) Error() string {
	return fmt.Sprintf("inconsistent %s: %s", e.Stage, e.Message)
}

func (e InconsistencyError) Unwrap() error { return ErrInconsistency }

// NewInconsistencyError constructs InconsistencyError
func NewInconsistencyError(stage, message string) InconsistencyError {
	return InconsistencyError{Stage: stage, Message: message}
}
