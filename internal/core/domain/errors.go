package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotImplemented indicates a collaborator was not wired.
	ErrNotImplemented = errors.New("not implemented")

	// ErrValidation indicates a malformed query, card type or settings value.
	// It is a caller bug and is never retried.
	ErrValidation = errors.New("validation error")

	// ErrConfig indicates an unusable source configuration, such as a duplicate
	// or unknown source key in the priority list.
	ErrConfig = errors.New("configuration error")

	// ErrBackend indicates a required source could not be reached.
	ErrBackend = errors.New("backend error")
)

// BackendError records which source failed during resolution.
// errors.Is(err, ErrBackend) reports true for any *BackendError.
type BackendError struct {
	// Source is the key of the failing source.
	Source string

	// Err is the underlying transport or protocol failure.
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error: source %q: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is matches ErrBackend.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}
