package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by services and repositories. Controllers map them to HTTP status codes
// with errors.Is; anything that matches none of them is reported as an internal error.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream service failure")
)

// Specific conflicts and lookups. Each wraps one of the sentinels above.
var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	ErrDuplicateEmail     = fmt.Errorf("%w: email already in use", ErrConflict)
	ErrDuplicateSlug      = fmt.Errorf("%w: event slug already in use", ErrConflict)
	ErrAlreadyRegistered  = fmt.Errorf("%w: already registered for this event", ErrConflict)
)

// ValidationError carries every problem found in a request. It matches ErrInvalidInput.
type ValidationError struct {
	Problems []string
}

// NewValidationError returns a ValidationError for the given problems.
func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrInvalidInput.Error()
	}
	return strings.Join(e.Problems, "; ")
}

// Is reports whether target is ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
