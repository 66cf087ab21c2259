package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when the requested user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a username is already taken.
	ErrConflict = errors.New("username already exists")
	// ErrAuthenticationFailed covers bad credentials and invalid, expired or forged tokens.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrAccessDenied is returned when an authenticated principal fails a role or ownership check.
	ErrAccessDenied = errors.New("access denied")
	// ErrConfiguration marks invalid process configuration. It is fatal at startup.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInvalidClaims is returned when a token is requested without the required claims.
	ErrInvalidClaims = errors.New("invalid token claims")
)

// ValidationError reports malformed client input.
type ValidationError struct {
	Err error
}

// NewValidationError wraps err as a ValidationError.
func NewValidationError(err error) *ValidationError {
	return &ValidationError{Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
