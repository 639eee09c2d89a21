package service

import "errors"

var (
	ErrEmailTaken = errors.New("user already exists with same email")

	// ErrInvalidCredentials covers both unknown email and wrong
	// password so that login failures do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrNotFound = errors.New("not found")
)

// ValidationError reports malformed caller input with a message
// safe to return to the client.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func newValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}
