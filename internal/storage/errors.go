package storage

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUserExists is returned when a user insert hits the unique
	// index on email. Uniqueness lives in the store, not in
	// check-then-act logic above it, so two concurrent registrations
	// with the same email cannot both succeed.
	ErrUserExists = errors.New("user already exists")
)
