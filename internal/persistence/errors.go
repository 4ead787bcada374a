package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrAlreadyExists is returned when a record with the same identity is
	// already stored.
	ErrAlreadyExists = errors.New("persistence: already exists")
	// ErrConstraintViolation is returned when a write breaks a schema
	// constraint, such as an empty primary key.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
