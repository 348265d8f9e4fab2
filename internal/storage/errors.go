package storage

import "errors"

// Errors shared by all journal stores.
var (
	// ErrNotFound is returned when a requested run does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a run id that already
	// exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
