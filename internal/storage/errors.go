package storage

import "errors"

// Storage errors for the sweep's upsert-keyed stores. Writes are idempotent
// upserts, so there is no duplicate-key error: re-writing the same key
// replaces the row.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
