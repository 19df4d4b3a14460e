package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned by a conditional update when the record
	// changed since the caller's snapshot. Callers retry from a fresh
	// read; the store never applies a partial mutation.
	ErrConflict = errors.New("conditional update conflict")
)
