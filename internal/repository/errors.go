package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePending is returned when a song already has a pending
	// review match. The store's uniqueness constraint enforces this.
	ErrDuplicatePending = errors.New("pending match already exists for song")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails.
	ErrForeignKeyViolation = errors.New("foreign key violation")
)
