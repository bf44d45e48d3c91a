package repository

import "github.com/specworks/specforge/internal/repository/repoerr"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = repoerr.ErrNotFound

	// ErrConflict is returned when a uniqueness constraint fails
	ErrConflict = repoerr.ErrConflict

	// ErrForeignKeyViolation is returned when a foreign key constraint fails
	ErrForeignKeyViolation = repoerr.ErrForeignKeyViolation
)
