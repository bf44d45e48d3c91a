package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid input for project operations.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrInvalidFormat indicates an import payload that could not be parsed.
	ErrInvalidFormat = errors.New("invalid project data format")
)
