package workspace

import "errors"

var (
	// ErrNoActiveProject indicates an operation that needs an open
	// project was called on an empty workspace.
	ErrNoActiveProject = errors.New("no active project")
	// ErrClosed indicates the workspace has been torn down.
	ErrClosed = errors.New("workspace closed")
)
