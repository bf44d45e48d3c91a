package mcp

import (
	"errors"
	"fmt"

	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/domain/phase"
	"github.com/specworks/specforge/internal/domain/project"
	"github.com/specworks/specforge/internal/workspace"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map
// to nil so callers can fall back to an internal error.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var transition *phase.TransitionError
	if errors.As(err, &transition) {
		return &APIError{
			Code:         "PHASE_INCOMPLETE",
			Message:      transition.Error(),
			Details:      map[string]any{"blocking_phase": transition.Blocking},
			RecoveryHint: fmt.Sprintf("Run validate_phase on %q and fix its findings first", transition.Blocking),
		}
	}

	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Check ID spelling"}
	case errors.Is(err, project.ErrInvalidFormat):
		return &APIError{Code: "INVALID_FORMAT", Message: "invalid project data format", RecoveryHint: "Pass an export envelope produced by export_project"}
	case errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "invalid project input"}
	case errors.Is(err, workspace.ErrNoActiveProject):
		return &APIError{Code: "NO_ACTIVE_PROJECT", Message: "no active project", RecoveryHint: "Call create_project or open_project first"}
	case errors.Is(err, phase.ErrUnknownPhase):
		return &APIError{Code: "INVALID_INPUT", Message: "unknown phase"}
	case errors.Is(err, document.ErrUnknownType):
		return &APIError{Code: "INVALID_INPUT", Message: "unknown document type"}
	case errors.Is(err, document.ErrDocumentNotFound):
		return &APIError{Code: "DOCUMENT_NOT_FOUND", Message: "document not found", RecoveryHint: "Draft it with the matching update tool first"}
	default:
		return nil
	}
}
