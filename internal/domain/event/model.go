package event

import (
	"time"

	"github.com/specworks/specforge/internal/domain/document"
)

// Type represents the kind of workflow event
type Type string

const (
	TypeProjectCreated  Type = "project_created"
	TypeProjectUpdated  Type = "project_updated"
	TypeProjectDeleted  Type = "project_deleted"
	TypeProjectImported Type = "project_imported"
	TypeDocumentSaved   Type = "document_saved"
	TypeValidationRun   Type = "validation_run"
	TypePhaseTransition Type = "phase_transition"
)

// Entry represents an event in the workflow log
type Entry struct {
	ID           int64          `json:"id"`
	TenantID     string         `json:"tenant_id"`
	ProjectID    string         `json:"project_id"`
	DocumentType *document.Type `json:"document_type,omitempty"`
	EventType    Type           `json:"type"`
	Summary      string         `json:"summary"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ListOptions provides filtering options for listing events
type ListOptions struct {
	ProjectID string
	EventType *Type
	Limit     int
	Offset    int
}
