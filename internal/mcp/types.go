package mcp

import (
	"encoding/json"
	"time"

	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/domain/phase"
	"github.com/specworks/specforge/internal/domain/project"
)

type CreateProjectParams struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Domain      string `json:"domain,omitempty"`
	Complexity  string `json:"complexity,omitempty"`
	Methodology string `json:"methodology,omitempty"`
}

type GetProjectParams struct {
	ID string `json:"id"`
}

type UpdateProjectParams struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Domain      *string `json:"domain,omitempty"`
	Methodology *string `json:"methodology,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type UpdateDocumentParams struct {
	Content  string                  `json:"content"`
	Metadata *document.MetadataPatch `json:"metadata,omitempty"`
}

type DocumentParams struct {
	Type string `json:"type"`
}

type PhaseParams struct {
	Phase string `json:"phase"`
}

type ImportProjectParams struct {
	Data json.RawMessage `json:"data"`
}

type ConfigureAutoSaveParams struct {
	Enabled    *bool `json:"enabled,omitempty"`
	IntervalMS *int  `json:"interval_ms,omitempty"`
	DebounceMS *int  `json:"debounce_ms,omitempty"`
}

type SearchDocumentsParams struct {
	ProjectID string   `json:"project_id,omitempty"`
	Query     string   `json:"query"`
	Types     []string `json:"types,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
}

type RecentEventsParams struct {
	ProjectID string `json:"project_id,omitempty"`
	EventType string `json:"type,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// WorkflowStatusResponse describes the state of the session workspace.
type WorkflowStatusResponse struct {
	Project        *project.Project `json:"project,omitempty"`
	CurrentPhase   phase.Phase      `json:"current_phase,omitempty"`
	UnsavedChanges bool             `json:"unsaved_changes"`
	LastSaved      *time.Time       `json:"last_saved,omitempty"`
	LastSaveError  string           `json:"last_save_error,omitempty"`
	AutoSave       AutoSaveStatus   `json:"autosave"`
}

// AutoSaveStatus reports the effective autosave configuration.
type AutoSaveStatus struct {
	Enabled    bool  `json:"enabled"`
	IntervalMS int64 `json:"interval_ms"`
	DebounceMS int64 `json:"debounce_ms"`
}

type DocumentValidationResponse struct {
	Type    document.Type               `json:"type"`
	Results []document.ValidationResult `json:"results"`
}

type CanTransitionResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

type SaveResponse struct {
	Saved     bool       `json:"saved"`
	LastSaved *time.Time `json:"last_saved,omitempty"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

type ExportResponse struct {
	Data json.RawMessage `json:"data"`
}
