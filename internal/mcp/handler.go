package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/domain/event"
	"github.com/specworks/specforge/internal/domain/phase"
	"github.com/specworks/specforge/internal/domain/project"
	"github.com/specworks/specforge/internal/repository"
	"github.com/specworks/specforge/internal/workspace"
)

// EventService defines event log operations needed by MCP.
type EventService interface {
	Recent(ctx context.Context, tenantID string, opts event.ListOptions) ([]event.Entry, error)
}

// SearchService defines document search operations needed by MCP.
type SearchService interface {
	Search(ctx context.Context, tenantID, projectID, query string, opts repository.SearchOptions) ([]document.SearchResult, error)
}

// Handler dispatches MCP commands. Project and document state flows
// through per-session workspace stores; search and the event log read
// straight from persistence.
type Handler struct {
	workspaces *workspace.Manager
	search     SearchService
	events     EventService
}

// NewHandler creates a new MCP handler.
func NewHandler(workspaces *workspace.Manager, search SearchService, events EventService) *Handler {
	return &Handler{
		workspaces: workspaces,
		search:     search,
		events:     events,
	}
}

// Handle dispatches MCP requests to the session workspace and domain services.
func (h *Handler) Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error) {
	store := h.workspaces.Get(tenantID, sessionID)

	switch method {
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := store.CreateProject(ctx, project.CreateRequest{
			Name:        req.Name,
			Description: req.Description,
			Domain:      req.Domain,
			Complexity:  project.Complexity(req.Complexity),
			Methodology: req.Methodology,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "list_projects":
		projects, err := store.ListProjects(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return projects, nil
	case "get_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := store.GetProject(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "update_project":
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		patch := project.UpdateRequest{
			Name:        req.Name,
			Description: req.Description,
			Domain:      req.Domain,
			Methodology: req.Methodology,
		}
		if req.Status != nil {
			status := project.Status(*req.Status)
			patch.Status = &status
		}
		proj, err := store.UpdateProject(ctx, req.ID, patch)
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "delete_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := store.DeleteProject(ctx, req.ID); err != nil {
			return nil, mapError(err)
		}
		return DeleteResponse{Deleted: true}, nil
	case "open_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := store.OpenProject(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "get_workflow_status":
		return workflowStatus(store), nil
	case "update_requirements":
		return h.updateDocument(store, document.TypeRequirements, params)
	case "update_design":
		return h.updateDocument(store, document.TypeDesign, params)
	case "update_tasks":
		return h.updateDocument(store, document.TypeTasks, params)
	case "get_document":
		docType, err := parseDocType(params)
		if err != nil {
			return nil, err
		}
		doc := store.Document(docType)
		if doc == nil {
			return nil, mapError(document.ErrDocumentNotFound)
		}
		return doc, nil
	case "save_document":
		docType, err := parseDocType(params)
		if err != nil {
			return nil, err
		}
		if err := store.SaveDocument(ctx, docType); err != nil {
			return nil, mapError(err)
		}
		return saveResponse(store), nil
	case "save_all":
		if err := store.SaveAll(ctx); err != nil {
			return nil, mapError(err)
		}
		return saveResponse(store), nil
	case "validate_document":
		docType, err := parseDocType(params)
		if err != nil {
			return nil, err
		}
		return DocumentValidationResponse{
			Type:    docType,
			Results: store.ValidateDocument(docType),
		}, nil
	case "validate_all_documents":
		return store.ValidateAllDocuments(), nil
	case "validate_phase":
		target, err := parsePhase(params)
		if err != nil {
			return nil, err
		}
		return store.ValidatePhase(ctx, target), nil
	case "can_transition":
		target, err := parsePhase(params)
		if err != nil {
			return nil, err
		}
		resp := CanTransitionResponse{Allowed: store.CanTransitionTo(target)}
		if !resp.Allowed {
			resp.Reason = fmt.Sprintf("earlier phases must be validated as complete before moving to %s", target)
		}
		return resp, nil
	case "transition_phase":
		target, err := parsePhase(params)
		if err != nil {
			return nil, err
		}
		if err := store.TransitionTo(ctx, target); err != nil {
			return nil, mapError(err)
		}
		return workflowStatus(store), nil
	case "export_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		data, err := store.ExportProject(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return ExportResponse{Data: json.RawMessage(data)}, nil
	case "import_project":
		var req ImportProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := store.ImportProject(ctx, envelopeBytes(req.Data))
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "configure_autosave":
		var req ConfigureAutoSaveParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		cfg := store.ConfigureAutoSave(autosavePatch(req))
		return autosaveStatus(cfg), nil
	case "search_documents":
		var req SearchDocumentsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		types := make([]document.Type, 0, len(req.Types))
		for _, raw := range req.Types {
			docType, err := document.ParseType(raw)
			if err != nil {
				return nil, mapError(err)
			}
			types = append(types, docType)
		}
		results, err := h.search.Search(ctx, tenantID, req.ProjectID, req.Query, repository.SearchOptions{
			Types:  types,
			Limit:  req.Limit,
			Offset: req.Offset,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return results, nil
	case "get_recent_events":
		var req RecentEventsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts := event.ListOptions{
			ProjectID: req.ProjectID,
			Limit:     req.Limit,
			Offset:    req.Offset,
		}
		if req.EventType != "" {
			eventType := event.Type(req.EventType)
			opts.EventType = &eventType
		}
		entries, err := h.events.Recent(ctx, tenantID, opts)
		if err != nil {
			return nil, mapError(err)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func (h *Handler) updateDocument(store *workspace.Store, docType document.Type, params json.RawMessage) (any, error) {
	var req UpdateDocumentParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	store.UpdateDocument(docType, req.Content, req.Metadata)
	return DocumentValidationResponse{
		Type:    docType,
		Results: store.ValidateDocument(docType),
	}, nil
}

func workflowStatus(store *workspace.Store) WorkflowStatusResponse {
	resp := WorkflowStatusResponse{
		Project:        store.CurrentProject(),
		UnsavedChanges: store.HasUnsavedChanges(),
		AutoSave:       autosaveStatus(store.AutoSave()),
	}
	if resp.Project != nil {
		resp.CurrentPhase = store.CurrentPhase()
	}
	if last := store.LastSaved(); !last.IsZero() {
		resp.LastSaved = &last
	}
	if err := store.LastError(); err != nil {
		resp.LastSaveError = err.Error()
	}
	return resp
}

func saveResponse(store *workspace.Store) SaveResponse {
	resp := SaveResponse{Saved: true}
	if last := store.LastSaved(); !last.IsZero() {
		resp.LastSaved = &last
	}
	return resp
}

func autosaveStatus(cfg workspace.AutoSaveConfig) AutoSaveStatus {
	return AutoSaveStatus{
		Enabled:    cfg.Enabled,
		IntervalMS: cfg.Interval.Milliseconds(),
		DebounceMS: cfg.DebounceDelay.Milliseconds(),
	}
}

func autosavePatch(req ConfigureAutoSaveParams) workspace.AutoSavePatch {
	patch := workspace.AutoSavePatch{Enabled: req.Enabled}
	if req.IntervalMS != nil {
		interval := time.Duration(*req.IntervalMS) * time.Millisecond
		patch.Interval = &interval
	}
	if req.DebounceMS != nil {
		debounce := time.Duration(*req.DebounceMS) * time.Millisecond
		patch.DebounceDelay = &debounce
	}
	return patch
}

// envelopeBytes accepts the export envelope either as a JSON object or
// as a pre-serialized JSON string.
func envelopeBytes(data json.RawMessage) []byte {
	if len(data) > 0 && data[0] == '"' {
		var serialized string
		if err := json.Unmarshal(data, &serialized); err == nil {
			return []byte(serialized)
		}
	}
	return data
}

func parseDocType(params json.RawMessage) (document.Type, error) {
	var req DocumentParams
	if err := decodeParams(params, &req); err != nil {
		return "", err
	}
	docType, err := document.ParseType(req.Type)
	if err != nil {
		return "", mapError(err)
	}
	return docType, nil
}

func parsePhase(params json.RawMessage) (phase.Phase, error) {
	var req PhaseParams
	if err := decodeParams(params, &req); err != nil {
		return "", err
	}
	target, err := phase.Parse(req.Phase)
	if err != nil {
		return "", mapError(err)
	}
	return target, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, out)
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
