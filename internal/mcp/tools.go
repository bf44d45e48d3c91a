package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

var docTypeSchema = map[string]any{
	"type":        "string",
	"description": "Document type",
	"enum":        []string{"requirements", "design", "tasks"},
}

var phaseSchema = map[string]any{
	"type":        "string",
	"description": "Workflow phase",
	"enum":        []string{"requirements", "design", "tasks", "implementation", "review", "completed"},
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Projects
		{
			Name:        "create_project",
			Description: "Create a new project and activate it in the current session",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Project display name",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "Project description",
					},
					"domain": map[string]any{
						"type":        "string",
						"description": "Problem domain (e.g. web-app, cli, infrastructure)",
					},
					"complexity": map[string]any{
						"type":        "string",
						"description": "Project complexity tier",
						"enum":        []string{"basic", "intermediate", "advanced"},
					},
					"methodology": map[string]any{
						"type":        "string",
						"description": "Development methodology label",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "list_projects",
			Description: "List all projects for the current tenant",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "get_project",
			Description: "Get full details for one project",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "update_project",
			Description: "Update project metadata (name, description, domain, methodology, status)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
					"name":        map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"domain":      map[string]any{"type": "string"},
					"methodology": map[string]any{"type": "string"},
					"status": map[string]any{
						"type": "string",
						"enum": []string{"active", "archived", "completed"},
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "delete_project",
			Description: "Delete a project and its documents",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "open_project",
			Description: "Load a project and its documents into the current session workspace",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "get_workflow_status",
			Description: "Get the active project, current phase, unsaved-change state, and autosave settings",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},

		// Documents
		{
			Name:        "update_requirements",
			Description: "Replace the requirements document content in the workspace and return its validation findings",
			InputSchema: contentSchema(),
		},
		{
			Name:        "update_design",
			Description: "Replace the design document content in the workspace and return its validation findings",
			InputSchema: contentSchema(),
		},
		{
			Name:        "update_tasks",
			Description: "Replace the tasks document content in the workspace and return its validation findings",
			InputSchema: contentSchema(),
		},
		{
			Name:        "get_document",
			Description: "Get one document of the active project from the workspace",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": docTypeSchema,
				},
				"required": []string{"type"},
			},
		},
		{
			Name:        "save_document",
			Description: "Persist one document of the active project",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": docTypeSchema,
				},
				"required": []string{"type"},
			},
		},
		{
			Name:        "save_all",
			Description: "Persist every unsaved document of the active project",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},

		// Validation and phases
		{
			Name:        "validate_document",
			Description: "Run validation rules against one workspace document",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": docTypeSchema,
				},
				"required": []string{"type"},
			},
		},
		{
			Name:        "validate_all_documents",
			Description: "Run validation rules against every workspace document",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "validate_phase",
			Description: "Validate the document backing a phase and cache the summary for transition checks",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"phase": phaseSchema,
				},
				"required": []string{"phase"},
			},
		},
		{
			Name:        "can_transition",
			Description: "Check whether the active project may move to a phase, using cached validation summaries",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"phase": phaseSchema,
				},
				"required": []string{"phase"},
			},
		},
		{
			Name:        "transition_phase",
			Description: "Move the active project to another phase; forward moves require all earlier phases validated complete",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"phase": phaseSchema,
				},
				"required": []string{"phase"},
			},
		},

		// Import/export
		{
			Name:        "export_project",
			Description: "Export a project and its documents as a versioned JSON envelope",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Project ID",
					},
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "import_project",
			Description: "Import a project from an export envelope under fresh IDs and activate it",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"data": map[string]any{
						"description": "Export envelope, as a JSON object or serialized JSON string",
					},
				},
				"required": []string{"data"},
			},
		},

		// Autosave
		{
			Name:        "configure_autosave",
			Description: "Adjust the session's autosave timers; omitted fields keep their current value",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"enabled": map[string]any{
						"type":        "boolean",
						"description": "Turn autosave on or off",
					},
					"interval_ms": map[string]any{
						"type":        "integer",
						"description": "Periodic save interval in milliseconds",
					},
					"debounce_ms": map[string]any{
						"type":        "integer",
						"description": "Quiet period after an edit before saving, in milliseconds",
					},
				},
			},
		},

		// Search and history
		{
			Name:        "search_documents",
			Description: "Full-text search over saved document content, optionally scoped to a project",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Search query text",
					},
					"project_id": map[string]any{
						"type":        "string",
						"description": "Limit results to one project",
					},
					"types": map[string]any{
						"type":        "array",
						"description": "Filter by document types",
						"items":       docTypeSchema,
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Offset for pagination",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "get_recent_events",
			Description: "List recent workflow events (saves, validations, phase transitions), newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": map[string]any{
						"type":        "string",
						"description": "Limit events to one project",
					},
					"type": map[string]any{
						"type":        "string",
						"description": "Filter by event type",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of events",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Offset for pagination",
					},
				},
			},
		},
	}
}

func contentSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":        "string",
				"description": "Full markdown content of the document",
			},
			"metadata": map[string]any{
				"type":        "object",
				"description": "Optional metadata patch; omitted fields keep their current value",
				"properties": map[string]any{
					"tags": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"collaborators": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Collaborator user ids",
					},
				},
			},
		},
		"required": []string{"content"},
	}
}

// registerTools registers the catalog on the SDK server, routing every
// call through the handler.
func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		def := def
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: toSchema(def.InputSchema),
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}

			result, err := handler.Handle(ctx, getTenantID(ctx), getSessionID(ctx), def.Name, args)
			if err != nil {
				return errorResult(err), nil
			}

			payload, err := json.Marshal(result)
			if err != nil {
				return nil, fmt.Errorf("encoding tool result: %w", err)
			}
			return &sdkmcp.CallToolResult{
				Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(payload)}},
			}, nil
		})
	}
}

func errorResult(err error) *sdkmcp.CallToolResult {
	apiErr, ok := err.(*APIError)
	if !ok {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	payload, marshalErr := json.Marshal(apiErr)
	if marshalErr != nil {
		payload = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(payload)}},
	}
}

// toSchema converts a raw JSON Schema map into the SDK's schema type.
func toSchema(raw map[string]any) *jsonschema.Schema {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil
	}
	return &schema
}
