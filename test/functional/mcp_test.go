package functional_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specworks/specforge/internal/testserver"
)

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func rpcCall(t *testing.T, ts *testserver.TestServer, sessionID, method string, params any) rpcResponse {
	t.Helper()

	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/mcp", bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ts.Token)
	if sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

// call invokes a method and fails the test on any RPC error.
func call(t *testing.T, ts *testserver.TestServer, sessionID, method string, params any) json.RawMessage {
	t.Helper()
	resp := rpcCall(t, ts, sessionID, method, params)
	require.Nil(t, resp.Error, "RPC error for %s: %+v", method, resp.Error)
	return resp.Result
}

const fullRequirements = `# Introduction

A billing subsystem that turns metered usage into monthly invoices and
keeps the authoring workflow honest along the way.

### Requirement 1

**User Story:** As an account owner, I want usage rolled into one invoice, so that I get a single charge per month.

WHEN the billing period closes THEN the system SHALL generate exactly one invoice per account.

### Requirement 2

**User Story:** As an operator, I want failed charges retried, so that transient card errors do not drop revenue.

IF a charge fails THEN the system SHALL retry up to three times.
`

func TestFunctional_Authentication(t *testing.T) {
	ts := testserver.New(t, "good-token", "tenant1")

	post := func(token string) int {
		req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/mcp",
			bytes.NewBufferString(`{"jsonrpc":"2.0","method":"list_projects","id":1}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	require.Equal(t, http.StatusUnauthorized, post(""))
	require.Equal(t, http.StatusUnauthorized, post("wrong-token"))
	require.Equal(t, http.StatusOK, post("good-token"))
}

func TestFunctional_Health(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1")

	resp, err := http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFunctional_ProjectWorkflow(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1")
	session := "workflow-session"

	result := call(t, ts, session, "create_project", map[string]any{
		"name":        "Billing",
		"description": "usage-based invoicing",
	})
	var proj struct {
		ID           string `json:"id"`
		CurrentPhase string `json:"current_phase"`
	}
	require.NoError(t, json.Unmarshal(result, &proj))
	require.NotEmpty(t, proj.ID)
	require.Equal(t, "requirements", proj.CurrentPhase)

	// Authoring a complete requirements document reports zero errors.
	result = call(t, ts, session, "update_requirements", map[string]any{"content": fullRequirements})
	var validation struct {
		Results []struct {
			Severity string `json:"severity"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(result, &validation))
	for _, finding := range validation.Results {
		require.NotEqual(t, "error", finding.Severity)
	}

	result = call(t, ts, session, "validate_phase", map[string]any{"phase": "requirements"})
	var summary struct {
		IsComplete           bool `json:"is_complete"`
		CompletionPercentage int  `json:"completion_percentage"`
	}
	require.NoError(t, json.Unmarshal(result, &summary))
	require.True(t, summary.IsComplete)
	require.Equal(t, 100, summary.CompletionPercentage)

	result = call(t, ts, session, "transition_phase", map[string]any{"phase": "design"})
	var status struct {
		CurrentPhase   string `json:"current_phase"`
		UnsavedChanges bool   `json:"unsaved_changes"`
	}
	require.NoError(t, json.Unmarshal(result, &status))
	require.Equal(t, "design", status.CurrentPhase)
	require.True(t, status.UnsavedChanges)

	result = call(t, ts, session, "save_all", nil)
	var save struct {
		Saved bool `json:"saved"`
	}
	require.NoError(t, json.Unmarshal(result, &save))
	require.True(t, save.Saved)

	result = call(t, ts, session, "get_document", map[string]any{"type": "requirements"})
	var doc struct {
		Content string `json:"content"`
		Version int64  `json:"version"`
	}
	require.NoError(t, json.Unmarshal(result, &doc))
	require.Equal(t, fullRequirements, doc.Content)
	require.Equal(t, int64(2), doc.Version)
}

func TestFunctional_PhaseGateBlocksSkipping(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1")
	session := "gate-session"

	call(t, ts, session, "create_project", map[string]any{"name": "Gated"})

	resp := rpcCall(t, ts, session, "transition_phase", map[string]any{"phase": "design"})
	require.NotNil(t, resp.Error)
	require.Contains(t, string(resp.Error.Data), "PHASE_INCOMPLETE")

	result := call(t, ts, session, "can_transition", map[string]any{"phase": "design"})
	var can struct {
		Allowed bool   `json:"allowed"`
		Reason  string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(result, &can))
	require.False(t, can.Allowed)
	require.NotEmpty(t, can.Reason)
}

func TestFunctional_SessionIsolation(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1")

	call(t, ts, "alpha", "create_project", map[string]any{"name": "Only Alpha"})

	result := call(t, ts, "beta", "get_workflow_status", nil)
	var status struct {
		Project *json.RawMessage `json:"project"`
	}
	require.NoError(t, json.Unmarshal(result, &status))
	require.Nil(t, status.Project)

	// Both sessions see the same tenant's project list.
	result = call(t, ts, "beta", "list_projects", nil)
	var list []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(result, &list))
	require.Len(t, list, 1)
	require.Equal(t, "Only Alpha", list[0].Name)
}

func TestFunctional_SearchAndEvents(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1")
	session := "search-session"

	call(t, ts, session, "create_project", map[string]any{"name": "Billing"})
	call(t, ts, session, "update_requirements", map[string]any{"content": fullRequirements})
	call(t, ts, session, "save_all", nil)

	result := call(t, ts, session, "search_documents", map[string]any{"query": "invoice"})
	var hits []struct {
		Type    string `json:"type"`
		Snippet string `json:"snippet"`
	}
	require.NoError(t, json.Unmarshal(result, &hits))
	require.NotEmpty(t, hits)
	require.Equal(t, "requirements", hits[0].Type)
	require.Contains(t, hits[0].Snippet, "[invoice]")

	result = call(t, ts, session, "get_recent_events", nil)
	var events []struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(result, &events))
	require.NotEmpty(t, events)

	types := make(map[string]bool)
	for _, entry := range events {
		types[entry.Type] = true
	}
	require.True(t, types["project_created"])
	require.True(t, types["document_saved"])
}

func TestFunctional_ExportImport(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1")
	session := "export-session"

	result := call(t, ts, session, "create_project", map[string]any{"name": "Origin"})
	var origin struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(result, &origin))

	call(t, ts, session, "update_requirements", map[string]any{"content": "portable requirements"})

	result = call(t, ts, session, "export_project", map[string]any{"id": ""})
	var export struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(result, &export))
	require.Contains(t, string(export.Data), "portable requirements")

	result = call(t, ts, session, "import_project", map[string]any{"data": export.Data})
	var imported struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(result, &imported))
	require.NotEqual(t, origin.ID, imported.ID)
	require.Equal(t, "Origin", imported.Name)

	result = call(t, ts, session, "get_document", map[string]any{"type": "requirements"})
	var doc struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(result, &doc))
	require.Equal(t, "portable requirements", doc.Content)
}

func TestFunctional_ConfigureAutosave(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1")
	session := "autosave-session"

	result := call(t, ts, session, "configure_autosave", map[string]any{
		"enabled":     true,
		"interval_ms": 60000,
		"debounce_ms": 1500,
	})
	var status struct {
		Enabled    bool  `json:"enabled"`
		IntervalMS int64 `json:"interval_ms"`
		DebounceMS int64 `json:"debounce_ms"`
	}
	require.NoError(t, json.Unmarshal(result, &status))
	require.True(t, status.Enabled)
	require.Equal(t, int64(60000), status.IntervalMS)
	require.Equal(t, int64(1500), status.DebounceMS)

	// The workflow status echoes the same configuration.
	result = call(t, ts, session, "get_workflow_status", nil)
	var workflow struct {
		AutoSave struct {
			Enabled bool `json:"enabled"`
		} `json:"autosave"`
	}
	require.NoError(t, json.Unmarshal(result, &workflow))
	require.True(t, workflow.AutoSave.Enabled)
}
