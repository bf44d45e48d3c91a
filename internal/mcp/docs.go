package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `specforge guides spec-driven development: Projects move through a fixed phase workflow (requirements → design → tasks → implementation → review → completed), each authoring phase backed by a markdown document that must validate as complete before the workflow advances.

Core concepts:
- Project: container for the three documents plus workflow state. One project is active per session at a time.
- Document: requirements.md, design.md, or tasks.md. Edits land in the session workspace first; saving persists them.
- Validation: rule-based checks per document type (user stories and EARS criteria for requirements, required sections for design, checklist tasks with requirement references for tasks). Errors block completion; warnings and info do not.
- Phase gate: transition_phase moves forward only when every earlier phase has a cached validation summary marking it complete. Run validate_phase first; can_transition never re-validates.
- Autosave: a debounce timer after each edit plus a periodic interval timer. configure_autosave adjusts both per session.

Rules of engagement (default workflow):
1) create_project or open_project to activate a project in this session.
2) Draft with update_requirements / update_design / update_tasks; each returns validation findings for the new content.
3) When a document looks done, validate_phase to record completeness, then transition_phase to advance.
4) save_document / save_all for explicit persistence; autosave covers the gaps. get_workflow_status shows unsaved state.
5) export_project produces a portable envelope; import_project restores it under fresh IDs.

Transport notes:
- HTTP: pass session id via Mcp-Session-Id header.
- Stdio: pass session id via _meta.session_id when supported.

Docs (progressive disclosure):
- specforge://docs/index (what to read when)
- specforge://docs/workflow (phase gates and validation caching)
- specforge://docs/validation-rules (per-document rule reference)
- specforge://docs/autosave (timer semantics and failure handling)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "specforge://docs/index",
		Name:        "docs_index",
		Title:       "specforge docs index",
		Description: "Entry point for agent-facing docs: what exists and what to read when.",
		Content: `# specforge: Agent Docs Index

Keep baseline context small; load deeper docs only when needed.

## Quick start (no deep docs)

create_project → update_requirements → validate_phase → transition_phase, and repeat per phase. get_workflow_status any time you lose track.

## When to read what

- Blocked by PHASE_INCOMPLETE → specforge://docs/workflow
- Validation findings you don't understand → specforge://docs/validation-rules
- Unsaved changes behaving unexpectedly → specforge://docs/autosave

## Known limitations

- One active project per session; opening another project replaces it.
- can_transition reads cached summaries only. Editing a document does not invalidate its phase cache until you run validate_phase again.
`,
	},
	{
		URI:         "specforge://docs/workflow",
		Name:        "docs_workflow",
		Title:       "Phase workflow",
		Description: "How phase gates, validation caching, and transitions interact.",
		Content: `# Phase workflow

Phases in order: requirements, design, tasks, implementation, review, completed.

## Gates

- Backward moves (or staying put) are always allowed.
- A forward move to phase P requires a cached validation summary with is_complete=true for every phase before P.
- validate_phase is the only operation that writes the cache. can_transition and transition_phase only read it.

## Practical flow

1. update_<document> until findings contain no "error" severity.
2. validate_phase for the current phase. Its summary is cached.
3. transition_phase to the next phase. On PHASE_INCOMPLETE the error names the blocking phase.

Implementation, review, and completed have no backing document; validating them always reports complete.

## Staleness

The cache reflects the content at the last validate_phase call. After editing a document, re-run validate_phase before trusting can_transition.
`,
	},
	{
		URI:         "specforge://docs/validation-rules",
		Name:        "docs_validation_rules",
		Title:       "Validation rule reference",
		Description: "Per-document validation rules, severities, and completion scoring.",
		Content: `# Validation rules

Severity: error blocks completion; warning and info are advisory.

## requirements

- user-story-required (error): at least one "As a …, I want …, so that …" story.
- ears-criteria (warning): no WHEN/IF … THEN … SHALL acceptance criteria found.
- introduction-section (warning): missing an introduction heading.
- numbered-sections (warning): no numbered requirement sections.
- word-count (warning): fewer than 100 words.

## design

- architecture-section, components-section, data-models-section, error-handling-section (warning each): expected section missing.
- diagram (info): no mermaid or ASCII diagram block.
- technology-stack (warning): no recognizable technology keywords.
- word-count (warning): fewer than 150 words.

## tasks

- checklist-required (error): no "- [ ]" checklist items.
- task-count (warning): fewer than 5 tasks.
- numbering (info): tasks lack hierarchical numbering (1, 1.1, …).
- requirement-references (warning): tasks missing _Requirements: x.y_ traceability.
- decomposition (info): top-level tasks without sub-tasks.

## Completion

A document is complete when it passes its gate (requirements > 100 chars with a story, design > 200 chars, tasks with a checklist) and has no errors. Completion percent is 100 when complete, otherwise max(0, 100 - 25 × error count).
`,
	},
	{
		URI:         "specforge://docs/autosave",
		Name:        "docs_autosave",
		Title:       "Autosave semantics",
		Description: "Debounce and interval timers, failure handling, unsaved-change tracking.",
		Content: `# Autosave

Two independent timers per session workspace:

- Debounce: each edit arms a one-shot timer (default 2s). A burst of edits produces one save after the burst goes quiet.
- Interval: a periodic ticker (default 30s) saves whatever is dirty.

Whichever fires first saves; firing with nothing dirty is a no-op.

## Configuration

configure_autosave patches enabled, interval_ms, debounce_ms per session. Omitted fields keep their current value. The response echoes the effective config.

## Failures

Scheduled saves that fail are logged and retried on the next timer; the document stays dirty and last_save_error in get_workflow_status carries the message. Explicit save_document / save_all return the error to the caller.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
