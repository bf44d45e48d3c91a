package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/domain/event"
)

// EventRepository implements repository.EventRepository for SQLite
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Log appends a workflow event
func (r *EventRepository) Log(ctx context.Context, tenantID string, entry *event.Entry) error {
	var docType any
	if entry.DocumentType != nil {
		docType = string(*entry.DocumentType)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workflow_events (tenant_id, project_id, document_type, event_type, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		tenantID,
		entry.ProjectID,
		docType,
		entry.EventType,
		entry.Summary,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log event: %w", err)
	}

	return nil
}

// List returns events most recent first
func (r *EventRepository) List(ctx context.Context, tenantID string, opts event.ListOptions) ([]event.Entry, error) {
	query := `
		SELECT id, tenant_id, project_id, document_type, event_type, summary, created_at
		FROM workflow_events
		WHERE tenant_id = ?
	`
	args := []any{tenantID}
	var conditions []string

	if opts.ProjectID != "" {
		conditions = append(conditions, "project_id = ?")
		args = append(args, opts.ProjectID)
	}
	if opts.EventType != nil {
		conditions = append(conditions, "event_type = ?")
		args = append(args, *opts.EventType)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC"

	// OFFSET is only valid after a LIMIT clause, so an offset without
	// an explicit limit gets the default page size.
	limit := opts.Limit
	if limit <= 0 && opts.Offset > 0 {
		limit = defaultPageSize
	}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var entries []event.Entry
	for rows.Next() {
		var entry event.Entry
		var docType sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.ProjectID,
			&docType,
			&entry.EventType,
			&entry.Summary,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if docType.Valid {
			t := document.Type(docType.String)
			entry.DocumentType = &t
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
