package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/repository"
)

// DocumentRepository implements repository.DocumentRepository for SQLite
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Upsert commits a document. The (project_id, type) uniqueness means
// repeated saves of the same document replace the stored row.
func (r *DocumentRepository) Upsert(ctx context.Context, tenantID string, doc *document.Document) error {
	tags, err := json.Marshal(orEmpty(doc.Metadata.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	collaborators, err := json.Marshal(orEmpty(doc.Metadata.Collaborators))
	if err != nil {
		return fmt.Errorf("failed to encode collaborators: %w", err)
	}

	query := `
		INSERT INTO documents (
			id, tenant_id, project_id, type, content, version, status,
			word_count, read_time_minutes, completion, tags, collaborators,
			created_at, updated_at, last_saved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, type) DO UPDATE SET
			content = excluded.content,
			version = excluded.version,
			status = excluded.status,
			word_count = excluded.word_count,
			read_time_minutes = excluded.read_time_minutes,
			completion = excluded.completion,
			tags = excluded.tags,
			collaborators = excluded.collaborators,
			updated_at = excluded.updated_at,
			last_saved_at = excluded.last_saved_at
	`

	_, err = r.db.ExecContext(ctx, query,
		doc.ID,
		tenantID,
		doc.ProjectID,
		doc.Type,
		doc.Content,
		doc.Version,
		doc.Status,
		doc.Metadata.WordCount,
		doc.Metadata.ReadTimeMinutes,
		doc.Metadata.Completion,
		string(tags),
		string(collaborators),
		doc.CreatedAt,
		doc.UpdatedAt,
		nullTime(doc.LastSavedAt),
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// Get retrieves one document by project and type
func (r *DocumentRepository) Get(ctx context.Context, tenantID, projectID string, t document.Type) (*document.Document, error) {
	query := selectDocuments + ` WHERE tenant_id = ? AND project_id = ? AND type = ?`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, tenantID, projectID, t))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetByProject retrieves all documents of a project in authoring order
func (r *DocumentRepository) GetByProject(ctx context.Context, tenantID, projectID string) ([]document.Document, error) {
	query := selectDocuments + `
		WHERE tenant_id = ? AND project_id = ?
		ORDER BY CASE type
			WHEN 'requirements' THEN 0
			WHEN 'design' THEN 1
			ELSE 2
		END
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	return docs, rows.Err()
}

const selectDocuments = `
	SELECT id, tenant_id, project_id, type, content, version, status,
		word_count, read_time_minutes, completion, tags, collaborators,
		created_at, updated_at, last_saved_at
	FROM documents
`

func scanDocument(row rowScanner) (*document.Document, error) {
	var doc document.Document
	var tags, collaborators string
	var lastSaved sql.NullTime

	err := row.Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.ProjectID,
		&doc.Type,
		&doc.Content,
		&doc.Version,
		&doc.Status,
		&doc.Metadata.WordCount,
		&doc.Metadata.ReadTimeMinutes,
		&doc.Metadata.Completion,
		&tags,
		&collaborators,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&lastSaved,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &doc.Metadata.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(collaborators), &doc.Metadata.Collaborators); err != nil {
		return nil, fmt.Errorf("failed to decode collaborators: %w", err)
	}
	if lastSaved.Valid {
		doc.LastSavedAt = lastSaved.Time
	}

	return &doc, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
