package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/repository"
)

// SearchRepository implements repository.SearchRepository for SQLite
type SearchRepository struct {
	db *DB
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db *DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Search performs a full-text search over document content
func (r *SearchRepository) Search(ctx context.Context, tenantID, projectID, query string, opts repository.SearchOptions) ([]document.SearchResult, error) {
	baseQuery := `
		SELECT d.id, d.project_id, d.type,
			snippet(documents_fts, 0, '[', ']', '...', 12) as snippet,
			bm25(documents_fts) as rank
		FROM documents_fts
		JOIN documents d ON d.rowid = documents_fts.rowid
		WHERE d.tenant_id = ? AND documents_fts MATCH ?
	`

	args := []any{tenantID, query}

	if projectID != "" {
		baseQuery += " AND d.project_id = ?"
		args = append(args, projectID)
	}

	if len(opts.Types) > 0 {
		placeholders := make([]string, len(opts.Types))
		for i, t := range opts.Types {
			placeholders[i] = "?"
			args = append(args, t)
		}
		baseQuery += fmt.Sprintf(" AND d.type IN (%s)", strings.Join(placeholders, ","))
	}

	baseQuery += " ORDER BY rank"

	// OFFSET is only valid after a LIMIT clause, so an offset without
	// an explicit limit gets the default page size.
	limit := opts.Limit
	if limit <= 0 && opts.Offset > 0 {
		limit = defaultPageSize
	}
	if limit > 0 {
		baseQuery += " LIMIT ?"
		args = append(args, limit)
	}
	if opts.Offset > 0 {
		baseQuery += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	defer rows.Close()

	var results []document.SearchResult
	for rows.Next() {
		var result document.SearchResult
		if err := rows.Scan(
			&result.DocumentID,
			&result.ProjectID,
			&result.Type,
			&result.Snippet,
			&result.Rank,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}
