package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/specworks/specforge/internal/domain/phase"
	"github.com/specworks/specforge/internal/domain/project"
	"github.com/specworks/specforge/internal/repository"
)

// ProjectRepository implements repository.ProjectRepository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, tenantID string, proj *project.Project) error {
	settings, err := json.Marshal(proj.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		INSERT INTO projects (
			id, tenant_id, name, description, domain, complexity,
			methodology, status, current_phase, settings, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		proj.ID,
		tenantID,
		proj.Name,
		proj.Description,
		proj.Domain,
		proj.Complexity,
		proj.Methodology,
		proj.Status,
		proj.CurrentPhase,
		string(settings),
		proj.CreatedAt,
		proj.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	query := `
		SELECT id, tenant_id, name, description, domain, complexity,
			methodology, status, current_phase, settings, created_at, updated_at
		FROM projects
		WHERE id = ? AND tenant_id = ?
	`

	return scanProject(r.db.QueryRowContext(ctx, query, id, tenantID))
}

// Update persists project fields
func (r *ProjectRepository) Update(ctx context.Context, tenantID string, proj *project.Project) error {
	settings, err := json.Marshal(proj.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		UPDATE projects
		SET name = ?, description = ?, domain = ?, complexity = ?,
			methodology = ?, status = ?, settings = ?, updated_at = ?
		WHERE id = ? AND tenant_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		proj.Name,
		proj.Description,
		proj.Domain,
		proj.Complexity,
		proj.Methodology,
		proj.Status,
		string(settings),
		proj.UpdatedAt,
		proj.ID,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a project; documents cascade.
func (r *ProjectRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns project summaries with document counts
func (r *ProjectRepository) List(ctx context.Context, tenantID string) ([]project.Summary, error) {
	query := `
		SELECT p.id, p.name, p.description, p.status, p.current_phase,
			(SELECT COUNT(*) FROM documents d WHERE d.project_id = p.id) as document_count,
			p.created_at, p.updated_at
		FROM projects p
		WHERE p.tenant_id = ?
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var summaries []project.Summary
	for rows.Next() {
		var summary project.Summary
		var description sql.NullString
		if err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&description,
			&summary.Status,
			&summary.CurrentPhase,
			&summary.DocumentCount,
			&summary.CreatedAt,
			&summary.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project summary: %w", err)
		}
		summary.Description = description.String
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

// SetPhase persists a phase change
func (r *ProjectRepository) SetPhase(ctx context.Context, tenantID, id string, p phase.Phase) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET current_phase = ?, updated_at = ? WHERE id = ? AND tenant_id = ?`,
		p, time.Now(), id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to set phase: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check phase update: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*project.Project, error) {
	var proj project.Project
	var description, domain, methodology sql.NullString
	var settings string

	err := row.Scan(
		&proj.ID,
		&proj.TenantID,
		&proj.Name,
		&description,
		&domain,
		&proj.Complexity,
		&methodology,
		&proj.Status,
		&proj.CurrentPhase,
		&settings,
		&proj.CreatedAt,
		&proj.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	proj.Description = description.String
	proj.Domain = domain.String
	proj.Methodology = methodology.String
	if err := json.Unmarshal([]byte(settings), &proj.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return &proj, nil
}
