package repository

import (
	"context"

	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/domain/event"
	"github.com/specworks/specforge/internal/domain/phase"
	"github.com/specworks/specforge/internal/domain/project"
)

// ProjectRepository manages project persistence
type ProjectRepository interface {
	Create(ctx context.Context, tenantID string, proj *project.Project) error
	Get(ctx context.Context, tenantID, id string) (*project.Project, error)
	Update(ctx context.Context, tenantID string, proj *project.Project) error
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string) ([]project.Summary, error)
	SetPhase(ctx context.Context, tenantID, id string, p phase.Phase) error
}

// DocumentRepository manages document persistence. Upsert is the
// commit operation the workspace's save path awaits.
type DocumentRepository interface {
	Upsert(ctx context.Context, tenantID string, doc *document.Document) error
	Get(ctx context.Context, tenantID, projectID string, t document.Type) (*document.Document, error)
	GetByProject(ctx context.Context, tenantID, projectID string) ([]document.Document, error)
}

// EventRepository manages workflow event log persistence
type EventRepository interface {
	Log(ctx context.Context, tenantID string, entry *event.Entry) error
	List(ctx context.Context, tenantID string, opts event.ListOptions) ([]event.Entry, error)
}

// SearchRepository manages full-text search over document content
type SearchRepository interface {
	Search(ctx context.Context, tenantID, projectID, query string, opts SearchOptions) ([]document.SearchResult, error)
}

// SearchOptions provides filtering options for search
type SearchOptions struct {
	Types  []document.Type
	Limit  int
	Offset int
}
