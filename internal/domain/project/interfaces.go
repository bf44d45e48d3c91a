package project

import (
	"context"

	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/domain/phase"
)

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, tenantID string, proj *Project) error
	Get(ctx context.Context, tenantID, id string) (*Project, error)
	Update(ctx context.Context, tenantID string, proj *Project) error
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string) ([]Summary, error)
	SetPhase(ctx context.Context, tenantID, id string, p phase.Phase) error
}

// DocumentRepository provides the document persistence needed for
// export and import.
type DocumentRepository interface {
	Upsert(ctx context.Context, tenantID string, doc *document.Document) error
	GetByProject(ctx context.Context, tenantID, projectID string) ([]document.Document, error)
}
