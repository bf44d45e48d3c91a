package mocks

import (
	"context"

	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/domain/event"
	"github.com/specworks/specforge/internal/domain/phase"
	"github.com/specworks/specforge/internal/domain/project"
	"github.com/specworks/specforge/internal/repository"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for repository.ProjectRepository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, tenantID string, proj *project.Project) error {
	args := m.Called(ctx, tenantID, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, tenantID string, proj *project.Project) error {
	args := m.Called(ctx, tenantID, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *ProjectRepository) List(ctx context.Context, tenantID string) ([]project.Summary, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]project.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) SetPhase(ctx context.Context, tenantID, id string, p phase.Phase) error {
	args := m.Called(ctx, tenantID, id, p)
	return args.Error(0)
}

// DocumentRepository is a mock for repository.DocumentRepository.
type DocumentRepository struct {
	mock.Mock
}

func (m *DocumentRepository) Upsert(ctx context.Context, tenantID string, doc *document.Document) error {
	args := m.Called(ctx, tenantID, doc)
	return args.Error(0)
}

func (m *DocumentRepository) Get(ctx context.Context, tenantID, projectID string, t document.Type) (*document.Document, error) {
	args := m.Called(ctx, tenantID, projectID, t)
	if doc, ok := args.Get(0).(*document.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentRepository) GetByProject(ctx context.Context, tenantID, projectID string) ([]document.Document, error) {
	args := m.Called(ctx, tenantID, projectID)
	if docs, ok := args.Get(0).([]document.Document); ok {
		return docs, args.Error(1)
	}
	return nil, args.Error(1)
}

// EventRepository is a mock for repository.EventRepository.
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) Log(ctx context.Context, tenantID string, entry *event.Entry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *EventRepository) List(ctx context.Context, tenantID string, opts event.ListOptions) ([]event.Entry, error) {
	args := m.Called(ctx, tenantID, opts)
	if entries, ok := args.Get(0).([]event.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// SearchRepository is a mock for repository.SearchRepository.
type SearchRepository struct {
	mock.Mock
}

func (m *SearchRepository) Search(ctx context.Context, tenantID, projectID, query string, opts repository.SearchOptions) ([]document.SearchResult, error) {
	args := m.Called(ctx, tenantID, projectID, query, opts)
	if results, ok := args.Get(0).([]document.SearchResult); ok {
		return results, args.Error(1)
	}
	return nil, args.Error(1)
}
