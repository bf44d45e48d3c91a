package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/specworks/specforge/internal/domain/phase"
	"github.com/specworks/specforge/internal/repository/repoerr"
)

// Service handles project operations.
type Service struct {
	repo   Repository
	docs   DocumentRepository
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, docs DocumentRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, docs: docs, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Name        string
	Description string
	Domain      string
	Complexity  Complexity
	Methodology string
}

// UpdateRequest defines an optional-field patch for a project.
type UpdateRequest struct {
	Name        *string
	Description *string
	Domain      *string
	Methodology *string
	Status      *Status
}

// Create creates a new project in the requirements phase.
func (s *Service) Create(ctx context.Context, tenantID string, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidInput
	}

	complexity := req.Complexity
	if complexity == "" {
		complexity = ComplexityIntermediate
	}

	now := time.Now()
	proj := &Project{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Name:         req.Name,
		Description:  req.Description,
		Domain:       req.Domain,
		Complexity:   complexity,
		Methodology:  req.Methodology,
		Status:       StatusActive,
		CurrentPhase: phase.Requirements,
		Settings:     DefaultSettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, tenantID, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns project summaries.
func (s *Service) List(ctx context.Context, tenantID string) ([]Summary, error) {
	return s.repo.List(ctx, tenantID)
}

// Update applies a patch to a project.
func (s *Service) Update(ctx context.Context, tenantID, id string, req UpdateRequest) (*Project, error) {
	proj, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrInvalidInput
		}
		proj.Name = *req.Name
	}
	if req.Description != nil {
		proj.Description = *req.Description
	}
	if req.Domain != nil {
		proj.Domain = *req.Domain
	}
	if req.Methodology != nil {
		proj.Methodology = *req.Methodology
	}
	if req.Status != nil {
		proj.Status = *req.Status
	}
	proj.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, tenantID, proj); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return proj, nil
}

// Delete removes a project and its documents.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

// SetPhase persists a phase change onto the project record.
func (s *Service) SetPhase(ctx context.Context, tenantID, id string, p phase.Phase) error {
	if err := s.repo.SetPhase(ctx, tenantID, id, p); err != nil {
		if errors.Is(err, repoerr.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("setting phase: %w", err)
	}
	return nil
}
