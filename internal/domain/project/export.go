package project

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/domain/phase"
)

// EnvelopeVersion is the export format version stamped on envelopes.
const EnvelopeVersion = "1.0"

// Envelope is the JSON export/import format for a project and its
// documents.
type Envelope struct {
	Project    Project           `json:"project"`
	Documents  EnvelopeDocuments `json:"documents"`
	ExportedAt time.Time         `json:"exportedAt"`
	Version    string            `json:"version"`
}

// EnvelopeDocuments holds one nullable slot per document type.
type EnvelopeDocuments struct {
	Requirements *document.Document `json:"requirements"`
	Design       *document.Document `json:"design"`
	Tasks        *document.Document `json:"tasks"`
}

// Export serializes a project and its documents to an envelope.
func (s *Service) Export(ctx context.Context, tenantID, id string) ([]byte, error) {
	proj, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	docs, err := s.docs.GetByProject(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	envelope := Envelope{
		Project:    *proj,
		ExportedAt: time.Now(),
		Version:    EnvelopeVersion,
	}
	for i := range docs {
		doc := docs[i]
		switch doc.Type {
		case document.TypeRequirements:
			envelope.Documents.Requirements = &doc
		case document.TypeDesign:
			envelope.Documents.Design = &doc
		case document.TypeTasks:
			envelope.Documents.Tasks = &doc
		}
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding envelope: %w", err)
	}
	return data, nil
}

// Import parses an envelope and inserts the project under a fresh
// identity. The embedded ids are never reused.
func (s *Service) Import(ctx context.Context, tenantID string, data []byte) (*Project, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, ErrInvalidFormat
	}
	if strings.TrimSpace(envelope.Project.Name) == "" {
		return nil, ErrInvalidFormat
	}
	if envelope.Version != "" && envelope.Version != EnvelopeVersion {
		return nil, ErrInvalidFormat
	}

	now := time.Now()
	proj := envelope.Project
	proj.ID = uuid.NewString()
	proj.TenantID = tenantID
	proj.CreatedAt = now
	proj.UpdatedAt = now
	if phase.Order(proj.CurrentPhase) < 0 {
		proj.CurrentPhase = phase.Requirements
	}
	if proj.Status == "" {
		proj.Status = StatusActive
	}
	if proj.Complexity == "" {
		proj.Complexity = ComplexityIntermediate
	}

	if err := s.repo.Create(ctx, tenantID, &proj); err != nil {
		return nil, fmt.Errorf("importing project: %w", err)
	}

	slots := []struct {
		doc *document.Document
		t   document.Type
	}{
		{envelope.Documents.Requirements, document.TypeRequirements},
		{envelope.Documents.Design, document.TypeDesign},
		{envelope.Documents.Tasks, document.TypeTasks},
	}
	for _, slot := range slots {
		if slot.doc == nil {
			continue
		}
		doc := *slot.doc
		doc.ID = uuid.NewString()
		doc.TenantID = tenantID
		doc.ProjectID = proj.ID
		doc.Type = slot.t
		if doc.Status == "" {
			doc.Status = document.StatusDraft
		}
		if doc.Version < 1 {
			doc.Version = 1
		}
		doc.CreatedAt = now
		doc.UpdatedAt = now
		if err := s.docs.Upsert(ctx, tenantID, &doc); err != nil {
			return nil, fmt.Errorf("importing %s document: %w", slot.t, err)
		}
	}

	return &proj, nil
}
