package project

import (
	"time"

	"github.com/specworks/specforge/internal/domain/phase"
)

// Complexity tiers a project for template and validation defaults.
type Complexity string

const (
	ComplexityBasic        Complexity = "basic"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// Status represents the lifecycle state of a project.
type Status string

const (
	StatusActive    Status = "active"
	StatusArchived  Status = "archived"
	StatusCompleted Status = "completed"
)

// Project is a container for one specification workflow: at most one
// document per type, advancing through the six phases.
type Project struct {
	ID           string      `json:"id"`
	TenantID     string      `json:"tenant_id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Domain       string      `json:"domain,omitempty"`
	Complexity   Complexity  `json:"complexity"`
	Methodology  string      `json:"methodology,omitempty"`
	Status       Status      `json:"status"`
	CurrentPhase phase.Phase `json:"current_phase"`
	Settings     Settings    `json:"settings"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Settings carries per-project collaboration, validation, template,
// and notification defaults.
type Settings struct {
	Collaboration CollaborationSettings `json:"collaboration"`
	Validation    ValidationSettings    `json:"validation"`
	Templates     TemplateSettings      `json:"templates"`
	Notifications NotificationSettings  `json:"notifications"`
}

type CollaborationSettings struct {
	Enabled          bool `json:"enabled"`
	MaxCollaborators int  `json:"max_collaborators"`
}

type ValidationSettings struct {
	Strict       bool `json:"strict"`
	AutoValidate bool `json:"auto_validate"`
}

type TemplateSettings struct {
	Methodology string `json:"methodology,omitempty"`
}

type NotificationSettings struct {
	OnPhaseChange     bool `json:"on_phase_change"`
	OnValidationError bool `json:"on_validation_error"`
}

// DefaultSettings returns the settings applied to new projects.
func DefaultSettings() Settings {
	return Settings{
		Collaboration: CollaborationSettings{Enabled: false, MaxCollaborators: 5},
		Validation:    ValidationSettings{Strict: false, AutoValidate: true},
		Notifications: NotificationSettings{OnPhaseChange: true, OnValidationError: true},
	}
}

// Summary is a lightweight representation for listing
type Summary struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Status        Status      `json:"status"`
	CurrentPhase  phase.Phase `json:"current_phase"`
	DocumentCount int         `json:"document_count"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
