package phase

import (
	"github.com/specworks/specforge/internal/domain/document"
)

// Phase is one of the six ordered stages a specification project
// passes through.
type Phase string

const (
	Requirements   Phase = "requirements"
	Design         Phase = "design"
	Tasks          Phase = "tasks"
	Implementation Phase = "implementation"
	Review         Phase = "review"
	Completed      Phase = "completed"
)

var ordered = []Phase{Requirements, Design, Tasks, Implementation, Review, Completed}

// All returns the phases in workflow order.
func All() []Phase {
	phases := make([]Phase, len(ordered))
	copy(phases, ordered)
	return phases
}

// Order returns the position of p in the workflow, or -1 if unknown.
func Order(p Phase) int {
	for i, candidate := range ordered {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Parse validates a phase string.
func Parse(s string) (Phase, error) {
	if Order(Phase(s)) < 0 {
		return "", ErrUnknownPhase
	}
	return Phase(s), nil
}

// DocType returns the document type authored during p. The later
// phases (implementation, review, completed) have no document; ok is
// false for those.
func DocType(p Phase) (document.Type, bool) {
	switch p {
	case Requirements:
		return document.TypeRequirements, true
	case Design:
		return document.TypeDesign, true
	case Tasks:
		return document.TypeTasks, true
	}
	return "", false
}

// ValidationSummary is the cached outcome of validating one phase's
// document. It is the unit the transition gate reads.
type ValidationSummary struct {
	Phase                Phase                       `json:"phase"`
	IsValid              bool                        `json:"is_valid"`
	IsComplete           bool                        `json:"is_complete"`
	Results              []document.ValidationResult `json:"validation_results"`
	CompletionPercentage int                         `json:"completion_percentage"`
	RequiredFields       []string                    `json:"required_fields,omitempty"`
	MissingFields        []string                    `json:"missing_fields,omitempty"`
}
