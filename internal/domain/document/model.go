package document

import (
	"strings"
	"time"
)

// Type identifies the document variant. Exactly one document of each
// type may exist per project.
type Type string

const (
	TypeRequirements Type = "requirements"
	TypeDesign       Type = "design"
	TypeTasks        Type = "tasks"
)

// Types returns all document types in authoring order.
func Types() []Type {
	return []Type{TypeRequirements, TypeDesign, TypeTasks}
}

// ParseType validates a document type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeRequirements, TypeDesign, TypeTasks:
		return Type(s), nil
	}
	return "", ErrUnknownType
}

// Status represents the review state of a document.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusReview   Status = "review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusArchived Status = "archived"
)

// Document is a user-edited free-text specification document.
type Document struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ProjectID   string    `json:"project_id"`
	Type        Type      `json:"type"`
	Content     string    `json:"content"`
	Version     int64     `json:"version"`
	Status      Status    `json:"status"`
	Metadata    Metadata  `json:"metadata"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastSavedAt time.Time `json:"last_saved_at,omitempty"`
}

// Metadata carries derived and collaborative attributes of a document.
type Metadata struct {
	WordCount       int      `json:"word_count"`
	ReadTimeMinutes int      `json:"read_time_minutes"`
	Completion      int      `json:"completion"`
	Tags            []string `json:"tags,omitempty"`
	Collaborators   []string `json:"collaborators,omitempty"`
}

// MetadataPatch is the caller-supplied portion of Metadata accepted
// alongside a content edit. A nil slice leaves the current value
// untouched; an empty slice clears it.
type MetadataPatch struct {
	Tags          []string `json:"tags,omitempty"`
	Collaborators []string `json:"collaborators,omitempty"`
}

// Severity classifies a validation finding.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeverityInfo       Severity = "info"
	SeveritySuggestion Severity = "suggestion"
)

// Category classifies which rule family produced a finding.
type Category string

const (
	CategoryFormat       Category = "format"
	CategoryCompleteness Category = "completeness"
	CategoryConsistency  Category = "consistency"
	CategoryQuality      Category = "quality"
	CategoryMethodology  Category = "methodology"
)

// Location points at the region of the document a finding refers to.
type Location struct {
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Section string `json:"section,omitempty"`
}

// ValidationResult is a single finding from the rule engine. Findings
// are data, never errors; severity decides how callers treat them.
type ValidationResult struct {
	ID         string    `json:"id"`
	Category   Category  `json:"category"`
	Severity   Severity  `json:"severity"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	Rule       string    `json:"rule"`
	Location   *Location `json:"location,omitempty"`
}

// SearchResult is a full-text search hit over document content.
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	ProjectID  string  `json:"project_id"`
	Type       Type    `json:"type"`
	Snippet    string  `json:"snippet,omitempty"`
	Rank       float64 `json:"rank"`
}

// WordCount counts whitespace-separated words.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// ReadTimeMinutes estimates reading time at 200 words per minute.
func ReadTimeMinutes(content string) int {
	words := WordCount(content)
	if words == 0 {
		return 0
	}
	minutes := (words + 199) / 200
	return minutes
}
