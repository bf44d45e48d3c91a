package document

import (
	"fmt"
	"regexp"
	"strings"
)

// Minimum content lengths used by the completion gate.
const (
	minRequirementsLength = 100
	minDesignLength       = 200
)

var (
	userStoryRe   = regexp.MustCompile(`(?is)\bas an?\b.{0,200}?\bi want\b.{0,400}?\bso that\b`)
	userStoryTag  = regexp.MustCompile(`\*\*User Story:?\*\*`)
	earsClauseRe  = regexp.MustCompile(`(?is)\b(?:WHEN|IF)\b.{1,300}?\bTHEN\b.{1,300}?\bSHALL\b`)
	introRe       = regexp.MustCompile(`(?im)^#{1,3}\s*introduction\b`)
	numberedReqRe = regexp.MustCompile(`(?im)^#{2,4}\s*(?:requirement\s*)?\d+`)

	overviewRe  = regexp.MustCompile(`(?im)^#{1,4}\s*overview\b`)
	architectRe = regexp.MustCompile(`(?im)^#{1,4}\s*architecture\b`)
	componentRe = regexp.MustCompile(`(?im)^#{1,4}\s*components?\b`)
	dataModelRe = regexp.MustCompile(`(?im)^#{1,4}\s*data\s+models?\b`)
	diagramRe   = regexp.MustCompile("(?i)```\\s*(?:mermaid|plantuml|dot|graphviz)|!\\[[^\\]]*\\]\\(")
	techWordRe  = regexp.MustCompile(`(?i)\b(?:golang|go|python|typescript|javascript|java|rust|react|vue|angular|node(?:\.js)?|postgres(?:ql)?|mysql|sqlite|mongodb|redis|kafka|nats|docker|kubernetes|aws|gcp|azure|graphql|grpc|rest|http|websocket|api|database|framework|microservices?)\b`)

	checklistRe    = regexp.MustCompile(`(?m)^\s*-\s\[[ xX]\]`)
	numberedTaskRe = regexp.MustCompile(`(?m)^\s*-\s\[[ xX]\]\s*\d+\.`)
	subTaskRe      = regexp.MustCompile(`(?m)^\s*-\s\[[ xX]\]\s*\d+\.\d+`)
	reqRefRe       = regexp.MustCompile(`_Requirements:[^_]*_`)
)

// Validate runs the rule set for the given document type over content.
// The engine is pure: same content, same findings, in the same order.
func Validate(t Type, content string) ([]ValidationResult, error) {
	switch t {
	case TypeRequirements:
		return ValidateRequirements(content), nil
	case TypeDesign:
		return ValidateDesign(content), nil
	case TypeTasks:
		return ValidateTasks(content), nil
	default:
		return nil, ErrUnknownType
	}
}

// ValidateRequirements scores a requirements document.
func ValidateRequirements(content string) []ValidationResult {
	if empty(content) {
		return []ValidationResult{emptyContentResult(TypeRequirements, "Requirements document is empty")}
	}

	var results []ValidationResult

	if !userStoryRe.MatchString(content) && !userStoryTag.MatchString(content) {
		results = append(results, ValidationResult{
			ID:         ruleID(TypeRequirements, "user-story-required"),
			Category:   CategoryCompleteness,
			Severity:   SeverityError,
			Message:    "No user stories found",
			Suggestion: "Add at least one user story: \"As a <role>, I want <capability>, so that <benefit>\"",
			Rule:       "user-story-required",
		})
	}

	if !earsClauseRe.MatchString(content) {
		results = append(results, ValidationResult{
			ID:         ruleID(TypeRequirements, "ears-format"),
			Category:   CategoryMethodology,
			Severity:   SeverityWarning,
			Message:    "No EARS-format acceptance criteria found",
			Suggestion: "Write acceptance criteria as \"WHEN <event> THEN <system> SHALL <response>\"",
			Rule:       "ears-format",
		})
	}

	if !introRe.MatchString(content) {
		results = append(results, ValidationResult{
			ID:         ruleID(TypeRequirements, "introduction-section"),
			Category:   CategoryFormat,
			Severity:   SeverityWarning,
			Message:    "Missing introduction section",
			Suggestion: "Start the document with an \"# Introduction\" section summarizing the feature",
			Rule:       "introduction-section",
		})
	}

	if len(numberedReqRe.FindAllString(content, -1)) < 2 {
		results = append(results, ValidationResult{
			ID:         ruleID(TypeRequirements, "numbered-requirements"),
			Category:   CategoryFormat,
			Severity:   SeverityWarning,
			Message:    "Fewer than two numbered requirement sections",
			Suggestion: "Group requirements under numbered headings (\"### Requirement 1\", \"### Requirement 2\", ...)",
			Rule:       "numbered-requirements",
		})
	}

	if WordCount(content) < 100 {
		results = append(results, wordCountResult(TypeRequirements, 100))
	}

	return results
}

// ValidateDesign scores a design document.
func ValidateDesign(content string) []ValidationResult {
	if empty(content) {
		return []ValidationResult{emptyContentResult(TypeDesign, "Design document is empty")}
	}

	var results []ValidationResult

	sections := []struct {
		name string
		re   *regexp.Regexp
	}{
		{"Overview", overviewRe},
		{"Architecture", architectRe},
		{"Components", componentRe},
		{"Data Models", dataModelRe},
	}
	for _, section := range sections {
		if !section.re.MatchString(content) {
			rule := "section-" + sectionSlug(section.name)
			results = append(results, ValidationResult{
				ID:         ruleID(TypeDesign, rule),
				Category:   CategoryCompleteness,
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Missing %s section", section.name),
				Suggestion: fmt.Sprintf("Add a \"## %s\" section", section.name),
				Rule:       rule,
			})
		}
	}

	if !diagramRe.MatchString(content) {
		results = append(results, ValidationResult{
			ID:         ruleID(TypeDesign, "diagram-missing"),
			Category:   CategoryQuality,
			Severity:   SeverityInfo,
			Message:    "No architecture diagram found",
			Suggestion: "Consider adding a mermaid diagram or embedded image of the architecture",
			Rule:       "diagram-missing",
		})
	}

	if len(techWordRe.FindAllString(content, -1)) < 3 {
		results = append(results, ValidationResult{
			ID:         ruleID(TypeDesign, "tech-stack"),
			Category:   CategoryQuality,
			Severity:   SeverityWarning,
			Message:    "Design barely mentions concrete technologies",
			Suggestion: "Name the languages, frameworks, and storage the design commits to",
			Rule:       "tech-stack",
		})
	}

	if WordCount(content) < 200 {
		results = append(results, wordCountResult(TypeDesign, 200))
	}

	return results
}

// ValidateTasks scores a task-list document.
func ValidateTasks(content string) []ValidationResult {
	if empty(content) {
		return []ValidationResult{emptyContentResult(TypeTasks, "Tasks document is empty")}
	}

	var results []ValidationResult

	items := checklistRe.FindAllString(content, -1)
	if len(items) == 0 {
		results = append(results, ValidationResult{
			ID:         ruleID(TypeTasks, "checklist-required"),
			Category:   CategoryFormat,
			Severity:   SeverityError,
			Message:    "No checklist items found",
			Suggestion: "List tasks as markdown checkboxes: \"- [ ] 1. Implement ...\"",
			Rule:       "checklist-required",
		})
	} else if len(items) < 3 {
		results = append(results, ValidationResult{
			ID:         ruleID(TypeTasks, "checklist-count"),
			Category:   CategoryCompleteness,
			Severity:   SeverityWarning,
			Message:    "Fewer than three tasks defined",
			Suggestion: "Break the implementation into more granular steps",
			Rule:       "checklist-count",
		})
	}

	if len(items) > 0 && !numberedTaskRe.MatchString(content) {
		results = append(results, ValidationResult{
			ID:         ruleID(TypeTasks, "task-numbering"),
			Category:   CategoryFormat,
			Severity:   SeverityInfo,
			Message:    "Tasks are not numbered",
			Suggestion: "Number tasks (\"- [ ] 1. ...\") so they can be referenced",
			Rule:       "task-numbering",
		})
	}

	if !reqRefRe.MatchString(content) {
		results = append(results, ValidationResult{
			ID:         ruleID(TypeTasks, "requirements-traceability"),
			Category:   CategoryConsistency,
			Severity:   SeverityWarning,
			Message:    "Tasks do not reference originating requirements",
			Suggestion: "Append \"_Requirements: 1.1, 1.2_\" to each task",
			Rule:       "requirements-traceability",
		})
	}

	if len(items) > 5 && !subTaskRe.MatchString(content) {
		results = append(results, ValidationResult{
			ID:         ruleID(TypeTasks, "task-decomposition"),
			Category:   CategoryQuality,
			Severity:   SeverityInfo,
			Message:    "Large flat task list",
			Suggestion: "Decompose tasks hierarchically (\"- [ ] 1.1 ...\", \"- [ ] 1.2 ...\")",
			Rule:       "task-decomposition",
		})
	}

	return results
}

// IsComplete reports whether the finding set and content pass the
// phase-advancement gate for the document type.
func IsComplete(t Type, content string, results []ValidationResult) bool {
	if CountErrors(results) > 0 {
		return false
	}
	switch t {
	case TypeRequirements:
		return len(content) > minRequirementsLength
	case TypeDesign:
		return len(content) > minDesignLength
	case TypeTasks:
		return checklistRe.MatchString(content)
	}
	return false
}

// CompletionPercent derives the 0-100 completion score.
func CompletionPercent(t Type, content string, results []ValidationResult) int {
	if IsComplete(t, content, results) {
		return 100
	}
	pct := 100 - CountErrors(results)*25
	if pct < 0 {
		pct = 0
	}
	return pct
}

// CountErrors counts error-severity findings.
func CountErrors(results []ValidationResult) int {
	count := 0
	for _, res := range results {
		if res.Severity == SeverityError {
			count++
		}
	}
	return count
}

func empty(content string) bool {
	for _, r := range content {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func emptyContentResult(t Type, message string) ValidationResult {
	return ValidationResult{
		ID:         ruleID(t, "content-required"),
		Category:   CategoryCompleteness,
		Severity:   SeverityError,
		Message:    message,
		Suggestion: "Add content before validating",
		Rule:       "content-required",
	}
}

func wordCountResult(t Type, minWords int) ValidationResult {
	return ValidationResult{
		ID:         ruleID(t, "word-count"),
		Category:   CategoryQuality,
		Severity:   SeverityWarning,
		Message:    fmt.Sprintf("Document is shorter than %d words", minWords),
		Suggestion: "Short documents usually mean missing detail; expand before moving on",
		Rule:       "word-count",
	}
}

func ruleID(t Type, rule string) string {
	return string(t) + "/" + rule
}

func sectionSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
