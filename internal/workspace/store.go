package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/domain/event"
	"github.com/specworks/specforge/internal/domain/phase"
	"github.com/specworks/specforge/internal/domain/project"
	"github.com/specworks/specforge/internal/repository"
)

// Validator is the validation collaborator: pure per-type rule
// evaluation over document content.
type Validator interface {
	ValidateRequirements(content string) []document.ValidationResult
	ValidateDesign(content string) []document.ValidationResult
	ValidateTasks(content string) []document.ValidationResult
}

// RuleValidator is the default Validator backed by the rule engine.
type RuleValidator struct{}

func (RuleValidator) ValidateRequirements(content string) []document.ValidationResult {
	return document.ValidateRequirements(content)
}

func (RuleValidator) ValidateDesign(content string) []document.ValidationResult {
	return document.ValidateDesign(content)
}

func (RuleValidator) ValidateTasks(content string) []document.ValidationResult {
	return document.ValidateTasks(content)
}

// Options wires a Store's collaborators.
type Options struct {
	Projects  *project.Service
	Documents repository.DocumentRepository
	Events    *event.Service
	Validator Validator
	AutoSave  AutoSaveConfig
	Logger    *slog.Logger
}

// Store owns one user's in-flight specification work: the active
// project, its in-memory documents, the unsaved set, and the per-phase
// validation cache. All mutation paths go through the Store; timers
// are fields of the Store and are stopped by Close.
type Store struct {
	mu        sync.Mutex
	tenantID  string
	projects  *project.Service
	docs      repository.DocumentRepository
	events    *event.Service
	validator Validator
	logger    *slog.Logger

	project   *project.Project
	documents map[document.Type]*document.Document
	dirty     map[document.Type]bool
	lastSaved time.Time
	saveErr   error
	cache     phase.Cache
	auto      *autosaver
	closed    bool
}

// New creates a workspace store. Autosave timers are not armed here;
// the owner calls EnableAutoSave (or the Manager does, per config)
// once it is ready for background saves.
func New(tenantID string, opts Options) *Store {
	validator := opts.Validator
	if validator == nil {
		validator = RuleValidator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		tenantID:  tenantID,
		projects:  opts.Projects,
		docs:      opts.Documents,
		events:    opts.Events,
		validator: validator,
		logger:    logger,
		documents: make(map[document.Type]*document.Document),
		dirty:     make(map[document.Type]bool),
		cache:     make(phase.Cache),
	}
	s.auto = newAutosaver(opts.AutoSave, s.scheduledSave)
	return s
}

// CreateProject creates a project in the requirements phase and makes
// it the active project.
func (s *Store) CreateProject(ctx context.Context, req project.CreateRequest) (*project.Project, error) {
	proj, err := s.projects.Create(ctx, s.tenantID, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.activateLocked(proj, nil)
	s.mu.Unlock()

	s.logEvent(ctx, proj.ID, nil, event.TypeProjectCreated, fmt.Sprintf("created project %q", proj.Name))
	return proj, nil
}

// UpdateProject applies a patch to a project by id.
func (s *Store) UpdateProject(ctx context.Context, id string, req project.UpdateRequest) (*project.Project, error) {
	proj, err := s.projects.Update(ctx, s.tenantID, id, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.project != nil && s.project.ID == id {
		current := s.project.CurrentPhase
		s.project = proj
		s.project.CurrentPhase = current
	}
	s.mu.Unlock()

	s.logEvent(ctx, id, nil, event.TypeProjectUpdated, fmt.Sprintf("updated project %q", proj.Name))
	return proj, nil
}

// DeleteProject removes a project; deleting the active project clears
// the workspace.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if err := s.projects.Delete(ctx, s.tenantID, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.project != nil && s.project.ID == id {
		s.clearLocked()
	}
	s.mu.Unlock()

	s.logEvent(ctx, id, nil, event.TypeProjectDeleted, "deleted project")
	return nil
}

// OpenProject swaps the active project, reloading its documents from
// persistence and clearing the validation cache.
func (s *Store) OpenProject(ctx context.Context, id string) (*project.Project, error) {
	proj, err := s.projects.Get(ctx, s.tenantID, id)
	if err != nil {
		return nil, err
	}
	docs, err := s.docs.GetByProject(ctx, s.tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	s.mu.Lock()
	s.activateLocked(proj, docs)
	s.mu.Unlock()
	return proj, nil
}

// GetProject fetches any project by id; missing ids are an error.
func (s *Store) GetProject(ctx context.Context, id string) (*project.Project, error) {
	return s.projects.Get(ctx, s.tenantID, id)
}

// ListProjects returns summaries for the tenant's projects.
func (s *Store) ListProjects(ctx context.Context) ([]project.Summary, error) {
	return s.projects.List(ctx, s.tenantID)
}

// CurrentProject returns the active project, or nil.
func (s *Store) CurrentProject() *project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil
	}
	proj := *s.project
	return &proj
}

// CurrentPhase returns the active project's phase, defaulting to
// requirements when no project is open.
func (s *Store) CurrentPhase() phase.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return phase.Requirements
	}
	return s.project.CurrentPhase
}

// UpdateRequirements upserts the requirements document for the active
// project.
func (s *Store) UpdateRequirements(content string) {
	s.updateDocument(document.TypeRequirements, content, nil)
}

// UpdateDesign upserts the design document for the active project.
func (s *Store) UpdateDesign(content string) {
	s.updateDocument(document.TypeDesign, content, nil)
}

// UpdateTasks upserts the tasks document for the active project.
func (s *Store) UpdateTasks(content string) {
	s.updateDocument(document.TypeTasks, content, nil)
}

// UpdateDocument applies an edit to the active project's document of
// the given type, creating it lazily on first edit. Edits are applied
// in call order; each edit re-arms the debounce timer. The optional
// metadata patch sets tags and collaborators; a nil patch (or nil
// slice within it) leaves the current values alone.
func (s *Store) UpdateDocument(t document.Type, content string, meta *document.MetadataPatch) {
	s.updateDocument(t, content, meta)
}

func (s *Store) updateDocument(t document.Type, content string, meta *document.MetadataPatch) {
	s.mu.Lock()

	// Edits against a missing active project are silent no-ops.
	if s.project == nil || s.closed {
		s.mu.Unlock()
		return
	}

	now := time.Now()
	doc, ok := s.documents[t]
	if !ok {
		doc = &document.Document{
			ID:        uuid.NewString(),
			TenantID:  s.tenantID,
			ProjectID: s.project.ID,
			Type:      t,
			Version:   1,
			Status:    document.StatusDraft,
			CreatedAt: now,
		}
		s.documents[t] = doc
	}

	doc.Content = content
	doc.UpdatedAt = now
	doc.Metadata.WordCount = document.WordCount(content)
	doc.Metadata.ReadTimeMinutes = document.ReadTimeMinutes(content)
	if meta != nil {
		if meta.Tags != nil {
			doc.Metadata.Tags = append([]string(nil), meta.Tags...)
		}
		if meta.Collaborators != nil {
			doc.Metadata.Collaborators = append([]string(nil), meta.Collaborators...)
		}
	}
	results := s.dispatchValidator(t, content)
	doc.Metadata.Completion = document.CompletionPercent(t, content, results)
	s.dirty[t] = true

	s.mu.Unlock()

	s.auto.touch()
}

// Document returns a copy of the in-memory document of the given
// type, or nil when it has not been created yet.
func (s *Store) Document(t document.Type) *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[t]
	if !ok {
		return nil
	}
	copied := *doc
	return &copied
}

// HasUnsavedChanges reports whether any in-memory document has edits
// not yet committed to persistence.
func (s *Store) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty) > 0
}

// LastSaved returns the time of the most recent successful save.
func (s *Store) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// LastError returns the most recent persistence failure, if any.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// SaveDocument commits one document. Saving a document with no
// pending edits is a no-op, so the debounce and interval timers can
// both trigger saves without double-committing.
func (s *Store) SaveDocument(ctx context.Context, t document.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, t)
}

// SaveAll commits every document with pending edits. The first
// persistence failure is returned; remaining documents keep their
// unsaved mark for a later retry.
func (s *Store) SaveAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range document.Types() {
		if err := s.saveLocked(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) saveLocked(ctx context.Context, t document.Type) error {
	if s.closed {
		return ErrClosed
	}
	if s.project == nil {
		return nil
	}
	doc, ok := s.documents[t]
	if !ok || !s.dirty[t] {
		return nil
	}

	doc.Version++
	doc.LastSavedAt = time.Now()
	if err := s.docs.Upsert(ctx, s.tenantID, doc); err != nil {
		doc.Version--
		s.saveErr = err
		return fmt.Errorf("saving %s document: %w", t, err)
	}

	delete(s.dirty, t)
	s.lastSaved = doc.LastSavedAt
	s.saveErr = nil

	docType := t
	s.logEvent(ctx, doc.ProjectID, &docType, event.TypeDocumentSaved,
		fmt.Sprintf("saved %s document v%d", t, doc.Version))
	return nil
}

// scheduledSave is the timer-driven save path. Failures are logged
// and swallowed; the unsaved mark survives so the next tick retries.
func (s *Store) scheduledSave() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.SaveAll(ctx); err != nil {
		s.logger.Warn("autosave failed", "error", err)
	}
}

// ValidateDocument runs the validation collaborator over the current
// content of one document type. A missing document validates as empty
// content, so the finding set carries the failure as data.
func (s *Store) ValidateDocument(t document.Type) []document.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	content := ""
	if doc, ok := s.documents[t]; ok {
		content = doc.Content
	}
	return s.dispatchValidator(t, content)
}

// ValidateAllDocuments validates every document type.
func (s *Store) ValidateAllDocuments() map[document.Type][]document.ValidationResult {
	results := make(map[document.Type][]document.ValidationResult, len(document.Types()))
	for _, t := range document.Types() {
		results[t] = s.ValidateDocument(t)
	}
	return results
}

// ValidatePhase validates the document backing a phase and caches the
// summary. This is the only path that writes the cache; the
// transition gate only reads it.
func (s *Store) ValidatePhase(ctx context.Context, p phase.Phase) *phase.ValidationSummary {
	s.mu.Lock()
	if s.project == nil {
		s.mu.Unlock()
		return nil
	}

	summary := s.summarizeLocked(p)
	s.cache[p] = summary
	projectID := s.project.ID
	s.mu.Unlock()

	s.logEvent(ctx, projectID, nil, event.TypeValidationRun,
		fmt.Sprintf("validated %s phase: %d%% complete", p, summary.CompletionPercentage))
	return summary
}

func (s *Store) summarizeLocked(p phase.Phase) *phase.ValidationSummary {
	t, ok := phase.DocType(p)
	if !ok {
		// Phases without a document have nothing to validate.
		return &phase.ValidationSummary{
			Phase:                p,
			IsValid:              true,
			IsComplete:           true,
			CompletionPercentage: 100,
		}
	}

	content := ""
	if doc, exists := s.documents[t]; exists {
		content = doc.Content
	}
	results := s.dispatchValidator(t, content)

	return &phase.ValidationSummary{
		Phase:                p,
		IsValid:              document.CountErrors(results) == 0,
		IsComplete:           document.IsComplete(t, content, results),
		Results:              results,
		CompletionPercentage: document.CompletionPercent(t, content, results),
		RequiredFields:       document.RequiredFields(t),
		MissingFields:        document.MissingFields(t, content),
	}
}

// PhaseSummary returns the cached validation summary for a phase, or
// nil if the phase has not been validated since the project opened.
func (s *Store) PhaseSummary(p phase.Phase) *phase.ValidationSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache[p]
}

// CanTransitionTo reports whether moving to the target phase is
// currently permitted. The decision reads the validation cache as-is;
// it never re-validates.
func (s *Store) CanTransitionTo(target phase.Phase) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return false
	}
	return phase.CanTransition(s.project.CurrentPhase, target, s.cache) == nil
}

// TransitionTo re-checks the gate and, if permitted, advances the
// active project's phase and persists it. A denied forward move
// returns a TransitionError naming the blocking phase.
func (s *Store) TransitionTo(ctx context.Context, target phase.Phase) error {
	s.mu.Lock()
	if s.project == nil {
		s.mu.Unlock()
		return nil
	}
	from := s.project.CurrentPhase
	if err := phase.CanTransition(from, target, s.cache); err != nil {
		s.mu.Unlock()
		return err
	}
	s.project.CurrentPhase = target
	s.project.UpdatedAt = time.Now()
	projectID := s.project.ID
	s.mu.Unlock()

	if err := s.projects.SetPhase(ctx, s.tenantID, projectID, target); err != nil {
		// Roll back the in-memory phase so state matches the record.
		s.mu.Lock()
		if s.project != nil && s.project.ID == projectID {
			s.project.CurrentPhase = from
		}
		s.mu.Unlock()
		return err
	}

	s.logEvent(ctx, projectID, nil, event.TypePhaseTransition,
		fmt.Sprintf("transitioned from %s to %s", from, target))
	return nil
}

// ExportProject serializes a project by id; an empty id exports the
// active project.
func (s *Store) ExportProject(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		s.mu.Lock()
		if s.project == nil {
			s.mu.Unlock()
			return nil, ErrNoActiveProject
		}
		id = s.project.ID
		s.mu.Unlock()

		// Flush pending edits so the export reflects what the user sees.
		if err := s.SaveAll(ctx); err != nil {
			return nil, err
		}
	}
	return s.projects.Export(ctx, s.tenantID, id)
}

// ImportProject parses an export envelope, inserts it under a fresh
// identity, and makes it the active project.
func (s *Store) ImportProject(ctx context.Context, data []byte) (*project.Project, error) {
	proj, err := s.projects.Import(ctx, s.tenantID, data)
	if err != nil {
		return nil, err
	}

	docs, err := s.docs.GetByProject(ctx, s.tenantID, proj.ID)
	if err != nil {
		return nil, fmt.Errorf("loading imported documents: %w", err)
	}

	s.mu.Lock()
	s.activateLocked(proj, docs)
	s.mu.Unlock()

	s.logEvent(ctx, proj.ID, nil, event.TypeProjectImported, fmt.Sprintf("imported project %q", proj.Name))
	return proj, nil
}

// ConfigureAutoSave merges a partial config; if autosave is running it
// is re-armed with the new timing.
func (s *Store) ConfigureAutoSave(patch AutoSavePatch) AutoSaveConfig {
	return s.auto.configure(patch)
}

// EnableAutoSave arms the interval timer and allows debounce arming.
func (s *Store) EnableAutoSave() {
	s.auto.enable()
}

// DisableAutoSave clears both timers.
func (s *Store) DisableAutoSave() {
	s.auto.disable()
}

// AutoSave returns the current autosave configuration.
func (s *Store) AutoSave() AutoSaveConfig {
	return s.auto.config()
}

// Close tears down the workspace: both timers are cleared so no
// orphaned callback can reference the store afterwards.
func (s *Store) Close() {
	s.auto.stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// dispatchValidator fans out to the per-type collaborator method.
// The switch is exhaustive over document types.
func (s *Store) dispatchValidator(t document.Type, content string) []document.ValidationResult {
	switch t {
	case document.TypeRequirements:
		return s.validator.ValidateRequirements(content)
	case document.TypeDesign:
		return s.validator.ValidateDesign(content)
	case document.TypeTasks:
		return s.validator.ValidateTasks(content)
	default:
		return nil
	}
}

func (s *Store) activateLocked(proj *project.Project, docs []document.Document) {
	s.project = proj
	s.documents = make(map[document.Type]*document.Document, len(docs))
	for i := range docs {
		doc := docs[i]
		s.documents[doc.Type] = &doc
	}
	s.dirty = make(map[document.Type]bool)
	s.cache = make(phase.Cache)
	s.saveErr = nil
}

func (s *Store) clearLocked() {
	s.project = nil
	s.documents = make(map[document.Type]*document.Document)
	s.dirty = make(map[document.Type]bool)
	s.cache = make(phase.Cache)
	s.saveErr = nil
}

func (s *Store) logEvent(ctx context.Context, projectID string, docType *document.Type, eventType event.Type, summary string) {
	if s.events == nil {
		return
	}
	_ = s.events.Log(ctx, s.tenantID, &event.Entry{
		ProjectID:    projectID,
		DocumentType: docType,
		EventType:    eventType,
		Summary:      summary,
	})
}
