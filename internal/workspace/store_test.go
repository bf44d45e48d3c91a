package workspace_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/specworks/specforge/internal/domain/document"
	"github.com/specworks/specforge/internal/domain/phase"
	"github.com/specworks/specforge/internal/domain/project"
	"github.com/specworks/specforge/internal/repository"
	"github.com/specworks/specforge/internal/workspace"
)

const completeRequirements = `# Introduction

A specification workspace that keeps authoring, validation, and phase
state together for one project at a time.

### Requirement 1

**User Story:** As a developer, I want workspace edits validated on the fly, so that problems surface before saving.

WHEN the user edits a document THEN the system SHALL re-run validation.

### Requirement 2

**User Story:** As a lead, I want phase gates, so that design starts from complete requirements.
`

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]project.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]project.Project)}
}

func (f *fakeProjectRepo) Create(_ context.Context, _ string, proj *project.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[proj.ID] = *proj
	return nil
}

func (f *fakeProjectRepo) Get(_ context.Context, _ string, id string) (*project.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	proj, ok := f.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &proj, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, _ string, proj *project.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[proj.ID]; !ok {
		return repository.ErrNotFound
	}
	f.projects[proj.ID] = *proj
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectRepo) List(_ context.Context, _ string) ([]project.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summaries := make([]project.Summary, 0, len(f.projects))
	for _, proj := range f.projects {
		summaries = append(summaries, project.Summary{ID: proj.ID, Name: proj.Name, CurrentPhase: proj.CurrentPhase})
	}
	return summaries, nil
}

func (f *fakeProjectRepo) SetPhase(_ context.Context, _ string, id string, p phase.Phase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	proj, ok := f.projects[id]
	if !ok {
		return repository.ErrNotFound
	}
	proj.CurrentPhase = p
	f.projects[id] = proj
	return nil
}

func (f *fakeProjectRepo) phaseOf(id string) phase.Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projects[id].CurrentPhase
}

type fakeDocRepo struct {
	mu       sync.Mutex
	upserts  int
	failWith error
	docs     map[string]document.Document
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: make(map[string]document.Document)}
}

func (f *fakeDocRepo) Upsert(_ context.Context, _ string, doc *document.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.failWith != nil {
		return f.failWith
	}
	f.docs[doc.ProjectID+"/"+string(doc.Type)] = *doc
	return nil
}

func (f *fakeDocRepo) Get(_ context.Context, _ string, projectID string, t document.Type) (*document.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[projectID+"/"+string(t)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &doc, nil
}

func (f *fakeDocRepo) GetByProject(_ context.Context, _ string, projectID string) ([]document.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var docs []document.Document
	for _, doc := range f.docs {
		if doc.ProjectID == projectID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (f *fakeDocRepo) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

func (f *fakeDocRepo) setFailure(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

func newTestStore(t *testing.T, auto workspace.AutoSaveConfig) (*workspace.Store, *fakeDocRepo, *fakeProjectRepo) {
	t.Helper()

	docs := newFakeDocRepo()
	projects := newFakeProjectRepo()
	svc := project.NewService(projects, docs, nil)

	store := workspace.New("tenant1", workspace.Options{
		Projects:  svc,
		Documents: docs,
		AutoSave:  auto,
	})
	t.Cleanup(store.Close)
	return store, docs, projects
}

func TestStore_CreateProjectActivates(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	proj, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)

	current := store.CurrentProject()
	require.NotNil(t, current)
	require.Equal(t, proj.ID, current.ID)
	require.Equal(t, phase.Requirements, store.CurrentPhase())
	require.False(t, store.HasUnsavedChanges())
}

func TestStore_UpdateWithoutProjectIsNoop(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{})

	store.UpdateRequirements("orphan edit")

	require.Nil(t, store.Document(document.TypeRequirements))
	require.False(t, store.HasUnsavedChanges())
	require.Zero(t, docs.upsertCount())
}

func TestStore_UpdateCreatesDocument(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)

	store.UpdateRequirements("some requirements text here")

	doc := store.Document(document.TypeRequirements)
	require.NotNil(t, doc)
	require.Equal(t, "some requirements text here", doc.Content)
	require.Equal(t, int64(1), doc.Version)
	require.Equal(t, document.StatusDraft, doc.Status)
	require.Equal(t, 4, doc.Metadata.WordCount)
	require.True(t, store.HasUnsavedChanges())
}

func TestStore_UpdateAppliesMetadataPatch(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	proj, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)

	store.UpdateDocument(document.TypeRequirements, "tagged draft", &document.MetadataPatch{
		Tags:          []string{"draft", "billing"},
		Collaborators: []string{"user-1"},
	})

	doc := store.Document(document.TypeRequirements)
	require.NotNil(t, doc)
	require.Equal(t, []string{"draft", "billing"}, doc.Metadata.Tags)
	require.Equal(t, []string{"user-1"}, doc.Metadata.Collaborators)

	// A content-only edit keeps the previous tags and collaborators.
	store.UpdateDocument(document.TypeRequirements, "tagged draft, revised", nil)
	doc = store.Document(document.TypeRequirements)
	require.Equal(t, []string{"draft", "billing"}, doc.Metadata.Tags)
	require.Equal(t, []string{"user-1"}, doc.Metadata.Collaborators)

	// An empty slice clears; a nil slice within the patch does not.
	store.UpdateDocument(document.TypeRequirements, "tagged draft, revised", &document.MetadataPatch{
		Tags: []string{},
	})
	doc = store.Document(document.TypeRequirements)
	require.Empty(t, doc.Metadata.Tags)
	require.Equal(t, []string{"user-1"}, doc.Metadata.Collaborators)

	require.NoError(t, store.SaveDocument(ctx, document.TypeRequirements))
	saved, err := docs.Get(ctx, "tenant1", proj.ID, document.TypeRequirements)
	require.NoError(t, err)
	require.Equal(t, []string{"user-1"}, saved.Metadata.Collaborators)
}

func TestStore_SaveDocumentClearsDirty(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	proj, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)
	store.UpdateRequirements("draft one")

	require.NoError(t, store.SaveDocument(ctx, document.TypeRequirements))
	require.False(t, store.HasUnsavedChanges())
	require.False(t, store.LastSaved().IsZero())
	require.Equal(t, 1, docs.upsertCount())

	saved, err := docs.Get(ctx, "tenant1", proj.ID, document.TypeRequirements)
	require.NoError(t, err)
	require.Equal(t, "draft one", saved.Content)
	require.Equal(t, int64(2), saved.Version)
}

func TestStore_SaveWithoutEditsIsNoop(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)

	require.NoError(t, store.SaveAll(ctx))
	require.Zero(t, docs.upsertCount())
}

func TestStore_SaveFailureKeepsUnsavedMark(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)
	store.UpdateRequirements("doomed edit")

	docs.setFailure(errors.New("disk full"))
	err = store.SaveDocument(ctx, document.TypeRequirements)
	require.Error(t, err)
	require.True(t, store.HasUnsavedChanges())
	require.Error(t, store.LastError())

	// The version bump is rolled back so a retry does not skip numbers.
	doc := store.Document(document.TypeRequirements)
	require.Equal(t, int64(1), doc.Version)

	docs.setFailure(nil)
	require.NoError(t, store.SaveDocument(ctx, document.TypeRequirements))
	require.False(t, store.HasUnsavedChanges())
	require.NoError(t, store.LastError())
	require.Equal(t, int64(2), store.Document(document.TypeRequirements).Version)
}

func TestStore_ValidatePhaseCachesSummary(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)
	store.UpdateRequirements(completeRequirements)

	require.Nil(t, store.PhaseSummary(phase.Requirements))

	summary := store.ValidatePhase(ctx, phase.Requirements)
	require.NotNil(t, summary)
	require.True(t, summary.IsComplete)
	require.Equal(t, 100, summary.CompletionPercentage)
	require.Same(t, summary, store.PhaseSummary(phase.Requirements))
}

func TestStore_ValidatePhaseWithoutDocumentPhases(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)

	// Implementation has no backing document and always validates complete.
	summary := store.ValidatePhase(ctx, phase.Implementation)
	require.True(t, summary.IsComplete)
	require.Equal(t, 100, summary.CompletionPercentage)
	require.Empty(t, summary.Results)
}

func TestStore_ValidatePhaseWithoutProject(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	require.Nil(t, store.ValidatePhase(context.Background(), phase.Requirements))
}

func TestStore_TransitionBlockedWithoutValidation(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)

	require.False(t, store.CanTransitionTo(phase.Design))

	err = store.TransitionTo(ctx, phase.Design)
	var transitionErr *phase.TransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, phase.Requirements, transitionErr.Blocking)
	require.Equal(t, phase.Requirements, store.CurrentPhase())
}

func TestStore_TransitionAfterValidation(t *testing.T) {
	store, _, projects := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	proj, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)
	store.UpdateRequirements(completeRequirements)
	store.ValidatePhase(ctx, phase.Requirements)

	require.True(t, store.CanTransitionTo(phase.Design))
	require.NoError(t, store.TransitionTo(ctx, phase.Design))
	require.Equal(t, phase.Design, store.CurrentPhase())
	require.Equal(t, phase.Design, projects.phaseOf(proj.ID))
}

func TestStore_TransitionBackwardAlwaysAllowed(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)
	store.UpdateRequirements(completeRequirements)
	store.ValidatePhase(ctx, phase.Requirements)
	require.NoError(t, store.TransitionTo(ctx, phase.Design))

	require.NoError(t, store.TransitionTo(ctx, phase.Requirements))
	require.Equal(t, phase.Requirements, store.CurrentPhase())
}

func TestStore_StaleCacheGatesTransition(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)
	store.UpdateRequirements(completeRequirements)
	store.ValidatePhase(ctx, phase.Requirements)

	// Degrading the document does not invalidate the cached summary.
	store.UpdateRequirements("now much worse")
	require.True(t, store.CanTransitionTo(phase.Design))
}

func TestStore_OpenProjectResetsCacheAndDirty(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	first, err := store.CreateProject(ctx, project.CreateRequest{Name: "First"})
	require.NoError(t, err)
	store.UpdateRequirements(completeRequirements)
	store.ValidatePhase(ctx, phase.Requirements)

	second, err := store.CreateProject(ctx, project.CreateRequest{Name: "Second"})
	require.NoError(t, err)

	require.Equal(t, second.ID, store.CurrentProject().ID)
	require.Nil(t, store.PhaseSummary(phase.Requirements))
	require.False(t, store.HasUnsavedChanges())
	require.Nil(t, store.Document(document.TypeRequirements))

	// Reopening the first project reloads persisted documents only.
	_, err = store.OpenProject(ctx, first.ID)
	require.NoError(t, err)
	require.Nil(t, store.Document(document.TypeRequirements))
}

func TestStore_DeleteActiveProjectClearsWorkspace(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	proj, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)
	store.UpdateRequirements("content")

	require.NoError(t, store.DeleteProject(ctx, proj.ID))
	require.Nil(t, store.CurrentProject())
	require.False(t, store.HasUnsavedChanges())
}

func TestStore_ExportActiveProjectFlushesFirst(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)
	store.UpdateRequirements("export me")

	data, err := store.ExportProject(ctx, "")
	require.NoError(t, err)
	require.Contains(t, string(data), "export me")
	require.False(t, store.HasUnsavedChanges())
	require.Equal(t, 1, docs.upsertCount())
}

func TestStore_ExportWithoutProject(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	_, err := store.ExportProject(context.Background(), "")
	require.ErrorIs(t, err, workspace.ErrNoActiveProject)
}

func TestStore_ImportActivatesProject(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	original, err := store.CreateProject(ctx, project.CreateRequest{Name: "Origin"})
	require.NoError(t, err)
	store.UpdateRequirements("portable content")
	data, err := store.ExportProject(ctx, "")
	require.NoError(t, err)

	imported, err := store.ImportProject(ctx, data)
	require.NoError(t, err)
	require.NotEqual(t, original.ID, imported.ID)
	require.Equal(t, imported.ID, store.CurrentProject().ID)

	doc := store.Document(document.TypeRequirements)
	require.NotNil(t, doc)
	require.Equal(t, "portable content", doc.Content)
}

func TestStore_ImportRejectsGarbage(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{})
	_, err := store.ImportProject(context.Background(), []byte("{{{"))
	require.ErrorIs(t, err, project.ErrInvalidFormat)
}

func TestStore_DebounceBurstSavesOnce(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{
		Interval:      time.Hour,
		DebounceDelay: 50 * time.Millisecond,
	})
	store.EnableAutoSave()
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		store.UpdateRequirements("burst edit")
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return docs.upsertCount() == 1 && !store.HasUnsavedChanges()
	}, time.Second, 10*time.Millisecond)

	// Quiet period with no edits produces no further saves.
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, docs.upsertCount())
}

func TestStore_IntervalTimerSaves(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{
		Interval:      40 * time.Millisecond,
		DebounceDelay: time.Hour,
	})
	store.EnableAutoSave()
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)
	store.UpdateRequirements("interval edit")

	require.Eventually(t, func() bool {
		return docs.upsertCount() >= 1 && !store.HasUnsavedChanges()
	}, time.Second, 10*time.Millisecond)
}

func TestStore_DisableAutoSaveStopsTimers(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{
		Interval:      30 * time.Millisecond,
		DebounceDelay: 20 * time.Millisecond,
	})
	store.EnableAutoSave()
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)

	store.DisableAutoSave()
	store.UpdateRequirements("never autosaved")

	time.Sleep(150 * time.Millisecond)
	require.Zero(t, docs.upsertCount())
	require.True(t, store.HasUnsavedChanges())
}

func TestStore_ScheduledSaveFailureRetries(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{
		Interval:      30 * time.Millisecond,
		DebounceDelay: time.Hour,
	})
	store.EnableAutoSave()
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)

	docs.setFailure(errors.New("transient"))
	store.UpdateRequirements("retry me")

	require.Eventually(t, func() bool {
		return docs.upsertCount() >= 1
	}, time.Second, 10*time.Millisecond)
	require.True(t, store.HasUnsavedChanges())

	docs.setFailure(nil)
	require.Eventually(t, func() bool {
		return !store.HasUnsavedChanges()
	}, time.Second, 10*time.Millisecond)
}

func TestStore_ConfigureAutoSave(t *testing.T) {
	store, _, _ := newTestStore(t, workspace.AutoSaveConfig{
		Interval:      time.Minute,
		DebounceDelay: time.Second,
	})

	interval := 5 * time.Minute
	cfg := store.ConfigureAutoSave(workspace.AutoSavePatch{Interval: &interval})
	require.Equal(t, 5*time.Minute, cfg.Interval)
	require.Equal(t, time.Second, cfg.DebounceDelay)
	require.False(t, cfg.Enabled)

	enabled := true
	cfg = store.ConfigureAutoSave(workspace.AutoSavePatch{Enabled: &enabled})
	require.True(t, cfg.Enabled)
	require.Equal(t, 5*time.Minute, cfg.Interval)
}

func TestStore_UpdateAfterCloseIsNoop(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)

	store.Close()
	store.UpdateRequirements("too late")
	require.False(t, store.HasUnsavedChanges())
	require.Zero(t, docs.upsertCount())
}

func TestStore_SaveAfterCloseReturnsErrClosed(t *testing.T) {
	store, docs, _ := newTestStore(t, workspace.AutoSaveConfig{})
	ctx := context.Background()

	_, err := store.CreateProject(ctx, project.CreateRequest{Name: "Billing"})
	require.NoError(t, err)
	store.UpdateRequirements("left behind")

	store.Close()
	require.ErrorIs(t, store.SaveDocument(ctx, document.TypeRequirements), workspace.ErrClosed)
	require.ErrorIs(t, store.SaveAll(ctx), workspace.ErrClosed)
	require.Zero(t, docs.upsertCount())
}
