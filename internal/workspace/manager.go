package workspace

import (
	"sync"
)

// Manager hands out one Store per (tenant, session) pair, so
// concurrent sessions never share timers or in-memory state. The host
// must call CloseAll on shutdown to clear outstanding timers.
type Manager struct {
	mu     sync.Mutex
	opts   Options
	stores map[string]*Store
}

// NewManager creates a workspace manager with shared collaborators.
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:   opts,
		stores: make(map[string]*Store),
	}
}

// Get returns the workspace for a session, creating it on first use.
// Autosave is armed on creation when the configured default says so.
func (m *Manager) Get(tenantID, sessionID string) *Store {
	key := tenantID + "/" + sessionID

	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[key]; ok {
		return store
	}

	store := New(tenantID, m.opts)
	if m.opts.AutoSave.Enabled {
		store.EnableAutoSave()
	}
	m.stores[key] = store
	return store
}

// Close tears down one session's workspace.
func (m *Manager) Close(tenantID, sessionID string) {
	key := tenantID + "/" + sessionID

	m.mu.Lock()
	store, ok := m.stores[key]
	delete(m.stores, key)
	m.mu.Unlock()

	if ok {
		store.Close()
	}
}

// CloseAll tears down every workspace; required on shutdown so no
// timer callback outlives the process's collaborators.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, store := range m.stores {
		stores = append(stores, store)
	}
	m.stores = make(map[string]*Store)
	m.mu.Unlock()

	for _, store := range stores {
		store.Close()
	}
}
