package poller

import (
	"context"
	"fmt"
	"sync"

	"github.com/brandpulse/mentions-bot/internal/storage"
	"github.com/sirupsen/logrus"
)

// Registry holds the single active tracked query. Setting a new query is
// atomic with discarding all prior mention history: stale mentions must
// never mix with a new query's results.
type Registry struct {
	store storage.Store

	mu     sync.RWMutex
	active string // empty means no active query
}

// NewRegistry creates a registry backed by the given store.
func NewRegistry(store storage.Store) *Registry {
	return &Registry{store: store}
}

// SetActive replaces the active query with name, discarding all stored
// mention history first. The new query is live only once both storage
// steps succeed.
func (r *Registry) SetActive(ctx context.Context, name string) error {
	if err := r.store.DeleteAllMentions(ctx); err != nil {
		return fmt.Errorf("failed to discard mention history: %w", err)
	}

	if _, err := r.store.ReplaceActiveQuery(ctx, name); err != nil {
		return fmt.Errorf("failed to store tracked query: %w", err)
	}

	r.mu.Lock()
	r.active = name
	r.mu.Unlock()

	logrus.Infof("Now tracking brand %q", name)
	return nil
}

// Clear removes the active query and discards the mention history.
func (r *Registry) Clear(ctx context.Context) error {
	if err := r.store.DeleteAllMentions(ctx); err != nil {
		return fmt.Errorf("failed to discard mention history: %w", err)
	}

	if err := r.store.ClearActiveQuery(ctx); err != nil {
		return fmt.Errorf("failed to clear tracked query: %w", err)
	}

	r.mu.Lock()
	r.active = ""
	r.mu.Unlock()

	logrus.Info("Active query cleared")
	return nil
}

// Active returns the tracked query name, if one is set.
func (r *Registry) Active() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active, r.active != ""
}

// restore sets the in-memory active query without touching storage. Used
// at process start to resume a persisted query.
func (r *Registry) restore(name string) {
	r.mu.Lock()
	r.active = name
	r.mu.Unlock()
}
