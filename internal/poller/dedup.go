package poller

import (
	"context"

	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/brandpulse/mentions-bot/internal/storage"
)

// Deduplicator admits candidates whose canonical URL has not been stored
// yet. Candidates without a URL are always admitted; there is no reliable
// dedup key to synthesize from text, and the precision gap is accepted.
//
// Two concurrent adapters can both pass the check for the same URL before
// either mention is persisted. The store's uniqueness constraint turns
// that race into a failed save rather than a duplicate row.
type Deduplicator struct {
	store storage.Store
}

// NewDeduplicator creates a deduplicator backed by the given store.
func NewDeduplicator(store storage.Store) *Deduplicator {
	return &Deduplicator{store: store}
}

// Admit reports whether the candidate should continue through the
// pipeline.
func (d *Deduplicator) Admit(ctx context.Context, candidate models.Candidate) (bool, error) {
	if candidate.URL == "" {
		return true, nil
	}

	exists, err := d.store.Exists(ctx, candidate.URL)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
