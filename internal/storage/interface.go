package storage

import (
	"context"
	"time"

	"github.com/brandpulse/mentions-bot/internal/models"
)

// Store defines the contract for mention and tracked-query persistence.
type Store interface {
	// Exists reports whether a mention with the given canonical URL is
	// already stored.
	Exists(ctx context.Context, url string) (bool, error)

	// Save persists a finalized mention.
	Save(ctx context.Context, mention *models.Mention) error

	// Recent returns mentions with a timestamp at or after since, newest
	// first.
	Recent(ctx context.Context, since time.Time) ([]models.Mention, error)

	// Latest returns the newest limit mentions, newest first.
	Latest(ctx context.Context, limit int) ([]models.Mention, error)

	// DeleteAllMentions discards all stored mentions.
	DeleteAllMentions(ctx context.Context) error

	// LoadActiveQuery returns the tracked query, or nil when none is set.
	LoadActiveQuery(ctx context.Context) (*models.TrackedQuery, error)

	// ReplaceActiveQuery removes any existing tracked query and stores a
	// new one.
	ReplaceActiveQuery(ctx context.Context, name string) (*models.TrackedQuery, error)

	// ClearActiveQuery removes the tracked query if one is set.
	ClearActiveQuery(ctx context.Context) error
}

// Archiver stores opaque payloads for offline retention, keyed by name.
type Archiver interface {
	Store(ctx context.Context, name string, data []byte) error
}
