package sources

import (
	"context"

	"github.com/brandpulse/mentions-bot/internal/models"
)

// Source defines the contract for all feed adapters. Fetch produces a
// finite batch of candidate mentions for one poll tick; each call is a
// fresh retrieval, never a resumed one.
type Source interface {
	Name() string
	IsEnabled() bool
	Fetch(ctx context.Context, query string) ([]models.Candidate, error)
}
