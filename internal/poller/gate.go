package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/brandpulse/mentions-bot/internal/enrichment"
	"github.com/brandpulse/mentions-bot/internal/events"
	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/brandpulse/mentions-bot/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EnrichmentGate turns an admitted candidate into a persisted, published
// mention. Topic classification failure degrades to "unknown" instead of
// aborting the mention.
type EnrichmentGate struct {
	store     storage.Store
	enricher  enrichment.Enricher
	publisher events.Publisher
	now       func() time.Time
}

// NewEnrichmentGate creates a new gate.
func NewEnrichmentGate(store storage.Store, enricher enrichment.Enricher, publisher events.Publisher) *EnrichmentGate {
	return &EnrichmentGate{
		store:     store,
		enricher:  enricher,
		publisher: publisher,
		now:       time.Now,
	}
}

// Finalize enriches, persists and publishes the candidate. This is an
// at-least-once delivery point: once the mention is persisted, a publish
// failure is the hub's to log, never a reason to undo the save.
func (g *EnrichmentGate) Finalize(ctx context.Context, candidate models.Candidate) (*models.Mention, error) {
	sentiment := g.enricher.Sentiment(candidate.Text)

	topic, err := g.enricher.Topic(ctx, candidate.Text)
	if err != nil {
		logrus.Warnf("Topic classification failed, falling back to %q: %v", models.TopicUnknown, err)
		topic = models.TopicUnknown
	}

	timestamp := candidate.PublishedAt
	if timestamp.IsZero() {
		timestamp = g.now()
	}

	mention := &models.Mention{
		ID:        uuid.NewString(),
		Text:      candidate.Text,
		Source:    candidate.Source,
		Sentiment: sentiment,
		Topic:     topic,
		URL:       candidate.URL,
		Timestamp: timestamp,
	}

	if err := g.store.Save(ctx, mention); err != nil {
		return nil, fmt.Errorf("failed to persist mention: %w", err)
	}

	g.publisher.Publish(events.EventNewMention, mention)

	return mention, nil
}
