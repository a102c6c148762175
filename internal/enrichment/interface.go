package enrichment

import "context"

// Enricher labels mention text. Sentiment never fails; topic
// classification calls an external model and can.
type Enricher interface {
	Sentiment(text string) string
	Topic(ctx context.Context, text string) (string, error)
}
