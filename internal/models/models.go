package models

import "time"

// Sentiment labels assigned to a finalized mention.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// TopicUnknown is assigned when topic classification fails or returns an
// unlisted label.
const TopicUnknown = "unknown"

// Candidate is a raw item produced by a source adapter. Candidates exist
// only in-flight and are never persisted directly.
type Candidate struct {
	Text        string    `json:"text"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Mention is a finalized, enriched record of brand-related text from one
// source. Immutable once created; removed only by a full reset.
type Mention struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Source    string    `json:"source"` // "reddit", "gnews", "youtube"
	Sentiment string    `json:"sentiment"`
	Topic     string    `json:"topic"`
	URL       string    `json:"url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackedQuery is the single brand currently being monitored.
type TrackedQuery struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SpikeAlert is an ephemeral event published once per detected volume
// spike. Not persisted.
type SpikeAlert struct {
	Type      string    `json:"type"` // always "volumeSpike"
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// NewSpikeAlert builds the alert payload for a spike detected at ts.
func NewSpikeAlert(ts time.Time) *SpikeAlert {
	return &SpikeAlert{
		Type:      "volumeSpike",
		Timestamp: ts,
		Message:   "Brand mention volume has spiked! High activity detected.",
	}
}
