// Package analytics computes read-side aggregates over stored mentions:
// brand health, hourly trends, topic breakdowns and AI summaries.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/brandpulse/mentions-bot/internal/storage"
	"github.com/sirupsen/logrus"
)

// brandHealthSample is how many of the newest mentions feed the score.
const brandHealthSample = 100

// Summarizer condenses mention texts into a short paragraph.
type Summarizer interface {
	Summarize(ctx context.Context, texts []string) (string, error)
}

// Service answers analytics queries against the mention store.
type Service struct {
	store      storage.Store
	summarizer Summarizer
	now        func() time.Time
}

// NewService creates a new analytics service. summarizer may be nil, in
// which case Summary returns an error.
func NewService(store storage.Store, summarizer Summarizer) *Service {
	return &Service{
		store:      store,
		summarizer: summarizer,
		now:        time.Now,
	}
}

// BrandHealth scores the brand 0-100 from the sentiment balance of the
// newest mentions. An empty store scores a neutral 50.
func (s *Service) BrandHealth(ctx context.Context) (int, error) {
	mentions, err := s.store.Latest(ctx, brandHealthSample)
	if err != nil {
		return 0, fmt.Errorf("failed to load mentions for brand health: %w", err)
	}

	if len(mentions) == 0 {
		return 50, nil
	}

	balance := 0
	for _, m := range mentions {
		switch m.Sentiment {
		case models.SentimentPositive:
			balance++
		case models.SentimentNegative:
			balance--
		}
	}

	score := float64(balance) / float64(len(mentions))

	// Normalize [-1, 1] to [0, 100].
	return int(math.Round((score + 1) * 50)), nil
}

// MentionTrends returns mention counts keyed by hour of day over the
// trailing window.
func (s *Service) MentionTrends(ctx context.Context, hours int) (map[int]int, error) {
	mentions, err := s.recent(ctx, hours)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	for _, m := range mentions {
		counts[m.Timestamp.Hour()]++
	}
	return counts, nil
}

// TopTopics returns mention counts per topic over the trailing window.
func (s *Service) TopTopics(ctx context.Context, hours int) (map[string]int, error) {
	mentions, err := s.recent(ctx, hours)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, m := range mentions {
		counts[m.Topic]++
	}
	return counts, nil
}

// TopicTimeline returns, per topic, mention counts keyed by hour of day
// over the trailing window.
func (s *Service) TopicTimeline(ctx context.Context, hours int) (map[string]map[int]int, error) {
	mentions, err := s.recent(ctx, hours)
	if err != nil {
		return nil, err
	}

	timeline := make(map[string]map[int]int)
	for _, m := range mentions {
		if timeline[m.Topic] == nil {
			timeline[m.Topic] = make(map[int]int)
		}
		timeline[m.Topic][m.Timestamp.Hour()]++
	}
	return timeline, nil
}

// Summary condenses the last 24 hours of mentions into a short paragraph.
func (s *Service) Summary(ctx context.Context) (string, error) {
	if s.summarizer == nil {
		return "", fmt.Errorf("summarizer is not configured")
	}

	mentions, err := s.recent(ctx, 24)
	if err != nil {
		return "", err
	}

	logrus.Infof("Summarizing %d mentions from the last 24 hours", len(mentions))

	if len(mentions) == 0 {
		return "No recent data available to summarize.", nil
	}

	texts := make([]string, 0, len(mentions))
	for _, m := range mentions {
		texts = append(texts, m.Text)
	}

	return s.summarizer.Summarize(ctx, texts)
}

func (s *Service) recent(ctx context.Context, hours int) ([]models.Mention, error) {
	if hours <= 0 {
		hours = 24
	}

	since := s.now().Add(-time.Duration(hours) * time.Hour)
	mentions, err := s.store.Recent(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent mentions: %w", err)
	}
	return mentions, nil
}
