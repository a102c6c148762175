package poller

import (
	"context"
	"sync"
	"time"

	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of the storage interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Exists(ctx context.Context, url string) (bool, error) {
	args := m.Called(ctx, url)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, mention *models.Mention) error {
	args := m.Called(ctx, mention)
	return args.Error(0)
}

func (m *MockStore) Recent(ctx context.Context, since time.Time) ([]models.Mention, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]models.Mention), args.Error(1)
}

func (m *MockStore) Latest(ctx context.Context, limit int) ([]models.Mention, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.Mention), args.Error(1)
}

func (m *MockStore) DeleteAllMentions(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) LoadActiveQuery(ctx context.Context) (*models.TrackedQuery, error) {
	args := m.Called(ctx)
	if query := args.Get(0); query != nil {
		return query.(*models.TrackedQuery), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ReplaceActiveQuery(ctx context.Context, name string) (*models.TrackedQuery, error) {
	args := m.Called(ctx, name)
	if query := args.Get(0); query != nil {
		return query.(*models.TrackedQuery), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ClearActiveQuery(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEnricher is a mock implementation of the enrichment interface
type MockEnricher struct {
	mock.Mock
}

func (m *MockEnricher) Sentiment(text string) string {
	args := m.Called(text)
	return args.String(0)
}

func (m *MockEnricher) Topic(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

// MockNotifier records spike alert deliveries
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendSpikeAlert(alert *models.SpikeAlert) error {
	args := m.Called(alert)
	return args.Error(0)
}

// recordedEvent is one captured publish call.
type recordedEvent struct {
	name    string
	payload interface{}
}

// recordingPublisher captures published events for assertion. Safe for
// use from concurrent adapter goroutines.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{name: event, payload: payload})
}

func (p *recordingPublisher) byName(name string) []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var matched []recordedEvent
	for _, e := range p.events {
		if e.name == name {
			matched = append(matched, e)
		}
	}
	return matched
}

// fakeSource is a scripted source adapter.
type fakeSource struct {
	name       string
	candidates []models.Candidate
	err        error

	mu      sync.Mutex
	fetches int
	fetched chan struct{}
}

func (f *fakeSource) Name() string    { return f.name }
func (f *fakeSource) IsEnabled() bool { return true }

func (f *fakeSource) Fetch(ctx context.Context, query string) ([]models.Candidate, error) {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()

	if f.fetched != nil {
		f.fetched <- struct{}{}
	}

	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}
