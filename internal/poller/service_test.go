package poller

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brandpulse/mentions-bot/internal/config"
	"github.com/brandpulse/mentions-bot/internal/events"
	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/brandpulse/mentions-bot/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		PollInterval:        5 * time.Minute,
		SourceItemCap:       4,
		ShortWindow:         time.Minute,
		LongWindow:          5 * time.Minute,
		SpikeMultiplier:     3,
		MinMentionsForSpike: 5,
	}
}

func newTestService(store *MockStore, enricher *MockEnricher, publisher *recordingPublisher, srcs ...sources.Source) *Service {
	service := NewService(testConfig(), store, enricher, publisher, nil, nil)
	service.sources = srcs
	return service
}

func neutralEnricher() *MockEnricher {
	enricher := &MockEnricher{}
	enricher.On("Sentiment", mock.Anything).Return(models.SentimentNeutral)
	enricher.On("Topic", mock.Anything, mock.Anything).Return("brand perception", nil)
	return enricher
}

func TestService_RunCycleSurvivesFailingAdapter(t *testing.T) {
	social := &fakeSource{name: "reddit", candidates: []models.Candidate{
		{Text: "post one", Source: "reddit", URL: "https://r/1"},
		{Text: "post two", Source: "reddit", URL: "https://r/2"},
	}}
	news := &fakeSource{name: "gnews", candidates: []models.Candidate{
		{Text: "article one", Source: "gnews", URL: "https://n/1"},
		{Text: "article two", Source: "gnews", URL: "https://n/2"},
	}}
	video := &fakeSource{name: "youtube", err: fmt.Errorf("quota exceeded")}

	mockStore := &MockStore{}
	mockStore.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
	mockStore.On("Save", mock.Anything, mock.Anything).Return(nil)

	publisher := &recordingPublisher{}
	service := newTestService(mockStore, neutralEnricher(), publisher, social, news, video)
	service.registry.restore("acme")

	service.runCycle("acme")

	// The failing video adapter contributes nothing; siblings are intact.
	mockStore.AssertNumberOfCalls(t, "Save", 4)
	assert.Len(t, publisher.byName(events.EventNewMention), 4)
	assert.Equal(t, 1, video.fetchCount())
}

func TestService_ManualRefreshWithoutQueryIsNoOp(t *testing.T) {
	source := &fakeSource{name: "reddit"}
	mockStore := &MockStore{}

	service := newTestService(mockStore, neutralEnricher(), &recordingPublisher{}, source)

	require.NoError(t, service.ManualRefresh(context.Background()))

	assert.Equal(t, 0, source.fetchCount())
	mockStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_ManualRefreshRunsCycleWhenActive(t *testing.T) {
	source := &fakeSource{name: "reddit", candidates: []models.Candidate{
		{Text: "post", Source: "reddit", URL: "https://r/1"},
	}}

	mockStore := &MockStore{}
	mockStore.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
	mockStore.On("Save", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(mockStore, neutralEnricher(), &recordingPublisher{}, source)
	service.registry.restore("acme")

	require.NoError(t, service.ManualRefresh(context.Background()))

	assert.Equal(t, 1, source.fetchCount())
	mockStore.AssertNumberOfCalls(t, "Save", 1)
}

func TestService_SetQueryTriggersImmediateFetch(t *testing.T) {
	source := &fakeSource{name: "reddit", fetched: make(chan struct{}, 1)}

	mockStore := &MockStore{}
	mockStore.On("DeleteAllMentions", mock.Anything).Return(nil)
	mockStore.On("ReplaceActiveQuery", mock.Anything, "acme").Return(&models.TrackedQuery{Name: "acme"}, nil)

	service := newTestService(mockStore, neutralEnricher(), &recordingPublisher{}, source)

	require.NoError(t, service.SetQuery(context.Background(), "acme"))

	select {
	case <-source.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate fetch after SetQuery")
	}
}

func TestService_SetQueryPropagatesStorageError(t *testing.T) {
	source := &fakeSource{name: "reddit"}

	mockStore := &MockStore{}
	mockStore.On("DeleteAllMentions", mock.Anything).Return(fmt.Errorf("disk full"))

	service := newTestService(mockStore, neutralEnricher(), &recordingPublisher{}, source)

	err := service.SetQuery(context.Background(), "acme")
	require.Error(t, err)
	assert.Equal(t, 0, source.fetchCount())
}

func TestService_DuplicateCandidateSkipped(t *testing.T) {
	source := &fakeSource{name: "gnews", candidates: []models.Candidate{
		{Text: "already seen", Source: "gnews", URL: "https://n/dup"},
	}}

	mockStore := &MockStore{}
	mockStore.On("Exists", mock.Anything, "https://n/dup").Return(true, nil)

	publisher := &recordingPublisher{}
	service := newTestService(mockStore, neutralEnricher(), publisher, source)
	service.registry.restore("acme")

	service.runCycle("acme")

	mockStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, publisher.byName(events.EventNewMention))
}

func TestService_BurstOfMentionsRaisesOneAlert(t *testing.T) {
	// Five candidates without URLs all pass dedup and land in the spike
	// window within one cycle. The floor keeps the first four quiet; the
	// fifth trips the threshold.
	var candidates []models.Candidate
	for i := 0; i < 5; i++ {
		candidates = append(candidates, models.Candidate{
			Text:   fmt.Sprintf("burst mention %d", i),
			Source: "reddit",
		})
	}
	source := &fakeSource{name: "reddit", candidates: candidates}

	mockStore := &MockStore{}
	mockStore.On("Save", mock.Anything, mock.Anything).Return(nil)

	mockNotifier := &MockNotifier{}
	mockNotifier.On("SendSpikeAlert", mock.Anything).Return(nil)

	publisher := &recordingPublisher{}
	service := NewService(testConfig(), mockStore, neutralEnricher(), publisher, mockNotifier, nil)
	service.sources = []sources.Source{source}
	service.registry.restore("acme")

	service.runCycle("acme")

	alerts := publisher.byName(events.EventAlert)
	require.Len(t, alerts, 1)

	alert, ok := alerts[0].payload.(*models.SpikeAlert)
	require.True(t, ok)
	assert.Equal(t, "volumeSpike", alert.Type)
	mockNotifier.AssertNumberOfCalls(t, "SendSpikeAlert", 1)
}

func TestService_StartResumesPersistedQuery(t *testing.T) {
	mockStore := &MockStore{}
	mockStore.On("LoadActiveQuery", mock.Anything).Return(&models.TrackedQuery{Name: "acme"}, nil)

	service := newTestService(mockStore, neutralEnricher(), &recordingPublisher{})

	require.NoError(t, service.Start())
	defer service.Stop()

	active, ok := service.Registry().Active()
	assert.True(t, ok)
	assert.Equal(t, "acme", active)
}

func TestService_StartStaysIdleWithoutQuery(t *testing.T) {
	source := &fakeSource{name: "reddit"}

	mockStore := &MockStore{}
	mockStore.On("LoadActiveQuery", mock.Anything).Return(nil, nil)

	service := newTestService(mockStore, neutralEnricher(), &recordingPublisher{}, source)

	require.NoError(t, service.Start())
	defer service.Stop()

	// A tick with no active query touches no adapter.
	service.tick()
	assert.Equal(t, 0, source.fetchCount())
}
