// Package poller owns the brand mention ingestion pipeline: the tracked
// query registry, the repeating poll timer, and the per-candidate
// dedup -> enrich -> persist -> spike-detect flow.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/brandpulse/mentions-bot/internal/config"
	"github.com/brandpulse/mentions-bot/internal/detector"
	"github.com/brandpulse/mentions-bot/internal/enrichment"
	"github.com/brandpulse/mentions-bot/internal/events"
	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/brandpulse/mentions-bot/internal/notifications"
	"github.com/brandpulse/mentions-bot/internal/sources"
	"github.com/brandpulse/mentions-bot/internal/storage"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service coordinates polling across all source adapters for the single
// active tracked query.
type Service struct {
	config    *config.Config
	store     storage.Store
	registry  *Registry
	dedup     *Deduplicator
	gate      *EnrichmentGate
	detector  *detector.SpikeDetector
	publisher events.Publisher
	notifier  notifications.Notifier
	archive   storage.Archiver
	sources   []sources.Source
	cron      *cron.Cron
	now       func() time.Time
}

// NewService creates the poll scheduler. notifier and archive may be nil.
func NewService(cfg *config.Config, store storage.Store, enricher enrichment.Enricher, publisher events.Publisher, notifier notifications.Notifier, archive storage.Archiver) *Service {
	service := &Service{
		config:    cfg,
		store:     store,
		registry:  NewRegistry(store),
		dedup:     NewDeduplicator(store),
		gate:      NewEnrichmentGate(store, enricher, publisher),
		detector:  detector.New(cfg.ShortWindow, cfg.LongWindow, cfg.SpikeMultiplier, cfg.MinMentionsForSpike),
		publisher: publisher,
		notifier:  notifier,
		archive:   archive,
		cron:      cron.New(),
		now:       time.Now,
	}

	service.initializeSources()

	return service
}

func (s *Service) initializeSources() {
	s.sources = []sources.Source{
		sources.NewRedditSource(s.config.SourceItemCap),
		sources.NewGNewsSource(s.config.GNewsAPIKey, s.config.SourceItemCap),
		sources.NewYouTubeSource(s.config.YouTubeAPIKey, s.config.SourceItemCap),
	}
}

// Registry exposes the tracked-query registry for read access.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Start resumes any persisted tracked query and arms the poll timer. No
// fetch happens at startup: a deploy or restart must not trigger a
// thundering-herd fetch across every instance.
func (s *Service) Start() error {
	query, err := s.store.LoadActiveQuery(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load tracked query: %w", err)
	}

	if query != nil {
		s.registry.restore(query.Name)
		logrus.Infof("Resuming tracking for %q", query.Name)
	} else {
		logrus.Info("No tracked query found, polling stays idle")
	}

	// The cron entry lives for the whole process; ticks are no-ops while
	// no query is active.
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.config.PollInterval), s.tick); err != nil {
		return fmt.Errorf("failed to schedule polling: %w", err)
	}

	s.cron.Start()
	logrus.Infof("Poll scheduler started (interval %s)", s.config.PollInterval)
	return nil
}

// Stop stops the poll timer.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Poll scheduler stopped")
	}
}

func (s *Service) tick() {
	query, ok := s.registry.Active()
	if !ok {
		logrus.Debug("Poll tick skipped - no active query")
		return
	}
	s.runCycle(query)
}

// SetQuery replaces the tracked query and triggers one immediate
// out-of-band fetch cycle so callers see data before the next tick.
// Storage errors from the history discard propagate to the caller.
func (s *Service) SetQuery(ctx context.Context, name string) error {
	if err := s.registry.SetActive(ctx, name); err != nil {
		return err
	}

	go s.runCycle(name)
	return nil
}

// ClearQuery removes the tracked query and discards stored mentions.
// Subsequent ticks become no-ops.
func (s *Service) ClearQuery(ctx context.Context) error {
	return s.registry.Clear(ctx)
}

// ManualRefresh runs one fetch cycle for the active query, independent of
// the timer. A refresh with no active query is a logged no-op.
func (s *Service) ManualRefresh(ctx context.Context) error {
	query, ok := s.registry.Active()
	if !ok {
		logrus.Info("Manual refresh skipped - no active query")
		return nil
	}

	logrus.Info("Manual refresh triggered")
	s.runCycle(query)
	return nil
}

// runCycle fans out to all source adapters concurrently and pipes every
// candidate through dedup, enrichment, persistence and spike detection.
// One adapter's failure or slowness never blocks the others; candidates
// within a single adapter's batch are processed in order so their
// timestamps enter the spike window meaningfully.
func (s *Service) runCycle(query string) {
	start := s.now()
	logrus.Infof("Starting fetch cycle for %q across %d sources", query, len(s.sources))

	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var saved []models.Mention

	for _, source := range s.sources {
		wg.Add(1)
		go func(src sources.Source) {
			defer wg.Done()

			candidates, err := src.Fetch(ctx, query)
			if err != nil {
				logrus.Errorf("Error fetching from %s: %v", src.Name(), err)
				return
			}

			logrus.Infof("Found %d candidates from %s", len(candidates), src.Name())

			for _, candidate := range candidates {
				if mention := s.process(ctx, candidate); mention != nil {
					mu.Lock()
					saved = append(saved, *mention)
					mu.Unlock()
				}
			}
		}(source)
	}

	wg.Wait()

	s.archiveBatch(ctx, saved)

	logrus.Infof("Fetch cycle for %q completed in %v (%d new mentions)", query, time.Since(start), len(saved))
}

// process runs one candidate through the pipeline. Failures are contained
// to this candidate; siblings keep flowing.
func (s *Service) process(ctx context.Context, candidate models.Candidate) *models.Mention {
	// A reset can land between fetch and processing; drop the candidate.
	if _, ok := s.registry.Active(); !ok {
		return nil
	}

	admitted, err := s.dedup.Admit(ctx, candidate)
	if err != nil {
		logrus.Errorf("Dedup check failed for %s: %v", candidate.URL, err)
		return nil
	}
	if !admitted {
		return nil
	}

	mention, err := s.gate.Finalize(ctx, candidate)
	if err != nil {
		logrus.Errorf("Failed to finalize candidate from %s: %v", candidate.Source, err)
		return nil
	}

	now := s.now()
	s.detector.Record(now)
	if s.detector.Evaluate(now) {
		s.publishSpikeAlert(now)
	}

	return mention
}

// publishSpikeAlert emits one alert per qualifying mention. There is no
// cooldown: a sustained spike alerts on every sample, and observers are
// expected to coalesce.
func (s *Service) publishSpikeAlert(now time.Time) {
	alert := models.NewSpikeAlert(now)
	s.publisher.Publish(events.EventAlert, alert)
	logrus.Info("Real-time spike alert published")

	if s.notifier != nil {
		if err := s.notifier.SendSpikeAlert(alert); err != nil {
			logrus.Errorf("Failed to deliver spike alert notification: %v", err)
		}
	}
}

func (s *Service) archiveBatch(ctx context.Context, mentions []models.Mention) {
	if s.archive == nil || len(mentions) == 0 {
		return
	}

	data, err := json.Marshal(mentions)
	if err != nil {
		logrus.Errorf("Failed to marshal mention batch for archive: %v", err)
		return
	}

	name := fmt.Sprintf("mentions-%s.json", s.now().Format("2006-01-02-15-04-05"))
	if err := s.archive.Store(ctx, name, data); err != nil {
		logrus.Errorf("Failed to archive mention batch: %v", err)
	}
}
