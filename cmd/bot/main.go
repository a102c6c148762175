package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brandpulse/mentions-bot/internal/analytics"
	"github.com/brandpulse/mentions-bot/internal/config"
	"github.com/brandpulse/mentions-bot/internal/enrichment"
	"github.com/brandpulse/mentions-bot/internal/events"
	"github.com/brandpulse/mentions-bot/internal/notifications"
	"github.com/brandpulse/mentions-bot/internal/poller"
	"github.com/brandpulse/mentions-bot/internal/storage"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting brand mentions bot")

	store, err := storage.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		logrus.Fatalf("Failed to open mention store: %v", err)
	}
	defer store.Close()

	var archive storage.Archiver
	if cfg.StorageAccount != "" {
		blobArchive, err := storage.NewBlobArchive(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize blob archive: %v", err)
		}
		archive = blobArchive
	} else {
		logrus.Info("Blob archive disabled - no storage account configured")
	}

	hub := events.NewHub()
	enricher := enrichment.NewService(cfg.GeminiAPIKey)

	var notifier notifications.Notifier
	if alertService := notifications.NewService(cfg); alertService.Enabled() {
		notifier = alertService
	} else {
		logrus.Info("Spike alert notifications disabled - no channel configured")
	}

	pollService := poller.NewService(cfg, store, enricher, hub, notifier, archive)
	if err := pollService.Start(); err != nil {
		logrus.Fatalf("Failed to start poll scheduler: %v", err)
	}
	defer pollService.Stop()

	analyticsService := analytics.NewService(store, enrichment.NewSummarizer(cfg.HuggingFaceAPIKey))

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/api/query", getQueryHandler(store)).Methods("GET")
	router.HandleFunc("/api/query", setQueryHandler(pollService)).Methods("POST")
	router.HandleFunc("/api/query", clearQueryHandler(pollService)).Methods("DELETE")
	router.HandleFunc("/api/refresh", refreshHandler(pollService)).Methods("POST")
	router.HandleFunc("/api/mentions", mentionsHandler(store)).Methods("GET")
	router.HandleFunc("/api/analytics/trends", trendsHandler(analyticsService)).Methods("GET")
	router.HandleFunc("/api/analytics/topics", topicsHandler(analyticsService)).Methods("GET")
	router.HandleFunc("/api/analytics/timeline", timelineHandler(analyticsService)).Methods("GET")
	router.HandleFunc("/api/brand/health", brandHealthHandler(analyticsService)).Methods("GET")
	router.HandleFunc("/api/summary", summaryHandler(analyticsService)).Methods("GET")
	router.HandleFunc("/api/events", eventStreamHandler(hub)).Methods("GET")

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func hoursParam(r *http.Request) int {
	if value := r.URL.Query().Get("hours"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 24
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func getQueryHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := store.LoadActiveQuery(r.Context())
		if err != nil {
			logrus.Errorf("Failed to load tracked query: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to load tracked query")
			return
		}
		writeJSON(w, http.StatusOK, query)
	}
}

func setQueryHandler(pollService *poller.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			writeError(w, http.StatusBadRequest, "Name is required")
			return
		}

		if err := pollService.SetQuery(r.Context(), body.Name); err != nil {
			logrus.Errorf("Failed to set tracked query: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to set tracked query")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"name": body.Name})
	}
}

func clearQueryHandler(pollService *poller.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pollService.ClearQuery(r.Context()); err != nil {
			logrus.Errorf("Failed to clear tracked query: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to clear tracked query")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func refreshHandler(pollService *poller.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pollService.ManualRefresh(r.Context()); err != nil {
			logrus.Errorf("Manual refresh failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to trigger feed refresh")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Feed refresh triggered successfully. Watch the event stream for updates.",
		})
	}
}

func mentionsHandler(store storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mentions, err := store.Latest(r.Context(), 50)
		if err != nil {
			logrus.Errorf("Failed to load mentions: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to load mentions")
			return
		}
		writeJSON(w, http.StatusOK, mentions)
	}
}

func trendsHandler(analyticsService *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trends, err := analyticsService.MentionTrends(r.Context(), hoursParam(r))
		if err != nil {
			logrus.Errorf("Failed to compute mention trends: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to compute mention trends")
			return
		}
		writeJSON(w, http.StatusOK, trends)
	}
}

func topicsHandler(analyticsService *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := analyticsService.TopTopics(r.Context(), hoursParam(r))
		if err != nil {
			logrus.Errorf("Failed to compute top topics: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to compute top topics")
			return
		}
		writeJSON(w, http.StatusOK, topics)
	}
}

func timelineHandler(analyticsService *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeline, err := analyticsService.TopicTimeline(r.Context(), hoursParam(r))
		if err != nil {
			logrus.Errorf("Failed to compute topic timeline: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to compute topic timeline")
			return
		}
		writeJSON(w, http.StatusOK, timeline)
	}
}

func brandHealthHandler(analyticsService *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		score, err := analyticsService.BrandHealth(r.Context())
		if err != nil {
			logrus.Errorf("Failed to calculate brand health: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to calculate brand health")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"score": score})
	}
}

func summaryHandler(analyticsService *analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := analyticsService.Summary(r.Context())
		if err != nil {
			logrus.Errorf("Failed to generate summary: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to generate summary")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
	}
}

// eventStreamHandler streams hub events to the client as server-sent
// events. The stream stays open until the client disconnects.
func eventStreamHandler(hub *events.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "Streaming unsupported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ch, cancel := hub.Subscribe()
		defer cancel()

		for {
			select {
			case <-r.Context().Done():
				return
			case event, open := <-ch:
				if !open {
					return
				}
				payload, err := json.Marshal(event.Payload)
				if err != nil {
					logrus.Errorf("Failed to encode %s event: %v", event.Name, err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, payload)
				flusher.Flush()
			}
		}
	}
}
