package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Polling configuration
	PollInterval  time.Duration
	SourceItemCap int

	// Spike detection configuration
	ShortWindow         time.Duration
	LongWindow          time.Duration
	SpikeMultiplier     float64
	MinMentionsForSpike int

	// Storage configuration
	DatabasePath string

	// Azure Blob archive (optional)
	StorageAccount   string
	StorageContainer string

	// Source API keys
	GNewsAPIKey   string
	YouTubeAPIKey string

	// Enrichment configuration
	GeminiAPIKey      string
	HuggingFaceAPIKey string

	// Alert notification configuration (optional)
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		PollInterval:  getDurationEnv("POLL_INTERVAL", 5*time.Minute),
		SourceItemCap: getIntEnv("SOURCE_ITEM_CAP", 4),

		ShortWindow:         getDurationEnv("SHORT_WINDOW", time.Minute),
		LongWindow:          getDurationEnv("LONG_WINDOW", 5*time.Minute),
		SpikeMultiplier:     getFloatEnv("SPIKE_THRESHOLD_MULTIPLIER", 3),
		MinMentionsForSpike: getIntEnv("MIN_MENTIONS_FOR_SPIKE", 5),

		DatabasePath: getEnv("DATABASE_PATH", "mentions.db"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "mention-archive"),

		GNewsAPIKey:   getEnv("GNEWS_API_KEY", ""),
		YouTubeAPIKey: getEnv("YOUTUBE_API_KEY", ""),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		HuggingFaceAPIKey: getEnv("HF_API_KEY", ""),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}

	if c.ShortWindow <= 0 || c.LongWindow <= 0 {
		return fmt.Errorf("spike detection windows must be positive")
	}

	if c.LongWindow < c.ShortWindow {
		return fmt.Errorf("LONG_WINDOW must be at least SHORT_WINDOW")
	}

	if c.SourceItemCap <= 0 {
		return fmt.Errorf("SOURCE_ITEM_CAP must be positive")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
