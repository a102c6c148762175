package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// YouTubeSource implements the YouTube Data API source.
type YouTubeSource struct {
	apiKey   string
	client   *resty.Client
	itemCap  int
	endpoint string
}

type youTubeSearchResponse struct {
	Items []youTubeVideo `json:"items"`
}

type youTubeVideo struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
	} `json:"snippet"`
}

// NewYouTubeSource creates a new YouTube source capped at itemCap
// candidates per fetch.
func NewYouTubeSource(apiKey string, itemCap int) *YouTubeSource {
	return &YouTubeSource{
		apiKey: apiKey,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "brandpulse-mentions-bot/1.0"),
		itemCap:  itemCap,
		endpoint: "https://www.googleapis.com/youtube/v3/search",
	}
}

func (y *YouTubeSource) Name() string {
	return "youtube"
}

func (y *YouTubeSource) IsEnabled() bool {
	return y.apiKey != ""
}

// Fetch retrieves the newest videos matching the query.
func (y *YouTubeSource) Fetch(ctx context.Context, query string) ([]models.Candidate, error) {
	if !y.IsEnabled() {
		logrus.Debug("YouTube source disabled - missing API key")
		return nil, nil
	}

	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part":       "snippet",
			"q":          query,
			"type":       "video",
			"order":      "date",
			"maxResults": "5",
			"key":        y.apiKey,
			"hl":         "en",
			"regionCode": "US",
		}).
		Get(y.endpoint)
	if err != nil {
		return nil, fmt.Errorf("youtube request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("youtube API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp youTubeSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse youtube response: %w", err)
	}

	items := searchResp.Items
	if len(items) > y.itemCap {
		items = items[:y.itemCap]
	}

	var candidates []models.Candidate

	for _, video := range items {
		// Some results (channels, upcoming streams) carry no video id.
		if video.ID.VideoID == "" {
			logrus.Debug("Skipping youtube item without videoId")
			continue
		}

		text := video.Snippet.Title
		if video.Snippet.Description != "" {
			text = text + " - " + video.Snippet.Description
		}

		publishedAt := time.Now()
		if parsed, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt); err == nil {
			publishedAt = parsed
		}

		candidates = append(candidates, models.Candidate{
			Text:        text,
			Source:      "youtube",
			URL:         fmt.Sprintf("https://www.youtube.com/watch?v=%s", video.ID.VideoID),
			PublishedAt: publishedAt,
		})
	}

	return candidates, nil
}
