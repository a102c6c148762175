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

// GNewsSource implements the GNews search API source.
type GNewsSource struct {
	apiKey   string
	client   *resty.Client
	itemCap  int
	endpoint string
}

type gnewsSearchResponse struct {
	Articles []gnewsArticle `json:"articles"`
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// NewGNewsSource creates a new GNews source capped at itemCap candidates
// per fetch.
func NewGNewsSource(apiKey string, itemCap int) *GNewsSource {
	return &GNewsSource{
		apiKey: apiKey,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "brandpulse-mentions-bot/1.0"),
		itemCap:  itemCap,
		endpoint: "https://gnews.io/api/v4/search",
	}
}

func (g *GNewsSource) Name() string {
	return "gnews"
}

func (g *GNewsSource) IsEnabled() bool {
	return g.apiKey != ""
}

// Fetch retrieves the newest news articles matching the query.
func (g *GNewsSource) Fetch(ctx context.Context, query string) ([]models.Candidate, error) {
	if !g.IsEnabled() {
		logrus.Debug("GNews source disabled - missing API key")
		return nil, nil
	}

	// Exact phrase plus news-oriented boosting terms.
	advancedQuery := fmt.Sprintf(`"%s" OR ("%s" AND (review OR launch OR acquisition OR controversy OR statement))`, query, query)

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      advancedQuery,
			"lang":   "en",
			"max":    "10",
			"token":  g.apiKey,
			"sortby": "publishedAt",
		}).
		Get(g.endpoint)
	if err != nil {
		return nil, fmt.Errorf("gnews request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("gnews API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp gnewsSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse gnews response: %w", err)
	}

	articles := searchResp.Articles
	if len(articles) > g.itemCap {
		articles = articles[:g.itemCap]
	}

	var candidates []models.Candidate

	for _, article := range articles {
		if article.Title == "" {
			logrus.Debug("Skipping gnews article without title")
			continue
		}

		text := article.Title
		if article.Description != "" {
			text = text + " - " + article.Description
		}

		publishedAt := time.Now()
		if parsed, err := time.Parse(time.RFC3339, article.PublishedAt); err == nil {
			publishedAt = parsed
		}

		candidates = append(candidates, models.Candidate{
			Text:        text,
			Source:      "gnews",
			URL:         article.URL,
			PublishedAt: publishedAt,
		})
	}

	return candidates, nil
}
