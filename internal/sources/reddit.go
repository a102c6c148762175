package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"time"

	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// RedditSource reads Reddit's public search feed. No credentials needed;
// the feed endpoint serves Atom XML.
type RedditSource struct {
	client   *resty.Client
	itemCap  int
	endpoint string
}

type redditFeed struct {
	XMLName xml.Name      `xml:"feed"`
	Entries []redditEntry `xml:"entry"`
}

type redditEntry struct {
	Title   string `xml:"title"`
	Content string `xml:"content"`
	Updated string `xml:"updated"`
	Link    struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
}

// NewRedditSource creates a new Reddit source capped at itemCap candidates
// per fetch.
func NewRedditSource(itemCap int) *RedditSource {
	return &RedditSource{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "brandpulse-mentions-bot/1.0"),
		itemCap:  itemCap,
		endpoint: "https://www.reddit.com/search.rss",
	}
}

func (r *RedditSource) Name() string {
	return "reddit"
}

func (r *RedditSource) IsEnabled() bool {
	return true // public feed, no API key required
}

// Fetch retrieves the newest discussion posts matching the query.
func (r *RedditSource) Fetch(ctx context.Context, query string) ([]models.Candidate, error) {
	// Exact phrase plus discussion-oriented boosting terms, self posts only.
	advancedQuery := fmt.Sprintf(`"%s" OR title:"%s" (review OR help OR feedback) self:true`, query, query)

	feedURL := fmt.Sprintf("%s?q=%s&sort=new", r.endpoint, url.QueryEscape(advancedQuery))

	resp, err := r.client.R().
		SetContext(ctx).
		Get(feedURL)
	if err != nil {
		return nil, fmt.Errorf("reddit feed request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit feed returned status %d", resp.StatusCode())
	}

	var feed redditFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, fmt.Errorf("failed to parse reddit feed: %w", err)
	}

	entries := feed.Entries
	if len(entries) > r.itemCap {
		entries = entries[:r.itemCap]
	}

	var candidates []models.Candidate

	for _, entry := range entries {
		text := stripHTML(entry.Content)
		if text == "" {
			text = entry.Title
		}
		if text == "" {
			logrus.Debug("Skipping reddit entry without title or content")
			continue
		}

		publishedAt := time.Now()
		if parsed, err := time.Parse(time.RFC3339, entry.Updated); err == nil {
			publishedAt = parsed
		}

		candidates = append(candidates, models.Candidate{
			Text:        text,
			Source:      "reddit",
			URL:         entry.Link.Href,
			PublishedAt: publishedAt,
		})
	}

	return candidates, nil
}
