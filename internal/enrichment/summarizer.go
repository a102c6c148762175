package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	summaryModelID = "facebook/bart-large-cnn"

	// Strict input control: the inference endpoint rejects long inputs.
	maxMentionsToSummarize = 15
	maxCharsPerMention     = 100
)

// Summarizer produces an abstractive summary of recent mention text via
// the Hugging Face inference API.
type Summarizer struct {
	apiKey   string
	client   *resty.Client
	endpoint string
}

type summaryRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		MaxLength int  `json:"max_length"`
		MinLength int  `json:"min_length"`
		DoSample  bool `json:"do_sample"`
	} `json:"parameters"`
}

type summaryResult struct {
	SummaryText string `json:"summary_text"`
}

// NewSummarizer creates a new summarizer.
func NewSummarizer(apiKey string) *Summarizer {
	return &Summarizer{
		apiKey: apiKey,
		client: resty.New().
			SetTimeout(60 * time.Second).
			SetHeader("User-Agent", "brandpulse-mentions-bot/1.0"),
		endpoint: fmt.Sprintf("https://router.huggingface.co/hf-inference/models/%s", summaryModelID),
	}
}

// Summarize condenses the given mention texts into a short paragraph.
func (s *Summarizer) Summarize(ctx context.Context, texts []string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("hugging face API key is not configured")
	}

	var valid []string
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if len(text) > maxCharsPerMention {
			text = text[:maxCharsPerMention]
		}
		valid = append(valid, text)
		if len(valid) == maxMentionsToSummarize {
			break
		}
	}

	if len(valid) == 0 {
		return "No recent mentions found to generate a summary.", nil
	}

	var req summaryRequest
	req.Inputs = strings.Join(valid, ". ")
	req.Parameters.MaxLength = 150
	req.Parameters.MinLength = 40
	req.Parameters.DoSample = false

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetBody(req).
		Post(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("summarization request failed: %w", err)
	}

	if resp.StatusCode() == 429 || resp.StatusCode() == 503 {
		return "", fmt.Errorf("summarization API quota exceeded or unavailable (status %d)", resp.StatusCode())
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("summarization API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var results []summaryResult
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		return "", fmt.Errorf("failed to parse summarization response: %w", err)
	}

	if len(results) == 0 || strings.TrimSpace(results[0].SummaryText) == "" {
		return "", fmt.Errorf("summarization API returned an empty summary")
	}

	return strings.TrimSpace(results[0].SummaryText), nil
}
