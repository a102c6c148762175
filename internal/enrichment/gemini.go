package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// CandidateLabels is the fixed set of topics a mention can be classified
// into. Anything else the model returns maps to "unknown".
var CandidateLabels = []string{
	"product features",
	"usability/UX",
	"pricing/billing",
	"performance",
	"customer support",
	"marketing/campaigns",
	"competitors",
	"brand perception",
}

// GeminiClassifier labels mention text with a topic using the Gemini
// generateContent API.
type GeminiClassifier struct {
	apiKey   string
	client   *resty.Client
	endpoint string
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClassifier creates a topic classifier. An empty API key yields
// a disabled classifier whose calls fail, which the pipeline degrades to
// "unknown".
func NewGeminiClassifier(apiKey string) *GeminiClassifier {
	return &GeminiClassifier{
		apiKey: apiKey,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "brandpulse-mentions-bot/1.0"),
		endpoint: "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent",
	}
}

// ClassifyTopic asks the model for the single best-fitting label. Unlisted
// answers map to "unknown" rather than an error.
func (g *GeminiClassifier) ClassifyTopic(ctx context.Context, text string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("gemini API key is not configured")
	}

	prompt := fmt.Sprintf(`Classify the following text into one of these categories: %s.
Respond with only the single, most appropriate category name, exactly as provided in the list, with no other text, explanation, or punctuation.

TEXT: "%s"`, strings.Join(CandidateLabels, ", "), text)

	var req geminiRequest
	req.Contents = []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}
	req.GenerationConfig.Temperature = 0.1

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", g.apiKey).
		SetBody(req).
		Post(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(resp.Body(), &geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse gemini response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	label := strings.ToLower(strings.TrimSpace(geminiResp.Candidates[0].Content.Parts[0].Text))
	for _, candidate := range CandidateLabels {
		if label == strings.ToLower(candidate) {
			return label, nil
		}
	}

	logrus.Warnf("Gemini returned an unlisted label %q", label)
	return models.TopicUnknown, nil
}
