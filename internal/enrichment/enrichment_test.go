package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSentiment(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "positive content",
			text:     "This is a great product that works perfectly, love it",
			expected: models.SentimentPositive,
		},
		{
			name:     "negative content",
			text:     "Terrible quality and broken on arrival, hate it",
			expected: models.SentimentNegative,
		},
		{
			name:     "neutral content",
			text:     "The company announced a quarterly update",
			expected: models.SentimentNeutral,
		},
		{
			name:     "mixed content balances out",
			text:     "great product but terrible support",
			expected: models.SentimentNeutral,
		},
		{
			name:     "empty text",
			text:     "   ",
			expected: models.SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scoreSentiment(tt.text))
		})
	}
}

func TestScoreSentiment_TruncatesLongText(t *testing.T) {
	// Signal past the truncation point is ignored.
	text := strings.Repeat("x", maxSentimentChars) + " great awesome excellent"
	assert.Equal(t, models.SentimentNeutral, scoreSentiment(text))
}

func TestGeminiClassifier_ClassifyTopic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"pricing/billing"}]}}]}`))
	}))
	defer server.Close()

	classifier := NewGeminiClassifier("test-key")
	classifier.endpoint = server.URL

	topic, err := classifier.ClassifyTopic(context.Background(), "the subscription price went up again")
	require.NoError(t, err)
	assert.Equal(t, "pricing/billing", topic)
}

func TestGeminiClassifier_UnlistedLabelMapsToUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"something else entirely"}]}}]}`))
	}))
	defer server.Close()

	classifier := NewGeminiClassifier("test-key")
	classifier.endpoint = server.URL

	topic, err := classifier.ClassifyTopic(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, models.TopicUnknown, topic)
}

func TestGeminiClassifier_MissingKeyFails(t *testing.T) {
	classifier := NewGeminiClassifier("")

	_, err := classifier.ClassifyTopic(context.Background(), "text")
	assert.Error(t, err)
}

func TestGeminiClassifier_UpstreamErrorFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	classifier := NewGeminiClassifier("test-key")
	classifier.endpoint = server.URL

	_, err := classifier.ClassifyTopic(context.Background(), "text")
	assert.Error(t, err)
}

func TestSummarizer_Summarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"summary_text":"Mentions focus on the recent product launch."}]`))
	}))
	defer server.Close()

	summarizer := NewSummarizer("test-key")
	summarizer.endpoint = server.URL

	summary, err := summarizer.Summarize(context.Background(), []string{"launch post", "another launch post"})
	require.NoError(t, err)
	assert.Equal(t, "Mentions focus on the recent product launch.", summary)
}

func TestSummarizer_NoInputShortCircuits(t *testing.T) {
	summarizer := NewSummarizer("test-key")

	summary, err := summarizer.Summarize(context.Background(), []string{"", "   "})
	require.NoError(t, err)
	assert.Equal(t, "No recent mentions found to generate a summary.", summary)
}

func TestSummarizer_QuotaErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	summarizer := NewSummarizer("test-key")
	summarizer.endpoint = server.URL

	_, err := summarizer.Summarize(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestService_TopicDelegatesToClassifier(t *testing.T) {
	service := NewService("")

	_, err := service.Topic(context.Background(), "text")
	assert.Error(t, err)

	assert.Equal(t, models.SentimentPositive, service.Sentiment("love this great product"))
}
