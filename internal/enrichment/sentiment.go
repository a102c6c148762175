package enrichment

import (
	"strings"

	"github.com/brandpulse/mentions-bot/internal/models"
)

// maxSentimentChars bounds the text considered by the scorer; feed items
// occasionally carry multi-kilobyte bodies and the signal is in the lead.
const maxSentimentChars = 505

var positiveWords = []string{
	"good", "great", "excellent", "love", "awesome", "fantastic", "amazing",
	"helpful", "works", "solved", "success", "impressive", "recommend",
	"reliable", "smooth", "best", "happy", "satisfied", "win", "improved",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "hate", "broken", "error", "fail",
	"problem", "issue", "bug", "worst", "disappointing", "scam", "slow",
	"crash", "refund", "complaint", "angry", "useless", "overpriced",
}

// scoreSentiment classifies text as positive, negative or neutral by
// counting matches against fixed word lists.
func scoreSentiment(text string) string {
	if strings.TrimSpace(text) == "" {
		return models.SentimentNeutral
	}

	if len(text) > maxSentimentChars {
		text = text[:maxSentimentChars]
	}
	text = strings.ToLower(text)

	positiveCount := 0
	negativeCount := 0

	for _, word := range positiveWords {
		if strings.Contains(text, word) {
			positiveCount++
		}
	}

	for _, word := range negativeWords {
		if strings.Contains(text, word) {
			negativeCount++
		}
	}

	if positiveCount > negativeCount {
		return models.SentimentPositive
	} else if negativeCount > positiveCount {
		return models.SentimentNegative
	}

	return models.SentimentNeutral
}
