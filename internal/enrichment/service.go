package enrichment

import "context"

// Service is the production Enricher: in-process sentiment scoring plus
// remote topic classification.
type Service struct {
	classifier *GeminiClassifier
}

// Ensure Service implements Enricher
var _ Enricher = (*Service)(nil)

// NewService creates a new enrichment service.
func NewService(geminiAPIKey string) *Service {
	return &Service{
		classifier: NewGeminiClassifier(geminiAPIKey),
	}
}

// Sentiment scores text as positive, negative or neutral.
func (s *Service) Sentiment(text string) string {
	return scoreSentiment(text)
}

// Topic classifies text into one of the candidate labels.
func (s *Service) Topic(ctx context.Context, text string) (string, error) {
	return s.classifier.ClassifyTopic(ctx, text)
}
