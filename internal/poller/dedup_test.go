package poller

import (
	"context"
	"fmt"
	"testing"

	"github.com/brandpulse/mentions-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDeduplicator_Admit(t *testing.T) {
	tests := []struct {
		name      string
		candidate models.Candidate
		exists    bool
		expected  bool
	}{
		{
			name:      "URL already stored",
			candidate: models.Candidate{Text: "release announced", URL: "https://example.com/a"},
			exists:    true,
			expected:  false,
		},
		{
			name:      "URL not stored",
			candidate: models.Candidate{Text: "release announced", URL: "https://example.com/b"},
			exists:    false,
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := &MockStore{}
			mockStore.On("Exists", mock.Anything, tt.candidate.URL).Return(tt.exists, nil)

			dedup := NewDeduplicator(mockStore)

			admitted, err := dedup.Admit(context.Background(), tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, admitted)
		})
	}
}

func TestDeduplicator_AdmitWithoutURL(t *testing.T) {
	// Identical text may already be stored; without a URL there is no
	// dedup key and the candidate is admitted regardless.
	mockStore := &MockStore{}

	dedup := NewDeduplicator(mockStore)

	admitted, err := dedup.Admit(context.Background(), models.Candidate{Text: "duplicate text"})
	require.NoError(t, err)
	assert.True(t, admitted)
	mockStore.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
}

func TestDeduplicator_AdmitStorageError(t *testing.T) {
	mockStore := &MockStore{}
	mockStore.On("Exists", mock.Anything, "https://example.com/a").Return(false, fmt.Errorf("connection lost"))

	dedup := NewDeduplicator(mockStore)

	_, err := dedup.Admit(context.Background(), models.Candidate{URL: "https://example.com/a"})
	assert.Error(t, err)
}
