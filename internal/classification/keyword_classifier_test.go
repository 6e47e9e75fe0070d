package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier_Classify(t *testing.T) {
	classifier := NewKeywordClassifier(nil)

	tests := []struct {
		name           string
		description    string
		wantCategory   string
		wantConfidence float64
	}{
		{
			name:           "exact merchant keyword scores high",
			description:    "STARBUCKS STORE #1234",
			wantCategory:   "Food & Drink",
			wantConfidence: TierHigh,
		},
		{
			name:           "generic term scores medium",
			description:    "Corner Coffee Purchase",
			wantCategory:   "Food & Drink",
			wantConfidence: TierMedium,
		},
		{
			name:           "broad term scores low",
			description:    "Downtown Bakery",
			wantCategory:   "Food & Drink",
			wantConfidence: TierLow,
		},
		{
			name:           "grocery merchant",
			description:    "TRADER JOE'S #552",
			wantCategory:   "Groceries",
			wantConfidence: TierHigh,
		},
		{
			name:           "rideshare",
			description:    "UBER TRIP 8842",
			wantCategory:   "Transportation",
			wantConfidence: TierHigh,
		},
		{
			name:           "no match returns default",
			description:    "ACH WITHDRAWAL 00291",
			wantCategory:   DefaultCategory,
			wantConfidence: DefaultConfidence,
		},
		{
			name:           "matching is case-insensitive",
			description:    "netflix.com",
			wantCategory:   "Entertainment",
			wantConfidence: TierHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, confidence := classifier.Classify(tt.description)
			assert.Equal(t, tt.wantCategory, category)
			assert.InDelta(t, tt.wantConfidence, confidence, 0.001)
		})
	}
}

func TestKeywordClassifier_Deterministic(t *testing.T) {
	classifier := NewKeywordClassifier(nil)

	first, firstConf := classifier.Classify("Whole Foods Market")
	for i := 0; i < 100; i++ {
		category, confidence := classifier.Classify("Whole Foods Market")
		assert.Equal(t, first, category)
		assert.InDelta(t, firstConf, confidence, 0.0001)
	}
}

func TestKeywordClassifier_FirstRuleWins(t *testing.T) {
	rules := []Rule{
		{Category: "First", Tiers: []Tier{{Keywords: []string{"overlap"}, Confidence: TierLow}}},
		{Category: "Second", Tiers: []Tier{{Keywords: []string{"overlap"}, Confidence: TierHigh}}},
	}
	classifier := NewKeywordClassifier(rules)

	category, confidence := classifier.Classify("overlap payment")
	assert.Equal(t, "First", category)
	assert.InDelta(t, TierLow, confidence, 0.001)
}

func TestKeywordClassifier_Total(t *testing.T) {
	classifier := NewKeywordClassifier(nil)

	for _, desc := range []string{"", "   ", "ZZZZZ", "12345", "x"} {
		category, confidence := classifier.Classify(desc)
		assert.NotEmpty(t, category, "every description gets a category")
		assert.Positive(t, confidence)
	}
}
