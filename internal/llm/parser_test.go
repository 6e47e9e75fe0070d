package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    ClassificationResponse
		wantErr bool
	}{
		{
			name:    "plain JSON",
			content: `{"category": "Food & Drink", "confidence": 0.9, "reasoning": "coffee shop"}`,
			want:    ClassificationResponse{Category: "Food & Drink", Confidence: 0.9, Reasoning: "coffee shop"},
		},
		{
			name: "markdown fenced JSON",
			content: "```json\n" +
				`{"category": "Groceries", "confidence": 0.8}` +
				"\n```",
			want: ClassificationResponse{Category: "Groceries", Confidence: 0.8},
		},
		{
			name:    "fence without language tag",
			content: "```\n{\"category\": \"Travel\", \"confidence\": 0.7}\n```",
			want:    ClassificationResponse{Category: "Travel", Confidence: 0.7},
		},
		{
			name:    "surrounding whitespace",
			content: "  \n{\"category\": \"Shopping\", \"confidence\": 0.6}\n  ",
			want:    ClassificationResponse{Category: "Shopping", Confidence: 0.6},
		},
		{
			name:    "not JSON",
			content: "I think this is Food & Drink",
			wantErr: true,
		},
		{
			name:    "missing category",
			content: `{"confidence": 0.9}`,
			wantErr: true,
		},
		{
			name:    "confidence above range",
			content: `{"category": "Food & Drink", "confidence": 1.5}`,
			wantErr: true,
		},
		{
			name:    "negative confidence",
			content: `{"category": "Food & Drink", "confidence": -0.1}`,
			wantErr: true,
		},
		{
			name:    "empty content",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClassification(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanMarkdownWrapper(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper(`{"a":1}`))
	assert.Equal(t, "", cleanMarkdownWrapper("   "))
}
