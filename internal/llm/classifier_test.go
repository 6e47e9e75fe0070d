package llm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersense/ledgersense/internal/common"
)

// mockClient is a scripted Client for classifier tests.
type mockClient struct {
	response ClassificationResponse
	err      error
	prompts  []string
}

func (m *mockClient) Classify(_ context.Context, prompt string) (ClassificationResponse, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return ClassificationResponse{}, m.err
	}
	return m.response, nil
}

func TestNewClassifier(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewClassifier(Config{Provider: "openai"}, 0, slog.Default())
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		_, err := NewClassifier(Config{Provider: "homegrown", APIKey: "k"}, 0, slog.Default())
		assert.ErrorContains(t, err, "unsupported LLM provider")
	})

	t.Run("defaults model version", func(t *testing.T) {
		classifier, err := NewClassifier(Config{APIKey: "k"}, 0, slog.Default())
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", classifier.ModelVersion())
	})
}

func TestClassifier_Classify(t *testing.T) {
	client := &mockClient{
		response: ClassificationResponse{Category: "Food & Drink", Confidence: 0.9},
	}
	classifier := NewClassifierWithClient(client, "test-model", time.Second, slog.Default())

	suggestion, err := classifier.Classify(context.Background(), "STARBUCKS #1234", []string{"Food & Drink", "Groceries"})
	require.NoError(t, err)
	assert.Equal(t, "Food & Drink", suggestion.Category)
	assert.InDelta(t, 0.9, suggestion.Confidence, 0.0001)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "STARBUCKS #1234")
	assert.Contains(t, client.prompts[0], "- Food & Drink")
	assert.Contains(t, client.prompts[0], "- Groceries")
}

func TestClassifier_PropagatesClientError(t *testing.T) {
	client := &mockClient{
		err: common.NewExternalError(classifierStage, common.KindQuotaExceeded, errors.New("429")),
	}
	classifier := NewClassifierWithClient(client, "test-model", time.Second, slog.Default())

	_, err := classifier.Classify(context.Background(), "anything", nil)
	require.Error(t, err)
	assert.Equal(t, common.KindQuotaExceeded, common.KindOf(err))
}

func TestBuildPrompt_NoCategories(t *testing.T) {
	prompt := buildPrompt("UBER TRIP", nil)
	assert.Contains(t, prompt, "(none yet)")
	assert.Contains(t, prompt, "UBER TRIP")
}

func TestOpenAIClient_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"category\": \"Groceries\", \"confidence\": 0.8}"}}]}`))
	}))
	defer srv.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	response, err := client.Classify(context.Background(), "SAFEWAY #88")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", response.Category)
	assert.InDelta(t, 0.8, response.Confidence, 0.0001)
}

func TestOpenAIClient_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind common.ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, common.KindAuthExpired},
		{"rate limited", http.StatusTooManyRequests, `{}`, common.KindQuotaExceeded},
		{"payment required", http.StatusPaymentRequired, `{}`, common.KindQuotaExceeded},
		{"server error", http.StatusInternalServerError, `{}`, common.KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = client.Classify(context.Background(), "x")
			require.Error(t, err)

			var extErr *common.ExternalError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, tt.wantKind, extErr.Kind)
			assert.Equal(t, classifierStage, extErr.Stage)
		})
	}
}

func TestOpenAIClient_MalformedReplies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "oops"},
		{"no choices", `{"choices":[]}`},
		{"non-json content", `{"choices":[{"message":{"content":"Food & Drink, probably"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = client.Classify(context.Background(), "x")
			require.Error(t, err)
			assert.Equal(t, common.KindMalformed, common.KindOf(err))
		})
	}
}

func TestOpenAIClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.Classify(ctx, "x")
	require.Error(t, err)
	assert.Equal(t, common.KindTimeout, common.KindOf(err))
}
