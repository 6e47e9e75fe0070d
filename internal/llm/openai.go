package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ledgersense/ledgersense/internal/common"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

const classifierStage = "primary_classifier"

// openAIClient implements the Client interface for the OpenAI API.
type openAIClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	url         string
	temperature float64
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 150
	}

	url := cfg.BaseURL
	if url == "" {
		url = defaultOpenAIURL
	}

	return &openAIClient{
		apiKey:      cfg.APIKey,
		model:       model,
		url:         url,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Classify sends a classification request to OpenAI. Failures are tagged
// with an error kind so the caller can distinguish timeouts, auth expiry,
// quota exhaustion, and malformed replies.
func (c *openAIClient) Classify(ctx context.Context, prompt string) (ClassificationResponse, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are a financial transaction classifier. You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. Start your response directly with { and end with }.",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(string(jsonBody)))
	if err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ClassificationResponse{}, common.NewExternalError(classifierStage, transportKind(err), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ClassificationResponse{}, common.NewExternalError(classifierStage, common.KindUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return ClassificationResponse{}, common.NewExternalError(classifierStage, statusKind(resp.StatusCode),
			fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body)))
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ClassificationResponse{}, common.NewExternalError(classifierStage, common.KindMalformed,
			fmt.Errorf("failed to parse response: %w", err))
	}

	if len(response.Choices) == 0 {
		return ClassificationResponse{}, common.NewExternalError(classifierStage, common.KindMalformed,
			errors.New("no completion choices returned"))
	}

	parsed, err := parseClassification(response.Choices[0].Message.Content)
	if err != nil {
		return ClassificationResponse{}, common.NewExternalError(classifierStage, common.KindMalformed, err)
	}
	return parsed, nil
}

// statusKind maps an HTTP status to an error kind.
func statusKind(status int) common.ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusFound:
		return common.KindAuthExpired
	case status == http.StatusTooManyRequests || status == http.StatusPaymentRequired:
		return common.KindQuotaExceeded
	default:
		return common.KindUnavailable
	}
}

// transportKind maps a transport-level error to an error kind.
func transportKind(err error) common.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return common.KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return common.KindTimeout
	}
	return common.KindUnavailable
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
	Created int64 `json:"created"`
}
