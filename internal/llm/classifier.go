package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledgersense/ledgersense/internal/service"
)

// Classifier implements service.Classifier using an LLM API. Each call runs
// under a bounded timeout and is attempted exactly once; the engine falls
// back to the keyword classifier on any failure.
type Classifier struct {
	client  Client
	logger  *slog.Logger
	model   string
	timeout time.Duration
}

// NewClassifier creates a new LLM-based primary classifier.
func NewClassifier(cfg Config, timeout time.Duration, logger *slog.Logger) (*Classifier, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		client, err = newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Classifier{
		client:  client,
		logger:  logger,
		model:   model,
		timeout: timeout,
	}, nil
}

// NewClassifierWithClient builds a classifier around an existing client.
// Used by tests and by callers that manage their own transport.
func NewClassifierWithClient(client Client, model string, timeout time.Duration, logger *slog.Logger) *Classifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Classifier{client: client, logger: logger, model: model, timeout: timeout}
}

// ModelVersion identifies the backing model for prediction records.
func (c *Classifier) ModelVersion() string {
	return c.model
}

// Classify suggests a category for a transaction description.
func (c *Classifier) Classify(ctx context.Context, description string, suggested []string) (service.Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := buildPrompt(description, suggested)

	response, err := c.client.Classify(ctx, prompt)
	if err != nil {
		c.logger.Warn("primary classification failed",
			"description", description,
			"error", err)
		return service.Suggestion{}, err
	}

	c.logger.Info("transaction classified",
		"description", description,
		"category", response.Category,
		"confidence", response.Confidence)

	return service.Suggestion{
		Category:   response.Category,
		Confidence: response.Confidence,
		Reasoning:  response.Reasoning,
	}, nil
}

// buildPrompt creates the prompt for transaction classification.
func buildPrompt(description string, suggested []string) string {
	categoryList := ""
	for _, cat := range suggested {
		categoryList += fmt.Sprintf("- %s\n", cat)
	}
	if categoryList == "" {
		categoryList = "(none yet)\n"
	}

	return fmt.Sprintf(`Classify this financial transaction into the most appropriate spending category based solely on its description.

Existing Categories:
%s
Transaction Description:
%s

Instructions:
1. Prefer an existing category when one fits. You may suggest a new category when none fit well.
2. Respond with ONLY a JSON object in this exact shape:
   {"category": "<category name>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}

Focus on WHAT the transaction is, not WHY it might have occurred.`,
		categoryList,
		description)
}
