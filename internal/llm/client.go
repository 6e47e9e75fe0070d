// Package llm adapts external AI services into the primary transaction
// classifier. A client failure of any kind triggers the deterministic
// keyword fallback in the engine; nothing here retries.
package llm

import "context"

// ClassificationResponse is a parsed classifier reply.
type ClassificationResponse struct {
	Category   string
	Confidence float64
	Reasoning  string
}

// Client is the transport-level interface to one AI provider.
type Client interface {
	Classify(ctx context.Context, prompt string) (ClassificationResponse, error)
}

// Config holds configuration for the primary classifier.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}
