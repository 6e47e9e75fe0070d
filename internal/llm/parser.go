package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseClassification extracts the category and confidence from the model's
// reply. The reply must be a JSON object; anything else is a classifier
// failure and routes to the fallback.
func parseClassification(content string) (ClassificationResponse, error) {
	var jsonResp struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning,omitempty"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if jsonResp.Category == "" {
		return ClassificationResponse{}, fmt.Errorf("no category found in response")
	}

	if jsonResp.Confidence < 0 || jsonResp.Confidence > 1 {
		return ClassificationResponse{}, fmt.Errorf("confidence %v out of range [0,1]", jsonResp.Confidence)
	}

	return ClassificationResponse{
		Category:   jsonResp.Category,
		Confidence: jsonResp.Confidence,
		Reasoning:  jsonResp.Reasoning,
	}, nil
}

// cleanMarkdownWrapper strips a ```json fenced block that models sometimes
// wrap around the JSON despite instructions.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}
