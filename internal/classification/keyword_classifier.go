// Package classification provides the deterministic keyword-tier fallback
// classifier used when the primary AI classifier is unavailable.
package classification

import "strings"

// Tier confidences by match specificity. A high-specificity keyword (an
// exact merchant) is worth more than a generic term.
const (
	TierHigh   = 0.85
	TierMedium = 0.75
	TierLow    = 0.65

	// DefaultCategory is returned when no keyword group matches.
	DefaultCategory   = "Miscellaneous"
	DefaultConfidence = 0.40
)

// Tier is one keyword group with its fixed confidence.
type Tier struct {
	Keywords   []string
	Confidence float64
}

// Rule holds the ordered keyword tiers for one category.
type Rule struct {
	Category string
	Tiers    []Tier
}

// KeywordClassifier classifies descriptions by keyword tiers. It is a pure
// function of its rules: total, deterministic, and safe for concurrent use.
type KeywordClassifier struct {
	rules []Rule
}

// NewKeywordClassifier creates a classifier with the given rules. Rules are
// evaluated in order; within a rule, tiers are evaluated most specific
// first.
func NewKeywordClassifier(rules []Rule) *KeywordClassifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &KeywordClassifier{rules: rules}
}

// Classify returns the category and tier confidence for a description.
// It always returns a value; unmatched descriptions get DefaultCategory at
// DefaultConfidence.
func (c *KeywordClassifier) Classify(description string) (string, float64) {
	needle := strings.ToLower(description)

	for _, rule := range c.rules {
		for _, tier := range rule.Tiers {
			for _, keyword := range tier.Keywords {
				if strings.Contains(needle, keyword) {
					return rule.Category, tier.Confidence
				}
			}
		}
	}

	return DefaultCategory, DefaultConfidence
}
