// Package engine implements the categorization decision engine: primary
// classifier, keyword fallback, confidence blending, and name
// normalization.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ledgersense/ledgersense/internal/classification"
	"github.com/ledgersense/ledgersense/internal/model"
	"github.com/ledgersense/ledgersense/internal/service"
)

// fallbackModelVersion identifies keyword-fallback predictions in the log.
const fallbackModelVersion = "keyword-fallback"

// Decision is the outcome of one categorization.
type Decision struct {
	Category     string
	Confidence   float64
	UsedFallback bool
}

// Engine orchestrates Primary -> Fallback -> Blender -> normalization.
// It never fails: the fallback classifier is total, so every description
// gets a category.
type Engine struct {
	primary  service.Classifier
	fallback *classification.KeywordClassifier
	metrics  service.MetricsStore
}

// New creates a categorization engine with the given dependencies.
func New(primary service.Classifier, fallback *classification.KeywordClassifier, metrics service.MetricsStore) *Engine {
	if fallback == nil {
		fallback = classification.NewKeywordClassifier(nil)
	}
	return &Engine{
		primary:  primary,
		fallback: fallback,
		metrics:  metrics,
	}
}

// Categorize assigns a category to a transaction description. Suggested
// holds the ledger's current category names; a primary prediction matching
// one of them (ignoring case) adopts the ledger's spelling.
//
// The caller guarantees a non-empty description; empty descriptions are
// rejected upstream by the event router.
func (e *Engine) Categorize(ctx context.Context, description string, suggested []string) Decision {
	var decision Decision
	modelVersion := fallbackModelVersion

	suggestion, err := e.primary.Classify(ctx, description, suggested)
	if err == nil {
		historical, hasHistory := e.historicalAccuracy(ctx, suggestion.Category)
		confidence := Blend(suggestion.Confidence, historical, hasHistory)
		decision = Decision{
			Category:   canonicalName(suggestion.Category, suggested),
			Confidence: confidence,
		}
		modelVersion = e.primary.ModelVersion()
	} else {
		// Immediate, non-blocking fallback; no retry loop, to keep
		// worst-case latency bounded by one classifier timeout.
		category, tier := e.fallback.Classify(description)
		decision = Decision{
			Category:     category,
			Confidence:   BlendFallback(tier),
			UsedFallback: true,
		}
		slog.Info("using fallback classification",
			"description", description,
			"category", category,
			"confidence", tier)
	}

	decision.Category, decision.Confidence = normalizeCategory(decision.Category, decision.Confidence)

	e.recordPrediction(ctx, description, modelVersion, decision)

	return decision
}

// historicalAccuracy fetches rolling accuracy for a category, returning
// hasHistory=false when the store fails or the sample is too small.
func (e *Engine) historicalAccuracy(ctx context.Context, category string) (float64, bool) {
	accuracy, err := e.metrics.CategoryAccuracy(ctx, category)
	if err != nil {
		slog.Warn("failed to load category accuracy",
			"category", category,
			"error", err)
		return 0, false
	}
	if accuracy == nil || accuracy.SampleSize < MinHistorySamples {
		return 0, false
	}
	return accuracy.Accuracy, true
}

// recordPrediction appends the decision to the metrics store. Best-effort:
// a write failure is logged and never aborts the categorization result.
func (e *Engine) recordPrediction(ctx context.Context, description, modelVersion string, decision Decision) {
	record := &model.PredictionRecord{
		ID:           uuid.NewString(),
		ModelVersion: modelVersion,
		Description:  description,
		Category:     decision.Category,
		Confidence:   decision.Confidence,
		UsedFallback: decision.UsedFallback,
		CreatedAt:    time.Now().UTC(),
	}

	if err := e.metrics.RecordPrediction(ctx, record); err != nil {
		slog.Warn("failed to record prediction",
			"description", description,
			"category", decision.Category,
			"error", err)
	}
}
