// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/ledgersense/ledgersense/internal/model"
)

// Suggestion is a single categorization suggestion from the primary
// classifier.
type Suggestion struct {
	Category   string
	Confidence float64
	Reasoning  string
}

// Classifier is the primary (AI-backed) transaction classifier. Suggested
// holds the ledger's existing category names; the classifier may return a
// name outside that list, in which case a new category is created.
type Classifier interface {
	Classify(ctx context.Context, description string, suggested []string) (Suggestion, error)
	ModelVersion() string
}

// MetricsStore defines the contract for the prediction/feedback log.
// Writes from the pipeline are best-effort: callers log failures and carry
// on with the categorization result.
type MetricsStore interface {
	// Prediction log
	RecordPrediction(ctx context.Context, record *model.PredictionRecord) error
	RecordCorrection(ctx context.Context, description, actualCategory string, source model.FeedbackSource) (*model.AccuracyFeedback, error)

	// Accuracy queries; readers may see slightly stale data.
	CategoryAccuracy(ctx context.Context, category string) (*model.CategoryAccuracy, error)
	Summary(ctx context.Context) (*model.MetricsSummary, error)

	// Model version bookkeeping
	RecordModelVersion(ctx context.Context, version *model.ModelVersion) error
	LatestModelVersion(ctx context.Context) (*model.ModelVersion, error)

	Close() error
}

// LedgerClient is the external ledger API consumed by the category
// resolver and transaction updater. Every method attempts its call exactly
// once; failures surface as stage-tagged external errors.
type LedgerClient interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	UpdateTransactionCategory(ctx context.Context, journalID, categoryID string) error
}
