package model

import (
	"strings"
	"time"
)

// PredictionRecord captures a single categorization attempt. Records are
// append-only; ActualCategory is filled in later when feedback arrives.
type PredictionRecord struct {
	ID             string
	ModelVersion   string
	Description    string
	Category       string
	Confidence     float64 // [0,1] raw, blended range after the engine
	UsedFallback   bool
	ActualCategory string // empty until corrected by feedback
	CreatedAt      time.Time
}

// FeedbackSource identifies who supplied a category correction.
type FeedbackSource string

// Feedback sources.
const (
	FeedbackSourceUser   FeedbackSource = "user"
	FeedbackSourceSystem FeedbackSource = "system"
)

// AccuracyFeedback is a human (or system) correction of a prediction.
// Records are never mutated after creation.
type AccuracyFeedback struct {
	ID                int64
	PredictionID      string
	PredictedCategory string
	ActualCategory    string
	IsCorrect         bool
	Source            FeedbackSource
	CreatedAt         time.Time
}

// Correct reports whether a predicted category matches the corrected one,
// ignoring case.
func Correct(predicted, actual string) bool {
	return strings.EqualFold(predicted, actual)
}

// ModelVersion records aggregate quality for one revision of the primary
// classifier's backing model. Metrics are estimated when the sample is too
// small to measure.
type ModelVersion struct {
	ID           string
	TrainingSize int
	Accuracy     float64
	Precision    float64
	Recall       float64
	F1           float64
	CreatedAt    time.Time
}

// CategoryAccuracy is the rolling accuracy of predictions for one category.
type CategoryAccuracy struct {
	Category   string
	SampleSize int
	Accuracy   float64
}

// MetricsSummary aggregates prediction statistics for the read-only
// metrics endpoint. Non-authoritative; confidence blending uses
// per-category accuracy queries, not this summary.
type MetricsSummary struct {
	TotalPredictions int
	AvgConfidence    float64
	CorrectCount     int
	FallbackCount    int
	ByCategory       []CategoryAccuracy
}
