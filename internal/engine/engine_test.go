package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersense/ledgersense/internal/classification"
	"github.com/ledgersense/ledgersense/internal/common"
	"github.com/ledgersense/ledgersense/internal/model"
	"github.com/ledgersense/ledgersense/internal/service"
)

// mockClassifier is a scripted primary classifier.
type mockClassifier struct {
	suggestion service.Suggestion
	err        error
	version    string
}

func (m *mockClassifier) Classify(_ context.Context, _ string, _ []string) (service.Suggestion, error) {
	if m.err != nil {
		return service.Suggestion{}, m.err
	}
	return m.suggestion, nil
}

func (m *mockClassifier) ModelVersion() string {
	if m.version == "" {
		return "mock-model"
	}
	return m.version
}

// mockStore records predictions in memory and serves scripted accuracy.
type mockStore struct {
	mu        sync.Mutex
	records   []*model.PredictionRecord
	accuracy  map[string]*model.CategoryAccuracy
	recordErr error
	queryErr  error
}

func newMockStore() *mockStore {
	return &mockStore{accuracy: make(map[string]*model.CategoryAccuracy)}
}

func (m *mockStore) RecordPrediction(_ context.Context, record *model.PredictionRecord) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *mockStore) RecordCorrection(_ context.Context, _, _ string, _ model.FeedbackSource) (*model.AccuracyFeedback, error) {
	return nil, errors.New("not implemented")
}

func (m *mockStore) CategoryAccuracy(_ context.Context, category string) (*model.CategoryAccuracy, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if acc, ok := m.accuracy[category]; ok {
		return acc, nil
	}
	return &model.CategoryAccuracy{Category: category}, nil
}

func (m *mockStore) Summary(_ context.Context) (*model.MetricsSummary, error) {
	return &model.MetricsSummary{}, nil
}

func (m *mockStore) RecordModelVersion(_ context.Context, _ *model.ModelVersion) error {
	return nil
}

func (m *mockStore) LatestModelVersion(_ context.Context) (*model.ModelVersion, error) {
	return nil, common.ErrNoModel
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) recorded() []*model.PredictionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.PredictionRecord(nil), m.records...)
}

func TestEngine_PrimarySuccess(t *testing.T) {
	store := newMockStore()
	primary := &mockClassifier{
		suggestion: service.Suggestion{Category: "Food & Drink", Confidence: 0.9},
	}
	eng := New(primary, classification.NewKeywordClassifier(nil), store)

	decision := eng.Categorize(context.Background(), "STARBUCKS #1234", []string{"Food & Drink"})

	assert.Equal(t, "Food & Drink", decision.Category)
	assert.False(t, decision.UsedFallback)
	assert.InDelta(t, 0.9, decision.Confidence, 0.0001)

	records := store.recorded()
	require.Len(t, records, 1)
	assert.Equal(t, "mock-model", records[0].ModelVersion)
	assert.Equal(t, "Food & Drink", records[0].Category)
	assert.NotEmpty(t, records[0].ID)
}

func TestEngine_BlendsWithHistory(t *testing.T) {
	store := newMockStore()
	store.accuracy["Groceries"] = &model.CategoryAccuracy{
		Category:   "Groceries",
		SampleSize: 10,
		Accuracy:   0.5,
	}
	primary := &mockClassifier{
		suggestion: service.Suggestion{Category: "Groceries", Confidence: 0.9},
	}
	eng := New(primary, nil, store)

	decision := eng.Categorize(context.Background(), "SAFEWAY #88", []string{"Groceries"})

	// 0.6*0.9 + 0.4*0.5
	assert.InDelta(t, 0.74, decision.Confidence, 0.0001)
}

func TestEngine_SmallSampleSkipsBlend(t *testing.T) {
	store := newMockStore()
	store.accuracy["Groceries"] = &model.CategoryAccuracy{
		Category:   "Groceries",
		SampleSize: MinHistorySamples - 1,
		Accuracy:   0.1,
	}
	primary := &mockClassifier{
		suggestion: service.Suggestion{Category: "Groceries", Confidence: 0.9},
	}
	eng := New(primary, nil, store)

	decision := eng.Categorize(context.Background(), "SAFEWAY #88", nil)
	assert.InDelta(t, 0.9, decision.Confidence, 0.0001)
}

func TestEngine_FallbackOnPrimaryFailure(t *testing.T) {
	store := newMockStore()
	primary := &mockClassifier{
		err: common.NewExternalError("primary_classifier", common.KindTimeout, errors.New("deadline exceeded")),
	}
	eng := New(primary, classification.NewKeywordClassifier(nil), store)

	decision := eng.Categorize(context.Background(), "STARBUCKS #1234", nil)

	assert.True(t, decision.UsedFallback)
	assert.Equal(t, "Food & Drink", decision.Category)
	assert.InDelta(t, classification.TierHigh, decision.Confidence, 0.0001)

	records := store.recorded()
	require.Len(t, records, 1)
	assert.True(t, records[0].UsedFallback)
	assert.Equal(t, "keyword-fallback", records[0].ModelVersion)
}

func TestEngine_FallbackConfidenceNotBlended(t *testing.T) {
	store := newMockStore()
	// History exists, but fallback tiers must pass through unblended.
	store.accuracy["Food & Drink"] = &model.CategoryAccuracy{
		Category:   "Food & Drink",
		SampleSize: 50,
		Accuracy:   0.2,
	}
	primary := &mockClassifier{err: errors.New("unavailable")}
	eng := New(primary, classification.NewKeywordClassifier(nil), store)

	decision := eng.Categorize(context.Background(), "STARBUCKS #1234", nil)
	assert.InDelta(t, classification.TierHigh, decision.Confidence, 0.0001)
}

func TestEngine_NormalizesPlaceholderCategory(t *testing.T) {
	store := newMockStore()
	primary := &mockClassifier{
		suggestion: service.Suggestion{Category: "Other", Confidence: 0.8},
	}
	eng := New(primary, nil, store)

	decision := eng.Categorize(context.Background(), "random charge", nil)

	assert.Equal(t, "Miscellaneous", decision.Category)
	assert.InDelta(t, 0.56, decision.Confidence, 0.0001)
}

func TestEngine_AdoptsLedgerSpelling(t *testing.T) {
	store := newMockStore()
	primary := &mockClassifier{
		suggestion: service.Suggestion{Category: "food & drink", Confidence: 0.9},
	}
	eng := New(primary, nil, store)

	decision := eng.Categorize(context.Background(), "dinner", []string{"Food & Drink"})
	assert.Equal(t, "Food & Drink", decision.Category)
}

func TestEngine_StoreErrorsDoNotAbort(t *testing.T) {
	store := newMockStore()
	store.queryErr = errors.New("db locked")
	store.recordErr = errors.New("db locked")
	primary := &mockClassifier{
		suggestion: service.Suggestion{Category: "Groceries", Confidence: 0.9},
	}
	eng := New(primary, nil, store)

	decision := eng.Categorize(context.Background(), "SAFEWAY #88", nil)

	assert.Equal(t, "Groceries", decision.Category)
	assert.InDelta(t, 0.9, decision.Confidence, 0.0001)
}
