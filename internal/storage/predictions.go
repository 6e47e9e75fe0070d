package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgersense/ledgersense/internal/common"
	"github.com/ledgersense/ledgersense/internal/model"
)

// RecordPrediction appends a prediction to the log.
func (s *SQLiteStore) RecordPrediction(ctx context.Context, p *model.PredictionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (id, model_version, description, category, confidence, used_fallback, actual_category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ModelVersion, p.Description, p.Category, p.Confidence,
		boolToInt(p.UsedFallback), nullString(p.ActualCategory), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record prediction: %w", err)
	}
	return nil
}

// CategoryAccuracy reports the historical accuracy for a category, derived
// from feedback rows whose predicted category matches case-insensitively.
func (s *SQLiteStore) CategoryAccuracy(ctx context.Context, category string) (*model.CategoryAccuracy, error) {
	acc := &model.CategoryAccuracy{Category: category}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(is_correct), 0)
		FROM feedback
		WHERE predicted_category = ? COLLATE NOCASE`,
		category,
	).Scan(&acc.SampleSize, &acc.Accuracy)
	if err != nil {
		return nil, fmt.Errorf("failed to compute category accuracy: %w", err)
	}

	return acc, nil
}

// Summary aggregates the prediction log for the metrics endpoint.
func (s *SQLiteStore) Summary(ctx context.Context) (*model.MetricsSummary, error) {
	sum := &model.MetricsSummary{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(confidence), 0),
		       COALESCE(SUM(CASE WHEN actual_category IS NOT NULL
		                          AND actual_category = category COLLATE NOCASE
		                         THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(used_fallback), 0)
		FROM predictions`,
	).Scan(&sum.TotalPredictions, &sum.AvgConfidence, &sum.CorrectCount, &sum.FallbackCount)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize predictions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT predicted_category, COUNT(*), AVG(is_correct)
		FROM feedback
		GROUP BY predicted_category COLLATE NOCASE
		ORDER BY predicted_category`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query per-category accuracy: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var acc model.CategoryAccuracy
		if err := rows.Scan(&acc.Category, &acc.SampleSize, &acc.Accuracy); err != nil {
			return nil, fmt.Errorf("failed to scan category accuracy: %w", err)
		}
		sum.ByCategory = append(sum.ByCategory, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category accuracy: %w", err)
	}

	return sum, nil
}

// latestPredictionByDescription returns the most recent prediction whose
// description matches exactly, or common.ErrNotFound when none exists.
func (s *SQLiteStore) latestPredictionByDescription(ctx context.Context, description string) (model.PredictionRecord, error) {
	var (
		p      model.PredictionRecord
		actual sql.NullString
		fb     int
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, model_version, description, category, confidence, used_fallback, actual_category, created_at
		FROM predictions
		WHERE description = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`,
		description,
	).Scan(&p.ID, &p.ModelVersion, &p.Description, &p.Category, &p.Confidence, &fb, &actual, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return model.PredictionRecord{}, common.ErrNotFound
	}
	if err != nil {
		return model.PredictionRecord{}, fmt.Errorf("failed to look up prediction: %w", err)
	}

	p.UsedFallback = fb != 0
	p.ActualCategory = actual.String
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
