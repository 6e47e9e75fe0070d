package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ledgersense/ledgersense/internal/common"
	"github.com/ledgersense/ledgersense/internal/model"
)

// RecordCorrection stores a correction against the most recent prediction
// matching the description. The prediction keeps its original category; the
// correction lands in its actual_category column and in the feedback log.
// When no prediction matches, the feedback row is stored standalone so the
// signal is not lost.
func (s *SQLiteStore) RecordCorrection(ctx context.Context, description, actualCategory string, source model.FeedbackSource) (*model.AccuracyFeedback, error) {
	now := time.Now().UTC()

	fb := model.AccuracyFeedback{
		ActualCategory: actualCategory,
		Source:         source,
		CreatedAt:      now,
	}

	pred, err := s.latestPredictionByDescription(ctx, description)
	switch {
	case errors.Is(err, common.ErrNotFound):
		fb.PredictedCategory = actualCategory
		fb.IsCorrect = true
	case err != nil:
		return nil, err
	default:
		fb.PredictionID = pred.ID
		fb.PredictedCategory = pred.Category
		fb.IsCorrect = model.Correct(pred.Category, actualCategory)

		if _, err := s.db.ExecContext(ctx, `
			UPDATE predictions SET actual_category = ? WHERE id = ?`,
			actualCategory, pred.ID,
		); err != nil {
			return nil, fmt.Errorf("failed to update prediction outcome: %w", err)
		}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (prediction_id, predicted_category, actual_category, is_correct, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		nullString(fb.PredictionID), fb.PredictedCategory, fb.ActualCategory,
		boolToInt(fb.IsCorrect), string(fb.Source), fb.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		fb.ID = id
	}

	return &fb, nil
}
