package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgersense/ledgersense/internal/common"
	"github.com/ledgersense/ledgersense/internal/model"
)

// RecordModelVersion stores bookkeeping for a classifier version. Recording
// the same version twice refreshes its stats.
func (s *SQLiteStore) RecordModelVersion(ctx context.Context, v *model.ModelVersion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO model_versions (id, training_size, accuracy, precision, recall, f1, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			training_size = excluded.training_size,
			accuracy = excluded.accuracy,
			precision = excluded.precision,
			recall = excluded.recall,
			f1 = excluded.f1`,
		v.ID, v.TrainingSize, v.Accuracy, v.Precision, v.Recall, v.F1, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record model version: %w", err)
	}
	return nil
}

// LatestModelVersion returns the most recently recorded classifier version,
// or common.ErrNoModel when none has been recorded yet.
func (s *SQLiteStore) LatestModelVersion(ctx context.Context) (*model.ModelVersion, error) {
	var v model.ModelVersion

	err := s.db.QueryRowContext(ctx, `
		SELECT id, training_size, accuracy, precision, recall, f1, created_at
		FROM model_versions
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`,
	).Scan(&v.ID, &v.TrainingSize, &v.Accuracy, &v.Precision, &v.Recall, &v.F1, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, common.ErrNoModel
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model version: %w", err)
	}

	return &v, nil
}
