package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// expectedSchemaVersion is the latest schema version the application expects.
const expectedSchemaVersion = 2

// migration represents a database schema migration.
type migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS predictions (
					id TEXT PRIMARY KEY,
					model_version TEXT NOT NULL,
					description TEXT NOT NULL,
					category TEXT NOT NULL,
					confidence REAL NOT NULL,
					used_fallback INTEGER NOT NULL DEFAULT 0,
					actual_category TEXT,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_predictions_category ON predictions(category)`,
				`CREATE INDEX idx_predictions_description ON predictions(description)`,

				`CREATE TABLE IF NOT EXISTS feedback (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					prediction_id TEXT,
					predicted_category TEXT NOT NULL,
					actual_category TEXT NOT NULL,
					is_correct INTEGER NOT NULL,
					source TEXT NOT NULL,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_feedback_predicted ON feedback(predicted_category)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Model version bookkeeping",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS model_versions (
					id TEXT PRIMARY KEY,
					training_size INTEGER NOT NULL DEFAULT 0,
					accuracy REAL NOT NULL DEFAULT 0,
					precision REAL NOT NULL DEFAULT 0,
					recall REAL NOT NULL DEFAULT 0,
					f1 REAL NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`)
			if err != nil {
				return fmt.Errorf("failed to create model_versions: %w", err)
			}
			return nil
		},
	},
}

// migrate brings the schema up to the expected version.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("applied migration", "version", m.Version, "description", m.Description)
	}

	if current > expectedSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than expected %d", current, expectedSchemaVersion)
	}

	return nil
}
