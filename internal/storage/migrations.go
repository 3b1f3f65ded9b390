package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS analyses (
					id TEXT PRIMARY KEY,
					carrier TEXT NOT NULL,
					line_cost TEXT NOT NULL,
					total_cost TEXT NOT NULL,
					terminal_cost TEXT NOT NULL,
					subtotal TEXT NOT NULL,
					tax_amount TEXT NOT NULL,
					total_amount TEXT NOT NULL,
					summary_line_cost TEXT NOT NULL,
					confidence REAL NOT NULL,
					reliable INTEGER NOT NULL,
					method TEXT NOT NULL,
					analyzed_at DATETIME NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_analyses_carrier ON analyses(carrier)`,
				`CREATE INDEX idx_analyses_analyzed_at ON analyses(analyzed_at)`,

				`CREATE TABLE IF NOT EXISTS analysis_lines (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					analysis_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					label TEXT NOT NULL,
					amount TEXT NOT NULL,
					tax_category TEXT NOT NULL,
					bill_category TEXT NOT NULL,
					confidence REAL NOT NULL,
					raw_text TEXT NOT NULL,
					FOREIGN KEY (analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_analysis_lines_analysis ON analysis_lines(analysis_id)`,
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
		Description: "Store analysis details",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS analysis_details (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					analysis_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					detail TEXT NOT NULL,
					FOREIGN KEY (analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_analysis_details_analysis ON analysis_details(analysis_id)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the schema up to the expected version. Safe to call on
// every startup; already-applied migrations are skipped.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
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

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
			m.Version, m.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		slog.Info("applied migration", "version", m.Version, "description", m.Description)
	}

	return nil
}

// SchemaVersion returns the highest applied migration version, 0 when none.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		// A fresh database has no migrations table yet.
		if strings.Contains(err.Error(), "no such table") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
