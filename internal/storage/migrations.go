package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

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
				`CREATE TABLE IF NOT EXISTS documents (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					filename TEXT NOT NULL,
					category TEXT NOT NULL,
					title TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					extracted_text TEXT NOT NULL DEFAULT '',
					confidence REAL NOT NULL DEFAULT 0,
					ocr_confidence REAL NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS events (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					filename TEXT NOT NULL,
					category TEXT NOT NULL,
					title TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					extracted_text TEXT NOT NULL DEFAULT '',
					organizer TEXT NOT NULL DEFAULT 'Not specified',
					place TEXT NOT NULL DEFAULT 'Not specified',
					event_date TEXT NOT NULL DEFAULT 'Not specified',
					confidence REAL NOT NULL DEFAULT 0,
					ocr_confidence REAL NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS award_readiness (
					award_key TEXT PRIMARY KEY,
					total_documents INTEGER NOT NULL DEFAULT 0,
					total_events INTEGER NOT NULL DEFAULT 0,
					total_items INTEGER NOT NULL DEFAULT 0,
					satisfied_criteria TEXT NOT NULL DEFAULT '[]',
					unsatisfied_criteria TEXT NOT NULL DEFAULT '[]',
					readiness_percentage REAL NOT NULL DEFAULT 0,
					is_ready INTEGER NOT NULL DEFAULT 0,
					threshold INTEGER NOT NULL DEFAULT 5,
					last_calculated DATETIME NOT NULL,
					CHECK (total_items = total_documents + total_events),
					CHECK (readiness_percentage BETWEEN 0 AND 100)
				)`,
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
		Description: "Add category and creation indexes",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category)`,
				`CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_events_category ON events(category)`,
				`CREATE INDEX IF NOT EXISTS idx_events_created ON events(created_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to create index: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "One row per filename",
		Up: func(tx *sql.Tx) error {
			// Keep the newest row for every filename, across both tables.
			queries := []string{
				`DELETE FROM documents WHERE rowid NOT IN (
					SELECT rowid FROM (
						SELECT rowid, ROW_NUMBER() OVER (
							PARTITION BY filename ORDER BY created_at DESC, rowid DESC
						) AS rn FROM documents
					) WHERE rn = 1
				)`,
				`DELETE FROM events WHERE rowid NOT IN (
					SELECT rowid FROM (
						SELECT rowid, ROW_NUMBER() OVER (
							PARTITION BY filename ORDER BY created_at DESC, rowid DESC
						) AS rn FROM events
					) WHERE rn = 1
				)`,
				`DELETE FROM documents WHERE EXISTS (
					SELECT 1 FROM events e
					WHERE e.filename = documents.filename AND e.created_at >= documents.created_at
				)`,
				`DELETE FROM events WHERE EXISTS (
					SELECT 1 FROM documents d
					WHERE d.filename = events.filename AND d.created_at > events.created_at
				)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_filename ON documents(filename)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_filename ON events(filename)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to deduplicate items: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("%w: database schema version mismatch: expected %d, got %d",
			ErrSchemaMismatch, ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
