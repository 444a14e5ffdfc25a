// Package sqlite persists the Submission aggregate in an embedded SQLite
// database. The aggregate is stored as one row per submission with its
// nested collections serialized to JSON columns, plus a membership table
// kept in sync for project-based lookups. Writes go through an optimistic
// version check so concurrent workflows on the same submission cannot
// silently overwrite each other.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/civiplan/submission-service/internal/platform/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	submission_number TEXT PRIMARY KEY,
	drm_number        TEXT NOT NULL,
	status            TEXT NOT NULL,
	progress_status   TEXT NOT NULL,
	program_book_id   TEXT NOT NULL,
	project_ids       TEXT NOT NULL,
	requirements      TEXT NOT NULL,
	status_history    TEXT NOT NULL,
	progress_history  TEXT NOT NULL,
	audit             TEXT NOT NULL,
	created_at        TEXT NOT NULL,
	version           INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_drm ON submissions(drm_number);
CREATE INDEX IF NOT EXISTS idx_submissions_program_book ON submissions(program_book_id);

CREATE TABLE IF NOT EXISTS submission_projects (
	submission_number TEXT NOT NULL REFERENCES submissions(submission_number) ON DELETE CASCADE,
	project_id        TEXT NOT NULL,
	PRIMARY KEY (submission_number, project_id)
);
CREATE INDEX IF NOT EXISTS idx_submission_projects_project ON submission_projects(project_id);
`

// Store owns the database handle and its lifecycle. Repositories built on
// top of it share the same handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database file, applies the schema
// and returns the store. The parent directory is created when missing.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		cfg.Path, cfg.BusyTimeout.Milliseconds(),
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "database"
}

// HealthCheck implements ports.HealthChecker by pinging the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
