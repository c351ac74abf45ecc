package migration

import (
	"context"

	"negmdf/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. The schema sticks to
// types both PostgreSQL and SQLite accept.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createScreeningRunsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create screening_runs table", err)
	}

	if err := r.createScreeningOutcomesTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create screening_outcomes table", err)
	}

	if err := r.createScreeningMatchesTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create screening_matches table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createScreeningRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS screening_runs (
			id VARCHAR(36) PRIMARY KEY,
			fingerprint VARCHAR(64) NOT NULL,
			source TEXT NOT NULL,
			tolerance DOUBLE PRECISION NOT NULL,
			ions INTEGER NOT NULL DEFAULT 0,
			created_at VARCHAR(40) NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createScreeningOutcomesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS screening_outcomes (
			run_id VARCHAR(36) NOT NULL REFERENCES screening_runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			compound TEXT NOT NULL,
			parity INTEGER NOT NULL,
			base_mass DOUBLE PRECISION NOT NULL,
			features TEXT NOT NULL DEFAULT '[]',
			status VARCHAR(16) NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			hull_vertices INTEGER NOT NULL DEFAULT 0,
			match_count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createScreeningMatchesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS screening_matches (
			run_id VARCHAR(36) NOT NULL REFERENCES screening_runs(id) ON DELETE CASCADE,
			compound_position INTEGER NOT NULL,
			position INTEGER NOT NULL,
			ion_id TEXT NOT NULL,
			retention_time DOUBLE PRECISION NOT NULL,
			observed_mass DOUBLE PRECISION NOT NULL,
			nominal_mass INTEGER NOT NULL,
			mass_defect DOUBLE PRECISION NOT NULL,
			placement VARCHAR(16) NOT NULL,
			PRIMARY KEY (run_id, compound_position, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_screening_runs_created_at ON screening_runs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_screening_runs_fingerprint ON screening_runs(fingerprint)",
		"CREATE INDEX IF NOT EXISTS idx_screening_matches_ion_id ON screening_matches(ion_id)",
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}

	return nil
}
