package migration

import (
	"context"
	"fmt"
	"log"
	"time"

	"solardash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles the catalog schema. Statements are portable between
// postgres and sqlite.
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

// Run executes all database migrations in the correct order. It is safe to run repeatedly.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSchemaMigrationsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create schema_migrations table")
	}

	if err := r.createDatasetCatalogTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create dataset_catalog table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.recordVersion(ctx, db); err != nil {
		return errors.Wrap(err, "failed to record migration version")
	}

	log.Printf("[Migration] Catalog schema at version %s (%s)", r.version, db.DriverName())
	return nil
}

func (r *MigrationRunner) createSchemaMigrationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(20) PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createDatasetCatalogTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS dataset_catalog (
			id VARCHAR(64) PRIMARY KEY,
			name TEXT NOT NULL,
			source VARCHAR(20) NOT NULL,
			fingerprint VARCHAR(64) NOT NULL DEFAULT '',
			row_count INTEGER NOT NULL,
			column_count INTEGER NOT NULL,
			geo_column TEXT NOT NULL,
			metrics TEXT NOT NULL,
			loaded_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_dataset_catalog_loaded_at ON dataset_catalog (loaded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_dataset_catalog_fingerprint ON dataset_catalog (fingerprint)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

func (r *MigrationRunner) recordVersion(ctx context.Context, db *sqlx.DB) error {
	query := db.Rebind(`
		INSERT INTO schema_migrations (version, applied_at)
		VALUES (?, ?)
		ON CONFLICT (version) DO NOTHING
	`)
	_, err := db.ExecContext(ctx, query, r.version, time.Now().UTC())
	return err
}

// AppliedVersions lists recorded versions, oldest first
func AppliedVersions(ctx context.Context, db *sqlx.DB) ([]string, error) {
	var versions []string
	if err := db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations ORDER BY applied_at, version`); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return versions, nil
}
