package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"solardash/domain/core"
	"solardash/domain/dataset"
	"solardash/ports"

	"github.com/jmoiron/sqlx"
)

// catalogRepository implements ports.DatasetCatalog
type catalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a catalog backed by db
func NewCatalogRepository(db *sqlx.DB) ports.DatasetCatalog {
	return &catalogRepository{db: db}
}

const catalogColumns = `id, name, source, fingerprint, row_count, column_count, geo_column, metrics, loaded_at`

// Record inserts an entry; recording the same id twice is a no-op
func (r *catalogRepository) Record(ctx context.Context, entry *dataset.CatalogEntry) error {
	query := r.db.Rebind(`INSERT INTO dataset_catalog (` + catalogColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Name, entry.Source, entry.Fingerprint, entry.RowCount, entry.ColumnCount,
		entry.GeoColumn, entry.Metrics, entry.LoadedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record dataset: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by its ID
func (r *catalogRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.CatalogEntry, error) {
	query := r.db.Rebind(`SELECT ` + catalogColumns + ` FROM dataset_catalog WHERE id = ?`)

	var entry dataset.CatalogEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return &entry, nil
}

// List returns the most recently loaded entries first. limit <= 0 means 50.
func (r *catalogRepository) List(ctx context.Context, limit int) ([]*dataset.CatalogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.Rebind(`SELECT ` + catalogColumns + ` FROM dataset_catalog
		ORDER BY loaded_at DESC, id DESC LIMIT ?`)

	entries := []*dataset.CatalogEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return entries, nil
}
