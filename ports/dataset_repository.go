package ports

import (
	"context"

	"solardash/domain/core"
	"solardash/domain/dataset"
)

// DatasetCatalog records which datasets were loaded. It stores metadata only,
// never dataset contents.
type DatasetCatalog interface {
	Record(ctx context.Context, entry *dataset.CatalogEntry) error
	GetByID(ctx context.Context, id core.DatasetID) (*dataset.CatalogEntry, error)
	List(ctx context.Context, limit int) ([]*dataset.CatalogEntry, error)
}
