package app

import (
	"bytes"
	"context"
	"io"
	"log"

	"solardash/domain/core"
	"solardash/domain/dataset"
	internalDataset "solardash/internal/dataset"
	"solardash/ports"
)

// DatasetService loads datasets and keeps the optional upload copies and
// catalog entries in step with them
type DatasetService struct {
	loader        *internalDataset.Loader
	storage       internalDataset.FileStorage // nil disables upload copies
	catalog       ports.DatasetCatalog        // nil disables the catalog
	defaultMetric string
	selectionSize int
}

// NewDatasetService creates a dataset service. storage and catalog may be nil.
func NewDatasetService(loader *internalDataset.Loader, storage internalDataset.FileStorage, catalog ports.DatasetCatalog, defaultMetric string, selectionSize int) *DatasetService {
	return &DatasetService{
		loader:        loader,
		storage:       storage,
		catalog:       catalog,
		defaultMetric: defaultMetric,
		selectionSize: selectionSize,
	}
}

// Ingest loads an uploaded CSV or XLSX file
func (s *DatasetService) Ingest(ctx context.Context, r io.Reader, filename string) (*dataset.Dataset, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, dataset.NewLoadError(filename, "cannot read upload", err)
	}

	ds, err := s.loader.LoadUpload(ctx, bytes.NewReader(content), filename)
	if err != nil {
		return nil, err
	}

	if s.storage != nil {
		path, err := s.storage.Store(ctx, bytes.NewReader(content), filename)
		if err != nil {
			log.Printf("[DatasetService] Warning: could not keep a copy of %s: %v", filename, err)
		} else {
			log.Printf("[DatasetService] Stored upload %s at %s", filename, path)
		}
	}

	s.Register(ctx, ds)
	return ds, nil
}

// Register records ds in the catalog. Catalog failures never block the dashboard.
func (s *DatasetService) Register(ctx context.Context, ds *dataset.Dataset) {
	if s.catalog == nil || ds == nil {
		return
	}
	if err := s.catalog.Record(ctx, dataset.NewCatalogEntry(ds)); err != nil {
		log.Printf("[DatasetService] Warning: catalog record failed for %s: %v", ds.Name, err)
	}
}

// DefaultSelection is the first-visit selection for ds
func (s *DatasetService) DefaultSelection(ds *dataset.Dataset) dataset.Selection {
	if ds == nil {
		return dataset.Selection{}
	}
	return ds.DefaultSelection(s.defaultMetric, s.selectionSize)
}

// Catalog lists recently loaded datasets
func (s *DatasetService) Catalog(ctx context.Context, limit int) ([]*dataset.CatalogEntry, error) {
	if s.catalog == nil {
		return nil, core.ErrCatalogDisabled
	}
	return s.catalog.List(ctx, limit)
}

// CatalogEntry returns one catalog entry
func (s *DatasetService) CatalogEntry(ctx context.Context, id core.DatasetID) (*dataset.CatalogEntry, error) {
	if s.catalog == nil {
		return nil, core.ErrCatalogDisabled
	}
	return s.catalog.GetByID(ctx, id)
}
