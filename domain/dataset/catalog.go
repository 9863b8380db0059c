package dataset

import (
	"strings"
	"time"

	"solardash/domain/core"
)

// CatalogEntry is the persisted metadata of one loaded dataset
type CatalogEntry struct {
	ID          core.DatasetID `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Source      Source         `db:"source" json:"source"`
	Fingerprint string         `db:"fingerprint" json:"fingerprint"`
	RowCount    int            `db:"row_count" json:"row_count"`
	ColumnCount int            `db:"column_count" json:"column_count"`
	GeoColumn   string         `db:"geo_column" json:"geo_column"`
	Metrics     string         `db:"metrics" json:"metrics"` // comma separated
	LoadedAt    time.Time      `db:"loaded_at" json:"loaded_at"`
}

// NewCatalogEntry describes ds for the catalog
func NewCatalogEntry(ds *Dataset) *CatalogEntry {
	return &CatalogEntry{
		ID:          ds.ID,
		Name:        ds.Name,
		Source:      ds.Source,
		Fingerprint: ds.Fingerprint.String(),
		RowCount:    ds.Len(),
		ColumnCount: len(ds.Schema.Names()),
		GeoColumn:   ds.Schema.GeoColumn,
		Metrics:     strings.Join(ds.Schema.Metrics, ","),
		LoadedAt:    ds.LoadedAt,
	}
}

// MetricList splits Metrics back into names
func (e *CatalogEntry) MetricList() []string {
	if e.Metrics == "" {
		return nil
	}
	return strings.Split(e.Metrics, ",")
}
