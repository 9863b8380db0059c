package db

import (
	"context"
	"testing"
	"time"

	"solardash/domain/core"
	"solardash/domain/dataset"
	"solardash/internal/migration"
	"solardash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) (*catalogRepository, context.Context) {
	t.Helper()
	ctx := context.Background()

	conn, err := Open(ctx, "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	runner := migration.NewRunner()
	require.NoError(t, runner.Run(ctx, conn))
	require.NoError(t, runner.Run(ctx, conn), "migrations are idempotent")

	versions, err := migration.AppliedVersions(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, []string{runner.Version()}, versions)

	return NewCatalogRepository(conn).(*catalogRepository), ctx
}

func TestCatalogRecordAndGet(t *testing.T) {
	catalog, ctx := newTestCatalog(t)

	ds := testkit.NewSolarGenerator(testkit.DefaultSolarConfig()).Dataset()
	entry := dataset.NewCatalogEntry(ds)
	require.NoError(t, catalog.Record(ctx, entry))
	require.NoError(t, catalog.Record(ctx, entry), "recording twice is a no-op")

	got, err := catalog.GetByID(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.ID, got.ID)
	assert.Equal(t, dataset.SourceSynthetic, got.Source)
	assert.Equal(t, ds.Len(), got.RowCount)
	assert.Equal(t, 9, got.ColumnCount)
	assert.Equal(t, "country", got.GeoColumn)
	assert.Equal(t, ds.Schema.Metrics, got.MetricList())
	assert.WithinDuration(t, ds.LoadedAt, got.LoadedAt, time.Second)
}

func TestCatalogGetMissing(t *testing.T) {
	catalog, ctx := newTestCatalog(t)

	_, err := catalog.GetByID(ctx, core.NewDatasetID())
	assert.ErrorIs(t, err, core.ErrDatasetNotFound)
	assert.True(t, core.IsNotFoundError(err))
}

func TestCatalogListNewestFirst(t *testing.T) {
	catalog, ctx := newTestCatalog(t)

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, name := range []string{"first.csv", "second.csv", "third.csv"} {
		require.NoError(t, catalog.Record(ctx, &dataset.CatalogEntry{
			ID:        core.NewDatasetID(),
			Name:      name,
			Source:    dataset.SourceUpload,
			RowCount:  10,
			GeoColumn: "country",
			Metrics:   "GHI",
			LoadedAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	entries, err := catalog.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third.csv", entries[0].Name)
	assert.Equal(t, "second.csv", entries[1].Name)

	all, err := catalog.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url    string
		driver string
		dsn    string
	}{
		{"postgres://u:p@localhost:5432/solar?sslmode=disable", DriverPostgres, "postgres://u:p@localhost:5432/solar?sslmode=disable"},
		{"postgresql://localhost/solar", DriverPostgres, "postgresql://localhost/solar"},
		{"sqlite::memory:", DriverSQLite, ":memory:"},
		{"sqlite://catalog.db", DriverSQLite, "catalog.db"},
		{"file:catalog.db?cache=shared", DriverSQLite, "file:catalog.db?cache=shared"},
		{"data/catalog.sqlite", DriverSQLite, "data/catalog.sqlite"},
	}
	for _, tt := range tests {
		driver, dsn, err := ParseURL(tt.url)
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.driver, driver, tt.url)
		assert.Equal(t, tt.dsn, dsn, tt.url)
	}

	_, _, err := ParseURL("mysql://localhost")
	assert.Error(t, err)
	_, _, err = ParseURL("")
	assert.Error(t, err)
}
