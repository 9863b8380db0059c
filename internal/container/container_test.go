package container

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"solardash/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Data: config.DataConfig{
			Path:                 filepath.Join(t.TempDir(), "missing.csv"),
			GeoColumn:            "country",
			RegionColumn:         "region",
			DefaultMetric:        "GHI",
			Metrics:              []string{"GHI", "DNI", "DHI"},
			TopN:                 5,
			DefaultSelectionSize: 3,
		},
		Session:  config.SessionConfig{TTL: time.Hour, CookieName: "solardash_session"},
		LogLevel: "ERROR",
	}
}

func TestContainerFallsBackToSyntheticData(t *testing.T) {
	ctx := context.Background()
	c, err := New(testConfig(t))
	require.NoError(t, err)

	require.NoError(t, c.InitWithDatabase(ctx))
	assert.Nil(t, c.Catalog, "catalog stays disabled without DATABASE_URL")
	require.NoError(t, c.InitServices(ctx))

	require.NotNil(t, c.DefaultDataset)
	assert.Equal(t, "country", c.DefaultDataset.Schema.GeoColumn)
	assert.Greater(t, c.DefaultDataset.Len(), 0)

	sess := c.Sessions.CreateDefault()
	assert.Same(t, c.DefaultDataset, sess.Dataset)
	assert.Equal(t, "GHI", sess.Selection.Metric)
	assert.Len(t, sess.Selection.Values, 3)

	require.NoError(t, c.Shutdown(ctx))
}

func TestContainerWithCatalog(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Database.URL = "sqlite::memory:"
	cfg.Data.UploadDir = t.TempDir()

	c, err := New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, c.Storage)

	require.NoError(t, c.InitWithDatabase(ctx))
	require.NotNil(t, c.Catalog)
	require.NoError(t, c.InitServices(ctx))

	entries, err := c.Datasets.Catalog(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, c.DefaultDataset.Name, entries[0].Name)

	require.NoError(t, c.Shutdown(ctx))
}

type countingMigrator struct {
	runs int
	err  error
}

func (m *countingMigrator) Run(ctx context.Context, db *sqlx.DB) error {
	m.runs++
	return m.err
}

func (m *countingMigrator) Version() string { return "test" }

func TestContainerUsesMigrator(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Database.URL = "sqlite::memory:"

	c, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", c.Migrator.Version())

	failing := &countingMigrator{err: errors.New("boom")}
	c.Migrator = failing
	err = c.InitWithDatabase(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog migration failed")
	assert.Equal(t, 1, failing.runs)
	assert.Nil(t, c.Catalog)
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
