package testkit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"solardash/domain/dataset"
	internalDataset "solardash/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolarGeneratorDeterministic(t *testing.T) {
	a := NewSolarGenerator(DefaultSolarConfig()).Table()
	b := NewSolarGenerator(DefaultSolarConfig()).Table()
	assert.Equal(t, a, b)

	cfg := DefaultSolarConfig()
	cfg.Seed = 7
	c := NewSolarGenerator(cfg).Table()
	assert.NotEqual(t, a.Rows, c.Rows)
}

func TestSolarGeneratorDataset(t *testing.T) {
	cfg := DefaultSolarConfig()
	cfg.RecordsPerSite = 24
	ds := NewSolarGenerator(cfg).Dataset()

	assert.Equal(t, 72, ds.Len())
	assert.Equal(t, dataset.SourceSynthetic, ds.Source)
	assert.Equal(t, "country", ds.Schema.GeoColumn)
	assert.Equal(t, "region", ds.Schema.RegionColumn)
	assert.Equal(t, []string{"GHI", "DNI", "DHI", "Tamb", "RH", "WS"}, ds.Schema.Metrics)
	assert.Equal(t, []string{"Benin", "Sierra Leone", "Togo"}, ds.GeoValues())

	for i := 0; i < ds.Len(); i++ {
		ghi, _ := ds.Cell(i, "GHI")
		require.True(t, ghi.Valid())
		assert.GreaterOrEqual(t, ghi.Num, 0.0)
	}
}

func TestSolarGeneratorMissingRate(t *testing.T) {
	cfg := DefaultSolarConfig()
	cfg.MissingRate = 0.2
	ds := NewSolarGenerator(cfg).Dataset()

	ghi, ok := ds.Schema.Lookup("GHI")
	require.True(t, ok)
	assert.True(t, ghi.IsNumeric())
	assert.Greater(t, ghi.Missing, 0)
}

func TestDefaultDatasetFallback(t *testing.T) {
	kit := NewTestKit(internalDataset.NewLoader(internalDataset.DefaultLoaderConfig()))
	ctx := context.Background()

	ds, err := kit.DefaultDataset(ctx, filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Equal(t, dataset.SourceSynthetic, ds.Source)

	path := filepath.Join(t.TempDir(), "solar.csv")
	require.NoError(t, kit.Generator().WriteCSV(path))
	ds, err = kit.DefaultDataset(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, dataset.SourceFile, ds.Source)
	assert.Equal(t, 720, ds.Len())

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("only,categorical\na,b\n"), 0644))
	_, err = kit.DefaultDataset(ctx, bad)
	assert.ErrorIs(t, err, dataset.ErrLoad)
}
