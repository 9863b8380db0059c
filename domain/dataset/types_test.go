package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDataset(t *testing.T) *Dataset {
	t.Helper()
	schema := NewSchema([]Column{
		{Name: "country", Index: 0, Kind: KindCategorical},
		{Name: "GHI", Index: 1, Kind: KindNumeric},
	}, "country", "", []string{"GHI"})

	rows := [][]string{{"Kenya", "200"}, {"Togo", "180"}, {"Benin", "150"}, {"Kenya", ""}}
	records := make([]Record, len(rows))
	for i, r := range rows {
		num := math.NaN()
		if r[1] != "" {
			switch r[1] {
			case "200":
				num = 200
			case "180":
				num = 180
			case "150":
				num = 150
			}
		}
		records[i] = Record{{Raw: r[0], Num: math.NaN()}, {Raw: r[1], Num: num}}
	}
	return New("test", SourceFile, schema, records)
}

func TestNewSelectionNormalizes(t *testing.T) {
	sel := NewSelection("GHI", "Togo", "", "Benin", "Togo")

	assert.Equal(t, []string{"Benin", "Togo"}, sel.Values)
	assert.False(t, sel.IsAll())
	assert.True(t, sel.Contains("Benin"))
	assert.False(t, sel.Contains("Kenya"))
}

func TestEmptySelectionContainsEverything(t *testing.T) {
	sel := NewSelection("GHI")

	assert.True(t, sel.IsAll())
	assert.True(t, sel.Contains("anything"))
}

func TestSchemaLookup(t *testing.T) {
	ds := buildDataset(t)

	col, ok := ds.Schema.Lookup("GHI")
	require.True(t, ok)
	assert.True(t, col.IsNumeric())

	_, ok = ds.Schema.Lookup("ghi")
	assert.False(t, ok, "exact lookup is case sensitive")

	col, ok = ds.Schema.LookupFold("ghi")
	require.True(t, ok)
	assert.Equal(t, "GHI", col.Name)

	assert.True(t, ds.Schema.IsMetric("GHI"))
	assert.False(t, ds.Schema.IsMetric("country"))
	assert.Equal(t, []string{"country", "GHI"}, ds.Schema.Names())
}

func TestDatasetGeoValuesAndDefaultSelection(t *testing.T) {
	ds := buildDataset(t)

	assert.Equal(t, []string{"Benin", "Kenya", "Togo"}, ds.GeoValues())

	sel := ds.DefaultSelection("", 2)
	assert.Equal(t, "GHI", sel.Metric)
	assert.Equal(t, []string{"Benin", "Kenya"}, sel.Values)

	all := ds.DefaultSelection("GHI", 10)
	assert.Len(t, all.Values, 3)
}

func TestCellValidity(t *testing.T) {
	ds := buildDataset(t)

	cell, ok := ds.Cell(3, "GHI")
	require.True(t, ok)
	assert.False(t, cell.Valid())

	cell, ok = ds.Cell(0, "GHI")
	require.True(t, ok)
	assert.True(t, cell.Valid())
	assert.Equal(t, 200.0, cell.Num)
}

func TestErrorsMatchSentinels(t *testing.T) {
	cause := errors.New("boom")
	loadErr := NewLoadError("data.csv", "no data rows", cause)

	assert.True(t, errors.Is(loadErr, ErrLoad))
	assert.True(t, errors.Is(loadErr, cause))
	assert.Contains(t, loadErr.Error(), "data.csv")

	selErr := &InvalidSelectionError{Metric: "XYZ", Available: []string{"GHI"}, Reason: "does not exist"}
	assert.True(t, errors.Is(selErr, ErrInvalidSelection))
	assert.False(t, errors.Is(selErr, ErrLoad))
	assert.Contains(t, selErr.Error(), "XYZ")
}
