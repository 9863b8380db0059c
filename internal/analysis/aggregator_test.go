package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"solardash/domain/dataset"
	internalDataset "solardash/internal/dataset"
	"solardash/internal/filter"
	"solardash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewOf(t *testing.T, csv string, sel dataset.Selection) *dataset.FilteredView {
	t.Helper()
	ds, err := internalDataset.NewLoader(internalDataset.DefaultLoaderConfig()).
		Load(context.Background(), strings.NewReader(csv), "test.csv")
	require.NoError(t, err)
	view, err := filter.Filter(ds, sel)
	require.NoError(t, err)
	return view
}

func TestSummarizeKenyaBenin(t *testing.T) {
	view := viewOf(t, "country,GHI\nKenya,200\nBenin,150\nKenya,220\n", dataset.NewSelection("GHI"))

	got, err := Summarize(view, "GHI")
	require.NoError(t, err)
	require.Len(t, got, 2)

	kenya := got[0]
	assert.Equal(t, "Kenya", kenya.Group)
	assert.Equal(t, 2, kenya.Count)
	assert.InDelta(t, 210.0, kenya.Mean, 1e-9)
	assert.InDelta(t, 210.0, kenya.Median, 1e-9)
	assert.InDelta(t, 14.142135, kenya.Std, 1e-6)
	assert.Equal(t, 200.0, kenya.Min)
	assert.Equal(t, 220.0, kenya.Max)

	benin := got[1]
	assert.Equal(t, "Benin", benin.Group)
	assert.Equal(t, 1, benin.Count)
	assert.Equal(t, 150.0, benin.Mean)
	assert.True(t, math.IsNaN(benin.Std), "single-record group has NaN std")
}

func TestSummarizeOrdering(t *testing.T) {
	csv := "country,GHI\nTogo,100\nBenin,100\nMali,300\nNiger,\nChad,50\n,999\n"
	view := viewOf(t, csv, dataset.NewSelection("GHI"))

	got, err := Summarize(view, "GHI")
	require.NoError(t, err)

	var order []string
	for _, s := range got {
		order = append(order, s.Group)
	}
	assert.Equal(t, []string{"Mali", "Benin", "Togo", "Chad", "Niger"}, order,
		"mean desc, ties by name, all-missing group last, empty geo excluded")

	niger := got[4]
	assert.Equal(t, 0, niger.Count)
	assert.True(t, math.IsNaN(niger.Mean))
	assert.True(t, math.IsNaN(niger.Max))
}

func TestSummarizeSkipsMissingCells(t *testing.T) {
	view := viewOf(t, "country,GHI\nKenya,200\nKenya,NA\nKenya,\nKenya,220\n", dataset.NewSelection("GHI"))

	got, err := Summarize(view, "GHI")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Count)
	assert.InDelta(t, 210.0, got[0].Mean, 1e-9)
}

func TestSummarizeInvalidMetric(t *testing.T) {
	view := viewOf(t, "country,GHI\nKenya,200\n", dataset.NewSelection("GHI"))

	_, err := Summarize(view, "Nonexistent")
	assert.True(t, errors.Is(err, dataset.ErrInvalidSelection))

	_, err = SummarizeBy(view, "GHI", "GHI")
	assert.True(t, errors.Is(err, dataset.ErrInvalidSelection))
}

func TestSummarizeEmptyView(t *testing.T) {
	view := viewOf(t, "country,GHI\nKenya,200\n", dataset.NewSelection("GHI", "nowhere"))

	got, err := Summarize(view, "GHI")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSummarizeIdempotent(t *testing.T) {
	ds := testkit.NewSolarGenerator(testkit.DefaultSolarConfig()).Dataset()
	sel := dataset.NewSelection("DNI", "Benin", "Togo")

	run := func() []dataset.GroupSummary {
		view, err := filter.Filter(ds, sel)
		require.NoError(t, err)
		got, err := Summarize(view, sel.Metric)
		require.NoError(t, err)
		return got
	}
	assert.Equal(t, run(), run())
}

func TestSummarizeByRegion(t *testing.T) {
	csv := "country,region,GHI\nBenin,Malanville,300\nBenin,Kandi,100\nTogo,Dapaong,200\n"
	view := viewOf(t, csv, dataset.NewSelection("GHI", "Benin"))

	got, err := SummarizeBy(view, "region", "GHI")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Malanville", got[0].Group)
	assert.Equal(t, "Kandi", got[1].Group)
}

func TestSummarizeByNamesCategoricalColumns(t *testing.T) {
	csv := "country,region,GHI\nBenin,Kandi,100\n"
	view := viewOf(t, csv, dataset.NewSelection("GHI"))

	_, err := SummarizeBy(view, "GHI", "GHI")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(available: country, region)")

	_, err = SummarizeBy(view, "district", "GHI")
	assert.True(t, errors.Is(err, dataset.ErrInvalidSelection))
	assert.Contains(t, err.Error(), `"district"`)
}

func TestRank(t *testing.T) {
	summaries := []dataset.GroupSummary{{Group: "a"}, {Group: "b"}, {Group: "c"}}

	top := Rank(summaries, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, 2, top[1].Rank)
	assert.Equal(t, 0, summaries[0].Rank, "input untouched")

	assert.Len(t, Rank(summaries, 0), 3)
	assert.Len(t, Rank(summaries, 10), 3)
	assert.Empty(t, Rank(nil, 5))
}
