package analysis

import (
	"testing"

	"solardash/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBoxStats(t *testing.T) {
	csv := "country,GHI\nTogo,5\nBenin,1\nBenin,2\nBenin,3\nBenin,4\nBenin,100\nMali,NA\n"
	view := viewOf(t, csv, dataset.NewSelection("GHI"))

	boxes, err := ComputeBoxStats(view, "GHI")
	require.NoError(t, err)
	require.Len(t, boxes, 2, "groups without values are left out")

	benin := boxes[0]
	assert.Equal(t, "Benin", benin.Group)
	assert.Equal(t, 5, benin.Count)
	assert.Equal(t, 1.0, benin.Min)
	assert.Equal(t, 100.0, benin.Max)
	assert.Equal(t, 3.0, benin.Median)
	assert.LessOrEqual(t, benin.Q1, benin.Median)
	assert.GreaterOrEqual(t, benin.Q3, benin.Median)
	assert.Equal(t, []float64{100}, benin.Outliers)
	assert.Equal(t, 1.0, benin.LowerWhisker)
	assert.Equal(t, 4.0, benin.UpperWhisker)

	togo := boxes[1]
	assert.Equal(t, 1, togo.Count)
	assert.Equal(t, 5.0, togo.Q1)
	assert.Equal(t, 5.0, togo.Q3)
	assert.Empty(t, togo.Outliers)
	assert.Equal(t, 5.0, togo.LowerWhisker)
	assert.Equal(t, 5.0, togo.UpperWhisker)
}

func TestSeriesSorted(t *testing.T) {
	view := viewOf(t, "country,GHI\nKenya,220\nKenya,200\nBenin,150\n", dataset.NewSelection("GHI"))

	series, err := Series(view, "GHI")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "Benin", series[0].Group)
	assert.Equal(t, []float64{200, 220}, series[1].Values)
}
