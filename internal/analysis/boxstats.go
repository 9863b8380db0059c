package analysis

import (
	"sort"

	"solardash/domain/dataset"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// BoxStats holds the five-number summary of one group plus Tukey whiskers
type BoxStats struct {
	Group        string    `json:"group"`
	Count        int       `json:"count"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// IQR is the interquartile range
func (b BoxStats) IQR() float64 {
	return b.Q3 - b.Q1
}

// Series returns each group's sorted values, ordered by group name.
// Groups without valid values are left out.
func Series(view *dataset.FilteredView, metric string) ([]dataset.GroupSeries, error) {
	groups, err := groupValues(view, view.Dataset.Schema.GeoColumn, metric)
	if err != nil {
		return nil, err
	}

	series := make([]dataset.GroupSeries, 0, len(groups))
	for name, values := range groups {
		if len(values) == 0 {
			continue
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		series = append(series, dataset.GroupSeries{Group: name, Values: sorted})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Group < series[j].Group })
	return series, nil
}

// ComputeBoxStats returns box statistics per group, ordered by group name.
// Quartiles use linear interpolation; whiskers reach the most extreme values
// within 1.5 IQR of the box.
func ComputeBoxStats(view *dataset.FilteredView, metric string) ([]BoxStats, error) {
	series, err := Series(view, metric)
	if err != nil {
		return nil, err
	}

	boxes := make([]BoxStats, len(series))
	for i, s := range series {
		boxes[i] = boxOf(s)
	}
	return boxes, nil
}

func boxOf(s dataset.GroupSeries) BoxStats {
	x := s.Values
	b := BoxStats{
		Group:    s.Group,
		Count:    len(x),
		Min:      x[0],
		Max:      x[len(x)-1],
		Q1:       stat.Quantile(0.25, stat.LinInterp, x, nil),
		Q3:       stat.Quantile(0.75, stat.LinInterp, x, nil),
		Outliers: []float64{},
	}
	b.Median, _ = stats.Median(x)

	low := b.Q1 - 1.5*b.IQR()
	high := b.Q3 + 1.5*b.IQR()
	b.LowerWhisker, b.UpperWhisker = b.Max, b.Min
	for _, v := range x {
		if v < low || v > high {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		if v < b.LowerWhisker {
			b.LowerWhisker = v
		}
		if v > b.UpperWhisker {
			b.UpperWhisker = v
		}
	}
	return b
}
