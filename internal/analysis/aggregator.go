// Package analysis computes per-group statistics over a FilteredView.
//
// Every function here is pure: the same view and metric always produce the
// same output, and nothing logs or mutates the dataset.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"solardash/domain/dataset"
	"solardash/internal/filter"

	"github.com/montanaflynn/stats"
)

// Summarize groups the view by its geographic column and computes count, mean,
// median, sample std, min and max of metric. Missing metric cells are skipped.
// Rows with an empty geographic value belong to no group.
//
// Output is sorted by mean descending, equal means by group ascending. Groups
// without a single valid value have NaN statistics and sort last.
func Summarize(view *dataset.FilteredView, metric string) ([]dataset.GroupSummary, error) {
	return SummarizeBy(view, view.Dataset.Schema.GeoColumn, metric)
}

// SummarizeBy is Summarize over any categorical column, e.g. region
func SummarizeBy(view *dataset.FilteredView, column, metric string) ([]dataset.GroupSummary, error) {
	groups, err := groupValues(view, column, metric)
	if err != nil {
		return nil, err
	}

	summaries := make([]dataset.GroupSummary, 0, len(groups))
	for name, values := range groups {
		summaries = append(summaries, summarizeGroup(name, values))
	}
	sortSummaries(summaries)
	return summaries, nil
}

// Rank returns the first n summaries with 1-based ranks. n <= 0 keeps all.
// The input is not modified.
func Rank(summaries []dataset.GroupSummary, n int) []dataset.GroupSummary {
	if n <= 0 || n > len(summaries) {
		n = len(summaries)
	}
	ranked := make([]dataset.GroupSummary, n)
	copy(ranked, summaries[:n])
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func summarizeGroup(name string, values []float64) dataset.GroupSummary {
	s := dataset.GroupSummary{
		Group:  name,
		Count:  len(values),
		Mean:   math.NaN(),
		Median: math.NaN(),
		Std:    math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
	}
	if len(values) == 0 {
		return s
	}

	// errors only occur on empty input
	s.Mean, _ = stats.Mean(values)
	s.Median, _ = stats.Median(values)
	s.Min, _ = stats.Min(values)
	s.Max, _ = stats.Max(values)
	if len(values) >= 2 {
		s.Std, _ = stats.StandardDeviationSample(values)
	}
	return s
}

func sortSummaries(summaries []dataset.GroupSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		aNaN, bNaN := math.IsNaN(a.Mean), math.IsNaN(b.Mean)
		switch {
		case aNaN != bNaN:
			return bNaN
		case !aNaN && a.Mean != b.Mean:
			return a.Mean > b.Mean
		default:
			return a.Group < b.Group
		}
	})
}

func categoricalNames(schema *dataset.Schema) []string {
	cols := schema.Categorical()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// groupValues collects the valid metric values of each group in view order
func groupValues(view *dataset.FilteredView, column, metric string) (map[string][]float64, error) {
	schema := view.Dataset.Schema
	if err := filter.ValidateMetric(schema, metric); err != nil {
		return nil, err
	}
	groupCol, ok := schema.Lookup(column)
	if !ok || groupCol.IsNumeric() {
		return nil, fmt.Errorf("%w: %q is not a categorical column (available: %s)",
			dataset.ErrInvalidSelection, column, strings.Join(categoricalNames(schema), ", "))
	}
	metricCol, _ := schema.Lookup(metric)

	groups := make(map[string][]float64)
	for i := 0; i < view.Len(); i++ {
		rec := view.Record(i)
		name := rec[groupCol.Index].Raw
		if name == "" {
			continue
		}
		values := groups[name]
		if cell := rec[metricCol.Index]; cell.Valid() {
			values = append(values, cell.Num)
		}
		groups[name] = values
	}
	return groups, nil
}
