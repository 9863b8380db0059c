// Package filter derives FilteredViews from an immutable Dataset.
package filter

import (
	"strings"

	"solardash/domain/dataset"
)

// Filter returns the records whose geographic value is in the selection, in
// dataset order. An empty selection keeps every record. Selected values that
// do not occur in the dataset simply match nothing.
func Filter(ds *dataset.Dataset, sel dataset.Selection) (*dataset.FilteredView, error) {
	if err := ValidateMetric(ds.Schema, sel.Metric); err != nil {
		return nil, err
	}

	rows := make([]int, 0, ds.Len())
	if sel.IsAll() {
		for i := 0; i < ds.Len(); i++ {
			rows = append(rows, i)
		}
		return dataset.NewFilteredView(ds, sel, rows), nil
	}

	chosen := sel.Set()
	for i := 0; i < ds.Len(); i++ {
		if _, ok := chosen[ds.Geo(i)]; ok {
			rows = append(rows, i)
		}
	}
	return dataset.NewFilteredView(ds, sel, rows), nil
}

// ValidateMetric fails with *InvalidSelectionError when metric is not a numeric column
func ValidateMetric(schema *dataset.Schema, metric string) error {
	col, ok := schema.Lookup(metric)
	switch {
	case !ok:
		return &dataset.InvalidSelectionError{Metric: metric, Available: schema.Metrics, Reason: "does not exist"}
	case !col.IsNumeric():
		return &dataset.InvalidSelectionError{Metric: metric, Available: schema.Metrics, Reason: "is not numeric"}
	}
	return nil
}

// Search narrows a view to rows where any cell contains query, ignoring case.
// A blank query returns the view unchanged.
func Search(view *dataset.FilteredView, query string) *dataset.FilteredView {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return view
	}

	rows := make([]int, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		for _, cell := range view.Record(i) {
			if strings.Contains(strings.ToLower(cell.Raw), query) {
				rows = append(rows, view.Row(i))
				break
			}
		}
	}
	return dataset.NewFilteredView(view.Dataset, view.Selection, rows)
}

// DefaultSelection is the first-visit selection: the first n sorted
// geographic values with the preferred metric.
func DefaultSelection(ds *dataset.Dataset, metric string, n int) dataset.Selection {
	return ds.DefaultSelection(metric, n)
}

// Page returns rows [page*size, (page+1)*size) of the view, plus the page count.
// Out-of-range pages are clamped.
func Page(view *dataset.FilteredView, page, size int) (*dataset.FilteredView, int, int) {
	if size <= 0 {
		size = 50
	}
	pages := (view.Len() + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}

	start := page * size
	end := start + size
	if end > view.Len() {
		end = view.Len()
	}
	rows := view.Rows()[start:end]
	return dataset.NewFilteredView(view.Dataset, view.Selection, rows), page, pages
}
