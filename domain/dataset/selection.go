package dataset

import "sort"

// Selection is the user's choice of geographic values and one metric.
// An empty Values set means every geographic value.
type Selection struct {
	Values []string `json:"values"`
	Metric string   `json:"metric"`
}

// NewSelection normalizes values: empty strings dropped, duplicates removed, sorted
func NewSelection(metric string, values ...string) Selection {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return Selection{Values: out, Metric: metric}
}

// IsAll reports whether the selection applies no geographic filter
func (s Selection) IsAll() bool {
	return len(s.Values) == 0
}

// Set returns the chosen values as a lookup set
func (s Selection) Set() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Values))
	for _, v := range s.Values {
		set[v] = struct{}{}
	}
	return set
}

// Contains reports whether v passes the selection
func (s Selection) Contains(v string) bool {
	if s.IsAll() {
		return true
	}
	i := sort.SearchStrings(s.Values, v)
	return i < len(s.Values) && s.Values[i] == v
}

// WithMetric returns a copy using another metric
func (s Selection) WithMetric(metric string) Selection {
	return Selection{Values: append([]string(nil), s.Values...), Metric: metric}
}

// FilteredView is the subset of a dataset matching a selection. It holds row
// indices into the dataset, never copies of records.
type FilteredView struct {
	Dataset   *Dataset
	Selection Selection

	rows []int
}

// NewFilteredView wraps dataset row indices
func NewFilteredView(ds *Dataset, sel Selection, rows []int) *FilteredView {
	return &FilteredView{Dataset: ds, Selection: sel, rows: rows}
}

// Len returns the number of rows in the view
func (v *FilteredView) Len() int {
	return len(v.rows)
}

// Row maps a view position to its dataset index
func (v *FilteredView) Row(i int) int {
	return v.rows[i]
}

// Rows returns a copy of the dataset indices in view order
func (v *FilteredView) Rows() []int {
	return append([]int(nil), v.rows...)
}

// Record returns the record at view position i
func (v *FilteredView) Record(i int) Record {
	return v.Dataset.Record(v.rows[i])
}

// Geo returns the geographic value at view position i
func (v *FilteredView) Geo(i int) string {
	return v.Dataset.Geo(v.rows[i])
}

// Columns returns the original column names in file order
func (v *FilteredView) Columns() []string {
	return v.Dataset.Schema.Names()
}

// GroupSummary holds per-group statistics of one metric. Std is the sample
// standard deviation and is NaN when Count < 2.
type GroupSummary struct {
	Rank   int     `json:"rank"`
	Group  string  `json:"group"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// GroupSeries is the sorted valid metric values of one group
type GroupSeries struct {
	Group  string    `json:"group"`
	Values []float64 `json:"values"`
}
