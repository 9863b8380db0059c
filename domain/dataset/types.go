package dataset

import (
	"math"
	"sort"
	"strings"
	"time"

	"solardash/domain/core"
)

// ColumnKind is the type assigned to a column once, at load time
type ColumnKind string

const (
	KindCategorical ColumnKind = "categorical"
	KindNumeric     ColumnKind = "numeric"
)

// Source records where a dataset came from
type Source string

const (
	SourceFile      Source = "file"
	SourceUpload    Source = "upload"
	SourceSynthetic Source = "synthetic"
)

// Column describes one column of the typed column registry
type Column struct {
	Name     string     `json:"name"`
	Index    int        `json:"index"`
	Kind     ColumnKind `json:"kind"`
	Missing  int        `json:"missing"`
	Distinct int        `json:"distinct"`
}

// IsNumeric reports whether the column holds metric values
func (c Column) IsNumeric() bool {
	return c.Kind == KindNumeric
}

// Cell holds the original text of a value and, for numeric columns, its parsed form.
// Num is NaN for categorical columns and for missing or unparseable numeric cells.
type Cell struct {
	Raw string
	Num float64
}

// Valid reports whether the cell carries a usable number
func (c Cell) Valid() bool {
	return !math.IsNaN(c.Num)
}

// Record is one row, positional by Column.Index
type Record []Cell

// Dataset is an immutable, ordered set of records sharing one schema.
// Nothing in the application mutates a Dataset after it is built.
type Dataset struct {
	ID          core.DatasetID
	Name        string
	Source      Source
	Fingerprint core.Hash
	Schema      *Schema
	LoadedAt    time.Time
	Delimiter   rune // field separator of a CSV source, 0 otherwise

	records []Record
	geoIdx  int
}

// New builds a dataset; records must match the schema's column count
func New(name string, source Source, schema *Schema, records []Record) *Dataset {
	geo, _ := schema.Lookup(schema.GeoColumn)
	return &Dataset{
		ID:       core.NewDatasetID(),
		Name:     name,
		Source:   source,
		Schema:   schema,
		LoadedAt: time.Now().UTC(),
		records:  records,
		geoIdx:   geo.Index,
	}
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.records)
}

// Record returns the i-th record. Callers must not modify it.
func (d *Dataset) Record(i int) Record {
	return d.records[i]
}

// Geo returns the geographic value of record i
func (d *Dataset) Geo(i int) string {
	return d.records[i][d.geoIdx].Raw
}

// Cell returns the cell of record i in the named column
func (d *Dataset) Cell(i int, column string) (Cell, bool) {
	col, ok := d.Schema.Lookup(column)
	if !ok {
		return Cell{}, false
	}
	return d.records[i][col.Index], true
}

// Distinct returns the sorted, non-empty distinct values of a column
func (d *Dataset) Distinct(column string) []string {
	col, ok := d.Schema.Lookup(column)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	for _, rec := range d.records {
		v := rec[col.Index].Raw
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// GeoValues returns the sorted distinct values of the geographic column
func (d *Dataset) GeoValues() []string {
	return d.Distinct(d.Schema.GeoColumn)
}

// DefaultSelection picks the first n sorted geographic values with the given metric.
// An empty metric falls back to the schema's first metric.
func (d *Dataset) DefaultSelection(metric string, n int) Selection {
	if metric == "" || !d.Schema.IsMetric(metric) {
		metric = d.Schema.DefaultMetric()
	}
	values := d.GeoValues()
	if n >= 0 && n < len(values) {
		values = values[:n]
	}
	return NewSelection(metric, values...)
}

// Schema is the typed column registry built once at load time
type Schema struct {
	GeoColumn    string
	RegionColumn string
	Metrics      []string

	columns []Column
	byName  map[string]int
	byFold  map[string]int
}

// NewSchema indexes columns by exact and case-folded name
func NewSchema(columns []Column, geoColumn, regionColumn string, metrics []string) *Schema {
	s := &Schema{
		GeoColumn:    geoColumn,
		RegionColumn: regionColumn,
		Metrics:      append([]string(nil), metrics...),
		columns:      append([]Column(nil), columns...),
		byName:       make(map[string]int, len(columns)),
		byFold:       make(map[string]int, len(columns)),
	}
	for i, c := range s.columns {
		s.byName[c.Name] = i
		if _, dup := s.byFold[strings.ToLower(c.Name)]; !dup {
			s.byFold[strings.ToLower(c.Name)] = i
		}
	}
	return s
}

// Columns returns a copy of the registry in file order
func (s *Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// Names returns column names in file order
func (s *Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a column by exact name
func (s *Schema) Lookup(name string) (Column, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// LookupFold finds a column ignoring case, preferring an exact match
func (s *Schema) LookupFold(name string) (Column, bool) {
	if c, ok := s.Lookup(name); ok {
		return c, true
	}
	i, ok := s.byFold[strings.ToLower(name)]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// IsMetric reports whether name is a numeric column of this schema
func (s *Schema) IsMetric(name string) bool {
	c, ok := s.Lookup(name)
	return ok && c.IsNumeric()
}

// DefaultMetric is the first metric in preference order
func (s *Schema) DefaultMetric() string {
	if len(s.Metrics) == 0 {
		return ""
	}
	return s.Metrics[0]
}

// Categorical returns the categorical columns in file order
func (s *Schema) Categorical() []Column {
	var out []Column
	for _, c := range s.columns {
		if c.Kind == KindCategorical {
			out = append(out, c)
		}
	}
	return out
}
