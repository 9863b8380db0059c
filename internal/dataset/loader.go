// Package dataset turns raw tabular files into typed, immutable datasets.
//
// The Loader reads CSV or XLSX input, builds the column registry once
// (numeric vs categorical via the coercer), picks the geographic column and
// the metric columns, and rejects input that cannot drive the dashboard.
// Uploaded files can additionally be kept on disk through LocalFileStorage.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"solardash/adapters/datareadiness/coercer"
	"solardash/adapters/tabular"
	"solardash/domain/core"
	"solardash/domain/dataset"
)

// knownGeoColumns are tried in order when the configured column is absent
var knownGeoColumns = []string{"country", "region", "site", "location", "city", "state", "province"}

// LoaderConfig holds schema inference settings
type LoaderConfig struct {
	GeoColumn        string
	RegionColumn     string
	PreferredMetrics []string
	Coercion         coercer.CoercionConfig
	Reader           tabular.ReaderConfig
}

// DefaultLoaderConfig returns the solar dashboard defaults
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		GeoColumn:        "country",
		RegionColumn:     "region",
		PreferredMetrics: []string{"GHI", "DNI", "DHI"},
		Coercion:         coercer.DefaultCoercionConfig(),
		Reader:           tabular.DefaultReaderConfig(),
	}
}

// Loader builds datasets from CSV and XLSX input
type Loader struct {
	config  LoaderConfig
	coercer *coercer.TypeCoercer
}

// NewLoader creates a loader
func NewLoader(config LoaderConfig) *Loader {
	return &Loader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.Coercion),
	}
}

// LoadFile reads a dataset from disk, choosing the reader by extension
func (l *Loader) LoadFile(ctx context.Context, path string) (*dataset.Dataset, error) {
	name := filepath.Base(path)
	fileType, err := tabular.FileTypeOf(path)
	if err != nil {
		return nil, dataset.NewLoadError(name, "unsupported file type", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, dataset.NewLoadError(name, "data file not found", err)
		}
		return nil, dataset.NewLoadError(name, "cannot read file", err)
	}

	ds, err := l.loadBytes(ctx, content, name, fileType)
	if err != nil {
		return nil, err
	}
	ds.Source = dataset.SourceFile
	return ds, nil
}

// Load reads delimited text from r
func (l *Loader) Load(ctx context.Context, r io.Reader, name string) (*dataset.Dataset, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, dataset.NewLoadError(name, "cannot read input", err)
	}
	return l.loadBytes(ctx, content, name, tabular.FileTypeCSV)
}

// LoadXLSX reads the first (or configured) sheet of a workbook from r
func (l *Loader) LoadXLSX(ctx context.Context, r io.Reader, name string) (*dataset.Dataset, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, dataset.NewLoadError(name, "cannot read input", err)
	}
	return l.loadBytes(ctx, content, name, tabular.FileTypeXLSX)
}

// LoadUpload dispatches on the uploaded filename's extension
func (l *Loader) LoadUpload(ctx context.Context, r io.Reader, filename string) (*dataset.Dataset, error) {
	fileType, err := tabular.FileTypeOf(filename)
	if err != nil {
		return nil, dataset.NewLoadError(filename, "unsupported file type", err)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, dataset.NewLoadError(filename, "cannot read upload", err)
	}
	return l.loadBytes(ctx, content, filename, fileType)
}

func (l *Loader) loadBytes(ctx context.Context, content []byte, name, fileType string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, dataset.NewLoadError(name, "input is empty", nil)
	}

	var (
		table *tabular.Table
		err   error
	)
	switch fileType {
	case tabular.FileTypeXLSX:
		table, err = tabular.ReadXLSX(bytes.NewReader(content), l.config.Reader)
	default:
		table, err = tabular.ReadCSV(bytes.NewReader(content), l.config.Reader)
	}
	if err != nil {
		if errors.Is(err, tabular.ErrRowLimit) {
			return nil, dataset.NewLoadError(name, err.Error(), err)
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, dataset.NewLoadError(name, fmt.Sprintf("malformed delimited data on line %d", parseErr.Line), err)
		}
		return nil, dataset.NewLoadError(name, "not parseable tabular data", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := l.LoadTable(name, dataset.SourceUpload, table)
	if err != nil {
		return nil, err
	}
	ds.Fingerprint = core.NewHash(content)
	return ds, nil
}

// LoadTable types an already-read table and builds the dataset
func (l *Loader) LoadTable(name string, source dataset.Source, table *tabular.Table) (*dataset.Dataset, error) {
	start := time.Now()

	if err := validateHeaders(table.Headers); err != nil {
		return nil, dataset.NewLoadError(name, err.Error(), nil)
	}
	if len(table.Rows) == 0 {
		return nil, dataset.NewLoadError(name, "no data rows", nil)
	}

	typer := l.coercerFor(table)
	columns := make([]dataset.Column, len(table.Headers))
	values := make([]string, len(table.Rows))
	for i, header := range table.Headers {
		for r, row := range table.Rows {
			values[r] = row[i]
		}
		analysis := typer.AnalyzeColumn(values)
		columns[i] = dataset.Column{
			Name:     header,
			Index:    i,
			Kind:     analysis.RecommendedKind,
			Missing:  analysis.MissingCount,
			Distinct: analysis.DistinctCount,
		}
	}

	geo, ok := l.chooseGeoColumn(columns)
	if !ok {
		return nil, dataset.NewLoadError(name, "no geographic (categorical) column found", nil)
	}
	metrics := l.orderMetrics(columns)
	if len(metrics) == 0 {
		return nil, dataset.NewLoadError(name, "no numeric metric column found", nil)
	}
	region := l.chooseRegionColumn(columns, geo)

	records := make([]dataset.Record, len(table.Rows))
	for r, row := range table.Rows {
		rec := make(dataset.Record, len(columns))
		for i, col := range columns {
			raw := row[i]
			num := math.NaN()
			if col.IsNumeric() {
				if v, ok := typer.ParseNumeric(raw); ok {
					num = v
				}
			}
			rec[i] = dataset.Cell{Raw: raw, Num: num}
		}
		records[r] = rec
	}

	schema := dataset.NewSchema(columns, geo, region, metrics)
	ds := dataset.New(name, source, schema, records)
	ds.Delimiter = table.Delimiter

	log.Printf("[Loader] %s typed in %.2fms: %d rows, %d columns, geo=%s, metrics=%s",
		name, float64(time.Since(start).Nanoseconds())/1e6, len(records), len(columns), geo, strings.Join(metrics, ","))
	return ds, nil
}

// coercerFor returns a coercer that knows the table's field delimiter
func (l *Loader) coercerFor(table *tabular.Table) *coercer.TypeCoercer {
	if table.Delimiter == 0 || table.Delimiter == l.config.Coercion.Delimiter {
		return l.coercer
	}
	cfg := l.config.Coercion
	cfg.Delimiter = table.Delimiter
	return coercer.NewTypeCoercer(cfg)
}

func validateHeaders(headers []string) error {
	if len(headers) == 0 {
		return fmt.Errorf("no header row")
	}
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		if h == "" {
			return fmt.Errorf("column %d has an empty header", i+1)
		}
		if prev, dup := seen[h]; dup {
			return fmt.Errorf("duplicate header %q in columns %d and %d", h, prev+1, i+1)
		}
		seen[h] = i
	}
	return nil
}

func (l *Loader) chooseGeoColumn(columns []dataset.Column) (string, bool) {
	if c, ok := findFold(columns, l.config.GeoColumn); ok && !c.IsNumeric() {
		return c.Name, true
	}
	for _, known := range knownGeoColumns {
		if c, ok := findFold(columns, known); ok && !c.IsNumeric() {
			return c.Name, true
		}
	}
	for _, c := range columns {
		if !c.IsNumeric() {
			return c.Name, true
		}
	}
	return "", false
}

func (l *Loader) chooseRegionColumn(columns []dataset.Column, geo string) string {
	c, ok := findFold(columns, l.config.RegionColumn)
	if !ok || c.IsNumeric() || c.Name == geo {
		return ""
	}
	return c.Name
}

// orderMetrics lists numeric columns, preferred names first, then file order
func (l *Loader) orderMetrics(columns []dataset.Column) []string {
	var metrics []string
	taken := make(map[string]bool)
	for _, pref := range l.config.PreferredMetrics {
		if c, ok := findFold(columns, pref); ok && c.IsNumeric() && !taken[c.Name] {
			metrics = append(metrics, c.Name)
			taken[c.Name] = true
		}
	}
	for _, c := range columns {
		if c.IsNumeric() && !taken[c.Name] {
			metrics = append(metrics, c.Name)
			taken[c.Name] = true
		}
	}
	return metrics
}

// findFold prefers an exact name match over a case-insensitive one
func findFold(columns []dataset.Column, name string) (dataset.Column, bool) {
	if name == "" {
		return dataset.Column{}, false
	}
	for _, c := range columns {
		if c.Name == name {
			return c, true
		}
	}
	for _, c := range columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return dataset.Column{}, false
}
