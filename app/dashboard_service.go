package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"solardash/adapters/tabular"
	"solardash/domain/core"
	"solardash/domain/dataset"
	"solardash/internal/analysis"
	"solardash/internal/filter"
	"solardash/internal/report"
	"solardash/internal/session"
	"solardash/ports"
)

// DashboardConfig holds presentation defaults
type DashboardConfig struct {
	TopN     int
	PageSize int
}

// DashboardService runs one full Filter -> Aggregate -> Present pass per request.
// It keeps no state between calls.
type DashboardService struct {
	renderer ports.ChartRenderer
	config   DashboardConfig
}

// DashboardOptions are per-request presentation choices
type DashboardOptions struct {
	Query       string // raw table search
	Page        int    // zero-based raw table page
	ChartFormat string // empty skips chart rendering
}

// DashboardView is the complete view model of one dashboard render
type DashboardView struct {
	DatasetName  string
	Source       dataset.Source
	TotalRows    int
	GeoColumn    string
	RegionColumn string
	Countries    []string
	Metrics      []string
	Selection    dataset.Selection

	ViewRows  int
	Summaries []dataset.GroupSummary
	Top       []dataset.GroupSummary
	Regions   []dataset.GroupSummary
	Boxes     []analysis.BoxStats
	Chart     []byte

	Columns     []string
	Query       string
	MatchedRows int
	Page        *dataset.FilteredView
	PageIndex   int
	PageCount   int
}

// NewDashboardService creates a dashboard service
func NewDashboardService(renderer ports.ChartRenderer, config DashboardConfig) *DashboardService {
	if config.TopN <= 0 {
		config.TopN = 5
	}
	if config.PageSize <= 0 {
		config.PageSize = 50
	}
	return &DashboardService{renderer: renderer, config: config}
}

// TopN returns the configured ranking size
func (s *DashboardService) TopN() int {
	return s.config.TopN
}

// View filters the session's dataset by its selection
func (s *DashboardService) View(sess session.Session) (*dataset.FilteredView, error) {
	if !sess.HasDataset() {
		return nil, core.ErrNoDataset
	}
	return filter.Filter(sess.Dataset, sess.Selection)
}

// Compute builds the dashboard for the session's current selection
func (s *DashboardService) Compute(ctx context.Context, sess session.Session, opts DashboardOptions) (*DashboardView, error) {
	start := time.Now()
	view, err := s.View(sess)
	if err != nil {
		return nil, err
	}
	ds := sess.Dataset
	metric := sess.Selection.Metric

	summaries, err := analysis.Summarize(view, metric)
	if err != nil {
		return nil, err
	}
	boxes, err := analysis.ComputeBoxStats(view, metric)
	if err != nil {
		return nil, err
	}

	out := &DashboardView{
		DatasetName:  ds.Name,
		Source:       ds.Source,
		TotalRows:    ds.Len(),
		GeoColumn:    ds.Schema.GeoColumn,
		RegionColumn: ds.Schema.RegionColumn,
		Countries:    ds.GeoValues(),
		Metrics:      append([]string(nil), ds.Schema.Metrics...),
		Selection:    sess.Selection,
		ViewRows:     view.Len(),
		Summaries:    summaries,
		Top:          analysis.Rank(summaries, s.config.TopN),
		Boxes:        boxes,
		Columns:      view.Columns(),
		Query:        opts.Query,
	}

	// The region ranking covers the whole dataset, whatever countries are chosen
	if ds.Schema.RegionColumn != "" {
		all, err := filter.Filter(ds, dataset.NewSelection(metric))
		if err != nil {
			return nil, err
		}
		regions, err := analysis.SummarizeBy(all, ds.Schema.RegionColumn, metric)
		if err != nil {
			return nil, err
		}
		out.Regions = analysis.Rank(regions, s.config.TopN)
	}

	searched := filter.Search(view, opts.Query)
	out.MatchedRows = searched.Len()
	out.Page, out.PageIndex, out.PageCount = filter.Page(searched, opts.Page, s.config.PageSize)

	if opts.ChartFormat != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out.Chart, err = s.renderChart(view, metric, opts.ChartFormat)
		if err != nil {
			return nil, err
		}
	}

	log.Printf("[Dashboard] %s: %d/%d rows, %d groups, metric %s in %.2fms",
		sess.ID, view.Len(), ds.Len(), len(summaries), metric, float64(time.Since(start).Nanoseconds())/1e6)
	return out, nil
}

// Chart renders only the boxplot for the session's selection
func (s *DashboardService) Chart(ctx context.Context, sess session.Session, format string) ([]byte, error) {
	view, err := s.View(sess)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.renderChart(view, sess.Selection.Metric, format)
}

func (s *DashboardService) renderChart(view *dataset.FilteredView, metric, format string) ([]byte, error) {
	series, err := analysis.Series(view, metric)
	if err != nil {
		return nil, err
	}
	chart, err := s.renderer.RenderBoxPlot(series, metric, format)
	if err != nil {
		return nil, fmt.Errorf("chart rendering failed: %w", err)
	}
	return chart, nil
}

// Report gathers the data of the downloadable summary
func (s *DashboardService) Report(ctx context.Context, sess session.Session) (report.Data, error) {
	v, err := s.Compute(ctx, sess, DashboardOptions{})
	if err != nil {
		return report.Data{}, err
	}
	return report.Data{
		DatasetName:  v.DatasetName,
		Source:       v.Source,
		TotalRows:    v.TotalRows,
		ViewRows:     v.ViewRows,
		GeoColumn:    v.GeoColumn,
		RegionColumn: v.RegionColumn,
		Selection:    v.Selection,
		Top:          v.Top,
		Regions:      v.Regions,
		Boxes:        v.Boxes,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// ExportCSV writes the filtered rows with original columns and cell text
func (s *DashboardService) ExportCSV(w io.Writer, sess session.Session) error {
	view, err := s.View(sess)
	if err != nil {
		return err
	}
	return tabular.WriteCSV(w, view)
}

// ExportXLSX writes the filtered rows as a workbook
func (s *DashboardService) ExportXLSX(w io.Writer, sess session.Session) error {
	view, err := s.View(sess)
	if err != nil {
		return err
	}
	return tabular.WriteXLSX(w, view, tabular.DefaultSheet)
}
