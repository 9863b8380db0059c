package api

import (
	"math"
	"time"

	"solardash/domain/dataset"
	"solardash/internal/analysis"
	"solardash/internal/session"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type sessionResponse struct {
	SessionID string            `json:"session_id"`
	Dataset   string            `json:"dataset,omitempty"`
	Source    dataset.Source    `json:"source,omitempty"`
	Rows      int               `json:"rows"`
	Selection dataset.Selection `json:"selection"`
	CreatedAt time.Time         `json:"created_at"`
}

func newSessionResponse(s session.Session) sessionResponse {
	resp := sessionResponse{
		SessionID: s.ID.String(),
		Selection: s.Selection,
		CreatedAt: s.CreatedAt,
	}
	if s.HasDataset() {
		resp.Dataset = s.Dataset.Name
		resp.Source = s.Dataset.Source
		resp.Rows = s.Dataset.Len()
	}
	return resp
}

type columnsResponse struct {
	Dataset      string           `json:"dataset"`
	Rows         int              `json:"rows"`
	GeoColumn    string           `json:"geo_column"`
	RegionColumn string           `json:"region_column,omitempty"`
	Metrics      []string         `json:"metrics"`
	Columns      []dataset.Column `json:"columns"`
}

// summaryDTO mirrors dataset.GroupSummary with NaN statistics as null
type summaryDTO struct {
	Rank   int      `json:"rank"`
	Group  string   `json:"group"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
}

func newSummaryDTOs(summaries []dataset.GroupSummary) []summaryDTO {
	out := make([]summaryDTO, len(summaries))
	for i, s := range summaries {
		out[i] = summaryDTO{
			Rank:   s.Rank,
			Group:  s.Group,
			Count:  s.Count,
			Mean:   finite(s.Mean),
			Median: finite(s.Median),
			Std:    finite(s.Std),
			Min:    finite(s.Min),
			Max:    finite(s.Max),
		}
	}
	return out
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type summaryResponse struct {
	Metric    string            `json:"metric"`
	GroupBy   string            `json:"group_by"`
	Selection dataset.Selection `json:"selection"`
	TotalRows int               `json:"total_rows"`
	ViewRows  int               `json:"view_rows"`
	Groups    []summaryDTO      `json:"groups"`
}

type boxStatsResponse struct {
	Metric    string              `json:"metric"`
	Selection dataset.Selection   `json:"selection"`
	Groups    []analysis.BoxStats `json:"groups"`
}

type rowsResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Query   string     `json:"query,omitempty"`
	Matched int        `json:"matched"`
	Page    int        `json:"page"`
	Pages   int        `json:"pages"`
}
