package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"solardash/app"
	"solardash/domain/core"
	"solardash/domain/dataset"
	"solardash/internal/analysis"
	"solardash/internal/errors"
	"solardash/internal/session"

	"github.com/go-chi/chi/v5"
)

type sessionKey struct{}

// withSession resolves the caller's session, creating a default one when the
// id is missing or expired, and echoes the id back as header and cookie.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, created := h.sessions.Resolve(session.IDFromRequest(r, h.cookieName))
		if created {
			http.SetCookie(w, session.Cookie(h.cookieName, sess, h.sessions.TTL()))
		}
		w.Header().Set(session.HeaderName, sess.ID.String())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) session.Session {
	sess, _ := r.Context().Value(sessionKey{}).(session.Session)
	return sess
}

// selected applies ?country= and ?metric= overrides to the session selection
func selected(r *http.Request, sess session.Session) session.Session {
	q := r.URL.Query()
	metric := q.Get("metric")
	if metric == "" {
		metric = sess.Selection.Metric
	}
	if _, ok := q["country"]; ok {
		return sess.WithSelection(dataset.NewSelection(metric, q["country"]...))
	}
	return sess.WithSelection(sess.Selection.WithMetric(metric))
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.CreateDefault()
	http.SetCookie(w, session.Cookie(h.cookieName, sess, h.sessions.TTL()))
	w.Header().Set(session.HeaderName, sess.ID.String())
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSessionResponse(sessionFrom(r)))
}

func (h *Handler) getColumns(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if !sess.HasDataset() {
		writeError(w, core.ErrNoDataset)
		return
	}
	schema := sess.Dataset.Schema
	writeJSON(w, http.StatusOK, columnsResponse{
		Dataset:      sess.Dataset.Name,
		Rows:         sess.Dataset.Len(),
		GeoColumn:    schema.GeoColumn,
		RegionColumn: schema.RegionColumn,
		Metrics:      schema.Metrics,
		Columns:      schema.Columns(),
	})
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	sess := selected(r, sessionFrom(r))
	view, err := h.dashboard.View(sess)
	if err != nil {
		writeError(w, err)
		return
	}

	column := r.URL.Query().Get("by")
	if column == "" {
		column = view.Dataset.Schema.GeoColumn
	}
	summaries, err := analysis.SummarizeBy(view, column, sess.Selection.Metric)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Metric:    sess.Selection.Metric,
		GroupBy:   column,
		Selection: sess.Selection,
		TotalRows: view.Dataset.Len(),
		ViewRows:  view.Len(),
		Groups:    newSummaryDTOs(analysis.Rank(summaries, queryInt(r, "top", 0))),
	})
}

func (h *Handler) getBoxStats(w http.ResponseWriter, r *http.Request) {
	sess := selected(r, sessionFrom(r))
	view, err := h.dashboard.View(sess)
	if err != nil {
		writeError(w, err)
		return
	}
	boxes, err := analysis.ComputeBoxStats(view, sess.Selection.Metric)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boxStatsResponse{
		Metric:    sess.Selection.Metric,
		Selection: sess.Selection,
		Groups:    boxes,
	})
}

func (h *Handler) getRows(w http.ResponseWriter, r *http.Request) {
	sess := selected(r, sessionFrom(r))
	v, err := h.dashboard.Compute(r.Context(), sess, app.DashboardOptions{
		Query: r.URL.Query().Get("q"),
		Page:  queryInt(r, "page", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	rows := make([][]string, v.Page.Len())
	for i := range rows {
		rec := v.Page.Record(i)
		cells := make([]string, len(rec))
		for j, c := range rec {
			cells[j] = c.Raw
		}
		rows[i] = cells
	}
	writeJSON(w, http.StatusOK, rowsResponse{
		Columns: v.Columns,
		Rows:    rows,
		Query:   v.Query,
		Matched: v.MatchedRows,
		Page:    v.PageIndex,
		Pages:   v.PageCount,
	})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	sess := selected(r, sessionFrom(r))
	if _, err := h.dashboard.View(sess); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered_data.csv"`)
	if err := h.dashboard.ExportCSV(w, sess); err != nil {
		log.Printf("[API] CSV export failed mid-stream: %v", err)
	}
}

func (h *Handler) listDatasets(w http.ResponseWriter, r *http.Request) {
	entries, err := h.datasets.Catalog(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*dataset.CatalogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"datasets": entries})
}

func (h *Handler) getDataset(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDatasetID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.InvalidInput("malformed dataset id"))
		return
	}
	entry, err := h.datasets.CatalogEntry(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] Request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: errors.Classify(err)})
}
