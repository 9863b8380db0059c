// Package api serves the dashboard's data as JSON and CSV.
//
// All reads run against the caller's session: the selection comes from the
// query string when present and from the session otherwise. Reads never
// modify the session.
package api

import (
	"net/http"
	"strconv"

	"solardash/app"
	"solardash/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler bundles the services the API reads from
type Handler struct {
	sessions   *session.Manager
	dashboard  *app.DashboardService
	datasets   *app.DatasetService
	cookieName string
}

// NewHandler creates the API handler
func NewHandler(sessions *session.Manager, dashboard *app.DashboardService, datasets *app.DatasetService, cookieName string) *Handler {
	return &Handler{
		sessions:   sessions,
		dashboard:  dashboard,
		datasets:   datasets,
		cookieName: cookieName,
	}
}

// Router returns the chi router. Paths are relative to the mount point.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", h.createSession)

		r.Group(func(r chi.Router) {
			r.Use(h.withSession)
			r.Get("/session", h.getSession)
			r.Get("/columns", h.getColumns)
			r.Get("/summary", h.getSummary)
			r.Get("/boxstats", h.getBoxStats)
			r.Get("/rows", h.getRows)
			r.Get("/export.csv", h.exportCSV)
		})

		r.Get("/datasets", h.listDatasets)
		r.Get("/datasets/{id}", h.getDataset)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no such endpoint", Code: "NOT_FOUND"})
	})
	return r
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
