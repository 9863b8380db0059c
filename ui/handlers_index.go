package ui

import (
	"net/http"
	"strconv"

	"solardash/app"
	"solardash/domain/dataset"
	"solardash/internal/errors"
	"solardash/internal/session"
	"solardash/ports"
	"solardash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Flash levels
const (
	flashError = "error"
	flashInfo  = "info"
)

type flash struct {
	Level   string
	Message string
}

// pageData is the template context of dashboard.html
type pageData struct {
	View        *app.DashboardView
	Rows        [][]string
	Flashes     []flash
	Synthetic   bool
	MaxUploadMB int64
}

func (p pageData) HasPrev() bool { return p.View.PageIndex > 0 }
func (p pageData) HasNext() bool { return p.View.PageIndex+1 < p.View.PageCount }

// handleIndex renders the dashboard, applying any selection change in the query
func (s *Server) handleIndex(c *gin.Context) {
	sess := middleware.Session(c)
	var flashes []flash

	if sel, changed := selectionFromQuery(c, sess.Selection); changed {
		updated, err := s.applySelection(sess, sel)
		if err != nil {
			flashes = append(flashes, flash{Level: flashError, Message: err.Error()})
		} else {
			sess = updated
		}
	}
	if c.Query("loaded") != "" && sess.HasDataset() {
		flashes = append(flashes, flash{Level: flashInfo, Message: "Loaded " + sess.Dataset.Name})
	}

	s.renderDashboard(c, http.StatusOK, sess, flashes...)
}

// selectionFromQuery reads country and metric parameters. The dashboard form
// sends apply=1 so that an empty country list means every country; a bare
// metric parameter keeps the current countries.
func selectionFromQuery(c *gin.Context, current dataset.Selection) (dataset.Selection, bool) {
	q := c.Request.URL.Query()
	_, apply := q["apply"]
	_, hasCountry := q["country"]
	_, hasMetric := q["metric"]
	if !apply && !hasCountry && !hasMetric {
		return current, false
	}

	metric := q.Get("metric")
	if metric == "" {
		metric = current.Metric
	}
	values := current.Values
	if apply || hasCountry {
		values = q["country"]
	}
	return dataset.NewSelection(metric, values...), true
}

// applySelection validates sel against the dataset stored in the session at
// the moment of the update, so a concurrent upload cannot slip in between.
func (s *Server) applySelection(sess session.Session, sel dataset.Selection) (session.Session, error) {
	updated, err := s.sessions.Update(sess.ID, func(current session.Session) (session.Session, error) {
		next := current.WithSelection(sel)
		if _, err := s.dashboard.View(next); err != nil {
			return current, err
		}
		return next, nil
	})
	if err != nil {
		return sess, err
	}
	return updated, nil
}

func (s *Server) renderDashboard(c *gin.Context, status int, sess session.Session, flashes ...flash) {
	page, _ := strconv.Atoi(c.Query("page"))
	v, err := s.dashboard.Compute(c.Request.Context(), sess, app.DashboardOptions{
		Query:       c.Query("q"),
		Page:        page,
		ChartFormat: ports.ChartSVG,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	rows := make([][]string, v.Page.Len())
	for i := range rows {
		rec := v.Page.Record(i)
		cells := make([]string, len(rec))
		for j, cell := range rec {
			cells[j] = cell.Raw
		}
		rows[i] = cells
	}

	s.renderTemplate(c, status, "dashboard.html", pageData{
		View:        v,
		Rows:        rows,
		Flashes:     flashes,
		Synthetic:   v.Source == dataset.SourceSynthetic,
		MaxUploadMB: s.config.MaxUploadBytes >> 20,
	})
}

// fail answers non-page requests with the error text and its mapped status
func (s *Server) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errors.Classify(err)})
}
