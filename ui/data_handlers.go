package ui

import (
	stderrors "errors"
	"log"
	"net/http"
	"strings"

	"solardash/internal/errors"
	"solardash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// handleUpload replaces the session's dataset with an uploaded CSV or XLSX file.
// Failures leave the session untouched and are shown on the dashboard.
func (s *Server) handleUpload(c *gin.Context) {
	sess := middleware.Session(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)

	file, header, err := c.Request.FormFile("dataset")
	if err != nil {
		err = uploadError(err, s.config.MaxUploadBytes)
		s.renderDashboard(c, errors.HTTPStatus(err), sess, flash{Level: flashError, Message: err.Error()})
		return
	}
	defer file.Close()

	ds, err := s.datasets.Ingest(c.Request.Context(), file, header.Filename)
	if err != nil {
		log.Printf("[Upload] %s rejected: %v", header.Filename, err)
		s.renderDashboard(c, errors.HTTPStatus(err), sess, flash{Level: flashError, Message: err.Error()})
		return
	}

	if _, err := s.sessions.ReplaceDataset(sess.ID, ds, s.datasets.DefaultSelection(ds)); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/?loaded=1")
}

func uploadError(err error, limit int64) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		return errors.TooLarge(limit)
	}
	return errors.InvalidInput("choose a CSV or XLSX file to upload")
}

// handleReset puts the session back on the default dataset and selection
func (s *Server) handleReset(c *gin.Context) {
	sess := middleware.Session(c)
	if _, err := s.sessions.Reset(sess.ID); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
