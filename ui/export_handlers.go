package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"solardash/internal/report"
	"solardash/ports"
	"solardash/ui/middleware"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleChart serves the boxplot of the session's selection
func (s *Server) handleChart(format string) gin.HandlerFunc {
	contentType := "image/svg+xml"
	if format == ports.ChartPNG {
		contentType = "image/png"
	}
	return func(c *gin.Context) {
		chart, err := s.dashboard.Chart(c.Request.Context(), middleware.Session(c), format)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, contentType, chart)
	}
}

// handleExportCSV downloads exactly the filtered rows with their original columns
func (s *Server) handleExportCSV(c *gin.Context) {
	sess := middleware.Session(c)
	var buf bytes.Buffer
	if err := s.dashboard.ExportCSV(&buf, sess); err != nil {
		s.fail(c, err)
		return
	}
	attach(c, downloadName(sess.Dataset.Name, "csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	sess := middleware.Session(c)
	var buf bytes.Buffer
	if err := s.dashboard.ExportXLSX(&buf, sess); err != nil {
		s.fail(c, err)
		return
	}
	attach(c, downloadName(sess.Dataset.Name, "xlsx"))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) handleReportHTML(c *gin.Context) {
	data, err := s.dashboard.Report(c.Request.Context(), middleware.Session(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(data))
}

func (s *Server) handleReportMarkdown(c *gin.Context) {
	data, err := s.dashboard.Report(c.Request.Context(), middleware.Session(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	attach(c, downloadName(data.DatasetName, "md"))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", report.Markdown(data))
}

func attach(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// downloadName derives "<dataset>_filtered.<ext>" from the dataset name
func downloadName(name, ext string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
	if base == "" || base == "_" {
		base = "solar_data"
	}
	return base + "_filtered." + ext
}
