package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"solardash/app"
	"solardash/internal/session"
	"solardash/ports"
	"solardash/ui/middleware"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// Config holds web server settings
type Config struct {
	CookieName     string
	MaxUploadBytes int64
}

// Server represents the dashboard web server
type Server struct {
	router    *gin.Engine
	templates *template.Template
	config    Config

	sessions  *session.Manager
	dashboard *app.DashboardService
	datasets  *app.DatasetService
}

// NewServer creates the web server. api, when non-nil, is mounted under /api.
func NewServer(config Config, sessions *session.Manager, dashboard *app.DashboardService, datasets *app.DatasetService, api http.Handler) (*Server, error) {
	if config.CookieName == "" {
		config.CookieName = "solardash_session"
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 32 << 20
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.Default(),
		templates: templates,
		config:    config,
		sessions:  sessions,
		dashboard: dashboard,
		datasets:  datasets,
	}
	s.router.MaxMultipartMemory = config.MaxUploadBytes

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes(api)
	return s, nil
}

// setupMiddleware serves the embedded static files
func (s *Server) setupMiddleware() error {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	log.Printf("[Static] Serving static files from embedded FS at /static")
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes(api http.Handler) {
	s.router.GET("/healthz", s.handleHealth)

	if api != nil {
		s.router.Any("/api/*path", gin.WrapH(http.StripPrefix("/api", api)))
	}

	pages := s.router.Group("/", middleware.EnsureSession(s.sessions, s.config.CookieName))
	pages.GET("/", s.handleIndex)
	pages.POST("/upload", s.handleUpload)
	pages.POST("/reset", s.handleReset)

	pages.GET("/chart.svg", s.handleChart(ports.ChartSVG))
	pages.GET("/chart.png", s.handleChart(ports.ChartPNG))

	pages.GET("/export.csv", s.handleExportCSV)
	pages.GET("/export.xlsx", s.handleExportXLSX)
	pages.GET("/report.html", s.handleReportHTML)
	pages.GET("/report.md", s.handleReportMarkdown)
}

// Handler exposes the router for http.Server and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}
