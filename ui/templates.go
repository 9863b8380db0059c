package ui

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"log"
	"strings"

	"solardash/domain/dataset"
	"solardash/internal/report"

	"github.com/gin-gonic/gin"
)

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"num":   report.FormatNumber,
		"count": report.FormatCount,
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
		"join":  strings.Join,
		"selected": func(sel dataset.Selection, v string) bool {
			return !sel.IsAll() && sel.Contains(v)
		},
		"dict": func(kv ...interface{}) map[string]interface{} {
			m := make(map[string]interface{}, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				if k, ok := kv[i].(string); ok {
					m[k] = kv[i+1]
				}
			}
			return m
		},
		// svgURI inlines a rendered chart as an <img> source
		"svgURI": func(svg []byte) template.URL {
			return template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg))
		},
	}
	return template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
}

// renderTemplate executes a template into a buffer first so errors never leave
// a half-written page
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		log.Printf("Template data type: %T", data)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}
