package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/joescharf/bugboard/internal/dashboard"
	"github.com/joescharf/bugboard/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"severityClass": SeverityClass,
	"statusClass":   StatusClass,
}

// Renderer renders the dashboard page from the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Dashboard writes the page for v. Rendering happens into a buffer first so a
// template error never leaves a half-written response.
func (r *Renderer) Dashboard(w io.Writer, v dashboard.View) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "dashboard.html", v); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded stylesheet under its own path ("/dashboard.css").
// Mount it with http.StripPrefix("/static", ...).
func StaticHandler() (http.Handler, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	return http.FileServerFS(sub), nil
}

// SeverityClass returns the CSS class for a severity badge.
func SeverityClass(s models.Severity) string {
	switch s {
	case models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow:
		return "severity-" + string(s)
	default:
		return "severity-unknown"
	}
}

// StatusClass returns the CSS class for a status icon.
func StatusClass(s models.Status) string {
	switch s {
	case models.StatusOpen, models.StatusInProgress, models.StatusClosed:
		return "status-" + string(s)
	default:
		return "status-unknown"
	}
}
