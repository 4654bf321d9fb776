package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joescharf/bugboard/internal/dashboard"
	"github.com/joescharf/bugboard/internal/metrics"
	"github.com/joescharf/bugboard/internal/models"
	"github.com/joescharf/bugboard/internal/sessions"
	"github.com/joescharf/bugboard/internal/store"
	"github.com/joescharf/bugboard/internal/ui"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "bugboard_session"

// Server provides the dashboard HTTP handlers.
type Server struct {
	sessions *sessions.Manager
	renderer *ui.Renderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewServer creates a dashboard server. A nil logger uses slog.Default().
func NewServer(sm *sessions.Manager, m *metrics.Metrics, logger *slog.Logger) (*Server, error) {
	r, err := ui.NewRenderer()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New(sm.Count)
	}
	return &Server{
		sessions: sm,
		renderer: r,
		metrics:  m,
		logger:   logger,
	}, nil
}

// Router returns an http.Handler for all dashboard routes.
func (s *Server) Router() (http.Handler, error) {
	static, err := ui.StaticHandler()
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	mux := http.NewServeMux()
	s.handle(mux, "GET /{$}", "index", http.HandlerFunc(s.index))
	s.handle(mux, "POST /filter", "filter", http.HandlerFunc(s.selectFilter))
	s.handle(mux, "POST /form/toggle", "form_toggle", http.HandlerFunc(s.toggleForm))
	s.handle(mux, "POST /form/cancel", "form_cancel", http.HandlerFunc(s.cancelForm))
	s.handle(mux, "POST /bugs", "bugs_add", http.HandlerFunc(s.addBug))
	s.handle(mux, "GET /static/", "static", http.StripPrefix("/static", static))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("GET /metrics", s.metrics.Handler())

	return logMiddleware(s.logger, mux), nil
}

func (s *Server) handle(mux *http.ServeMux, pattern, route string, h http.Handler) {
	mux.Handle(pattern, s.metrics.Middleware(route, h))
}

func logMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// session resolves the caller's dashboard, issuing a cookie for new sessions.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*dashboard.Dashboard, error) {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	sid, d, created, err := s.sessions.GetOrCreate(id)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Debug("session created", "session", sid)
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return d, nil
}

func (s *Server) render(w http.ResponseWriter, status int, d *dashboard.Dashboard) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.renderer.Dashboard(w, d.View()); err != nil {
		s.logger.Error("render dashboard", "error", err)
	}
}

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	d, err := s.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, http.StatusOK, d)
}

func (s *Server) selectFilter(w http.ResponseWriter, r *http.Request) {
	d, err := s.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	f, err := models.ParseFilter(r.PostForm.Get("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := d.SelectFilter(f); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.FilterSelected(string(f))
	s.redirectHome(w, r)
}

func (s *Server) toggleForm(w http.ResponseWriter, r *http.Request) {
	d, err := s.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	d.ToggleForm()
	s.redirectHome(w, r)
}

func (s *Server) cancelForm(w http.ResponseWriter, r *http.Request) {
	d, err := s.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	d.Cancel()
	s.redirectHome(w, r)
}

func (s *Server) addBug(w http.ResponseWriter, r *http.Request) {
	d, err := s.session(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	// A submission from an expired session opens a fresh form first.
	d.OpenForm()
	d.EditDraft(models.Draft{
		Title:       r.PostForm.Get("title"),
		Severity:    models.Severity(r.PostForm.Get("severity")),
		Description: r.PostForm.Get("description"),
	})

	bug, err := d.Submit()
	if err != nil {
		if errors.Is(err, store.ErrEmptyTitle) || errors.Is(err, models.ErrUnknownSeverity) {
			s.metrics.AddRejected()
			s.render(w, http.StatusUnprocessableEntity, d)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.metrics.BugAdded(string(bug.Severity))
	s.logger.Info("bug added", "id", bug.ID, "severity", bug.Severity)
	s.redirectHome(w, r)
}
