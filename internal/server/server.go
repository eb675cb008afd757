// Package server exposes milestone state over a local HTTP interface:
// a JSON status surface plus a create endpoint, replacing the panel UI
// the tool grew out of.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"milepost/internal/config"
	"milepost/internal/journal"
	"milepost/internal/milestone"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	HTTPReadTimeout  = 10 * time.Second
	HTTPWriteTimeout = 10 * time.Second
	HTTPIdleTimeout  = 60 * time.Second

	RequestTimeout = 60 * time.Second

	// Requests per minute.
	GlobalRateLimit = 60
	SaveRateLimit   = 6
)

// Server serves milestone state for one repository.
type Server struct {
	Service  *milestone.Service
	Repo     milestone.GitRepo
	Journal  *journal.Journal
	Cfg      *config.Config
	Logger   *slog.Logger
	TestMode bool

	httpServer *http.Server
}

// NewServer wires a Server. journal may be nil.
func NewServer(svc *milestone.Service, repo milestone.GitRepo, jnl *journal.Journal, cfg *config.Config, logger *slog.Logger, testMode bool) *Server {
	return &Server{
		Service:  svc,
		Repo:     repo,
		Journal:  jnl,
		Cfg:      cfg,
		Logger:   logger,
		TestMode: testMode,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

			defer func() {
				s.Logger.Info("http_request",
					"method", req.Method,
					"path", req.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds())
			}()

			next.ServeHTTP(ww, req)
		})
	})

	if !s.TestMode {
		r.Use(NewRateLimitMiddleware(GlobalRateLimit, s.Logger))
	}

	r.Get("/health", s.HandleHealth)
	r.Get("/milestones", s.HandleListMilestones)
	r.Get("/journal", s.HandleJournal)

	create := r.With(RequireToken(s.Cfg.Server.Token, s.Logger))
	if !s.TestMode {
		create = create.With(NewRateLimitMiddleware(SaveRateLimit, s.Logger))
	}
	create.Post("/milestones", s.HandleCreateMilestone)

	return r
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.Logger.Info("Starting server", "addr", addr)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  HTTPReadTimeout,
		WriteTimeout: HTTPWriteTimeout,
		IdleTimeout:  HTTPIdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server and closes the journal.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	if s.Journal != nil {
		return s.Journal.Close()
	}
	return nil
}
