// Package http serves the notebook as a local JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"notebk/internal/log"
	"notebk/internal/services"
	"notebk/internal/transfer"
)

// Server is the HTTP front of one notebook.
type Server struct {
	http.Server
	nb          *services.Notebook
	exporter    transfer.Exporter
	logger      *log.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server. exporter is
// used by POST /api/export and may be nil.
func NewServer(addr string, nb *services.Notebook, exporter transfer.Exporter, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		nb:          nb,
		exporter:    exporter,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(writesPerMinute),
		metrics:     &securityMetrics{},
		started:     time.Now(),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(log.Middleware(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(defaultHeaders()))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/summary/{year}", s.handleSummary)

		r.Group(func(r chi.Router) {
			r.Use(s.limitWrites)
			r.Put("/notes/{day}", s.handleSetNote)
			r.Put("/monthly-notes/{month}", s.handleSetMonthlyNote)
			r.Put("/expenses/{month}", s.handleReplaceExpenses)
			r.Put("/savings/{year}/{month}", s.handleSetSaving)
			r.Put("/health/{year}", s.handleReplaceHealth)
			r.Post("/tables/{year}", s.handleAddTable)
			r.Put("/tables/{year}/{id}/rows", s.handleReplaceRows)
			r.Delete("/tables/{year}/{id}", s.handleRemoveTable)
			r.Post("/export", s.handleExport)
		})
	})

	r.Get("/backup", s.handleDownloadBackup)
	r.With(s.limitWrites).Post("/backup", s.handleUploadBackup)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
