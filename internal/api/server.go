// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quantfolio/quantfolio/internal/api/handler"
	"github.com/quantfolio/quantfolio/internal/api/job"
	"github.com/quantfolio/quantfolio/internal/api/middleware"
	"github.com/quantfolio/quantfolio/internal/insight"
	"github.com/quantfolio/quantfolio/internal/metrics"
	"github.com/quantfolio/quantfolio/internal/notify"
	"github.com/quantfolio/quantfolio/internal/optimizer"
	"github.com/quantfolio/quantfolio/internal/source"
	"github.com/quantfolio/quantfolio/internal/storage/archive"
	"github.com/quantfolio/quantfolio/internal/storage/history"
)

// Server is the HTTP server for quantfolio.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	jobs       *job.Store
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	APIKey      string
	JobTTL      time.Duration
	MaxJobs     int
	MetricsPath string // empty disables the metrics endpoint
}

// Deps holds the collaborators the server exposes over HTTP.
// History, Archive, Notifier, Narrator and Metrics may be nil.
type Deps struct {
	Engine   *optimizer.Engine
	Source   source.Source
	Defaults optimizer.Config
	History  *history.DB
	Archive  *archive.Runs
	Notifier *notify.Notifier
	Narrator *insight.Narrator
	Metrics  *metrics.Registry
}

// NewServer creates a new HTTP server.
func NewServer(cfg Config, deps Deps, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	var root http.Handler = mux
	if deps.Metrics != nil {
		root = metrics.HTTPMiddleware(deps.Metrics)(root)
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      root,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
		jobs:   job.NewStore(cfg.MaxJobs, cfg.JobTTL),
	}

	s.setupRoutes(cfg, deps)
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(cfg Config, deps Deps) {
	auth := middleware.APIKeyAuth(cfg.APIKey)

	optimize := handler.NewOptimizeHandler(handler.OptimizeDeps{
		Jobs:     s.jobs,
		Engine:   deps.Engine,
		Source:   deps.Source,
		Defaults: deps.Defaults,
		History:  deps.History,
		Archive:  deps.Archive,
		Notifier: deps.Notifier,
		Narrator: deps.Narrator,
		Metrics:  deps.Metrics,
		Log:      s.logger,
	})
	s.mux.Handle("POST /api/optimize", auth(http.HandlerFunc(optimize.Create)))
	s.mux.Handle("GET /api/jobs/{id}", auth(http.HandlerFunc(optimize.GetJob)))

	if deps.History != nil {
		runs := handler.NewRunsHandler(deps.History, deps.Archive, s.logger)
		s.mux.Handle("GET /api/runs", auth(http.HandlerFunc(runs.List)))
		s.mux.Handle("GET /api/runs/{id}", auth(http.HandlerFunc(runs.Get)))
	}

	// Health and metrics stay outside auth for probes and scrapers
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath,
			promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
