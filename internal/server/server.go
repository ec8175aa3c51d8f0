// Package server is the HTTP front end: upload a subtitle file, translate
// it, inspect statistics and save the (possibly edited) result.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mgpai22/subtrans/internal/logging"
	"github.com/mgpai22/subtrans/internal/lookup"
	"github.com/mgpai22/subtrans/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DefaultMaxUploadBytes  = 10 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

type Options struct {
	Listen          string
	OutputDir       string
	AllowedOrigins  []string
	MaxUploadBytes  int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// per-request defaults; languages come from the request
	Document pipeline.DocumentOptions

	LookupMaxAttempts int
	LookupMaxWords    int
}

// Server owns no translation state between requests: every request carries
// its own document and options.
type Server struct {
	oracle pipeline.Oracle
	lookup lookup.Service
	opts   Options
	logger *logging.Logger
	router chi.Router
}

// New builds the router. lookupService may be nil, which disables
// /api/define.
func New(oracle pipeline.Oracle, lookupService lookup.Service, opts Options, logger *logging.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		oracle: oracle,
		lookup: lookupService,
		opts:   opts,
		logger: logging.OrNop(logger),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(corsOptions(s.opts.AllowedOrigins)))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Post("/translate", s.translate)
		r.Post("/stats", s.stats)
		r.Post("/verify", s.verify)
		r.Post("/format", s.format)
		r.Post("/define", s.define)
		r.Post("/save", s.save)
	})

	return r
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Listen,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Starting HTTP server", "listen", s.opts.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Infow("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}
