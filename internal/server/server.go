// Package server exposes the shipping service over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/ups/internal/graphql"
	"github.com/tournevent/ups/internal/shipping"
	"github.com/tournevent/ups/internal/telemetry"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the UPS shipping service.
type Server struct {
	port     int
	logger   *otelzap.Logger
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	graphql  *handler.Server
}

// Config holds server configuration. A nil Registry gets a fresh registry
// with the Go and process collectors.
type Config struct {
	Port     int
	Registry *prometheus.Registry
}

// New creates a new server instance.
func New(cfg Config, service *shipping.Service, logger *otelzap.Logger) *Server {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	metrics := telemetry.NewMetrics(reg)

	return &Server{
		port:     cfg.Port,
		logger:   logger,
		registry: reg,
		metrics:  metrics,
		graphql:  graphql.NewHandler(graphql.NewResolver(service, logger, metrics)),
	}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// GraphQL endpoint
	mux.Handle("/graphql", s.graphql)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
