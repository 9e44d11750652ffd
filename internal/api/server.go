// Package api exposes the optional status HTTP interface for long harvests.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ldes-tools/harvester/internal/harvester"
	"github.com/ldes-tools/harvester/internal/metrics"
)

// StatusSource supplies a consistent snapshot of crawl progress.
type StatusSource interface {
	Snapshot() harvester.State
}

// Server serves health, metrics, and crawl status endpoints.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// New constructs a Server listening on addr.
func New(addr string, source StatusSource, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/statusz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(source.Snapshot()); err != nil {
			logger.Warn("Failed to encode status snapshot", zap.Error(err))
		}
	})

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the underlying router; used by tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	s.logger.Info("Status server listening", zap.String("addr", s.srv.Addr))
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Status server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
