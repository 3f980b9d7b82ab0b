// Package server exposes the aggregation engine, report writer, and
// snapshot history over HTTP for the dashboard collaborator.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fleetgauge/fleetgauge/internal/analysis"
	"github.com/fleetgauge/fleetgauge/internal/history"
	"github.com/fleetgauge/fleetgauge/internal/report"
	"github.com/fleetgauge/fleetgauge/internal/version"
)

// Server is the FleetGauge HTTP server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *zap.Logger

	engine  *analysis.Engine
	reports *report.Writer
	history *history.Store
}

// New creates a Server wiring the given collaborators. history may be nil,
// in which case snapshot recording and the history route degrade gracefully.
func New(addr string, engine *analysis.Engine, reports *report.Writer, hist *history.Store, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:     mux,
		logger:  logger,
		engine:  engine,
		reports: reports,
		history: hist,
	}

	s.registerRoutes()
	return s
}

// registerRoutes sets up the API surface consumed by the dashboard.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/device-status", s.handleDeviceStatus)
	s.mux.HandleFunc("GET /api/v1/analyze-deployment", s.handleAnalyzeDeployment)
	s.mux.HandleFunc("GET /api/v1/analyze-history", s.handleAnalyzeHistory)
	s.mux.HandleFunc("GET /api/v1/latest-applications", s.handleLatestApplications)
	s.mux.HandleFunc("GET /api/v1/search-applications", s.handleSearchApplications)
	s.mux.HandleFunc("GET /api/v1/generate-report", s.handleGenerateReport)
	s.mux.HandleFunc("GET /api/v1/download-report", s.handleDownloadReport)
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("X-FleetGauge-Version", version.Short())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "fleetgauge",
		"version": version.Map(),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
