package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/fleetgauge/fleetgauge/internal/analysis"
	"github.com/fleetgauge/fleetgauge/internal/report"
	"github.com/fleetgauge/fleetgauge/internal/source"
	"github.com/fleetgauge/fleetgauge/pkg/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// appQueryFromRequest builds the query from app_id / app_name parameters.
func appQueryFromRequest(r *http.Request) models.AppQuery {
	return models.AppQuery{
		ID:   r.URL.Query().Get("app_id"),
		Name: r.URL.Query().Get("app_name"),
	}
}

// writeFetchError maps a device-source failure to a problem response.
func (s *Server) writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case source.IsAuth(err):
		s.logger.Error("source authentication failed", zap.Error(err))
		BadGateway(w, "authentication with the device source failed", r.URL.Path)
	case source.IsUpstream(err):
		s.logger.Error("source fetch failed", zap.Error(err))
		BadGateway(w, err.Error(), r.URL.Path)
	default:
		s.logger.Error("unexpected fetch error", zap.Error(err))
		InternalError(w, "failed to retrieve device data", r.URL.Path)
	}
}

// handleDeviceStatus returns the raw fleet snapshot.
func (s *Server) handleDeviceStatus(w http.ResponseWriter, r *http.Request) {
	devices, err := s.engine.Devices(r.Context())
	if err != nil {
		s.writeFetchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(devices),
		"value": devices,
	})
}

// handleAnalyzeDeployment computes the fleet compliance summary and records
// a history snapshot. A failed snapshot write degrades to a warning; the
// analysis result is still returned.
func (s *Server) handleAnalyzeDeployment(w http.ResponseWriter, r *http.Request) {
	deployment, err := s.engine.Analyze(r.Context())
	if err != nil {
		s.writeFetchError(w, r, err)
		return
	}

	if s.history != nil {
		if err := s.history.Record(r.Context(), deployment); err != nil {
			s.logger.Warn("failed to record compliance snapshot", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, deployment)
}

// handleAnalyzeHistory lists recorded compliance snapshots, newest first.
func (s *Server) handleAnalyzeHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		NotFound(w, "snapshot history is not enabled", r.URL.Path)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			BadRequest(w, fmt.Sprintf("invalid limit %q", raw), r.URL.Path)
			return
		}
		limit = n
	}

	snapshots, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list snapshots", zap.Error(err))
		InternalError(w, "failed to list compliance snapshots", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(snapshots),
		"value": snapshots,
	})
}

// handleLatestApplications returns install summaries for the most recently
// added applications across the fleet.
func (s *Server) handleLatestApplications(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.engine.SummarizeApplications(r.Context(), analysis.DefaultTopN)
	if err != nil {
		s.writeFetchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(summaries),
		"value": summaries,
	})
}

// handleSearchApplications returns the devices carrying the queried
// application, with each device's application list narrowed to matches.
func (s *Server) handleSearchApplications(w http.ResponseWriter, r *http.Request) {
	devices, err := s.engine.Search(r.Context(), appQueryFromRequest(r))
	if err != nil {
		if errors.Is(err, analysis.ErrMissingQuery) {
			BadRequest(w, err.Error(), r.URL.Path)
			return
		}
		s.writeFetchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(devices),
		"value": devices,
	})
}

// handleGenerateReport writes an XLSX deployment report for the queried
// application.
func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	devices, err := s.engine.Devices(r.Context())
	if err != nil {
		s.writeFetchError(w, r, err)
		return
	}

	res, err := s.reports.Generate(devices, appQueryFromRequest(r))
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrMissingQuery):
			BadRequest(w, err.Error(), r.URL.Path)
		case errors.Is(err, report.ErrNoMatch):
			NoMatch(w, err.Error(), r.URL.Path)
		default:
			s.logger.Error("report generation failed", zap.Error(err))
			InternalError(w, "failed to generate report", r.URL.Path)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Report generated successfully",
		"file":        filepath.Base(res.Path),
		"application": res.ApplicationName,
		"rows":        res.Rows,
	})
}

// handleDownloadReport streams the most recently generated report.
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	path, err := s.reports.Latest()
	if err != nil {
		if errors.Is(err, report.ErrNoReport) {
			NotFound(w, err.Error(), r.URL.Path)
			return
		}
		s.logger.Error("failed to locate latest report", zap.Error(err))
		InternalError(w, "failed to locate latest report", r.URL.Path)
		return
	}

	name := filepath.Base(path)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}
