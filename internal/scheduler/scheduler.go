// Package scheduler regenerates deployment reports on a fixed interval so
// the download endpoint always has a recent file even when nobody has asked
// for one explicitly.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fleetgauge/fleetgauge/internal/analysis"
	"github.com/fleetgauge/fleetgauge/internal/report"
	"github.com/fleetgauge/fleetgauge/pkg/models"
)

// Scheduler periodically writes one report per recently added application.
type Scheduler struct {
	engine   *analysis.Engine
	reports  *report.Writer
	interval time.Duration
	logger   *zap.Logger
}

// New creates a Scheduler. A non-positive interval defaults to 24 hours.
func New(engine *analysis.Engine, reports *report.Writer, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		engine:   engine,
		reports:  reports,
		interval: interval,
		logger:   logger,
	}
}

// Run regenerates reports every interval until ctx is cancelled. The first
// run happens after one full interval, not at startup.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("report scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("report scheduler stopped")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("scheduled report run failed", zap.Error(err))
			}
		}
	}
}

// RunOnce fetches the fleet once and writes a report for each of the most
// recently added applications. Applications with zero matches are skipped,
// not treated as failures.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	devices, err := s.engine.Devices(ctx)
	if err != nil {
		return err
	}

	summaries := analysis.SummarizeDevices(devices, analysis.DefaultTopN)
	generated := 0
	for _, app := range summaries {
		res, err := s.reports.Generate(devices, models.AppQuery{ID: app.AppID})
		if err != nil {
			if errors.Is(err, report.ErrNoMatch) {
				continue
			}
			return err
		}
		generated++
		s.logger.Debug("scheduled report written",
			zap.String("application", res.ApplicationName),
			zap.Int("rows", res.Rows),
		)
	}

	s.logger.Info("scheduled report run complete",
		zap.Int("applications", len(summaries)),
		zap.Int("reports", generated),
	)
	return nil
}
