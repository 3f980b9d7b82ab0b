package scheduler

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fleetgauge/fleetgauge/internal/analysis"
	"github.com/fleetgauge/fleetgauge/internal/report"
	"github.com/fleetgauge/fleetgauge/internal/source"
	"github.com/fleetgauge/fleetgauge/internal/testutil"
	"github.com/fleetgauge/fleetgauge/pkg/models"
)

type stubSource struct {
	devices []models.Device
	err     error
}

func (s *stubSource) Devices(_ context.Context) ([]models.Device, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.devices, nil
}

func TestRunOnceWritesReportPerApp(t *testing.T) {
	dir := t.TempDir()
	logger := zap.NewNop()

	writer, err := report.NewWriter(dir, logger)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	src := &stubSource{devices: []models.Device{
		testutil.NewDevice(testutil.WithApps(
			testutil.NewApp("12345"),
			testutil.NewApp("12346"),
		)),
	}}

	s := New(analysis.NewEngine(src, logger), writer, time.Hour, logger)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	reports := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "app_deployment_report_") {
			reports++
		}
	}
	if reports != 2 {
		t.Errorf("reports written = %d, want 2", reports)
	}
}

func TestRunOnceEmptyFleet(t *testing.T) {
	logger := zap.NewNop()
	writer, err := report.NewWriter(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	s := New(analysis.NewEngine(&stubSource{}, logger), writer, time.Hour, logger)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Errorf("RunOnce() on empty fleet = %v, want nil", err)
	}
}

func TestRunOncePropagatesFetchError(t *testing.T) {
	logger := zap.NewNop()
	writer, err := report.NewWriter(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	src := &stubSource{err: &source.UpstreamError{Status: 503, Body: "down"}}
	s := New(analysis.NewEngine(src, logger), writer, time.Hour, logger)

	got := s.RunOnce(context.Background())
	var ue *source.UpstreamError
	if !errors.As(got, &ue) {
		t.Errorf("RunOnce() error = %v, want UpstreamError", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	logger := zap.NewNop()
	writer, err := report.NewWriter(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	s := New(analysis.NewEngine(&stubSource{}, logger), writer, time.Hour, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	logger := zap.NewNop()
	writer, err := report.NewWriter(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	s := New(analysis.NewEngine(&stubSource{}, logger), writer, 0, logger)
	if s.interval != 24*time.Hour {
		t.Errorf("interval = %v, want 24h", s.interval)
	}
}
