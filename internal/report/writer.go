// Package report persists application-deployment reports as XLSX files and
// serves the most recently generated one. Reports accumulate in a dedicated
// output directory; nothing cleans up old files and nothing locks the
// directory, so a concurrent generate and download can race (an accepted
// inconsistency window, not a handoff guarantee).
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/fleetgauge/fleetgauge/internal/analysis"
	"github.com/fleetgauge/fleetgauge/pkg/models"
)

// Sentinel errors returned by the writer.
var (
	// ErrNoMatch means the query ran fine but matched zero devices; no
	// file is written in that case.
	ErrNoMatch = errors.New("no devices found with the specified application")

	// ErrNoReport means the output directory holds no report to download.
	ErrNoReport = errors.New("no report available")
)

const (
	reportPrefix = "app_deployment_report_"
	reportExt    = ".xlsx"
	sheetName    = "Deployment Status"
	timeLayout   = "20060102_150405"
)

// reportColumns is the fixed header row. Order is part of the report
// contract; consumers parse by position.
var reportColumns = []string{
	"Application Name",
	"Version",
	"Short Version",
	"Publisher",
	"Application Key",
	"Install State",
	"Device Name",
	"User",
	"Department",
	"Platform",
	"OS Version",
	"Last Check-in",
}

// Writer generates deployment reports into a dedicated directory.
type Writer struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewWriter creates a Writer, creating the output directory if needed.
func NewWriter(dir string, logger *zap.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create report dir %q: %w", dir, err)
	}
	return &Writer{dir: dir, logger: logger, now: time.Now}, nil
}

// Result describes one generated report.
type Result struct {
	// Path is the written file's location.
	Path string
	// ApplicationName is the display name of the first matched
	// application, used as a representative label for the report.
	ApplicationName string
	// Rows is the number of data rows written (header excluded).
	Rows int
}

// Generate filters the fleet by query and writes one row per matched
// (device, application) pair: a device with two matching entries
// contributes two rows. The file name embeds the query identifier and a
// second-precision timestamp, so successive generations never overwrite
// each other. Zero matches return ErrNoMatch without writing a file.
func (w *Writer) Generate(devices []models.Device, query models.AppQuery) (*Result, error) {
	if query.IsZero() {
		return nil, analysis.ErrMissingQuery
	}

	matched := analysis.SearchDevices(devices, query)
	if len(matched) == 0 {
		return nil, ErrNoMatch
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]any, len(reportColumns))
	for i, c := range reportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	appName := ""
	rows := 0
	for _, d := range matched {
		for _, app := range d.InstalledApplications {
			if appName == "" {
				appName = app.DisplayName
			}
			rows++
			cell, err := excelize.CoordinatesToCellName(1, rows+1)
			if err != nil {
				return nil, fmt.Errorf("row coordinates: %w", err)
			}
			if err := f.SetSheetRow(sheetName, cell, &[]any{
				app.DisplayName,
				app.Version,
				app.ShortVersion,
				app.Publisher,
				app.ApplicationKey,
				string(app.InstallState),
				d.DeviceName,
				d.UserDisplayName,
				d.Department,
				d.Platform,
				d.OSVersion,
				d.LastSyncDateTime.Format(time.RFC3339),
			}); err != nil {
				return nil, fmt.Errorf("write row %d: %w", rows, err)
			}
		}
	}

	path := filepath.Join(w.dir, w.fileName(query))
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("save report %q: %w", path, err)
	}

	w.logger.Info("report generated",
		zap.String("path", path),
		zap.String("application", appName),
		zap.Int("rows", rows),
	)
	return &Result{Path: path, ApplicationName: appName, Rows: rows}, nil
}

// Latest returns the path of the report with the newest modification time,
// or ErrNoReport when the directory holds none. Ties break toward the
// lexically later name, which carries the later embedded timestamp.
func (w *Writer) Latest() (string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return "", fmt.Errorf("read report dir %q: %w", w.dir, err)
	}

	var (
		latest     string
		latestTime time.Time
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, reportExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		mt := info.ModTime()
		if latest == "" || mt.After(latestTime) || (mt.Equal(latestTime) && name > filepath.Base(latest)) {
			latest = filepath.Join(w.dir, name)
			latestTime = mt
		}
	}

	if latest == "" {
		return "", ErrNoReport
	}
	return latest, nil
}

// fileName builds the unique report name for one generation. When the
// query is by name, the identifier is the name stripped to alphanumerics.
func (w *Writer) fileName(query models.AppQuery) string {
	ident := query.ID
	if ident == "" {
		ident = sanitizeIdent(query.Name)
	}
	return reportPrefix + ident + "_" + w.now().Format(timeLayout) + reportExt
}

func sanitizeIdent(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
