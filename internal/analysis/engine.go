// Package analysis is the deployment-analysis core: it folds a fleet
// snapshot into compliance statistics, per-application install summaries,
// and filtered device views. All aggregation is pure and in-memory; the
// Engine only adds the fetch step in front.
package analysis

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fleetgauge/fleetgauge/internal/source"
	"github.com/fleetgauge/fleetgauge/pkg/models"
)

// ErrMissingQuery is returned when a search or report request names neither
// an application ID nor an application name.
var ErrMissingQuery = errors.New("either app_id or app_name is required")

// DefaultTopN is the number of entries in the "latest applications" view.
const DefaultTopN = 5

// Deployment is the fleet-wide compliance summary.
type Deployment struct {
	TotalDevices          int       `json:"total_devices"`
	SuccessfulDeployments int       `json:"successful_deployments"`
	SuccessRate           float64   `json:"success_rate"`
	Timestamp             time.Time `json:"timestamp"`
}

// AppSummary is one application's install statistics across the fleet.
type AppSummary struct {
	AppID             string                          `json:"appId"`
	Name              string                          `json:"name"`
	StatusPercentages map[models.StatusBucket]float64 `json:"status_percentages"`
	EntraGroups       []string                        `json:"entraGroups"`
	AddedDate         time.Time                       `json:"addedDate"`
}

// Engine computes deployment statistics over fleet snapshots supplied by an
// injected device source.
type Engine struct {
	source source.Source
	logger *zap.Logger
}

// NewEngine creates an Engine reading from the given source.
func NewEngine(src source.Source, logger *zap.Logger) *Engine {
	return &Engine{source: src, logger: logger}
}

// Devices returns the raw fleet snapshot.
func (e *Engine) Devices(ctx context.Context) ([]models.Device, error) {
	return e.source.Devices(ctx)
}

// Analyze fetches the fleet and computes the compliance summary. Fetch
// failures propagate unchanged; an empty fleet yields zeros, not an error.
func (e *Engine) Analyze(ctx context.Context) (*Deployment, error) {
	devices, err := e.source.Devices(ctx)
	if err != nil {
		return nil, err
	}
	d := AnalyzeDevices(devices)
	e.logger.Debug("analyzed deployment",
		zap.Int("total_devices", d.TotalDevices),
		zap.Float64("success_rate", d.SuccessRate),
	)
	return d, nil
}

// AnalyzeDevices computes the compliance summary for an already-fetched
// fleet. A device counts as a successful deployment only when its
// compliance state is exactly "compliant".
func AnalyzeDevices(devices []models.Device) *Deployment {
	successful := 0
	for _, d := range devices {
		if d.ComplianceState.IsCompliant() {
			successful++
		}
	}

	rate := 0.0
	if len(devices) > 0 {
		rate = float64(successful) / float64(len(devices)) * 100
	}

	return &Deployment{
		TotalDevices:          len(devices),
		SuccessfulDeployments: successful,
		SuccessRate:           rate,
		Timestamp:             time.Now(),
	}
}

// SummarizeApplications fetches the fleet and returns the topN most
// recently added applications with their install-state percentages.
func (e *Engine) SummarizeApplications(ctx context.Context, topN int) ([]AppSummary, error) {
	devices, err := e.source.Devices(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeDevices(devices, topN), nil
}

// appAccumulator gathers one application's counts during the single pass.
type appAccumulator struct {
	summary AppSummary
	counts  map[models.StatusBucket]int
	total   int
}

// SummarizeDevices groups every installed-application record by application
// ID in a single pass and converts bucket counts to percentages of that
// application's appearance count. Results are ordered by added date
// descending (falling back to now when a record carries none) and truncated
// to topN; topN <= 0 disables truncation.
func SummarizeDevices(devices []models.Device, topN int) []AppSummary {
	byID := make(map[string]*appAccumulator)

	for _, d := range devices {
		for _, app := range d.InstalledApplications {
			acc, ok := byID[app.ID]
			if !ok {
				acc = &appAccumulator{
					summary: AppSummary{
						AppID:       app.ID,
						Name:        app.DisplayName,
						EntraGroups: app.EntraGroups,
						AddedDate:   app.AddedDate,
					},
					counts: make(map[models.StatusBucket]int),
				}
				byID[app.ID] = acc
			}
			if acc.summary.AddedDate.IsZero() && !app.AddedDate.IsZero() {
				acc.summary.AddedDate = app.AddedDate
			}
			acc.counts[app.InstallState.Bucket()]++
			acc.total++
		}
	}

	now := time.Now()
	summaries := make([]AppSummary, 0, len(byID))
	for _, acc := range byID {
		s := acc.summary
		if s.AddedDate.IsZero() {
			s.AddedDate = now
		}
		s.StatusPercentages = bucketPercentages(acc.counts, acc.total)
		if s.EntraGroups == nil {
			s.EntraGroups = []string{}
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(a, b int) bool {
		if !summaries[a].AddedDate.Equal(summaries[b].AddedDate) {
			return summaries[a].AddedDate.After(summaries[b].AddedDate)
		}
		return summaries[a].AppID < summaries[b].AppID
	})

	if topN > 0 && len(summaries) > topN {
		summaries = summaries[:topN]
	}
	return summaries
}

// bucketPercentages converts bucket counts to percentages of total. All
// three buckets are always present; a zero total yields all zeros.
func bucketPercentages(counts map[models.StatusBucket]int, total int) map[models.StatusBucket]float64 {
	percentages := map[models.StatusBucket]float64{
		models.BucketInstalled: 0,
		models.BucketFailed:    0,
		models.BucketNA:        0,
	}
	if total == 0 {
		return percentages
	}
	for bucket, n := range counts {
		percentages[bucket] = float64(n) / float64(total) * 100
	}
	return percentages
}

// Search fetches the fleet and returns the devices carrying the queried
// application, each with its application list narrowed to matching entries.
func (e *Engine) Search(ctx context.Context, query models.AppQuery) ([]models.Device, error) {
	if query.IsZero() {
		return nil, ErrMissingQuery
	}
	devices, err := e.source.Devices(ctx)
	if err != nil {
		return nil, err
	}
	return SearchDevices(devices, query), nil
}

// SearchDevices filters an already-fetched fleet. Input devices are never
// mutated; matched devices are shallow copies with a fresh application
// slice holding only the entries that individually matched.
func SearchDevices(devices []models.Device, query models.AppQuery) []models.Device {
	matched := make([]models.Device, 0)
	for _, d := range devices {
		var apps []models.InstalledApplication
		for _, app := range d.InstalledApplications {
			if query.Matches(app) {
				apps = append(apps, app)
			}
		}
		if len(apps) == 0 {
			continue
		}
		d.InstalledApplications = apps
		matched = append(matched, d)
	}
	return matched
}
