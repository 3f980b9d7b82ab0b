package models

import (
	"strings"
	"time"
)

// InstallState is the per-application-per-device deployment outcome.
type InstallState string

const (
	InstallStateInstalled       InstallState = "Installed"
	InstallStateFailed          InstallState = "Failed"
	InstallStateInstalling      InstallState = "Installing"
	InstallStateUninstallFailed InstallState = "Uninstall Failed"
	InstallStateError           InstallState = "Error"
)

// StatusBucket is the three-way partition of install states used by all
// deployment statistics.
type StatusBucket string

const (
	BucketInstalled StatusBucket = "Installed"
	BucketFailed    StatusBucket = "Failed"
	BucketNA        StatusBucket = "N/A"
)

// Bucket maps an install state onto the statistics partition:
// Installed counts as success; Failed, Error, and Uninstall Failed count as
// failure; everything else, including states introduced by future upstream
// versions, lands in the N/A bucket.
func (s InstallState) Bucket() StatusBucket {
	switch s {
	case InstallStateInstalled:
		return BucketInstalled
	case InstallStateFailed, InstallStateError, InstallStateUninstallFailed:
		return BucketFailed
	default:
		return BucketNA
	}
}

// InstalledApplication is one application's install record on one device.
// ID is the stable join key: the same ID across devices denotes the same
// logical application even when display name or version differ build to build.
type InstalledApplication struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	DisplayName    string       `json:"displayName"`
	Version        string       `json:"version"`
	ShortVersion   string       `json:"shortVersion"`
	Publisher      string       `json:"publisher"`
	ApplicationKey string       `json:"applicationKey"`
	InstallState   InstallState `json:"installState"`
	EntraGroups    []string     `json:"entraGroups,omitempty"`
	AddedDate      time.Time    `json:"addedDate,omitempty"`
}

// AppQuery identifies a logical application by exact ID or by a
// case-insensitive display-name substring. It is the single predicate used
// by every filter call site (search, report generation, summaries), so ID
// and name matching cannot drift apart.
type AppQuery struct {
	ID   string
	Name string
}

// IsZero reports whether neither field is set.
func (q AppQuery) IsZero() bool {
	return q.ID == "" && q.Name == ""
}

// Matches reports whether the installed-application record represents the
// queried application. When an ID is given it must match exactly; otherwise
// the query name must be a case-insensitive substring of the user-facing
// display name.
func (q AppQuery) Matches(app InstalledApplication) bool {
	if q.ID != "" {
		return app.ID == q.ID
	}
	if q.Name != "" {
		return strings.Contains(strings.ToLower(app.DisplayName), strings.ToLower(q.Name))
	}
	return false
}
