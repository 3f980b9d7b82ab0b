// Package testutil provides shared test helpers for FleetGauge packages.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetgauge/fleetgauge/pkg/models"
)

// NewDevice returns a Device with sensible defaults, suitable for test
// fixtures. Override individual fields via options or after creation.
func NewDevice(opts ...func(*models.Device)) models.Device {
	d := models.Device{
		ID:                uuid.New().String(),
		DeviceName:        "TEST-DEVICE",
		OperatingSystem:   "Windows",
		OSVersion:         "Windows 11",
		LastSyncDateTime:  time.Now().UTC(),
		ComplianceState:   models.ComplianceCompliant,
		UserDisplayName:   "Test User",
		UserPrincipalName: "test.user@company.com",
		Department:        "IT",
		Platform:          "Windows",
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithDeviceName sets the device display name.
func WithDeviceName(name string) func(*models.Device) {
	return func(d *models.Device) { d.DeviceName = name }
}

// WithCompliance sets the device compliance state.
func WithCompliance(s models.ComplianceState) func(*models.Device) {
	return func(d *models.Device) { d.ComplianceState = s }
}

// WithDepartment sets the owning user's department.
func WithDepartment(dept string) func(*models.Device) {
	return func(d *models.Device) { d.Department = dept }
}

// WithApps sets the device's installed-application list.
func WithApps(apps ...models.InstalledApplication) func(*models.Device) {
	return func(d *models.Device) { d.InstalledApplications = apps }
}

// NewApp returns an InstalledApplication fixture for the given ID.
func NewApp(id string, opts ...func(*models.InstalledApplication)) models.InstalledApplication {
	a := models.InstalledApplication{
		ID:             id,
		Name:           "Test App " + id,
		DisplayName:    "Test Application " + id,
		Version:        "1.0.0",
		ShortVersion:   "1.0",
		Publisher:      "Test Publisher",
		ApplicationKey: "TestApp" + id,
		InstallState:   models.InstallStateInstalled,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// WithInstallState sets the application install state.
func WithInstallState(s models.InstallState) func(*models.InstalledApplication) {
	return func(a *models.InstalledApplication) { a.InstallState = s }
}

// WithDisplayName sets the application display name.
func WithDisplayName(name string) func(*models.InstalledApplication) {
	return func(a *models.InstalledApplication) { a.DisplayName = name }
}

// WithAddedDate sets the application added date.
func WithAddedDate(t time.Time) func(*models.InstalledApplication) {
	return func(a *models.InstalledApplication) { a.AddedDate = t }
}

// WithApplicationKey sets the application key.
func WithApplicationKey(key string) func(*models.InstalledApplication) {
	return func(a *models.InstalledApplication) { a.ApplicationKey = key }
}
