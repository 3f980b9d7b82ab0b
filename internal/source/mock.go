package source

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/fleetgauge/fleetgauge/pkg/models"
)

// mockDeviceCount matches the fleet size of the demo environment.
const mockDeviceCount = 50

// mockCatalog is the fixed application catalog the mock fleet draws from.
// IDs are stable so searches and reports behave like the live API, where an
// application ID recurs across many devices.
var mockCatalog = []models.InstalledApplication{
	{ID: "12345", Name: "Microsoft Office 365", DisplayName: "Microsoft 365 Apps for Enterprise", Version: "16.0.14931.20118", ShortVersion: "16.0", Publisher: "Microsoft Corporation", ApplicationKey: "O365ProPlus"},
	{ID: "12346", Name: "Microsoft Teams", DisplayName: "Microsoft Teams", Version: "1.6.00.12335", ShortVersion: "1.6", Publisher: "Microsoft Corporation", ApplicationKey: "MSTeams"},
	{ID: "12347", Name: "Adobe Acrobat Reader DC", DisplayName: "Adobe Acrobat Reader DC", Version: "23.003.20201", ShortVersion: "23.0", Publisher: "Adobe Inc.", ApplicationKey: "AdobeReader"},
	{ID: "12348", Name: "Adobe Creative Cloud", DisplayName: "Adobe Creative Cloud", Version: "5.9.0.373", ShortVersion: "5.9", Publisher: "Adobe Inc.", ApplicationKey: "CreativeCloud"},
	{ID: "12349", Name: "Google Chrome", DisplayName: "Google Chrome", Version: "114.0.5735.199", ShortVersion: "114.0", Publisher: "Google LLC", ApplicationKey: "Chrome"},
	{ID: "12350", Name: "Mozilla Firefox", DisplayName: "Mozilla Firefox", Version: "115.0.2", ShortVersion: "115.0", Publisher: "Mozilla Corporation", ApplicationKey: "Firefox"},
	{ID: "12351", Name: "Zoom Client", DisplayName: "Zoom Client for Meetings", Version: "5.15.5.12494", ShortVersion: "5.15", Publisher: "Zoom Video Communications, Inc.", ApplicationKey: "ZoomClient"},
	{ID: "12352", Name: "Slack", DisplayName: "Slack", Version: "4.33.73", ShortVersion: "4.33", Publisher: "Slack Technologies, Inc.", ApplicationKey: "Slack"},
}

var (
	mockComplianceStates = []models.ComplianceState{
		models.ComplianceCompliant,
		models.ComplianceNoncompliant,
		models.ComplianceUnknown,
	}
	mockOSVersions  = []string{"Windows 11", "Windows 10", "macOS 13", "macOS 12"}
	mockDepartments = []string{"IT", "HR", "Sales", "Marketing", "Engineering", "Finance"}
	mockModels      = []string{"Surface Laptop 4", "MacBook Pro 16", "ThinkPad X1", "Dell XPS 13", "HP EliteBook"}
	mockSKUFamilies = []string{"Windows 10 Enterprise", "Windows 11 Enterprise", "macOS Enterprise"}

	// Install-state distribution: 70% success, 30% spread across the
	// failure and in-progress states.
	mockInstallStates = []models.InstallState{
		models.InstallStateInstalled,
		models.InstallStateFailed,
		models.InstallStateInstalling,
		models.InstallStateUninstallFailed,
		models.InstallStateError,
	}
	mockInstallWeights = []float64{0.70, 0.15, 0.05, 0.05, 0.05}
)

// MockSource serves a synthetic fleet generated once at construction, so
// the snapshot is stable across calls within one process.
type MockSource struct {
	devices []models.Device
}

// NewMockSource generates the demo fleet from the given seed. The same seed
// always produces the same fleet.
func NewMockSource(seed int64) *MockSource {
	rng := rand.New(rand.NewSource(seed))
	return &MockSource{devices: generateMockDevices(rng, mockDeviceCount)}
}

// Devices returns the generated fleet snapshot.
func (s *MockSource) Devices(_ context.Context) ([]models.Device, error) {
	return s.devices, nil
}

func generateMockDevices(rng *rand.Rand, count int) []models.Device {
	now := time.Now()

	devices := make([]models.Device, 0, count)
	for i := 0; i < count; i++ {
		osVersion := mockOSVersions[i%len(mockOSVersions)]
		platform := "macOS"
		osDescription := "macOS Ventura"
		if osVersion == "Windows 11" || osVersion == "Windows 10" {
			platform = "Windows"
			osDescription = "Microsoft Windows 10 Enterprise"
		}

		userID := fmt.Sprintf("user%03d", i)

		devices = append(devices, models.Device{
			ID:                    fmt.Sprintf("device_%d", i),
			DeviceName:            fmt.Sprintf("DEVICE-%03d", i),
			OperatingSystem:       platform,
			OSVersion:             osVersion,
			OSDescription:         osDescription,
			LastSyncDateTime:      now.Add(-time.Duration(1+rng.Intn(72)) * time.Hour),
			ComplianceState:       mockComplianceStates[rng.Intn(len(mockComplianceStates))],
			ManagementAgent:       "MDM",
			UserDisplayName:       "User " + userID,
			UserPrincipalName:     userID + "@company.com",
			MailNickname:          userID,
			Department:            mockDepartments[rng.Intn(len(mockDepartments))],
			Model:                 mockModels[rng.Intn(len(mockModels))],
			SerialNumber:          fmt.Sprintf("SN%06d", 100000+rng.Intn(900000)),
			SKUFamily:             mockSKUFamilies[rng.Intn(len(mockSKUFamilies))],
			Platform:              platform,
			InstalledApplications: sampleApplications(rng, now),
		})
	}
	return devices
}

// sampleApplications picks 4-8 catalog applications for one device, each
// with an independently drawn install state and a catalog-stable added date.
func sampleApplications(rng *rand.Rand, now time.Time) []models.InstalledApplication {
	n := 4 + rng.Intn(5)
	perm := rng.Perm(len(mockCatalog))[:n]

	apps := make([]models.InstalledApplication, 0, n)
	for _, idx := range perm {
		app := mockCatalog[idx]
		app.InstallState = weightedInstallState(rng)
		// Stagger added dates by catalog position so the "latest
		// applications" view has a stable, meaningful order.
		app.AddedDate = now.AddDate(0, 0, -(len(mockCatalog) - idx))
		apps = append(apps, app)
	}
	return apps
}

func weightedInstallState(rng *rand.Rand) models.InstallState {
	r := rng.Float64()
	acc := 0.0
	for i, w := range mockInstallWeights {
		acc += w
		if r < acc {
			return mockInstallStates[i]
		}
	}
	return mockInstallStates[len(mockInstallStates)-1]
}
