// Package source supplies the device records that the analysis and report
// layers consume. Two implementations exist: GraphSource fetches live
// snapshots from the device-management API, MockSource generates a
// synthetic fleet with the same statistical shape. Callers receive the
// Source through constructor injection; which one runs is decided once at
// process start from configuration.
package source

import (
	"context"

	"github.com/fleetgauge/fleetgauge/pkg/models"
)

// Source supplies one full fleet snapshot per call.
type Source interface {
	// Devices returns every managed device with its installed applications.
	// A failed fetch returns a typed error (*AuthError or *UpstreamError);
	// an empty fleet returns an empty slice and nil error.
	Devices(ctx context.Context) ([]models.Device, error)
}
