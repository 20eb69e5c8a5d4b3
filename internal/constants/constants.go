// Package constants holds shared constants used throughout the application.
package constants

const (
	// MaxCylinders is the number of cylinder slots tracked per dive
	MaxCylinders = 8

	// SurfaceThreshold is the depth in mm below which no gas workload accrues
	SurfaceThreshold = 750

	// PlotFillerEntries is the number of filler entries prepended to a
	// plot so the profile has a stable leading edge for rendering and
	// interpolation
	PlotFillerEntries = 2

	// DefaultRESTPort is the default port for the REST server
	DefaultRESTPort = 8080

	// DefaultLiveFeedPort is the default port for the live telemetry listener
	DefaultLiveFeedPort = 9120
)
