// Package depth converts between depth and ambient pressure for a body of
// water. Depths are millimetres, pressures are millibar, matching the units
// used by dive-computer sample streams.
package depth

import "math"

const (
	// DefaultSurfacePressure is standard sea-level pressure in mbar
	DefaultSurfacePressure = 1013

	// SeawaterSalinity is the default water weight in g per 10 litres
	SeawaterSalinity = 10300

	// FreshwaterSalinity is the water weight of fresh water in g per 10 litres
	FreshwaterSalinity = 10000

	// pressureScaleHeight is the atmospheric scale height in metres used
	// for the barometric altitude correction
	pressureScaleHeight = 7800.0
)

// Model describes the water column above a diver: the pressure at the
// surface and the weight of the water. The zero value is not useful; use
// NewModel or fill both fields.
type Model struct {
	// SurfacePressure is the atmospheric pressure at the water surface in mbar
	SurfacePressure int

	// Salinity is the water weight in g per 10 litres (10000 = fresh water)
	Salinity int
}

// NewModel returns a Model for the given salinity and surface pressure,
// substituting seawater and sea-level defaults for zero values.
func NewModel(salinity, surfacePressure int) Model {
	if salinity == 0 {
		salinity = SeawaterSalinity
	}
	if surfacePressure == 0 {
		surfacePressure = DefaultSurfacePressure
	}
	return Model{
		SurfacePressure: surfacePressure,
		Salinity:        salinity,
	}
}

// ToMbar returns the ambient pressure in mbar at the given depth in mm.
// Monotonic non-decreasing in depth.
func (m Model) ToMbar(depthMM int) float64 {
	// specific weight of the water column in mbar per cm of depth
	specificWeight := float64(m.Salinity) / 10000.0 * 0.981
	return float64(depthMM)/10.0*specificWeight + float64(m.SurfacePressure)
}

// ToDepth returns the depth in mm at which the given ambient pressure is
// reached. Pressures at or below surface pressure map to zero depth.
func (m Model) ToDepth(mbar int) int {
	if mbar <= m.SurfacePressure {
		return 0
	}
	specificWeight := float64(m.Salinity) / 10000.0 * 0.981
	return int(math.Round(float64(mbar-m.SurfacePressure) / specificWeight * 10.0))
}

// AltitudeToPressure returns the expected atmospheric pressure in mbar at
// the given altitude in metres above sea level.
func AltitudeToPressure(altitudeM float64) int {
	return int(math.Round(float64(DefaultSurfacePressure) * math.Exp(-altitudeM/pressureScaleHeight)))
}
