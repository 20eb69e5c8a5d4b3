// Package plot builds the ordered sequence of profile entries that the
// pressure-interpolation engine and the REST profile endpoints operate on.
// Entries are constructed once per dive from the raw samples and then
// mutated in place by the engine; they are never reordered or removed.
package plot

import (
	"github.com/chrissnell/remotedive/internal/constants"
	"github.com/chrissnell/remotedive/internal/types"
)

// Indexes into an entry's per-track pressure pair.
const (
	// SensorPR is the raw pressure as reported by the sensor
	SensorPR = 0
	// InterpolatedPR is the pressure reconstructed by the engine
	InterpolatedPR = 1
)

// Entry is one point on the dive profile. Pressures are mbar, depths mm,
// and a zero pressure means "no data".
type Entry struct {
	// Sec is elapsed time in seconds, non-decreasing across the profile
	Sec int `json:"sec"`

	// Depth in mm
	Depth int `json:"depth"`

	// Cylinder is the index of the cylinder in use at this entry
	Cylinder int `json:"cylinder"`

	// PressureTime is the depth-weighted workload contribution of the
	// interval ending at this entry, filled in by the engine
	PressureTime int `json:"-"`

	// Pressure holds the sensor and interpolated pressures for the
	// active cylinder
	Pressure [2]int `json:"pressure"`

	// Diluent holds the sensor and interpolated pressures for the
	// diluent cylinder on closed-circuit dives
	Diluent [2]int `json:"diluent,omitempty"`
}

// Info is a dive profile ready for pressure interpolation and rendering.
type Info struct {
	Entries []Entry `json:"entries"`
}

// Build constructs a profile from a dive's samples. The first
// constants.PlotFillerEntries entries are fillers carrying the first
// sample's cylinder and pressures, giving the profile a stable leading
// edge; they have no timing meaning.
func Build(dive *types.Dive) *Info {
	pi := &Info{}
	if len(dive.Samples) == 0 {
		return pi
	}

	pi.Entries = make([]Entry, 0, len(dive.Samples)+constants.PlotFillerEntries)

	first := dive.Samples[0]
	for i := 0; i < constants.PlotFillerEntries; i++ {
		pi.Entries = append(pi.Entries, Entry{
			Cylinder: clampCylinder(first.Cylinder),
			Pressure: [2]int{first.Pressure, 0},
			Diluent:  [2]int{first.DiluentPressure, 0},
		})
	}

	for _, s := range dive.Samples {
		pi.Entries = append(pi.Entries, Entry{
			Sec:      s.Sec,
			Depth:    s.Depth,
			Cylinder: clampCylinder(s.Cylinder),
			Pressure: [2]int{s.Pressure, 0},
			Diluent:  [2]int{s.DiluentPressure, 0},
		})
	}

	return pi
}

// clampCylinder keeps stray cylinder indexes from devices with more
// transmitters than we track inside the supported slot range.
func clampCylinder(cyl int) int {
	if cyl < 0 {
		return 0
	}
	if cyl >= constants.MaxCylinders {
		return constants.MaxCylinders - 1
	}
	return cyl
}

// MaxDepth returns the deepest point of the profile in mm.
func (pi *Info) MaxDepth() int {
	max := 0
	for i := range pi.Entries {
		if pi.Entries[i].Depth > max {
			max = pi.Entries[i].Depth
		}
	}
	return max
}
