// Package gaspressure reconstructs missing cylinder-pressure readings
// across a dive profile. Tank-pressure transmitters report intermittently,
// drop out, or are absent for whole stretches of a dive, and the engine
// produces a complete, physically plausible pressure curve per cylinder
// from the sparse readings and the depth profile.
//
// The engine makes three passes over one dive's profile:
//
//  1. a single scan that builds per-cylinder pressure segments and
//     integrates a depth-weighted "pressure-time" workload into them,
//  2. a redistribution pass that spreads known start/end pressure deltas
//     across unresolved segments in proportion to their workload share,
//  3. a point-level pass that interpolates a pressure for every profile
//     entry still lacking a reading.
//
// Everything is scoped to one call: the segment chains are scratch state,
// built, consumed, and discarded inside Populate. The call is a pure
// function of the profile and the depth model, so independent dives can be
// processed concurrently by independent Interpolators.
package gaspressure

import (
	"go.uber.org/zap"

	"github.com/chrissnell/remotedive/internal/constants"
	"github.com/chrissnell/remotedive/internal/plot"
)

// DepthModel converts a depth in mm to the ambient pressure in mbar at
// that depth. Implementations must be monotonic non-decreasing in depth.
type DepthModel interface {
	ToMbar(depthMM int) float64
}

// Interpolator fills the interpolated-pressure fields of a dive profile.
type Interpolator struct {
	model            DepthModel
	logger           *zap.SugaredLogger
	surfaceThreshold int
}

// New creates an Interpolator for the given depth model. The logger is
// used only for debug traces of the segment chains and may be nil.
func New(model DepthModel, logger *zap.SugaredLogger) *Interpolator {
	return &Interpolator{
		model:            model,
		logger:           logger,
		surfaceThreshold: constants.SurfaceThreshold,
	}
}

// Populate scans the profile, builds per-cylinder pressure segments, and
// fills the interpolated-pressure field of every entry that lacks a raw
// sensor reading. Entries that carry a real reading are passed through
// untouched. When trackDiluent is set, the diluent-cylinder pressures are
// tracked as a parallel independent quantity using the same algorithm.
//
// Populate always succeeds: missing data degrades to carried-forward or
// absent pressures, never to an error.
func (ip *Interpolator) Populate(pi *plot.Info, trackDiluent bool) {
	if len(pi.Entries) == 0 {
		return
	}

	track := make(map[trackKey][]*segment)

	var cur, curDiluent *segment
	var missing, missingDiluent bool
	cylinder := -1

	for i := range pi.Entries {
		entry := &pi.Entries[i]
		pressure := entry.Pressure[plot.SensorPR]

		// discrete integration of pressure over time to get the
		// consumption-rate equivalent
		if cur != nil {
			entry.PressureTime = ip.pressureTime(&pi.Entries[i-1], entry)
			cur.pressureTime += entry.PressureTime
			cur.tEnd = entry.Sec
		}
		if curDiluent != nil {
			curDiluent.pressureTime += entry.PressureTime
			curDiluent.tEnd = entry.Sec
		}

		// track the segments per cylinder and their pressure/time integral
		switch {
		case entry.Cylinder != cylinder:
			cylinder = entry.Cylinder
			cur = newSegment(pressure, entry.Sec)
			key := trackKey{cylinder: cylinder}
			track[key] = append(track[key], cur)

		case pressure == 0:
			missing = true

		default:
			cur.end = pressure

			// the transmitter was dark and just came back: treat
			// this as a fresh tracking run rather than continuing
			// the old one
			if pi.Entries[i-1].Pressure[plot.SensorPR] == 0 {
				cur = newSegment(pressure, entry.Sec)
				key := trackKey{cylinder: cylinder}
				track[key] = append(track[key], cur)
			}
		}

		if trackDiluent {
			dp := entry.Diluent[plot.SensorPR]
			switch {
			case curDiluent == nil:
				curDiluent = newSegment(dp, entry.Sec)
				track[diluentKey] = append(track[diluentKey], curDiluent)

			case dp == 0:
				missingDiluent = true

			default:
				curDiluent.end = dp
				if pi.Entries[i-1].Diluent[plot.SensorPR] == 0 {
					curDiluent = newSegment(dp, entry.Sec)
					track[diluentKey] = append(track[diluentKey], curDiluent)
				}
			}
		}
	}

	if missing {
		ip.fillMissingPressures(pi, track, false)
	}
	if trackDiluent && missingDiluent {
		ip.fillMissingPressures(pi, track, true)
	}
}

// pressureTime is the workload integral between two adjacent profile
// entries: mean depth times elapsed time times the ambient pressure at the
// mean depth. The units cancel out downstream; only ratios between
// pressure-time sums are ever used, so this is a unitless scaling factor.
func (ip *Interpolator) pressureTime(a, b *plot.Entry) int {
	time := b.Sec - a.Sec
	depth := (a.Depth + b.Depth) / 2

	// negligible gas is consumed floating at the surface
	if depth <= ip.surfaceThreshold {
		return 0
	}

	return int(ip.model.ToMbar(depth) * float64(time))
}
