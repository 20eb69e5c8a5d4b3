package gaspressure

import (
	"math"

	"github.com/chrissnell/remotedive/internal/plot"
)

// interpolateData is the localized window used to interpolate one missing
// entry: the boundary pressures of the window, the total pressure-time
// between them, and the pressure-time accumulated up to the entry itself.
type interpolateData struct {
	start, end      int
	pressureTime    int
	accPressureTime int
}

func trackPressure(entry *plot.Entry, diluent bool) int {
	if diluent {
		return entry.Diluent[plot.SensorPR]
	}
	return entry.Pressure[plot.SensorPR]
}

// interpolationWindow rebuilds the interpolation window for the entry at
// index cur inside the given segment: pressure-time accumulated strictly
// since the last point with a known reading (or the segment's start if
// there is none), versus pressure-time accumulated up to and including the
// later known boundary.
func interpolationWindow(seg *segment, pi *plot.Info, cur int, diluent bool) interpolateData {
	data := interpolateData{start: seg.start, end: seg.end}

	for i := range pi.Entries {
		entry := &pi.Entries[i]
		pressure := trackPressure(entry, diluent)

		if entry.Sec < seg.tStart {
			continue
		}
		if entry.Sec >= seg.tEnd {
			data.pressureTime += entry.PressureTime
			break
		}
		if entry.Sec == seg.tStart {
			data.accPressureTime = 0
			data.pressureTime = 0
			if pressure != 0 {
				data.start = pressure
			}
			continue
		}
		if i < cur {
			if pressure != 0 {
				// a known reading inside the segment restarts
				// the window at that reading
				data.start = pressure
				data.accPressureTime = 0
				data.pressureTime = 0
			} else {
				data.accPressureTime += entry.PressureTime
				data.pressureTime += entry.PressureTime
			}
			continue
		}
		if i == cur {
			data.accPressureTime += entry.PressureTime
			data.pressureTime += entry.PressureTime
			continue
		}
		data.pressureTime += entry.PressureTime
		if pressure != 0 {
			data.end = pressure
			break
		}
	}

	return data
}

// fillMissingPressures transfers the reconciled segment pressures onto the
// profile. It walks the entries in time order, aligning each one with the
// segment chain of its track, and interpolates a pressure wherever the
// sensor reading is absent. Entries with a real reading only update the
// per-track last-known pressure; their fields are left untouched.
func (ip *Interpolator) fillMissingPressures(pi *plot.Info, track map[trackKey][]*segment, diluent bool) {
	// resolve the segment boundaries and seed the per-track last-known
	// pressure from each chain's first segment
	lastKnown := make(map[trackKey]int)
	for key, segs := range track {
		if key.diluent != diluent || len(segs) == 0 {
			continue
		}
		fillSegmentPressures(segs)
		lastKnown[key] = segs[0].start
		ip.traceSegments(key, segs)
	}

	// The leading entries of the profile are fillers, but in case there
	// is no sample at time zero the second of them still needs
	// processing, so start at index 1.
	for i := 1; i < len(pi.Entries); i++ {
		entry := &pi.Entries[i]

		var key trackKey
		var pressure int
		var save *int

		if diluent {
			key = diluentKey
			pressure = entry.Diluent[plot.SensorPR]
			save = &entry.Diluent[plot.InterpolatedPR]
		} else {
			key = trackKey{cylinder: entry.Cylinder}
			pressure = entry.Pressure[plot.SensorPR]
			save = &entry.Pressure[plot.InterpolatedPR]
		}

		// a real reading is authoritative, never interpolated
		if pressure != 0 {
			lastKnown[key] = pressure
			continue
		}

		// no chain for this track: leave the entry at "no data"
		cur, tracked := lastKnown[key]
		if !tracked {
			continue
		}

		// find the segment that owns this entry
		var seg *segment
		for _, s := range track[key] {
			if s.tEnd >= entry.Sec {
				seg = s
				break
			}
		}

		// no segment, or no workload information in it: flat-line the
		// last known pressure
		if seg == nil || seg.pressureTime == 0 {
			*save = cur
			continue
		}

		data := interpolationWindow(seg, pi, i, diluent)
		if data.pressureTime != 0 {
			// overall pressure change per unit of pressure-time
			// over the window, applied to the workload accumulated
			// up to this entry
			rate := float64(data.end-data.start) / float64(data.pressureTime)
			cur = int(math.Round(float64(data.start) + rate*float64(data.accPressureTime)))
			lastKnown[key] = cur
		}
		*save = cur
	}
}

func (ip *Interpolator) traceSegments(key trackKey, segs []*segment) {
	if ip.logger == nil {
		return
	}
	for _, s := range segs {
		ip.logger.Debugw("pressure segment",
			"cylinder", key.cylinder,
			"diluent", key.diluent,
			"start", s.start,
			"end", s.end,
			"t_start", s.tStart,
			"t_end", s.tEnd,
			"pressure_time", s.pressureTime,
		)
	}
}
