package gaspressure

// trackKey identifies one tracked pressure quantity: either a numbered
// cylinder or the closed-circuit diluent cylinder, which is tracked as its
// own first-class quantity rather than an extra cylinder slot.
type trackKey struct {
	cylinder int
	diluent  bool
}

var diluentKey = trackKey{diluent: true}

// segment covers one contiguous period of use of a single cylinder,
// bounded by two pressure readings that may be unknown (zero). Segments
// for one track form a time-ordered slice.
type segment struct {
	start, end   int // mbar; 0 = unknown
	tStart, tEnd int // seconds
	pressureTime int // accumulated workload over the span
}

func newSegment(start, tStart int) *segment {
	return &segment{start: start, tStart: tStart, tEnd: tStart}
}

// fillSegmentPressures resolves the unknown boundary pressures in one
// track's chain.
//
// Many segments have full pressure information on both boundaries. But
// after switching away from a cylinder we will have a start pressure for
// the first segment with a missing end pressure, then possibly several
// segments with no pressure at all, until a segment with an end pressure
// finally appears. The known start-to-end delta of such a run is spread
// over its segments in proportion to each segment's share of the run's
// total pressure-time, so segments with higher depth-times-duration
// exposure absorb proportionally larger pressure drops.
func fillSegmentPressures(segs []*segment) {
	for i := 0; i < len(segs); {
		start := segs[i].start
		ptSum, pt := 0, 0

		// scan forward to the end of the unresolved run, accumulating
		// the run's total pressure-time
		j := i
		var end int
		for {
			ptSum += segs[j].pressureTime
			end = segs[j].end
			if end != 0 {
				break
			}
			// if the chain ends without a reading, assume no net
			// change over the remainder of the run
			end = start
			if j+1 >= len(segs) {
				break
			}
			j++
		}

		if start == 0 {
			start = end
		}

		// now 'start' and 'end' hold the boundary pressures for the
		// run segs[i]..segs[j] and ptSum its total pressure-time;
		// dole out the pressures relative to pressure-time
		segs[i].start = start
		segs[j].end = end
		for k := i; ; k++ {
			pt += segs[k].pressureTime
			pressure := start
			if ptSum != 0 {
				pressure = int(float64(start) - float64(start-end)*float64(pt)/float64(ptSum))
			}
			segs[k].end = pressure
			if k == j {
				break
			}
			segs[k+1].start = pressure
		}

		i = j + 1
	}
}
