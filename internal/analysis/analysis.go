// Package analysis derives per-dive summary figures from a dive and its
// reconstructed pressure profile: depth statistics, per-cylinder gas use,
// and day/night classification. All figures are strictly per-dive.
package analysis

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/remotedive/internal/plot"
	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/solar"
)

// Site is the location of a dive, used for day/night classification.
// A zero Site disables the classification.
type Site struct {
	Latitude  float64
	Longitude float64
}

// CylinderUse summarizes the pressure track of one cylinder over a dive.
type CylinderUse struct {
	Index int `json:"index"`

	// StartPressure and EndPressure are the first and last pressures of
	// the track in mbar, taking interpolated values where the sensor was
	// dark
	StartPressure int `json:"start_pressure"`
	EndPressure   int `json:"end_pressure"`

	// GasUsed is the consumed gas in litres at surface pressure, or zero
	// when the cylinder size is unknown
	GasUsed float64 `json:"gas_used,omitempty"`
}

// Summary holds the per-dive figures served alongside a computed profile.
type Summary struct {
	MaxDepth  int           `json:"max_depth"`
	MeanDepth int           `json:"mean_depth"`
	Duration  time.Duration `json:"duration"`
	Night     bool          `json:"night,omitempty"`

	Cylinders []CylinderUse `json:"cylinders,omitempty"`
	Diluent   *CylinderUse  `json:"diluent,omitempty"`
}

// Summarize computes the summary for a dive whose profile has already been
// run through the pressure interpolation engine.
func Summarize(dive *types.Dive, pi *plot.Info, site Site) Summary {
	s := Summary{
		MaxDepth: pi.MaxDepth(),
		Duration: dive.Duration(),
	}

	s.MeanDepth = meanDepth(pi)

	if site.Latitude != 0 || site.Longitude != 0 {
		s.Night = !solar.IsDaylight(dive.StartTime, site.Latitude, site.Longitude)
	}

	s.Cylinders = cylinderUse(dive, pi)
	if dive.TrackDiluent {
		s.Diluent = diluentUse(dive, pi)
	}

	return s
}

// meanDepth is the time-weighted mean depth of the profile in mm.
func meanDepth(pi *plot.Info) int {
	var depths, weights []float64
	for i := 1; i < len(pi.Entries); i++ {
		a, b := &pi.Entries[i-1], &pi.Entries[i]
		dt := b.Sec - a.Sec
		if dt <= 0 {
			continue
		}
		depths = append(depths, float64(a.Depth+b.Depth)/2)
		weights = append(weights, float64(dt))
	}
	if len(depths) == 0 {
		return 0
	}
	return int(stat.Mean(depths, weights))
}

// trackPressure is the best available pressure for an entry's main track:
// the sensor reading when present, the interpolated value otherwise.
func trackPressure(e *plot.Entry) int {
	if e.Pressure[plot.SensorPR] != 0 {
		return e.Pressure[plot.SensorPR]
	}
	return e.Pressure[plot.InterpolatedPR]
}

func cylinderUse(dive *types.Dive, pi *plot.Info) []CylinderUse {
	var uses []CylinderUse

	seen := make(map[int]int) // cylinder -> index into uses
	for i := range pi.Entries {
		e := &pi.Entries[i]
		pressure := trackPressure(e)
		if pressure == 0 {
			continue
		}
		idx, ok := seen[e.Cylinder]
		if !ok {
			seen[e.Cylinder] = len(uses)
			uses = append(uses, CylinderUse{Index: e.Cylinder, StartPressure: pressure, EndPressure: pressure})
			continue
		}
		uses[idx].EndPressure = pressure
	}

	for i := range uses {
		uses[i].GasUsed = gasUsed(dive, uses[i].Index, uses[i].StartPressure, uses[i].EndPressure)
	}

	return uses
}

func diluentUse(dive *types.Dive, pi *plot.Info) *CylinderUse {
	use := &CylinderUse{Index: -1}

	for i := range pi.Entries {
		e := &pi.Entries[i]
		pressure := e.Diluent[plot.SensorPR]
		if pressure == 0 {
			pressure = e.Diluent[plot.InterpolatedPR]
		}
		if pressure == 0 {
			continue
		}
		if use.StartPressure == 0 {
			use.StartPressure = pressure
		}
		use.EndPressure = pressure
	}

	if use.StartPressure == 0 {
		return nil
	}

	for _, cyl := range dive.Cylinders {
		if cyl.Diluent {
			use.Index = cyl.Index
			use.GasUsed = gasUsed(dive, cyl.Index, use.StartPressure, use.EndPressure)
			break
		}
	}

	return use
}

// gasUsed converts a pressure delta on a cylinder of known size to litres
// of gas at surface pressure. Unknown cylinders yield zero.
func gasUsed(dive *types.Dive, cylinder, start, end int) float64 {
	for _, cyl := range dive.Cylinders {
		if cyl.Index != cylinder || cyl.Size == 0 {
			continue
		}
		sizeLitres := float64(cyl.Size) / 1000.0
		deltaBar := float64(start-end) / 1000.0
		if deltaBar < 0 {
			deltaBar = 0
		}
		return sizeLitres * deltaBar
	}
	return 0
}
