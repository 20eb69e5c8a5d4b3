// Package types contains the shared data model passed between dive
// computers, the profile pipeline, and the storage layer.
package types

import "time"

// Sample is one raw record from a dive computer: a depth and, when the
// transmitters reported in, cylinder pressures. A pressure of zero means
// no reading was received for that sample.
type Sample struct {
	// Sec is elapsed time since the start of the dive in seconds
	Sec int `json:"sec"`

	// Depth in mm
	Depth int `json:"depth"`

	// Cylinder is the index of the cylinder in use at this instant
	Cylinder int `json:"cylinder"`

	// Pressure is the raw sensor pressure of the active cylinder in mbar (0 = no reading)
	Pressure int `json:"pressure,omitempty"`

	// DiluentPressure is the raw diluent-cylinder pressure in mbar (rebreather only)
	DiluentPressure int `json:"diluent_pressure,omitempty"`
}

// Cylinder describes one gas cylinder carried on a dive.
type Cylinder struct {
	// Index is the cylinder's slot in the dive's cylinder table
	Index int `json:"index"`

	// Description is a free-form label, e.g. "AL80" or "D12 232 bar"
	Description string `json:"description,omitempty"`

	// Size is the internal volume in ml
	Size int `json:"size,omitempty"`

	// WorkingPressure is the rated fill pressure in mbar
	WorkingPressure int `json:"working_pressure,omitempty"`

	// Diluent marks the closed-circuit diluent cylinder
	Diluent bool `json:"diluent,omitempty"`
}

// Dive is one complete dive as delivered by a dive computer or importer.
type Dive struct {
	ID         string    `json:"id,omitempty"`
	DeviceName string    `json:"device_name,omitempty"`
	Site       string    `json:"site,omitempty"`
	StartTime  time.Time `json:"start_time"`

	// Salinity is the water weight in g per 10 litres (0 = seawater default)
	Salinity int `json:"salinity,omitempty"`

	// SurfacePressure is the atmospheric pressure at the surface in mbar (0 = 1013)
	SurfacePressure int `json:"surface_pressure,omitempty"`

	// TrackDiluent requests independent diluent-pressure tracking
	TrackDiluent bool `json:"track_diluent,omitempty"`

	Cylinders []Cylinder `json:"cylinders,omitempty"`
	Samples   []Sample   `json:"samples"`
}

// Duration returns the elapsed time of the last sample.
func (d *Dive) Duration() time.Duration {
	if len(d.Samples) == 0 {
		return 0
	}
	return time.Duration(d.Samples[len(d.Samples)-1].Sec) * time.Second
}
