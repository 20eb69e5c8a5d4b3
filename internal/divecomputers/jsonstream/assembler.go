package jsonstream

import (
	"time"

	"github.com/chrissnell/remotedive/internal/types"
	"github.com/chrissnell/remotedive/pkg/config"
	"github.com/chrissnell/remotedive/pkg/depth"
)

// Packet describes one line of the JSON stream a dive computer emits. A
// packet with an event field marks a dive boundary; all other packets are
// samples belonging to the current dive.
type Packet struct {
	Event string `json:"event,omitempty"`

	// Dive metadata, sent with the dive_start event. Device identifies
	// the sender on shared transports like the live feed listener.
	Device          string           `json:"device,omitempty"`
	StartTime       time.Time        `json:"start_time,omitempty"`
	Site            string           `json:"site,omitempty"`
	Salinity        int              `json:"salinity,omitempty"`
	SurfacePressure int              `json:"surface_pressure,omitempty"`
	Cylinders       []types.Cylinder `json:"cylinders,omitempty"`

	// Sample fields
	Sec             int `json:"sec"`
	Depth           int `json:"depth,omitempty"`
	Cylinder        int `json:"cylinder,omitempty"`
	Pressure        int `json:"pressure,omitempty"`
	DiluentPressure int `json:"diluent_pressure,omitempty"`
}

// Dive boundary events
const (
	EventDiveStart = "dive_start"
	EventDiveEnd   = "dive_end"
)

// Assembler accumulates stream packets into complete dives. When a device
// configuration is supplied, it fills in metadata the stream omits.
type Assembler struct {
	config  config.DeviceData
	current *types.Dive
}

// NewAssembler creates an assembler for one device configuration. A zero
// configuration is valid for transports where the stream identifies the
// device itself.
func NewAssembler(deviceConfig config.DeviceData) *Assembler {
	return &Assembler{config: deviceConfig}
}

// Ingest consumes one packet and returns a completed dive when the packet
// closes one, nil otherwise.
func (a *Assembler) Ingest(p *Packet) *types.Dive {
	switch p.Event {
	case EventDiveStart:
		a.current = a.newDive(p)
		return nil
	case EventDiveEnd:
		return a.Flush()
	default:
		if a.current == nil {
			// Sample arrived without a dive_start; the boundary packet
			// was lost, so open a dive from what we have.
			a.current = a.newDive(&Packet{StartTime: time.Now()})
		}
		a.current.Samples = append(a.current.Samples, types.Sample{
			Sec:             p.Sec,
			Depth:           p.Depth,
			Cylinder:        p.Cylinder,
			Pressure:        p.Pressure,
			DiluentPressure: p.DiluentPressure,
		})
		return nil
	}
}

// Flush closes the current dive, returning it if it holds any samples.
func (a *Assembler) Flush() *types.Dive {
	dive := a.current
	a.current = nil
	if dive == nil || len(dive.Samples) == 0 {
		return nil
	}
	return dive
}

// newDive opens a dive, filling metadata the stream omitted from the
// device configuration.
func (a *Assembler) newDive(p *Packet) *types.Dive {
	dive := &types.Dive{
		DeviceName:      a.config.Name,
		Site:            p.Site,
		StartTime:       p.StartTime,
		Salinity:        p.Salinity,
		SurfacePressure: p.SurfacePressure,
		TrackDiluent:    a.config.TrackDiluent,
		Cylinders:       p.Cylinders,
	}

	if dive.DeviceName == "" {
		dive.DeviceName = p.Device
	}
	if dive.Site == "" {
		dive.Site = a.config.Site.Name
	}
	if dive.StartTime.IsZero() {
		dive.StartTime = time.Now()
	}
	if dive.Salinity == 0 {
		dive.Salinity = a.config.Salinity
	}
	if dive.SurfacePressure == 0 && a.config.Site.Altitude != 0 {
		dive.SurfacePressure = depth.AltitudeToPressure(a.config.Site.Altitude)
	}

	return dive
}
