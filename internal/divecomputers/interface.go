// Package divecomputers defines the interface dive computer backends
// implement and shared helpers for loading their configuration.
package divecomputers

import (
	"github.com/chrissnell/remotedive/pkg/config"
)

// DiveComputer is an interface that provides standard methods for various
// dive computer backends
type DiveComputer interface {
	StartDiveComputer() error
	StationName() string
}

// StationFactory creates dive computer stations based on configuration
type StationFactory interface {
	CreateStation(config config.DeviceData) (DiveComputer, error)
}
