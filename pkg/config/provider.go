// Package config loads application configuration from either a YAML file
// or a SQLite database, behind a common provider interface.
package config

import (
	"fmt"
	"strings"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDevices() ([]DeviceData, error)
	GetStorageConfig() (*StorageData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Devices  []DeviceData  `json:"devices"`
	Storage  StorageData   `json:"storage,omitempty"`
	REST     *RESTData     `json:"rest,omitempty"`
	LiveFeed *LiveFeedData `json:"livefeed,omitempty"`
}

// DeviceData holds configuration specific to dive computers
type DeviceData struct {
	Name         string   `json:"name"`
	Type         string   `json:"type,omitempty"`
	Hostname     string   `json:"hostname,omitempty"`
	Port         string   `json:"port,omitempty"`
	SerialDevice string   `json:"serial_device,omitempty"`
	Baud         int      `json:"baud,omitempty"`
	Site         SiteData `json:"site,omitempty"`

	// Salinity is the water weight at the usual dive site in g per 10
	// litres; zero selects the seawater default
	Salinity int `json:"salinity,omitempty"`

	// TrackDiluent enables diluent-pressure tracking for closed-circuit
	// rebreathers
	TrackDiluent bool `json:"track_diluent,omitempty"`
}

// SiteData holds the location of a device's usual dive site
type SiteData struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// StorageData holds the configuration for the dive archive backend
type StorageData struct {
	Postgres *PostgresData `json:"postgres,omitempty"`
}

// PostgresData holds the connection settings for the dive archive
type PostgresData struct {
	ConnectionString string `json:"connection_string"`
}

// RESTData holds the REST server configuration
type RESTData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty"`
}

// LiveFeedData holds the live telemetry listener configuration
type LiveFeedData struct {
	Port int `json:"port,omitempty"`
}

// NewProvider creates a configuration provider appropriate for the given
// path: SQLite for .db/.sqlite files, YAML otherwise.
func NewProvider(path string) (ConfigProvider, error) {
	switch {
	case strings.HasSuffix(path, ".db"), strings.HasSuffix(path, ".sqlite"):
		return NewSQLiteProvider(path)
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return NewYAMLProvider(path), nil
	default:
		return nil, fmt.Errorf("unrecognized config file type: %s", path)
	}
}
