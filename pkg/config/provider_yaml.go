package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// DeviceYAML mirrors DeviceData with YAML tags
type DeviceYAML struct {
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type,omitempty"`
	Hostname     string   `yaml:"hostname,omitempty"`
	Port         string   `yaml:"port,omitempty"`
	SerialDevice string   `yaml:"serial_device,omitempty"`
	Baud         int      `yaml:"baud,omitempty"`
	Site         SiteYAML `yaml:"site,omitempty"`
	Salinity     int      `yaml:"salinity,omitempty"`
	TrackDiluent bool     `yaml:"track_diluent,omitempty"`
}

// SiteYAML mirrors SiteData with YAML tags
type SiteYAML struct {
	Name      string  `yaml:"name,omitempty"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Altitude  float64 `yaml:"altitude"`
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into a temporary struct with YAML tags
	var yamlConfig struct {
		Devices []DeviceYAML `yaml:"devices"`
		Storage struct {
			Postgres *struct {
				ConnectionString string `yaml:"connection_string"`
			} `yaml:"postgres,omitempty"`
		} `yaml:"storage,omitempty"`
		REST *struct {
			ListenAddr string `yaml:"listen_addr,omitempty"`
			Port       int    `yaml:"port,omitempty"`
		} `yaml:"rest,omitempty"`
		LiveFeed *struct {
			Port int `yaml:"port,omitempty"`
		} `yaml:"livefeed,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Devices: make([]DeviceData, len(yamlConfig.Devices)),
	}

	for i, device := range yamlConfig.Devices {
		config.Devices[i] = DeviceData{
			Name:         device.Name,
			Type:         device.Type,
			Hostname:     device.Hostname,
			Port:         device.Port,
			SerialDevice: device.SerialDevice,
			Baud:         device.Baud,
			Site: SiteData{
				Name:      device.Site.Name,
				Latitude:  device.Site.Latitude,
				Longitude: device.Site.Longitude,
				Altitude:  device.Site.Altitude,
			},
			Salinity:     device.Salinity,
			TrackDiluent: device.TrackDiluent,
		}
	}

	if yamlConfig.Storage.Postgres != nil {
		config.Storage.Postgres = &PostgresData{
			ConnectionString: yamlConfig.Storage.Postgres.ConnectionString,
		}
	}
	if yamlConfig.REST != nil {
		config.REST = &RESTData{
			ListenAddr: yamlConfig.REST.ListenAddr,
			Port:       yamlConfig.REST.Port,
		}
	}
	if yamlConfig.LiveFeed != nil {
		config.LiveFeed = &LiveFeedData{
			Port: yamlConfig.LiveFeed.Port,
		}
	}

	return config, nil
}

// GetDevices returns the configured dive computers
func (y *YAMLProvider) GetDevices() ([]DeviceData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return config.Devices, nil
}

// GetStorageConfig returns the dive archive configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Storage, nil
}

// IsReadOnly returns true: YAML configurations are never written by the
// application
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
