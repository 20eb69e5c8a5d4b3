package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	devices, err := s.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to load devices: %w", err)
	}
	config.Devices = devices

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	rest, err := s.getRESTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load rest config: %w", err)
	}
	config.REST = rest

	livefeed, err := s.getLiveFeedConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load livefeed config: %w", err)
	}
	config.LiveFeed = livefeed

	return config, nil
}

// GetDevices returns the configured dive computers
func (s *SQLiteProvider) GetDevices() ([]DeviceData, error) {
	rows, err := s.db.Query(`
		SELECT name, type,
		       COALESCE(hostname, ''), COALESCE(port, ''),
		       COALESCE(serial_device, ''), COALESCE(baud, 0),
		       COALESCE(site_name, ''),
		       COALESCE(site_latitude, 0), COALESCE(site_longitude, 0),
		       COALESCE(site_altitude, 0),
		       COALESCE(salinity, 0), COALESCE(track_diluent, 0)
		FROM devices ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []DeviceData
	for rows.Next() {
		var d DeviceData
		err := rows.Scan(&d.Name, &d.Type, &d.Hostname, &d.Port,
			&d.SerialDevice, &d.Baud,
			&d.Site.Name, &d.Site.Latitude, &d.Site.Longitude, &d.Site.Altitude,
			&d.Salinity, &d.TrackDiluent)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}
		devices = append(devices, d)
	}

	return devices, rows.Err()
}

// GetStorageConfig returns the dive archive configuration
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	storage := &StorageData{}

	var connString string
	err := s.db.QueryRow(`SELECT connection_string FROM storage_postgres LIMIT 1`).Scan(&connString)
	switch {
	case err == sql.ErrNoRows:
		return storage, nil
	case err != nil:
		return nil, fmt.Errorf("failed to query storage config: %w", err)
	}

	storage.Postgres = &PostgresData{ConnectionString: connString}
	return storage, nil
}

func (s *SQLiteProvider) getRESTConfig() (*RESTData, error) {
	rest := &RESTData{}

	err := s.db.QueryRow(`SELECT COALESCE(listen_addr, ''), port FROM rest_server LIMIT 1`).
		Scan(&rest.ListenAddr, &rest.Port)
	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to query rest config: %w", err)
	}

	return rest, nil
}

func (s *SQLiteProvider) getLiveFeedConfig() (*LiveFeedData, error) {
	livefeed := &LiveFeedData{}

	err := s.db.QueryRow(`SELECT port FROM livefeed LIMIT 1`).Scan(&livefeed.Port)
	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to query livefeed config: %w", err)
	}

	return livefeed, nil
}

// IsReadOnly returns false: the SQLite configuration can be managed at
// runtime
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the underlying database handle
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
