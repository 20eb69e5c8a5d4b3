package config

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `
devices:
  - name: perdix
    type: jsonstream
    serial_device: /dev/ttyUSB0
    baud: 115200
    salinity: 10300
    track_diluent: true
    site:
      name: Blue Hole
      latitude: 28.572
      longitude: 34.537
      altitude: 0
storage:
  postgres:
    connection_string: host=localhost dbname=remotedive
rest:
  port: 8080
livefeed:
  port: 9120
`

func TestYAMLProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	provider := NewYAMLProvider(path)
	defer provider.Close()

	if !provider.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if len(cfg.Devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(cfg.Devices))
	}
	d := cfg.Devices[0]
	if d.Name != "perdix" || d.Type != "jsonstream" || d.Baud != 115200 {
		t.Errorf("device mismatch: %+v", d)
	}
	if !d.TrackDiluent || d.Salinity != 10300 {
		t.Errorf("device environment mismatch: %+v", d)
	}
	if d.Site.Name != "Blue Hole" || d.Site.Latitude != 28.572 {
		t.Errorf("site mismatch: %+v", d.Site)
	}

	if cfg.Storage.Postgres == nil || cfg.Storage.Postgres.ConnectionString == "" {
		t.Error("postgres storage config missing")
	}
	if cfg.REST == nil || cfg.REST.Port != 8080 {
		t.Errorf("rest config mismatch: %+v", cfg.REST)
	}
	if cfg.LiveFeed == nil || cfg.LiveFeed.Port != 9120 {
		t.Errorf("livefeed config mismatch: %+v", cfg.LiveFeed)
	}
}

func TestSQLiteProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	schema := `
		CREATE TABLE devices (
			name TEXT PRIMARY KEY, type TEXT,
			hostname TEXT, port TEXT, serial_device TEXT, baud INTEGER,
			site_name TEXT, site_latitude REAL, site_longitude REAL, site_altitude REAL,
			salinity INTEGER, track_diluent INTEGER
		);
		CREATE TABLE storage_postgres (connection_string TEXT);
		CREATE TABLE rest_server (listen_addr TEXT, port INTEGER);
		CREATE TABLE livefeed (port INTEGER);
		INSERT INTO devices (name, type, serial_device, baud, site_name, site_latitude, site_longitude, site_altitude, salinity, track_diluent)
			VALUES ('perdix', 'jsonstream', '/dev/ttyUSB0', 115200, 'Blue Hole', 28.572, 34.537, 0, 10300, 1);
		INSERT INTO storage_postgres VALUES ('host=localhost dbname=remotedive');
		INSERT INTO rest_server (port) VALUES (8080);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	db.Close()

	provider, err := NewSQLiteProvider(path)
	if err != nil {
		t.Fatalf("NewSQLiteProvider: %v", err)
	}
	defer provider.Close()

	if provider.IsReadOnly() {
		t.Error("SQLite provider should not be read-only")
	}

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if len(cfg.Devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(cfg.Devices))
	}
	d := cfg.Devices[0]
	if d.Name != "perdix" || !d.TrackDiluent || d.Site.Latitude != 28.572 {
		t.Errorf("device mismatch: %+v", d)
	}
	if cfg.Storage.Postgres == nil || cfg.Storage.Postgres.ConnectionString == "" {
		t.Error("postgres storage config missing")
	}
	if cfg.REST == nil || cfg.REST.Port != 8080 {
		t.Errorf("rest config mismatch: %+v", cfg.REST)
	}
	if cfg.LiveFeed != nil {
		t.Errorf("livefeed config should be absent, got %+v", cfg.LiveFeed)
	}
}

func TestNewProvider(t *testing.T) {
	if _, err := NewProvider("config.conf"); err == nil {
		t.Error("expected error for unknown extension")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := NewProvider(path)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, ok := p.(*YAMLProvider); !ok {
		t.Errorf("expected YAMLProvider, got %T", p)
	}
}
