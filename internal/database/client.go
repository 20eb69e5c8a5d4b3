// Package database provides the dive archive on top of PostgreSQL.
package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/remotedive/internal/log"
	"github.com/chrissnell/remotedive/internal/types"
)

// Client holds the connection to the dive archive database
type Client struct {
	connectionString string
	DB               *gorm.DB // Exported so it can be accessed from other packages
	logger           *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(connectionString string, logger *zap.SugaredLogger) *Client {
	return &Client{
		connectionString: connectionString,
		logger:           logger,
	}
}

// Connect connects to the dive archive database
func (c *Client) Connect() error {
	var err error

	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)

	config := &gorm.Config{
		Logger: dbLogger,
	}

	log.Info("connecting to dive archive...")
	c.DB, err = gorm.Open(postgres.Open(c.connectionString), config)
	if err != nil {
		log.Warn("warning: unable to create a dive archive connection:", err)
		return err
	}
	log.Info("dive archive connection successful")

	return nil
}

// Migrate creates or updates the archive schema
func (c *Client) Migrate() error {
	return c.DB.AutoMigrate(&Dive{}, &DiveCylinder{}, &DiveSample{})
}

// SaveDive archives a dive, assigning it an ID if it does not have one.
// The returned ID identifies the stored dive.
func (c *Client) SaveDive(dive *types.Dive) (string, error) {
	if dive.ID == "" {
		dive.ID = uuid.New().String()
	}

	record := Dive{
		ID:              dive.ID,
		DeviceName:      dive.DeviceName,
		Site:            dive.Site,
		StartTime:       dive.StartTime,
		DurationSec:     int(dive.Duration() / time.Second),
		Salinity:        dive.Salinity,
		SurfacePressure: dive.SurfacePressure,
		TrackDiluent:    dive.TrackDiluent,
	}

	for i := range dive.Samples {
		if dive.Samples[i].Depth > record.MaxDepth {
			record.MaxDepth = dive.Samples[i].Depth
		}
	}

	raw, err := json.Marshal(dive)
	if err != nil {
		return "", fmt.Errorf("failed to encode raw dive log: %w", err)
	}
	if err := record.RawLog.Set(raw); err != nil {
		return "", fmt.Errorf("failed to set raw dive log: %w", err)
	}

	for _, cyl := range dive.Cylinders {
		record.Cylinders = append(record.Cylinders, DiveCylinder{
			DiveID:          dive.ID,
			CylinderIndex:   cyl.Index,
			Description:     cyl.Description,
			Size:            cyl.Size,
			WorkingPressure: cyl.WorkingPressure,
			Diluent:         cyl.Diluent,
		})
	}
	for _, s := range dive.Samples {
		record.Samples = append(record.Samples, DiveSample{
			DiveID:          dive.ID,
			Sec:             s.Sec,
			Depth:           s.Depth,
			Cylinder:        s.Cylinder,
			Pressure:        s.Pressure,
			DiluentPressure: s.DiluentPressure,
		})
	}

	if err := c.DB.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store dive: %w", err)
	}

	c.logger.Infow("dive archived", "id", dive.ID, "device", dive.DeviceName,
		"samples", len(dive.Samples))

	return dive.ID, nil
}

// ListDives returns the archived dives, newest first, without samples.
func (c *Client) ListDives(limit int) ([]types.Dive, error) {
	if limit <= 0 {
		limit = 100
	}

	var records []Dive
	err := c.DB.Preload("Cylinders").
		Order("start_time DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dives: %w", err)
	}

	dives := make([]types.Dive, 0, len(records))
	for i := range records {
		dives = append(dives, *recordToDive(&records[i], false))
	}
	return dives, nil
}

// GetDive returns one archived dive with its full sample series.
func (c *Client) GetDive(id string) (*types.Dive, error) {
	var record Dive
	err := c.DB.Preload("Cylinders").
		Preload("Samples", func(db *gorm.DB) *gorm.DB { return db.Order("sec ASC") }).
		First(&record, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dive %s: %w", id, err)
	}

	return recordToDive(&record, true), nil
}

func recordToDive(record *Dive, withSamples bool) *types.Dive {
	dive := &types.Dive{
		ID:              record.ID,
		DeviceName:      record.DeviceName,
		Site:            record.Site,
		StartTime:       record.StartTime,
		Salinity:        record.Salinity,
		SurfacePressure: record.SurfacePressure,
		TrackDiluent:    record.TrackDiluent,
	}

	for _, cyl := range record.Cylinders {
		dive.Cylinders = append(dive.Cylinders, types.Cylinder{
			Index:           cyl.CylinderIndex,
			Description:     cyl.Description,
			Size:            cyl.Size,
			WorkingPressure: cyl.WorkingPressure,
			Diluent:         cyl.Diluent,
		})
	}

	if !withSamples {
		return dive
	}

	for _, s := range record.Samples {
		dive.Samples = append(dive.Samples, types.Sample{
			Sec:             s.Sec,
			Depth:           s.Depth,
			Cylinder:        s.Cylinder,
			Pressure:        s.Pressure,
			DiluentPressure: s.DiluentPressure,
		})
	}

	return dive
}
