package database

import (
	"time"

	"github.com/jackc/pgtype"
)

// Dive represents one archived dive
type Dive struct {
	ID              string    `gorm:"primaryKey;column:id"`
	DeviceName      string    `gorm:"column:device_name;index"`
	Site            string    `gorm:"column:site"`
	StartTime       time.Time `gorm:"column:start_time;index"`
	DurationSec     int       `gorm:"column:duration_sec"`
	Salinity        int       `gorm:"column:salinity"`
	SurfacePressure int       `gorm:"column:surface_pressure"`
	TrackDiluent    bool      `gorm:"column:track_diluent"`
	MaxDepth        int       `gorm:"column:max_depth"`

	// RawLog preserves the device's original record verbatim so the
	// dive can be re-imported after schema changes
	RawLog pgtype.JSONB `gorm:"column:raw_log;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`

	Cylinders []DiveCylinder `gorm:"foreignKey:DiveID;constraint:OnDelete:CASCADE"`
	Samples   []DiveSample   `gorm:"foreignKey:DiveID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Dive
func (Dive) TableName() string {
	return "dives"
}

// DiveCylinder represents one cylinder carried on an archived dive
type DiveCylinder struct {
	ID              uint   `gorm:"primaryKey;autoIncrement;column:id"`
	DiveID          string `gorm:"column:dive_id;index;not null"`
	CylinderIndex   int    `gorm:"column:cylinder_index"`
	Description     string `gorm:"column:description"`
	Size            int    `gorm:"column:size_ml"`
	WorkingPressure int    `gorm:"column:working_pressure"`
	Diluent         bool   `gorm:"column:diluent"`
}

// TableName specifies the table name for DiveCylinder
func (DiveCylinder) TableName() string {
	return "dive_cylinders"
}

// DiveSample represents one sample of an archived dive
type DiveSample struct {
	ID              uint   `gorm:"primaryKey;autoIncrement;column:id"`
	DiveID          string `gorm:"column:dive_id;index;not null"`
	Sec             int    `gorm:"column:sec"`
	Depth           int    `gorm:"column:depth"`
	Cylinder        int    `gorm:"column:cylinder"`
	Pressure        int    `gorm:"column:pressure"`
	DiluentPressure int    `gorm:"column:diluent_pressure"`
}

// TableName specifies the table name for DiveSample
func (DiveSample) TableName() string {
	return "dive_samples"
}
