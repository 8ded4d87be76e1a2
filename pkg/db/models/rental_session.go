package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pondokdigital/pondok-backend/pkg/enums"
)

// RentalSession is the authoritative record of a billable workstation
// occupancy. At most one live row exists per station; a station without a
// row is idle. The row is deleted once its charge is committed to a ledger.
type RentalSession struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	StationID      string             `gorm:"column:station_id;not null;uniqueIndex"`
	RenterName     string             `gorm:"column:renter_name;not null"`
	Status         enums.RentalStatus `gorm:"column:status;type:rental_status_enum;not null"`
	StartedAt      time.Time          `gorm:"column:started_at;not null"`
	StoppedAt      *time.Time         `gorm:"column:stopped_at"`
	ElapsedMinutes *int64             `gorm:"column:elapsed_minutes"`
	ChargeCents    *int64             `gorm:"column:charge_cents"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
