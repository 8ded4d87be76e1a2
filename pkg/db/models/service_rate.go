package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceRate maps a billable service category to its hourly rate.
// Master data maintained by administrators; the rental engine only reads it.
type ServiceRate struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Category        string    `gorm:"column:category;not null;uniqueIndex"`
	HourlyRateCents int64     `gorm:"column:hourly_rate_cents;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
