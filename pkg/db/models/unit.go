package models

import (
	"time"

	"github.com/google/uuid"
)

// Unit is an operational sub-department that owns a cash ledger.
// Its name doubles as the ledger identifier.
type Unit struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
