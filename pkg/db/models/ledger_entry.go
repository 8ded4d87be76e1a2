package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pondokdigital/pondok-backend/pkg/enums"
)

// LedgerEntry records a single immutable money movement on a ledger.
// LedgerID is either a unit name or the reserved central treasury ledger.
// Entries are never updated; corrections are hard deletes through the
// ledger service.
type LedgerEntry struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	LedgerID    string               `gorm:"column:ledger_id;not null;index"`
	EntryDate   time.Time            `gorm:"column:entry_date;not null"`
	Direction   enums.EntryDirection `gorm:"column:direction;type:entry_direction_enum;not null"`
	Category    string               `gorm:"column:category;not null"`
	AmountCents int64                `gorm:"column:amount_cents;not null"`
	Description string               `gorm:"column:description"`
	Actor       string               `gorm:"column:actor;not null"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
