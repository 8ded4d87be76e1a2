package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pondokdigital/pondok-backend/pkg/enums"
)

// Remittance is the durable marker bridging the two legs of a
// unit-to-treasury transfer. It exists so a crash between the unit debit
// and the treasury credit is recoverable instead of silently lossy.
type Remittance struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UnitLedgerID  string                 `gorm:"column:unit_ledger_id;not null;index"`
	AmountCents   int64                  `gorm:"column:amount_cents;not null"`
	Actor         string                 `gorm:"column:actor;not null"`
	Status        enums.RemittanceStatus `gorm:"column:status;type:remittance_status_enum;not null"`
	DebitEntryID  *uuid.UUID             `gorm:"column:debit_entry_id;type:uuid"`
	CreditEntryID *uuid.UUID             `gorm:"column:credit_entry_id;type:uuid"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
