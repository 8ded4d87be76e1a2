package remittance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/enums"
)

func setupRemittanceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS remittances (
  id TEXT PRIMARY KEY,
  unit_ledger_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  actor TEXT NOT NULL,
  status TEXT NOT NULL,
  debit_entry_id TEXT,
  credit_entry_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedRemittance(t *testing.T, repo Repository, unit string, status enums.RemittanceStatus, created time.Time) *models.Remittance {
	t.Helper()

	rem := &models.Remittance{
		ID:           uuid.New(),
		UnitLedgerID: unit,
		AmountCents:  25000,
		Actor:        "Ust. Salim",
		Status:       status,
		CreatedAt:    created,
	}
	require.NoError(t, repo.Create(context.Background(), rem))
	return rem
}

func TestRepositoryFindPendingByUnit(t *testing.T) {
	db := setupRemittanceTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedRemittance(t, repo, "Lab Komputer", enums.RemittanceStatusCommitted, now)
	pending := seedRemittance(t, repo, "Lab Komputer", enums.RemittanceStatusPending, now)
	seedRemittance(t, repo, "Dapur", enums.RemittanceStatusPending, now)

	found, err := repo.FindPendingByUnit(context.Background(), "Lab Komputer")
	require.NoError(t, err)
	assert.Equal(t, pending.ID, found.ID)

	_, err = repo.FindPendingByUnit(context.Background(), "Kantin")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListPendingBefore(t *testing.T) {
	db := setupRemittanceTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	stale := seedRemittance(t, repo, "Lab Komputer", enums.RemittanceStatusPending, now.Add(-time.Hour))
	seedRemittance(t, repo, "Dapur", enums.RemittanceStatusPending, now)
	seedRemittance(t, repo, "Kantin", enums.RemittanceStatusCommitted, now.Add(-time.Hour))

	rems, err := repo.ListPendingBefore(context.Background(), now.Add(-5*time.Minute))
	require.NoError(t, err)
	require.Len(t, rems, 1)
	assert.Equal(t, stale.ID, rems[0].ID)
}

func TestRepositoryUpdateLegs(t *testing.T) {
	db := setupRemittanceTestDB(t)
	repo := NewRepository(db)

	rem := seedRemittance(t, repo, "Lab Komputer", enums.RemittanceStatusPending, time.Now().UTC())

	debitID := uuid.New()
	creditID := uuid.New()
	rem.DebitEntryID = &debitID
	rem.CreditEntryID = &creditID
	rem.Status = enums.RemittanceStatusCommitted
	require.NoError(t, repo.Update(context.Background(), rem))

	found, err := repo.FindByID(context.Background(), rem.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RemittanceStatusCommitted, found.Status)
	require.NotNil(t, found.DebitEntryID)
	require.NotNil(t, found.CreditEntryID)
	assert.Equal(t, debitID, *found.DebitEntryID)
	assert.Equal(t, creditID, *found.CreditEntryID)
}
