package ledger

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
	"github.com/pondokdigital/pondok-backend/pkg/pagination"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  ledger_id TEXT NOT NULL,
  entry_date DATETIME NOT NULL,
  direction TEXT NOT NULL,
  category TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  description TEXT,
  actor TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func appendEntry(t *testing.T, repo Repository, ledgerID string, direction enums.EntryDirection, amount int64, created time.Time) *models.LedgerEntry {
	t.Helper()

	entry := &models.LedgerEntry{
		ID:          uuid.New(),
		LedgerID:    ledgerID,
		EntryDate:   created.UTC().Truncate(24 * time.Hour),
		Direction:   direction,
		Category:    "Rental Komputer",
		AmountCents: amount,
		Actor:       "Ust. Salim",
		CreatedAt:   created,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	return entry
}

func TestRepositoryListByLedger_chronological(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	appendEntry(t, repo, "Lab Komputer", enums.EntryDirectionIncome, 2250, now)
	appendEntry(t, repo, "Lab Komputer", enums.EntryDirectionExpense, 500, now.Add(-48*time.Hour))
	appendEntry(t, repo, "Kantin", enums.EntryDirectionIncome, 9999, now)

	entries, err := repo.ListByLedger(context.Background(), "Lab Komputer")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Oldest first; the Kantin entry must not leak in.
	assert.Equal(t, enums.EntryDirectionExpense, entries[0].Direction)
	assert.Equal(t, int64(500), entries[0].AmountCents)
	assert.Equal(t, enums.EntryDirectionIncome, entries[1].Direction)
	assert.Equal(t, int64(2250), entries[1].AmountCents)
}

func TestRepositoryDelete(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	entry := appendEntry(t, repo, "Lab Komputer", enums.EntryDirectionIncome, 1000, time.Now().UTC())

	affected, err := repo.Delete(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.Delete(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	entries, err := repo.ListByLedger(context.Background(), "Lab Komputer")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRepositoryFindByID(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	entry := appendEntry(t, repo, "Satpam", enums.EntryDirectionIncome, 7000, time.Now().UTC())

	found, err := repo.FindByID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Satpam", found.LedgerID)
	assert.Equal(t, int64(7000), found.AmountCents)
}

func TestRepositoryListPageByLedger(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	base := time.Now().UTC().Truncate(time.Second)
	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		entry := appendEntry(t, repo, "Kantin", enums.EntryDirectionIncome, int64(1000*(i+1)), base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, entry.ID)
	}
	appendEntry(t, repo, "Dapur", enums.EntryDirectionIncome, 9000, base)

	page, err := repo.ListPageByLedger(context.Background(), "Kantin", 3, nil)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, ids[3], page[0].ID)
	assert.Equal(t, ids[1], page[2].ID)

	rest, err := repo.ListPageByLedger(context.Background(), "Kantin", 3, &pagination.Cursor{
		CreatedAt: page[2].CreatedAt,
		ID:        page[2].ID,
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, ids[0], rest[0].ID)
}
