package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/pagination"
)

// Repository manages persistence for ledger entries. Each call touches a
// single record; the store offers no multi-record transaction, which is why
// cross-ledger movements are coordinated one append at a time.
type Repository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	ListByLedger(ctx context.Context, ledgerID string) ([]models.LedgerEntry, error)
	ListPageByLedger(ctx context.Context, ledgerID string, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, error)
	FindByID(ctx context.Context, entryID uuid.UUID) (*models.LedgerEntry, error)
	Delete(ctx context.Context, entryID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByLedger(ctx context.Context, ledgerID string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("ledger_id = ?", ledgerID).
		Order("entry_date ASC").
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListPageByLedger(ctx context.Context, ledgerID string, limit int, cursor *pagination.Cursor) ([]models.LedgerEntry, error) {
	q := r.db.WithContext(ctx).Where("ledger_id = ?", ledgerID)
	if cursor != nil {
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var entries []models.LedgerEntry
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) FindByID(ctx context.Context, entryID uuid.UUID) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("id = ?", entryID).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Delete(ctx context.Context, entryID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", entryID).
		Delete(&models.LedgerEntry{})
	return result.RowsAffected, result.Error
}
