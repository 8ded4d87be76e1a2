package remittance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/enums"
)

// Repository persists remittance markers.
type Repository interface {
	Create(ctx context.Context, rem *models.Remittance) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Remittance, error)
	FindPendingByUnit(ctx context.Context, unitLedgerID string) (*models.Remittance, error)
	ListByStatus(ctx context.Context, status enums.RemittanceStatus) ([]models.Remittance, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Remittance, error)
	Update(ctx context.Context, rem *models.Remittance) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a remittance repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rem *models.Remittance) error {
	if rem.ID == uuid.Nil {
		rem.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rem).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Remittance, error) {
	var rem models.Remittance
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rem).Error; err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *repository) FindPendingByUnit(ctx context.Context, unitLedgerID string) (*models.Remittance, error) {
	var rem models.Remittance
	if err := r.db.WithContext(ctx).
		Where("unit_ledger_id = ? AND status = ?", unitLedgerID, enums.RemittanceStatusPending).
		First(&rem).Error; err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.RemittanceStatus) ([]models.Remittance, error) {
	var rems []models.Remittance
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&rems).Error; err != nil {
		return nil, err
	}
	return rems, nil
}

func (r *repository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Remittance, error) {
	var rems []models.Remittance
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.RemittanceStatusPending, cutoff).
		Order("created_at ASC").
		Find(&rems).Error; err != nil {
		return nil, err
	}
	return rems, nil
}

func (r *repository) Update(ctx context.Context, rem *models.Remittance) error {
	return r.db.WithContext(ctx).Save(rem).Error
}
