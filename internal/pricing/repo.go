package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pondokdigital/pondok-backend/pkg/db/models"
)

// Repository manages the category-to-hourly-rate master table.
type Repository interface {
	FindByCategory(ctx context.Context, category string) (*models.ServiceRate, error)
	List(ctx context.Context) ([]models.ServiceRate, error)
	Upsert(ctx context.Context, rate *models.ServiceRate) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a rate repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByCategory(ctx context.Context, category string) (*models.ServiceRate, error) {
	var rate models.ServiceRate
	if err := r.db.WithContext(ctx).
		Where("category = ?", category).
		First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repository) List(ctx context.Context) ([]models.ServiceRate, error) {
	var rates []models.ServiceRate
	if err := r.db.WithContext(ctx).
		Order("category ASC").
		Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *repository) Upsert(ctx context.Context, rate *models.ServiceRate) error {
	if rate.ID == uuid.Nil {
		rate.ID = uuid.New()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category"}},
			DoUpdates: clause.AssignmentColumns([]string{"hourly_rate_cents", "updated_at"}),
		}).
		Create(rate).Error
}
