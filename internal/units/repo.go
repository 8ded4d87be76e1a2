package units

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/pkg/db/models"
)

// Repository manages unit master data.
type Repository interface {
	Create(ctx context.Context, unit *models.Unit) error
	FindByName(ctx context.Context, name string) (*models.Unit, error)
	List(ctx context.Context) ([]models.Unit, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a unit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, unit *models.Unit) error {
	if unit.ID == uuid.Nil {
		unit.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Unit, error) {
	var unit models.Unit
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *repository) List(ctx context.Context) ([]models.Unit, error) {
	var units []models.Unit
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}
