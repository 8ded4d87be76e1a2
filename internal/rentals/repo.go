package rentals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/pkg/db/models"
)

// Repository persists rental sessions. The station_id unique index is what
// actually enforces one live session per station; the service checks first
// only to return a friendlier error.
type Repository interface {
	Create(ctx context.Context, session *models.RentalSession) error
	FindByStation(ctx context.Context, stationID string) (*models.RentalSession, error)
	Update(ctx context.Context, session *models.RentalSession) error
	Delete(ctx context.Context, sessionID uuid.UUID) (int64, error)
	List(ctx context.Context) ([]models.RentalSession, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a rental session repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, session *models.RentalSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) FindByStation(ctx context.Context, stationID string) (*models.RentalSession, error) {
	var session models.RentalSession
	if err := r.db.WithContext(ctx).
		Where("station_id = ?", stationID).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) Update(ctx context.Context, session *models.RentalSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *repository) Delete(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		Delete(&models.RentalSession{})
	return result.RowsAffected, result.Error
}

func (r *repository) List(ctx context.Context) ([]models.RentalSession, error) {
	var sessions []models.RentalSession
	if err := r.db.WithContext(ctx).
		Order("started_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
