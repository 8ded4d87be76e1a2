package pricing

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
)

type fakeRepository struct {
	rates map[string]int64
}

func (f *fakeRepository) FindByCategory(ctx context.Context, category string) (*models.ServiceRate, error) {
	if cents, ok := f.rates[category]; ok {
		return &models.ServiceRate{Category: category, HourlyRateCents: cents}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context) ([]models.ServiceRate, error) {
	var out []models.ServiceRate
	for category, cents := range f.rates {
		out = append(out, models.ServiceRate{Category: category, HourlyRateCents: cents})
	}
	return out, nil
}

func (f *fakeRepository) Upsert(ctx context.Context, rate *models.ServiceRate) error {
	if f.rates == nil {
		f.rates = map[string]int64{}
	}
	f.rates[rate.Category] = rate.HourlyRateCents
	return nil
}

func TestService_RateFor(t *testing.T) {
	repo := &fakeRepository{rates: map[string]int64{"Rental Komputer": 3000}}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	cents, err := svc.RateFor(context.Background(), "Rental Komputer")
	if err != nil {
		t.Fatalf("RateFor error: %v", err)
	}
	if cents != 3000 {
		t.Fatalf("expected 3000, got %d", cents)
	}
}

func TestService_RateForUnknownCategoryDefaultsToZero(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo, nil)

	cents, err := svc.RateFor(context.Background(), "Sewa Proyektor")
	if err != nil {
		t.Fatalf("unknown category must not error: %v", err)
	}
	if cents != 0 {
		t.Fatalf("expected zero rate, got %d", cents)
	}
}

func TestService_UpsertValidation(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo, nil)

	if _, err := svc.Upsert(context.Background(), "  ", 100); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank category, got %v", err)
	}
	if _, err := svc.Upsert(context.Background(), "Rental Komputer", -5); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative rate, got %v", err)
	}

	rate, err := svc.Upsert(context.Background(), "Rental Komputer", 3000)
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if rate.HourlyRateCents != 3000 {
		t.Fatalf("unexpected rate %d", rate.HourlyRateCents)
	}
}
