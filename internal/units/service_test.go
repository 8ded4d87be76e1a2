package units

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
)

type fakeRepository struct {
	units map[string]models.Unit
}

func (f *fakeRepository) Create(ctx context.Context, unit *models.Unit) error {
	if f.units == nil {
		f.units = map[string]models.Unit{}
	}
	f.units[unit.Name] = *unit
	return nil
}

func (f *fakeRepository) FindByName(ctx context.Context, name string) (*models.Unit, error) {
	if unit, ok := f.units[name]; ok {
		return &unit, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context) ([]models.Unit, error) {
	var out []models.Unit
	for _, unit := range f.units {
		out = append(out, unit)
	}
	return out, nil
}

func TestService_CreateRejectsCentralName(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	for _, name := range []string{"central", "Central", "CENTRAL"} {
		if _, err := svc.Create(context.Background(), name, ""); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %q, got %v", name, err)
		}
	}
}

func TestService_CreateAndExists(t *testing.T) {
	svc, _ := NewService(&fakeRepository{})
	ctx := context.Background()

	unit, err := svc.Create(ctx, "Lab Komputer", "Unit rental komputer santri")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if unit.Name != "Lab Komputer" {
		t.Fatalf("unexpected unit name %q", unit.Name)
	}

	exists, err := svc.Exists(ctx, "Lab Komputer")
	if err != nil {
		t.Fatalf("Exists error: %v", err)
	}
	if !exists {
		t.Fatal("expected unit to exist")
	}

	exists, err = svc.Exists(ctx, "Dapur")
	if err != nil {
		t.Fatalf("Exists error: %v", err)
	}
	if exists {
		t.Fatal("expected unknown unit to be absent")
	}
}
