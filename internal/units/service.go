package units

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/internal/ledger"
	dbpkg "github.com/pondokdigital/pondok-backend/pkg/db"
	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
)

// Service manages the operational units that own cash ledgers.
type Service interface {
	Create(ctx context.Context, name, description string) (*models.Unit, error)
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]models.Unit, error)
}

type service struct {
	repo Repository
}

// NewService wires a unit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "unit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, name, description string) (*models.Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit name is required")
	}
	if strings.EqualFold(name, ledger.CentralLedgerID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit name is reserved for the central treasury")
	}

	unit := &models.Unit{
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.repo.Create(ctx, unit); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "unit already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create unit")
	}
	return unit, nil
}

func (s *service) Exists(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "unit name is required")
	}
	if _, err := s.repo.FindByName(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up unit")
	}
	return true, nil
}

func (s *service) List(ctx context.Context) ([]models.Unit, error) {
	units, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list units")
	}
	return units, nil
}
