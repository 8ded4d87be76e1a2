package pricing

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
)

// Service exposes the read-only rate table to the billing side and the
// admin upsert to the console.
type Service interface {
	RateFor(ctx context.Context, category string) (int64, error)
	List(ctx context.Context) ([]models.ServiceRate, error)
	Upsert(ctx context.Context, category string, hourlyRateCents int64) (*models.ServiceRate, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires a pricing service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pricing repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// RateFor resolves the hourly rate for a category. An unknown category
// resolves to zero, matching how the console has always treated gaps in the
// rate table; the warning makes the gap visible to operators.
func (s *service) RateFor(ctx context.Context, category string) (int64, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}

	rate, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logg != nil {
				logCtx := s.logg.WithField(ctx, "category", category)
				s.logg.Warn(logCtx, "no rate configured for category; defaulting to zero")
			}
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up rate")
	}
	return rate.HourlyRateCents, nil
}

func (s *service) List(ctx context.Context) ([]models.ServiceRate, error) {
	rates, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rates")
	}
	return rates, nil
}

func (s *service) Upsert(ctx context.Context, category string, hourlyRateCents int64) (*models.ServiceRate, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if hourlyRateCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hourly rate must not be negative")
	}

	rate := &models.ServiceRate{
		Category:        category,
		HourlyRateCents: hourlyRateCents,
	}
	if err := s.repo.Upsert(ctx, rate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert rate")
	}
	return rate, nil
}
