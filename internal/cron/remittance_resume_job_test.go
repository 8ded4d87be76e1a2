package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pondokdigital/pondok-backend/internal/remittance"
	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/enums"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
)

type stubRemitRepo struct {
	stale []models.Remittance
}

func (s *stubRemitRepo) Create(ctx context.Context, rem *models.Remittance) error { return nil }

func (s *stubRemitRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Remittance, error) {
	return nil, nil
}

func (s *stubRemitRepo) FindPendingByUnit(ctx context.Context, unitLedgerID string) (*models.Remittance, error) {
	return nil, nil
}

func (s *stubRemitRepo) ListByStatus(ctx context.Context, status enums.RemittanceStatus) ([]models.Remittance, error) {
	return s.stale, nil
}

func (s *stubRemitRepo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Remittance, error) {
	var out []models.Remittance
	for _, rem := range s.stale {
		if rem.CreatedAt.Before(cutoff) {
			out = append(out, rem)
		}
	}
	return out, nil
}

func (s *stubRemitRepo) Update(ctx context.Context, rem *models.Remittance) error { return nil }

type stubRemitService struct {
	resumed []uuid.UUID
	errBy   map[uuid.UUID]error
}

func (s *stubRemitService) Remit(ctx context.Context, input remittance.RemitInput) (*models.Remittance, error) {
	return nil, nil
}

func (s *stubRemitService) Resume(ctx context.Context, id uuid.UUID, actor string) (*models.Remittance, error) {
	if err, ok := s.errBy[id]; ok {
		return nil, err
	}
	s.resumed = append(s.resumed, id)
	return &models.Remittance{ID: id, Status: enums.RemittanceStatusCommitted}, nil
}

func (s *stubRemitService) Compensate(ctx context.Context, id uuid.UUID, actor string) (*models.Remittance, error) {
	return nil, nil
}

func (s *stubRemitService) Get(ctx context.Context, id uuid.UUID) (*models.Remittance, error) {
	return nil, nil
}

func (s *stubRemitService) ListPending(ctx context.Context) ([]models.Remittance, error) {
	return nil, nil
}

func TestRemittanceResumeJobSkipsFreshMarkers(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	staleID := uuid.New()
	freshID := uuid.New()
	repo := &stubRemitRepo{stale: []models.Remittance{
		{ID: staleID, Status: enums.RemittanceStatusPending, CreatedAt: now.Add(-time.Hour)},
		{ID: freshID, Status: enums.RemittanceStatusPending, CreatedAt: now.Add(-time.Minute)},
	}}
	svc := &stubRemitService{}

	job, err := NewRemittanceResumeJob(repo, svc, nil, nil, 5*time.Minute)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if len(svc.resumed) != 1 || svc.resumed[0] != staleID {
		t.Fatalf("expected only the stale marker resumed, got %v", svc.resumed)
	}
}

func TestRemittanceResumeJobCollectsFailuresAndContinues(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	brokenID := uuid.New()
	lockedID := uuid.New()
	okID := uuid.New()
	repo := &stubRemitRepo{stale: []models.Remittance{
		{ID: brokenID, Status: enums.RemittanceStatusPending, CreatedAt: now.Add(-time.Hour)},
		{ID: lockedID, Status: enums.RemittanceStatusPending, CreatedAt: now.Add(-time.Hour)},
		{ID: okID, Status: enums.RemittanceStatusPending, CreatedAt: now.Add(-time.Hour)},
	}}
	svc := &stubRemitService{errBy: map[uuid.UUID]error{
		brokenID: pkgerrors.New(pkgerrors.CodeDependency, "ledger store unavailable"),
		lockedID: pkgerrors.New(pkgerrors.CodeConflict, "unit is locked"),
	}}

	job, err := NewRemittanceResumeJob(repo, svc, nil, nil, 5*time.Minute)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	job.now = func() time.Time { return now }

	runErr := job.Run(context.Background())
	if runErr == nil {
		t.Fatal("expected the dependency failure to surface")
	}
	if len(svc.resumed) != 1 || svc.resumed[0] != okID {
		t.Fatalf("expected the healthy marker to be resumed, got %v", svc.resumed)
	}
}
