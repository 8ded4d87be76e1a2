package rentals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/internal/ledger"
	"github.com/pondokdigital/pondok-backend/internal/pricing"
	"github.com/pondokdigital/pondok-backend/pkg/config"
	dbpkg "github.com/pondokdigital/pondok-backend/pkg/db"
	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/enums"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
)

// Service runs the billable workstation lifecycle. A session moves
// active -> settling -> committed; committing writes the charge to a ledger
// and deletes the session row, so a station with no row is simply idle.
type Service interface {
	Start(ctx context.Context, input StartInput) (*models.RentalSession, error)
	Query(ctx context.Context, stationID string) (*Status, error)
	Stop(ctx context.Context, stationID, actor string) (*models.RentalSession, error)
	Commit(ctx context.Context, input CommitInput) (*models.LedgerEntry, error)
	Reopen(ctx context.Context, stationID, actor string) (*models.RentalSession, error)
	List(ctx context.Context) ([]models.RentalSession, error)
}

// StartInput opens a session on a station.
type StartInput struct {
	StationID  string
	RenterName string
	Actor      string
}

// CommitInput settles a stopped session into a ledger. LedgerID falls back
// to the configured default when empty.
type CommitInput struct {
	StationID string
	LedgerID  string
	Actor     string
}

// Status projects the live state of a station for polling clients.
type Status struct {
	Session            *models.RentalSession
	ElapsedMinutes     int64
	RunningChargeCents int64
}

type service struct {
	repo    Repository
	ledgers ledger.Service
	rates   pricing.Service
	mirror  Mirror
	cfg     config.RentalConfig
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the rental engine. The mirror may be nil when no Redis
// deployment exists; every operation then works off the database alone.
func NewService(repo Repository, ledgers ledger.Service, rates pricing.Service, mirror Mirror, cfg config.RentalConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "rental repository required")
	}
	if ledgers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger service required")
	}
	if rates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pricing service required")
	}
	return &service{
		repo:    repo,
		ledgers: ledgers,
		rates:   rates,
		mirror:  mirror,
		cfg:     cfg,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func (s *service) Start(ctx context.Context, input StartInput) (*models.RentalSession, error) {
	stationID := strings.TrimSpace(input.StationID)
	renter := strings.TrimSpace(input.RenterName)
	if stationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station id is required")
	}
	if renter == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "renter name is required")
	}
	if strings.TrimSpace(input.Actor) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	if existing, err := s.repo.FindByStation(ctx, stationID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "station is busy").
			WithDetails(map[string]any{"stationId": stationID, "status": existing.Status})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up station")
	}

	session := &models.RentalSession{
		StationID:  stationID,
		RenterName: renter,
		Status:     enums.RentalStatusActive,
		StartedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		// Two clerks racing past the existence check; the unique index on
		// station_id decides the winner.
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "station is busy").
				WithDetails(map[string]any{"stationId": stationID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start session")
	}

	if s.mirror != nil {
		s.mirror.Put(ctx, session)
	}
	return session, nil
}

// Query returns nil when the station is idle. For a live session the running
// charge is recomputed from the current clock and rate on every call.
func (s *service) Query(ctx context.Context, stationID string) (*Status, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station id is required")
	}

	session, err := s.repo.FindByStation(ctx, stationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up station")
	}

	status := &Status{Session: session}
	if session.Status == enums.RentalStatusSettling {
		if session.ElapsedMinutes != nil {
			status.ElapsedMinutes = *session.ElapsedMinutes
		}
		if session.ChargeCents != nil {
			status.RunningChargeCents = *session.ChargeCents
		}
		return status, nil
	}

	status.ElapsedMinutes = elapsedMinutesBetween(session.StartedAt, s.now().UTC())
	rate, err := s.rates.RateFor(ctx, s.cfg.RateCategory)
	if err != nil {
		return nil, err
	}
	status.RunningChargeCents = computeCharge(status.ElapsedMinutes, rate, s.cfg.MinChargeCents)
	return status, nil
}

// Stop freezes the session: elapsed minutes and the charge are computed once
// here and persisted, so the eventual commit bills exactly what the clerk saw.
func (s *service) Stop(ctx context.Context, stationID, actor string) (*models.RentalSession, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station id is required")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	session, err := s.repo.FindByStation(ctx, stationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no active session on station")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up station")
	}
	if session.Status == enums.RentalStatusSettling {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session is already settling")
	}

	stoppedAt := s.now().UTC()
	elapsed := elapsedMinutesBetween(session.StartedAt, stoppedAt)
	rate, err := s.rates.RateFor(ctx, s.cfg.RateCategory)
	if err != nil {
		return nil, err
	}
	charge := computeCharge(elapsed, rate, s.cfg.MinChargeCents)

	session.Status = enums.RentalStatusSettling
	session.StoppedAt = &stoppedAt
	session.ElapsedMinutes = &elapsed
	session.ChargeCents = &charge
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stop session")
	}

	if s.mirror != nil {
		s.mirror.Put(ctx, session)
	}
	return session, nil
}

// Commit books the frozen charge into the ledger and only then deletes the
// session row. If the append fails the session stays settling so the clerk
// can retry without losing the quoted amount.
func (s *service) Commit(ctx context.Context, input CommitInput) (*models.LedgerEntry, error) {
	stationID := strings.TrimSpace(input.StationID)
	if stationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station id is required")
	}
	if strings.TrimSpace(input.Actor) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	session, err := s.repo.FindByStation(ctx, stationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no session to settle on station")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up station")
	}
	if session.Status != enums.RentalStatusSettling || session.ChargeCents == nil || session.ElapsedMinutes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session must be stopped before settling")
	}

	ledgerID := strings.TrimSpace(input.LedgerID)
	if ledgerID == "" {
		ledgerID = s.cfg.DefaultLedgerID
	}

	entry, err := s.ledgers.Append(ctx, ledger.AppendInput{
		LedgerID:    ledgerID,
		Direction:   enums.EntryDirectionIncome,
		Category:    s.cfg.RateCategory,
		AmountCents: *session.ChargeCents,
		Description: fmt.Sprintf("Rental %s oleh %s (%d menit)", session.StationID, session.RenterName, *session.ElapsedMinutes),
		Actor:       input.Actor,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Delete(ctx, session.ID); err != nil {
		// The charge is already booked. Surface the entry so an operator can
		// reconcile instead of a retry double-billing the renter.
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear settled session").
			WithDetails(map[string]any{"entryId": entry.ID.String(), "stationId": stationID})
	}
	if s.mirror != nil {
		s.mirror.Drop(ctx, stationID)
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"station_id":   stationID,
			"ledger_id":    ledgerID,
			"charge_cents": *session.ChargeCents,
			"actor":        input.Actor,
		})
		s.logg.Info(logCtx, "rental charge committed")
	}
	return entry, nil
}

// Reopen cancels a stop before settlement, returning the session to the
// running state with a fresh meter off the original start time.
func (s *service) Reopen(ctx context.Context, stationID, actor string) (*models.RentalSession, error) {
	stationID = strings.TrimSpace(stationID)
	if stationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station id is required")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	session, err := s.repo.FindByStation(ctx, stationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no session on station")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up station")
	}
	if session.Status != enums.RentalStatusSettling {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session is not settling")
	}

	session.Status = enums.RentalStatusActive
	session.StoppedAt = nil
	session.ElapsedMinutes = nil
	session.ChargeCents = nil
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reopen session")
	}

	if s.mirror != nil {
		s.mirror.Put(ctx, session)
	}
	return session, nil
}

func (s *service) List(ctx context.Context) ([]models.RentalSession, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sessions")
	}
	return sessions, nil
}
