package remittance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/internal/ledger"
	"github.com/pondokdigital/pondok-backend/internal/units"
	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/enums"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
)

// Ledger categories used by the transfer legs. The remittance id is embedded
// in each description so a half-finished transfer can be recognized later.
const (
	CategoryRemitOut     = "Setoran ke Bendahara"
	CategoryRemitIn      = "Setoran Unit"
	CategoryRemitReverse = "Pembatalan Setoran"
)

// Service moves cash from a unit ledger into the central treasury. The store
// offers no transaction spanning both ledgers, so the transfer runs as two
// single-entry appends bridged by a durable pending marker: debit the unit,
// credit the treasury, mark committed. A crash at any point leaves either
// nothing or a pending marker that Resume can finish and Compensate can
// reverse.
type Service interface {
	Remit(ctx context.Context, input RemitInput) (*models.Remittance, error)
	Resume(ctx context.Context, remittanceID uuid.UUID, actor string) (*models.Remittance, error)
	Compensate(ctx context.Context, remittanceID uuid.UUID, actor string) (*models.Remittance, error)
	Get(ctx context.Context, remittanceID uuid.UUID) (*models.Remittance, error)
	ListPending(ctx context.Context) ([]models.Remittance, error)
}

// RemitInput describes one unit-to-treasury transfer.
type RemitInput struct {
	UnitLedgerID string
	AmountCents  int64
	Actor        string
}

type service struct {
	repo    Repository
	ledgers ledger.Service
	units   units.Service
	locker  Locker
	logg    *logger.Logger
}

// NewService wires the remittance coordinator.
func NewService(repo Repository, ledgers ledger.Service, unitSvc units.Service, locker Locker, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "remittance repository required")
	}
	if ledgers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger service required")
	}
	if unitSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "unit service required")
	}
	if locker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "locker required")
	}
	return &service{repo: repo, ledgers: ledgers, units: unitSvc, locker: locker, logg: logg}, nil
}

func (s *service) Remit(ctx context.Context, input RemitInput) (*models.Remittance, error) {
	unitID := strings.TrimSpace(input.UnitLedgerID)
	if unitID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit ledger id is required")
	}
	if strings.EqualFold(unitID, ledger.CentralLedgerID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "treasury cannot remit to itself")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(input.Actor) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	exists, err := s.units.Exists(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")
	}

	release, acquired, err := s.locker.TryLock(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "another remittance is in progress for this unit")
	}
	defer release(ctx)

	// Both checks run under the lock: the balance read and the pending scan
	// stay valid until the debit lands.
	if existing, err := s.repo.FindPendingByUnit(ctx, unitID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "unit has an incomplete remittance").
			WithDetails(map[string]any{"remittanceId": existing.ID.String()})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan pending remittances")
	}

	balance, err := s.ledgers.Balance(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if input.AmountCents > balance {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "remittance exceeds unit balance").
			WithDetails(map[string]any{"balanceCents": balance, "requestedCents": input.AmountCents})
	}

	rem := &models.Remittance{
		UnitLedgerID: unitID,
		AmountCents:  input.AmountCents,
		Actor:        strings.TrimSpace(input.Actor),
		Status:       enums.RemittanceStatusPending,
	}
	if err := s.repo.Create(ctx, rem); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record remittance marker")
	}

	return s.runLegs(ctx, rem)
}

// Resume finishes a transfer whose process died between the legs. It is
// idempotent: legs already written are recognized by the remittance id in
// their descriptions and adopted rather than appended again.
func (s *service) Resume(ctx context.Context, remittanceID uuid.UUID, actor string) (*models.Remittance, error) {
	if remittanceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remittance id is required")
	}

	rem, err := s.findMarker(ctx, remittanceID)
	if err != nil {
		return nil, err
	}
	if rem.Status == enums.RemittanceStatusCommitted {
		return rem, nil
	}
	if rem.Status == enums.RemittanceStatusCompensated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "remittance was compensated")
	}

	release, acquired, err := s.locker.TryLock(ctx, rem.UnitLedgerID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "another remittance is in progress for this unit")
	}
	defer release(ctx)

	// Re-read under the lock; a concurrent resume may have finished it.
	rem, err = s.findMarker(ctx, remittanceID)
	if err != nil {
		return nil, err
	}
	if rem.Status != enums.RemittanceStatusPending {
		if rem.Status == enums.RemittanceStatusCommitted {
			return rem, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "remittance was compensated")
	}

	completed, err := s.runLegs(ctx, rem)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"remittance_id": rem.ID.String(),
			"actor":         actor,
		})
		s.logg.Info(logCtx, "pending remittance resumed")
	}
	return completed, nil
}

// Compensate reverses the unit debit of a stuck transfer instead of
// finishing it. Refused once the treasury credit exists; at that point the
// money has arrived and Resume is the only correct exit.
func (s *service) Compensate(ctx context.Context, remittanceID uuid.UUID, actor string) (*models.Remittance, error) {
	if remittanceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remittance id is required")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	rem, err := s.findMarker(ctx, remittanceID)
	if err != nil {
		return nil, err
	}
	if rem.Status != enums.RemittanceStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only a pending remittance can be compensated")
	}

	release, acquired, err := s.locker.TryLock(ctx, rem.UnitLedgerID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "another remittance is in progress for this unit")
	}
	defer release(ctx)

	rem, err = s.findMarker(ctx, remittanceID)
	if err != nil {
		return nil, err
	}
	if rem.Status != enums.RemittanceStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only a pending remittance can be compensated")
	}

	credit, err := s.adoptEntry(ctx, ledger.CentralLedgerID, enums.EntryDirectionIncome, rem.ID, rem.CreditEntryID)
	if err != nil {
		return nil, err
	}
	if credit != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "treasury credit already booked; resume instead").
			WithDetails(map[string]any{"creditEntryId": credit.ID.String()})
	}

	debit, err := s.adoptEntry(ctx, rem.UnitLedgerID, enums.EntryDirectionExpense, rem.ID, rem.DebitEntryID)
	if err != nil {
		return nil, err
	}
	if debit != nil {
		reversal, err := s.ledgers.Append(ctx, ledger.AppendInput{
			LedgerID:    rem.UnitLedgerID,
			Direction:   enums.EntryDirectionIncome,
			Category:    CategoryRemitReverse,
			AmountCents: rem.AmountCents,
			Description: fmt.Sprintf("%s [%s]", CategoryRemitReverse, rem.ID),
			Actor:       actor,
		})
		if err != nil {
			return nil, err
		}
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"remittance_id":     rem.ID.String(),
				"reversal_entry_id": reversal.ID.String(),
				"actor":             actor,
			})
			s.logg.Info(logCtx, "remittance debit reversed")
		}
		rem.DebitEntryID = &debit.ID
	}

	rem.Status = enums.RemittanceStatusCompensated
	if err := s.repo.Update(ctx, rem); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark remittance compensated")
	}
	return rem, nil
}

func (s *service) Get(ctx context.Context, remittanceID uuid.UUID) (*models.Remittance, error) {
	if remittanceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remittance id is required")
	}
	return s.findMarker(ctx, remittanceID)
}

func (s *service) ListPending(ctx context.Context) ([]models.Remittance, error) {
	rems, err := s.repo.ListByStatus(ctx, enums.RemittanceStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending remittances")
	}
	return rems, nil
}

// runLegs drives a pending marker to committed. Any failure past the unit
// debit returns REMITTANCE_INCOMPLETE: the caller must resume, never restart.
func (s *service) runLegs(ctx context.Context, rem *models.Remittance) (*models.Remittance, error) {
	debit, err := s.adoptEntry(ctx, rem.UnitLedgerID, enums.EntryDirectionExpense, rem.ID, rem.DebitEntryID)
	if err != nil {
		return nil, err
	}
	if debit == nil {
		debit, err = s.ledgers.Append(ctx, ledger.AppendInput{
			LedgerID:    rem.UnitLedgerID,
			Direction:   enums.EntryDirectionExpense,
			Category:    CategoryRemitOut,
			AmountCents: rem.AmountCents,
			Description: fmt.Sprintf("%s [%s]", CategoryRemitOut, rem.ID),
			Actor:       rem.Actor,
		})
		if err != nil {
			return nil, s.incomplete(ctx, rem, err, "unit debit failed")
		}
	}
	if rem.DebitEntryID == nil {
		rem.DebitEntryID = &debit.ID
		if err := s.repo.Update(ctx, rem); err != nil {
			return nil, s.incomplete(ctx, rem, err, "record debit leg")
		}
	}

	credit, err := s.adoptEntry(ctx, ledger.CentralLedgerID, enums.EntryDirectionIncome, rem.ID, rem.CreditEntryID)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		credit, err = s.ledgers.Append(ctx, ledger.AppendInput{
			LedgerID:    ledger.CentralLedgerID,
			Direction:   enums.EntryDirectionIncome,
			Category:    CategoryRemitIn,
			AmountCents: rem.AmountCents,
			Description: fmt.Sprintf("%s %s [%s]", CategoryRemitIn, rem.UnitLedgerID, rem.ID),
			Actor:       rem.Actor,
		})
		if err != nil {
			return nil, s.incomplete(ctx, rem, err, "treasury credit failed")
		}
	}

	rem.CreditEntryID = &credit.ID
	rem.Status = enums.RemittanceStatusCommitted
	if err := s.repo.Update(ctx, rem); err != nil {
		return nil, s.incomplete(ctx, rem, err, "mark remittance committed")
	}
	return rem, nil
}

// adoptEntry finds a leg that was already written for this remittance. The
// stored pointer wins; otherwise the ledger is scanned for an entry carrying
// the remittance id in its description.
func (s *service) adoptEntry(ctx context.Context, ledgerID string, direction enums.EntryDirection, remID uuid.UUID, pointer *uuid.UUID) (*models.LedgerEntry, error) {
	entries, err := s.ledgers.List(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entry := &entries[i]
		if pointer != nil && entry.ID == *pointer {
			return entry, nil
		}
		if entry.Direction == direction && strings.Contains(entry.Description, remID.String()) {
			return entry, nil
		}
	}
	return nil, nil
}

func (s *service) incomplete(ctx context.Context, rem *models.Remittance, cause error, message string) error {
	if s.logg != nil {
		logCtx := s.logg.WithField(ctx, "remittance_id", rem.ID.String())
		s.logg.Error(logCtx, "remittance left pending: "+message, cause)
	}
	return pkgerrors.Wrap(pkgerrors.CodeRemitIncomplete, cause, message).
		WithDetails(map[string]any{"remittanceId": rem.ID.String()})
}

func (s *service) findMarker(ctx context.Context, remittanceID uuid.UUID) (*models.Remittance, error) {
	rem, err := s.repo.FindByID(ctx, remittanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "remittance not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up remittance")
	}
	return rem, nil
}
