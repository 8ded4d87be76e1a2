package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/enums"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
	"github.com/pondokdigital/pondok-backend/pkg/pagination"
)

// CentralLedgerID is the reserved identifier of the consolidated treasury
// ledger that receives remittances from every unit.
const CentralLedgerID = "central"

// Service records and reads money movements. Balances are always derived
// from the entry list; nothing in the system stores an aggregate.
type Service interface {
	Append(ctx context.Context, input AppendInput) (*models.LedgerEntry, error)
	List(ctx context.Context, ledgerID string) ([]models.LedgerEntry, error)
	ListPage(ctx context.Context, ledgerID string, params pagination.Params) ([]models.LedgerEntry, string, error)
	Balance(ctx context.Context, ledgerID string) (int64, error)
	Remove(ctx context.Context, entryID uuid.UUID, actor string) error
}

// AppendInput captures the immutable data a ledger entry requires.
type AppendInput struct {
	LedgerID    string
	Direction   enums.EntryDirection
	Category    string
	AmountCents int64
	Description string
	EntryDate   time.Time
	Actor       string
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Append(ctx context.Context, input AppendInput) (*models.LedgerEntry, error) {
	if strings.TrimSpace(input.LedgerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ledger id is required")
	}
	if !input.Direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "direction must be income or expense")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if input.AmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	if strings.TrimSpace(input.Actor) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	entryDate := input.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now().UTC()
	}
	entryDate = entryDate.UTC().Truncate(24 * time.Hour)

	entry := &models.LedgerEntry{
		LedgerID:    strings.TrimSpace(input.LedgerID),
		EntryDate:   entryDate,
		Direction:   input.Direction,
		Category:    strings.TrimSpace(input.Category),
		AmountCents: input.AmountCents,
		Description: strings.TrimSpace(input.Description),
		Actor:       strings.TrimSpace(input.Actor),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	return entry, nil
}

func (s *service) List(ctx context.Context, ledgerID string) ([]models.LedgerEntry, error) {
	if strings.TrimSpace(ledgerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ledger id is required")
	}
	entries, err := s.repo.ListByLedger(ctx, ledgerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return entries, nil
}

// ListPage walks a ledger newest-first using an opaque cursor. The second
// return value is the cursor for the next page, empty when exhausted.
func (s *service) ListPage(ctx context.Context, ledgerID string, params pagination.Params) ([]models.LedgerEntry, string, error) {
	if strings.TrimSpace(ledgerID) == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "ledger id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	entries, err := s.repo.ListPageByLedger(ctx, ledgerID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, next, nil
}

// Balance recomputes from the entry list on every call. Keeping no stored
// aggregate means the income-minus-expense invariant cannot go stale.
func (s *service) Balance(ctx context.Context, ledgerID string) (int64, error) {
	entries, err := s.List(ctx, ledgerID)
	if err != nil {
		return 0, err
	}
	var balance int64
	for _, entry := range entries {
		switch entry.Direction {
		case enums.EntryDirectionIncome:
			balance += entry.AmountCents
		case enums.EntryDirectionExpense:
			balance -= entry.AmountCents
		}
	}
	return balance, nil
}

// Remove hard-deletes an entry. Used only for manual corrections; because
// balances are derived there is no aggregate to invalidate.
func (s *service) Remove(ctx context.Context, entryID uuid.UUID, actor string) error {
	if entryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "entry id is required")
	}
	if strings.TrimSpace(actor) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	affected, err := s.repo.Delete(ctx, entryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete ledger entry")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "ledger entry not found")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"entry_id": entryID.String(),
			"actor":    actor,
		})
		s.logg.Info(logCtx, "ledger entry removed for correction")
	}
	return nil
}
