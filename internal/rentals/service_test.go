package rentals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pondokdigital/pondok-backend/internal/ledger"
	"github.com/pondokdigital/pondok-backend/pkg/config"
	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/enums"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
	"github.com/pondokdigital/pondok-backend/pkg/pagination"
)

type fakeRepository struct {
	byStation map[string]*models.RentalSession
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byStation: map[string]*models.RentalSession{}}
}

func (f *fakeRepository) Create(ctx context.Context, session *models.RentalSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	copied := *session
	f.byStation[session.StationID] = &copied
	return nil
}

func (f *fakeRepository) FindByStation(ctx context.Context, stationID string) (*models.RentalSession, error) {
	if session, ok := f.byStation[stationID]; ok {
		copied := *session
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) Update(ctx context.Context, session *models.RentalSession) error {
	copied := *session
	f.byStation[session.StationID] = &copied
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	for station, session := range f.byStation {
		if session.ID == sessionID {
			delete(f.byStation, station)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeRepository) List(ctx context.Context) ([]models.RentalSession, error) {
	var out []models.RentalSession
	for _, session := range f.byStation {
		out = append(out, *session)
	}
	return out, nil
}

type fakeLedger struct {
	entries  []models.LedgerEntry
	failNext bool
}

func (f *fakeLedger) Append(ctx context.Context, input ledger.AppendInput) (*models.LedgerEntry, error) {
	if f.failNext {
		f.failNext = false
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ledger store unavailable")
	}
	entry := models.LedgerEntry{
		ID:          uuid.New(),
		LedgerID:    input.LedgerID,
		Direction:   input.Direction,
		Category:    input.Category,
		AmountCents: input.AmountCents,
		Description: input.Description,
		Actor:       input.Actor,
	}
	f.entries = append(f.entries, entry)
	return &entry, nil
}

func (f *fakeLedger) List(ctx context.Context, ledgerID string) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, entry := range f.entries {
		if entry.LedgerID == ledgerID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeLedger) ListPage(ctx context.Context, ledgerID string, params pagination.Params) ([]models.LedgerEntry, string, error) {
	entries, err := f.List(ctx, ledgerID)
	return entries, "", err
}

func (f *fakeLedger) Balance(ctx context.Context, ledgerID string) (int64, error) {
	entries, _ := f.List(ctx, ledgerID)
	var balance int64
	for _, entry := range entries {
		if entry.Direction == enums.EntryDirectionIncome {
			balance += entry.AmountCents
		} else {
			balance -= entry.AmountCents
		}
	}
	return balance, nil
}

func (f *fakeLedger) Remove(ctx context.Context, entryID uuid.UUID, actor string) error {
	return nil
}

type fakePricing struct {
	rate int64
}

func (f *fakePricing) RateFor(ctx context.Context, category string) (int64, error) {
	return f.rate, nil
}

func (f *fakePricing) List(ctx context.Context) ([]models.ServiceRate, error) {
	return nil, nil
}

func (f *fakePricing) Upsert(ctx context.Context, category string, hourlyRateCents int64) (*models.ServiceRate, error) {
	return &models.ServiceRate{Category: category, HourlyRateCents: hourlyRateCents}, nil
}

type fakeMirror struct {
	puts  int
	drops int
}

func (f *fakeMirror) Put(ctx context.Context, session *models.RentalSession) { f.puts++ }
func (f *fakeMirror) Drop(ctx context.Context, stationID string)            { f.drops++ }

type harness struct {
	svc    *service
	repo   *fakeRepository
	ledger *fakeLedger
	mirror *fakeMirror
	clock  time.Time
}

func newHarness(t *testing.T, rate int64) *harness {
	t.Helper()
	repo := newFakeRepository()
	ledgers := &fakeLedger{}
	mirror := &fakeMirror{}
	cfg := config.RentalConfig{
		RateCategory:    "Rental Komputer",
		MinChargeCents:  1000,
		DefaultLedgerID: "Lab Komputer",
	}
	svc, err := NewService(repo, ledgers, &fakePricing{rate: rate}, mirror, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	h := &harness{
		svc:    svc.(*service),
		repo:   repo,
		ledger: ledgers,
		mirror: mirror,
		clock:  time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
	}
	h.svc.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) advance(d time.Duration) { h.clock = h.clock.Add(d) }

func TestService_StartAndQuery(t *testing.T) {
	h := newHarness(t, 3000)
	ctx := context.Background()

	session, err := h.svc.Start(ctx, StartInput{StationID: "PC-01", RenterName: "Ahmad", Actor: "admin"})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if session.Status != enums.RentalStatusActive {
		t.Fatalf("expected active session, got %s", session.Status)
	}
	if h.mirror.puts != 1 {
		t.Fatalf("expected 1 mirror put, got %d", h.mirror.puts)
	}

	h.advance(45 * time.Minute)
	status, err := h.svc.Query(ctx, "PC-01")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if status == nil {
		t.Fatal("expected a live status")
	}
	if status.ElapsedMinutes != 45 {
		t.Fatalf("expected 45 elapsed minutes, got %d", status.ElapsedMinutes)
	}
	if status.RunningChargeCents != 2250 {
		t.Fatalf("expected running charge 2250, got %d", status.RunningChargeCents)
	}
}

func TestService_QueryIdleStation(t *testing.T) {
	h := newHarness(t, 3000)

	status, err := h.svc.Query(context.Background(), "PC-09")
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if status != nil {
		t.Fatalf("expected nil status for idle station, got %+v", status)
	}
}

func TestService_StartBusyStation(t *testing.T) {
	h := newHarness(t, 3000)
	ctx := context.Background()

	if _, err := h.svc.Start(ctx, StartInput{StationID: "PC-01", RenterName: "Ahmad", Actor: "admin"}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	_, err := h.svc.Start(ctx, StartInput{StationID: "PC-01", RenterName: "Budi", Actor: "admin"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for busy station, got %v", err)
	}
}

func TestService_StopIdleStation(t *testing.T) {
	h := newHarness(t, 3000)

	_, err := h.svc.Stop(context.Background(), "PC-01", "admin")
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict for idle station, got %v", err)
	}
}

func TestService_StopThenCommit(t *testing.T) {
	h := newHarness(t, 3000)
	ctx := context.Background()

	if _, err := h.svc.Start(ctx, StartInput{StationID: "PC-01", RenterName: "Ahmad", Actor: "admin"}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	h.advance(45 * time.Minute)

	session, err := h.svc.Stop(ctx, "PC-01", "admin")
	if err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if session.Status != enums.RentalStatusSettling {
		t.Fatalf("expected settling session, got %s", session.Status)
	}
	if session.ChargeCents == nil || *session.ChargeCents != 2250 {
		t.Fatalf("expected frozen charge 2250, got %v", session.ChargeCents)
	}

	entry, err := h.svc.Commit(ctx, CommitInput{StationID: "PC-01", Actor: "admin"})
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if entry.AmountCents != 2250 {
		t.Fatalf("expected committed amount 2250, got %d", entry.AmountCents)
	}
	if entry.LedgerID != "Lab Komputer" {
		t.Fatalf("expected default ledger, got %q", entry.LedgerID)
	}
	if entry.Direction != enums.EntryDirectionIncome {
		t.Fatalf("expected income entry, got %s", entry.Direction)
	}

	if _, ok := h.repo.byStation["PC-01"]; ok {
		t.Fatal("expected session row to be deleted after commit")
	}
	if h.mirror.drops != 1 {
		t.Fatalf("expected 1 mirror drop, got %d", h.mirror.drops)
	}
}

func TestService_ShortSessionClampedToMinimum(t *testing.T) {
	h := newHarness(t, 3000)
	ctx := context.Background()

	if _, err := h.svc.Start(ctx, StartInput{StationID: "PC-02", RenterName: "Budi", Actor: "admin"}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	h.advance(5 * time.Minute)

	session, err := h.svc.Stop(ctx, "PC-02", "admin")
	if err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if session.ChargeCents == nil || *session.ChargeCents != 1000 {
		t.Fatalf("expected minimum charge 1000, got %v", session.ChargeCents)
	}
}

func TestService_ZeroElapsedCommitsZeroEntry(t *testing.T) {
	h := newHarness(t, 3000)
	ctx := context.Background()

	if _, err := h.svc.Start(ctx, StartInput{StationID: "PC-03", RenterName: "Citra", Actor: "admin"}); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	session, err := h.svc.Stop(ctx, "PC-03", "admin")
	if err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if session.ChargeCents == nil || *session.ChargeCents != 0 {
		t.Fatalf("expected zero charge, got %v", session.ChargeCents)
	}

	entry, err := h.svc.Commit(ctx, CommitInput{StationID: "PC-03", Actor: "admin"})
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if entry.AmountCents != 0 {
		t.Fatalf("zero-minute session must still book a zero entry, got %d", entry.AmountCents)
	}
}

func TestService_DoubleStopCommitsOnce(t *testing.T) {
	h := newHarness(t, 3000)
	ctx := context.Background()

	if _, err := h.svc.Start(ctx, StartInput{StationID: "PC-04", RenterName: "Dedi", Actor: "admin"}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	h.advance(30 * time.Minute)

	if _, err := h.svc.Stop(ctx, "PC-04", "admin"); err != nil {
		t.Fatalf("first Stop error: %v", err)
	}
	if _, err := h.svc.Stop(ctx, "PC-04", "admin"); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict on double stop, got %v", err)
	}

	if _, err := h.svc.Commit(ctx, CommitInput{StationID: "PC-04", Actor: "admin"}); err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if len(h.ledger.entries) != 1 {
		t.Fatalf("expected exactly one committed entry, got %d", len(h.ledger.entries))
	}
}

func TestService_CommitRetryAfterLedgerFailure(t *testing.T) {
	h := newHarness(t, 3000)
	ctx := context.Background()

	if _, err := h.svc.Start(ctx, StartInput{StationID: "PC-05", RenterName: "Eka", Actor: "admin"}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	h.advance(time.Hour)
	if _, err := h.svc.Stop(ctx, "PC-05", "admin"); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	h.ledger.failNext = true
	if _, err := h.svc.Commit(ctx, CommitInput{StationID: "PC-05", Actor: "admin"}); !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}

	session, ok := h.repo.byStation["PC-05"]
	if !ok || session.Status != enums.RentalStatusSettling {
		t.Fatal("failed commit must leave the session settling for retry")
	}

	entry, err := h.svc.Commit(ctx, CommitInput{StationID: "PC-05", Actor: "admin"})
	if err != nil {
		t.Fatalf("retried Commit error: %v", err)
	}
	if entry.AmountCents != 3000 {
		t.Fatalf("expected 3000 on retry, got %d", entry.AmountCents)
	}
	if len(h.ledger.entries) != 1 {
		t.Fatalf("expected one entry after retry, got %d", len(h.ledger.entries))
	}
}

func TestService_ReopenSettlingSession(t *testing.T) {
	h := newHarness(t, 3000)
	ctx := context.Background()

	if _, err := h.svc.Start(ctx, StartInput{StationID: "PC-06", RenterName: "Fikri", Actor: "admin"}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	h.advance(20 * time.Minute)
	if _, err := h.svc.Stop(ctx, "PC-06", "admin"); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	session, err := h.svc.Reopen(ctx, "PC-06", "admin")
	if err != nil {
		t.Fatalf("Reopen error: %v", err)
	}
	if session.Status != enums.RentalStatusActive {
		t.Fatalf("expected active session, got %s", session.Status)
	}
	if session.StoppedAt != nil || session.ElapsedMinutes != nil || session.ChargeCents != nil {
		t.Fatal("reopen must clear the frozen settlement fields")
	}

	if _, err := h.svc.Reopen(ctx, "PC-06", "admin"); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict reopening a running session, got %v", err)
	}
}
