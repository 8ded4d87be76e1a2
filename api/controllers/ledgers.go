package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pondokdigital/pondok-backend/api/middleware"
	"github.com/pondokdigital/pondok-backend/api/responses"
	"github.com/pondokdigital/pondok-backend/api/validators"
	"github.com/pondokdigital/pondok-backend/internal/ledger"
	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/enums"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
	"github.com/pondokdigital/pondok-backend/pkg/pagination"
)

const entryDateLayout = "2006-01-02"

type ledgerEntryResponse struct {
	ID          string `json:"id"`
	LedgerID    string `json:"ledger_id"`
	EntryDate   string `json:"entry_date"`
	Direction   string `json:"direction"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description,omitempty"`
	Actor       string `json:"actor"`
	CreatedAt   string `json:"created_at"`
}

func toLedgerEntryResponse(entry models.LedgerEntry) ledgerEntryResponse {
	return ledgerEntryResponse{
		ID:          entry.ID.String(),
		LedgerID:    entry.LedgerID,
		EntryDate:   entry.EntryDate.Format(entryDateLayout),
		Direction:   string(entry.Direction),
		Category:    entry.Category,
		AmountCents: entry.AmountCents,
		Description: entry.Description,
		Actor:       entry.Actor,
		CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type appendEntryRequest struct {
	Direction   string `json:"direction" validate:"required,oneof=income expense"`
	Category    string `json:"category" validate:"required,min=1"`
	AmountCents int64  `json:"amount_cents" validate:"gte=0"`
	Description string `json:"description,omitempty"`
	EntryDate   string `json:"entry_date,omitempty"`
}

// LedgerAppend records a money movement on the named ledger.
func LedgerAppend(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ledgerID := chi.URLParam(r, "ledgerId")

		var payload appendEntryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		direction, err := enums.ParseEntryDirection(payload.Direction)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction"))
			return
		}

		var entryDate time.Time
		if payload.EntryDate != "" {
			entryDate, err = time.Parse(entryDateLayout, payload.EntryDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "entry date must be YYYY-MM-DD"))
				return
			}
		}

		entry, err := svc.Append(r.Context(), ledger.AppendInput{
			LedgerID:    ledgerID,
			Direction:   direction,
			Category:    payload.Category,
			AmountCents: payload.AmountCents,
			Description: payload.Description,
			EntryDate:   entryDate,
			Actor:       middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toLedgerEntryResponse(*entry))
	}
}

type ledgerEntriesPage struct {
	Entries    []ledgerEntryResponse `json:"entries"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

// LedgerEntries lists a ledger chronologically. With limit or cursor query
// parameters it pages newest-first instead.
func LedgerEntries(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ledgerID := chi.URLParam(r, "ledgerId")
		query := r.URL.Query()

		if query.Has("limit") || query.Has("cursor") {
			var limit int
			if raw := query.Get("limit"); raw != "" {
				parsed, err := strconv.Atoi(raw)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "limit must be an integer"))
					return
				}
				limit = parsed
			}
			entries, next, err := svc.ListPage(r.Context(), ledgerID, pagination.Params{
				Limit:  limit,
				Cursor: query.Get("cursor"),
			})
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			page := ledgerEntriesPage{
				Entries:    make([]ledgerEntryResponse, 0, len(entries)),
				NextCursor: next,
			}
			for _, entry := range entries {
				page.Entries = append(page.Entries, toLedgerEntryResponse(entry))
			}
			responses.WriteSuccess(w, page)
			return
		}

		entries, err := svc.List(r.Context(), ledgerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]ledgerEntryResponse, 0, len(entries))
		for _, entry := range entries {
			out = append(out, toLedgerEntryResponse(entry))
		}
		responses.WriteSuccess(w, out)
	}
}

// LedgerBalance derives the current balance from the entry list.
func LedgerBalance(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ledgerID := chi.URLParam(r, "ledgerId")
		balance, err := svc.Balance(r.Context(), ledgerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"ledger_id":     ledgerID,
			"balance_cents": balance,
		})
	}
}

// LedgerRemove hard-deletes an entry for manual correction.
func LedgerRemove(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := uuid.Parse(chi.URLParam(r, "entryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entry id"))
			return
		}
		if err := svc.Remove(r.Context(), entryID, middleware.ActorFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
