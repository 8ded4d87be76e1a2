package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pondokdigital/pondok-backend/api/middleware"
	"github.com/pondokdigital/pondok-backend/api/responses"
	"github.com/pondokdigital/pondok-backend/api/validators"
	"github.com/pondokdigital/pondok-backend/internal/remittance"
	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
)

type remittanceResponse struct {
	ID            string  `json:"id"`
	UnitLedgerID  string  `json:"unit_ledger_id"`
	AmountCents   int64   `json:"amount_cents"`
	Actor         string  `json:"actor"`
	Status        string  `json:"status"`
	DebitEntryID  *string `json:"debit_entry_id,omitempty"`
	CreditEntryID *string `json:"credit_entry_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func toRemittanceResponse(rem models.Remittance) remittanceResponse {
	out := remittanceResponse{
		ID:           rem.ID.String(),
		UnitLedgerID: rem.UnitLedgerID,
		AmountCents:  rem.AmountCents,
		Actor:        rem.Actor,
		Status:       string(rem.Status),
		CreatedAt:    rem.CreatedAt.UTC().Format(time.RFC3339),
	}
	if rem.DebitEntryID != nil {
		id := rem.DebitEntryID.String()
		out.DebitEntryID = &id
	}
	if rem.CreditEntryID != nil {
		id := rem.CreditEntryID.String()
		out.CreditEntryID = &id
	}
	return out
}

type remitRequest struct {
	UnitLedgerID string `json:"unit_ledger_id" validate:"required,min=1"`
	AmountCents  int64  `json:"amount_cents" validate:"required,gt=0"`
}

// RemittanceCreate runs the two-leg unit-to-treasury transfer.
func RemittanceCreate(svc remittance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload remitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rem, err := svc.Remit(r.Context(), remittance.RemitInput{
			UnitLedgerID: payload.UnitLedgerID,
			AmountCents:  payload.AmountCents,
			Actor:        middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toRemittanceResponse(*rem))
	}
}

func remittanceIDFromRequest(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "remittanceId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid remittance id")
	}
	return id, nil
}

// RemittanceResume completes a transfer stuck between its two legs.
func RemittanceResume(svc remittance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := remittanceIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rem, err := svc.Resume(r.Context(), id, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toRemittanceResponse(*rem))
	}
}

// RemittanceCompensate reverses the unit debit of a stuck transfer.
func RemittanceCompensate(svc remittance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := remittanceIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rem, err := svc.Compensate(r.Context(), id, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toRemittanceResponse(*rem))
	}
}

// RemittanceDetail returns one transfer by id.
func RemittanceDetail(svc remittance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := remittanceIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rem, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toRemittanceResponse(*rem))
	}
}

// RemittancePending lists transfers waiting for their treasury credit.
func RemittancePending(svc remittance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rems, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]remittanceResponse, 0, len(rems))
		for _, rem := range rems {
			out = append(out, toRemittanceResponse(rem))
		}
		responses.WriteSuccess(w, out)
	}
}
