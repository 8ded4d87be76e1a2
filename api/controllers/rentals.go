package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pondokdigital/pondok-backend/api/middleware"
	"github.com/pondokdigital/pondok-backend/api/responses"
	"github.com/pondokdigital/pondok-backend/api/validators"
	"github.com/pondokdigital/pondok-backend/internal/rentals"
	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
)

type rentalSessionResponse struct {
	ID             string  `json:"id"`
	StationID      string  `json:"station_id"`
	RenterName     string  `json:"renter_name"`
	Status         string  `json:"status"`
	StartedAt      string  `json:"started_at"`
	StoppedAt      *string `json:"stopped_at,omitempty"`
	ElapsedMinutes *int64  `json:"elapsed_minutes,omitempty"`
	ChargeCents    *int64  `json:"charge_cents,omitempty"`
}

func toRentalSessionResponse(session models.RentalSession) rentalSessionResponse {
	out := rentalSessionResponse{
		ID:             session.ID.String(),
		StationID:      session.StationID,
		RenterName:     session.RenterName,
		Status:         string(session.Status),
		StartedAt:      session.StartedAt.UTC().Format(time.RFC3339),
		ElapsedMinutes: session.ElapsedMinutes,
		ChargeCents:    session.ChargeCents,
	}
	if session.StoppedAt != nil {
		stopped := session.StoppedAt.UTC().Format(time.RFC3339)
		out.StoppedAt = &stopped
	}
	return out
}

type rentalStatusResponse struct {
	StationID          string                 `json:"station_id"`
	Occupied           bool                   `json:"occupied"`
	Session            *rentalSessionResponse `json:"session,omitempty"`
	ElapsedMinutes     int64                  `json:"elapsed_minutes"`
	RunningChargeCents int64                  `json:"running_charge_cents"`
}

type rentalStartRequest struct {
	RenterName string `json:"renter_name" validate:"required,min=1"`
}

// RentalStart opens a session on an idle station.
func RentalStart(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload rentalStartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Start(r.Context(), rentals.StartInput{
			StationID:  chi.URLParam(r, "stationId"),
			RenterName: payload.RenterName,
			Actor:      middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toRentalSessionResponse(*session))
	}
}

// RentalStatus reports the live meter for one station.
func RentalStatus(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stationID := chi.URLParam(r, "stationId")
		status, err := svc.Query(r.Context(), stationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := rentalStatusResponse{StationID: stationID}
		if status != nil {
			session := toRentalSessionResponse(*status.Session)
			out.Occupied = true
			out.Session = &session
			out.ElapsedMinutes = status.ElapsedMinutes
			out.RunningChargeCents = status.RunningChargeCents
		}
		responses.WriteSuccess(w, out)
	}
}

// RentalStop freezes the meter and quotes the final charge.
func RentalStop(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Stop(r.Context(), chi.URLParam(r, "stationId"), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toRentalSessionResponse(*session))
	}
}

type rentalCommitRequest struct {
	LedgerID string `json:"ledger_id,omitempty"`
}

// RentalCommit books the frozen charge into a ledger and frees the station.
func RentalCommit(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload rentalCommitRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		entry, err := svc.Commit(r.Context(), rentals.CommitInput{
			StationID: chi.URLParam(r, "stationId"),
			LedgerID:  payload.LedgerID,
			Actor:     middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toLedgerEntryResponse(*entry))
	}
}

// RentalReopen cancels a stop and restarts the meter.
func RentalReopen(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := svc.Reopen(r.Context(), chi.URLParam(r, "stationId"), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toRentalSessionResponse(*session))
	}
}

// RentalList returns every live session.
func RentalList(svc rentals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]rentalSessionResponse, 0, len(sessions))
		for _, session := range sessions {
			out = append(out, toRentalSessionResponse(session))
		}
		responses.WriteSuccess(w, out)
	}
}
