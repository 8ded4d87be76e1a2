package controllers

import (
	"net/http"

	"github.com/pondokdigital/pondok-backend/api/responses"
	"github.com/pondokdigital/pondok-backend/api/validators"
	"github.com/pondokdigital/pondok-backend/internal/units"
	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
)

type unitResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func toUnitResponse(unit models.Unit) unitResponse {
	return unitResponse{
		ID:          unit.ID.String(),
		Name:        unit.Name,
		Description: unit.Description,
	}
}

// UnitList returns every registered unit.
func UnitList(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]unitResponse, 0, len(list))
		for _, unit := range list {
			out = append(out, toUnitResponse(unit))
		}
		responses.WriteSuccess(w, out)
	}
}

type unitCreateRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description,omitempty"`
}

// UnitCreate registers a new operational unit and its ledger.
func UnitCreate(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload unitCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unit, err := svc.Create(r.Context(), payload.Name, payload.Description)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toUnitResponse(*unit))
	}
}
