package controllers

import (
	"net/http"

	"github.com/pondokdigital/pondok-backend/api/responses"
	"github.com/pondokdigital/pondok-backend/api/validators"
	"github.com/pondokdigital/pondok-backend/internal/pricing"
	"github.com/pondokdigital/pondok-backend/pkg/db/models"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
)

type serviceRateResponse struct {
	Category        string `json:"category"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
}

func toServiceRateResponse(rate models.ServiceRate) serviceRateResponse {
	return serviceRateResponse{
		Category:        rate.Category,
		HourlyRateCents: rate.HourlyRateCents,
	}
}

// RateList returns the whole rate table.
func RateList(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rates, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]serviceRateResponse, 0, len(rates))
		for _, rate := range rates {
			out = append(out, toServiceRateResponse(rate))
		}
		responses.WriteSuccess(w, out)
	}
}

type rateUpsertRequest struct {
	Category        string `json:"category" validate:"required,min=1"`
	HourlyRateCents int64  `json:"hourly_rate_cents" validate:"gte=0"`
}

// RateUpsert creates or replaces the hourly rate for a category.
func RateUpsert(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload rateUpsertRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rate, err := svc.Upsert(r.Context(), payload.Category, payload.HourlyRateCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toServiceRateResponse(*rate))
	}
}
