package controllers

import (
	"context"
	"net/http"

	"github.com/pondokdigital/pondok-backend/api/responses"
	"github.com/pondokdigital/pondok-backend/pkg/config"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
)

// Probe checks one dependency for the readiness endpoint.
type Probe func(ctx context.Context) error

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pondok-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, probes map[string]Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pondok-Env", cfg.App.Env)

		failures := map[string]string{}
		for name, probe := range probes {
			if probe == nil {
				continue
			}
			if err := probe(r.Context()); err != nil {
				failures[name] = err.Error()
			}
		}
		if len(failures) > 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency not ready").
					WithDetails(failures))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
