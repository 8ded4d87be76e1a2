package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pondokdigital/pondok-backend/api/controllers"
	"github.com/pondokdigital/pondok-backend/api/middleware"
	"github.com/pondokdigital/pondok-backend/internal/ledger"
	"github.com/pondokdigital/pondok-backend/internal/pricing"
	"github.com/pondokdigital/pondok-backend/internal/remittance"
	"github.com/pondokdigital/pondok-backend/internal/rentals"
	"github.com/pondokdigital/pondok-backend/internal/units"
	"github.com/pondokdigital/pondok-backend/pkg/config"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
)

// Pinger is a dependency the readiness endpoint probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Params collect everything the HTTP surface needs.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       Pinger
	Redis    Pinger
	Registry *prometheus.Registry

	Ledgers     ledger.Service
	Rentals     rentals.Service
	Remittances remittance.Service
	Pricing     pricing.Service
	Units       units.Service
}

// NewRouter assembles the admin console API.
func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
	)

	probes := map[string]controllers.Probe{}
	if p.DB != nil {
		probes["postgres"] = p.DB.Ping
	}
	if p.Redis != nil {
		probes["redis"] = p.Redis.Ping
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, probes))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(p.Config.JWT, p.Logger))

		r.Route("/ledgers", func(r chi.Router) {
			r.Get("/{ledgerId}/entries", controllers.LedgerEntries(p.Ledgers, p.Logger))
			r.Post("/{ledgerId}/entries", controllers.LedgerAppend(p.Ledgers, p.Logger))
			r.Get("/{ledgerId}/balance", controllers.LedgerBalance(p.Ledgers, p.Logger))
			r.Delete("/entries/{entryId}", controllers.LedgerRemove(p.Ledgers, p.Logger))
		})

		r.Route("/rentals", func(r chi.Router) {
			r.Get("/", controllers.RentalList(p.Rentals, p.Logger))
			r.Get("/{stationId}", controllers.RentalStatus(p.Rentals, p.Logger))
			r.Post("/{stationId}/start", controllers.RentalStart(p.Rentals, p.Logger))
			r.Post("/{stationId}/stop", controllers.RentalStop(p.Rentals, p.Logger))
			r.Post("/{stationId}/commit", controllers.RentalCommit(p.Rentals, p.Logger))
			r.Post("/{stationId}/reopen", controllers.RentalReopen(p.Rentals, p.Logger))
		})

		r.Route("/remittances", func(r chi.Router) {
			r.Post("/", controllers.RemittanceCreate(p.Remittances, p.Logger))
			r.Get("/pending", controllers.RemittancePending(p.Remittances, p.Logger))
			r.Get("/{remittanceId}", controllers.RemittanceDetail(p.Remittances, p.Logger))
			r.Post("/{remittanceId}/resume", controllers.RemittanceResume(p.Remittances, p.Logger))
			r.Post("/{remittanceId}/compensate", controllers.RemittanceCompensate(p.Remittances, p.Logger))
		})

		r.Route("/rates", func(r chi.Router) {
			r.Get("/", controllers.RateList(p.Pricing, p.Logger))
			r.Put("/", controllers.RateUpsert(p.Pricing, p.Logger))
		})

		r.Route("/units", func(r chi.Router) {
			r.Get("/", controllers.UnitList(p.Units, p.Logger))
			r.Post("/", controllers.UnitCreate(p.Units, p.Logger))
		})
	})

	return r
}
