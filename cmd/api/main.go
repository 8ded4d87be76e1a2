package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pondokdigital/pondok-backend/api/routes"
	"github.com/pondokdigital/pondok-backend/internal/ledger"
	"github.com/pondokdigital/pondok-backend/internal/pricing"
	"github.com/pondokdigital/pondok-backend/internal/remittance"
	"github.com/pondokdigital/pondok-backend/internal/rentals"
	"github.com/pondokdigital/pondok-backend/internal/units"
	"github.com/pondokdigital/pondok-backend/pkg/config"
	"github.com/pondokdigital/pondok-backend/pkg/db"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
	"github.com/pondokdigital/pondok-backend/pkg/migrate"
	"github.com/pondokdigital/pondok-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	pricingSvc, err := pricing.NewService(pricing.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	unitSvc, err := units.NewService(units.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create unit service", err)
		os.Exit(1)
	}

	mirror := rentals.NewMirror(redisClient, cfg.Rental.MirrorTTL, logg)
	rentalSvc, err := rentals.NewService(rentals.NewRepository(dbClient.DB()), ledgerSvc, pricingSvc, mirror, cfg.Rental, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create rental service", err)
		os.Exit(1)
	}

	locker := remittance.NewLocker(redisClient, cfg.Remittance.LockTTL, logg)
	remitSvc, err := remittance.NewService(remittance.NewRepository(dbClient.DB()), ledgerSvc, unitSvc, locker, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create remittance service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Registry:    registry,
			Ledgers:     ledgerSvc,
			Rentals:     rentalSvc,
			Remittances: remitSvc,
			Pricing:     pricingSvc,
			Units:       unitSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
