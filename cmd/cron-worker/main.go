package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pondokdigital/pondok-backend/internal/cron"
	"github.com/pondokdigital/pondok-backend/internal/ledger"
	"github.com/pondokdigital/pondok-backend/internal/remittance"
	"github.com/pondokdigital/pondok-backend/internal/units"
	"github.com/pondokdigital/pondok-backend/pkg/config"
	"github.com/pondokdigital/pondok-backend/pkg/db"
	"github.com/pondokdigital/pondok-backend/pkg/instance"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
	"github.com/pondokdigital/pondok-backend/pkg/metrics"
	"github.com/pondokdigital/pondok-backend/pkg/migrate"
	"github.com/pondokdigital/pondok-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	unitSvc, err := units.NewService(units.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create unit service", err)
		os.Exit(1)
	}

	remitRepo := remittance.NewRepository(dbClient.DB())
	locker := remittance.NewLocker(redisClient, cfg.Remittance.LockTTL, logg)
	remitSvc, err := remittance.NewService(remitRepo, ledgerSvc, unitSvc, locker, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create remittance service", err)
		os.Exit(1)
	}

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	remitMetrics := metrics.NewRemittanceMetrics(prometheus.DefaultRegisterer)

	resumeJob, err := cron.NewRemittanceResumeJob(remitRepo, remitSvc, remitMetrics, logg, cfg.Remittance.ResumeAfter)
	if err != nil {
		logg.Error(context.Background(), "failed to create remittance resume job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.CronLockKey(lockName(cfg.App.Env)), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(resumeJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("worker-%s", env)
}
