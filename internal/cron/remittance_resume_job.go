package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/pondokdigital/pondok-backend/internal/remittance"
	pkgerrors "github.com/pondokdigital/pondok-backend/pkg/errors"
	"github.com/pondokdigital/pondok-backend/pkg/logger"
	"github.com/pondokdigital/pondok-backend/pkg/metrics"
)

const remittanceResumeJobName = "remittance_resume"

const remitResumeActor = "reconciler"

// RemittanceResumeJob finishes transfers that were interrupted between their
// unit debit and treasury credit. Only markers older than the grace window
// are touched, so a remittance that is merely slow is left alone.
type RemittanceResumeJob struct {
	repo        remittance.Repository
	remittances remittance.Service
	metrics     *metrics.RemittanceMetrics
	logg        *logger.Logger
	resumeAfter time.Duration
	now         func() time.Time
}

// NewRemittanceResumeJob builds the reconciliation job.
func NewRemittanceResumeJob(repo remittance.Repository, svc remittance.Service, m *metrics.RemittanceMetrics, logg *logger.Logger, resumeAfter time.Duration) (*RemittanceResumeJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("remittance repository required")
	}
	if svc == nil {
		return nil, fmt.Errorf("remittance service required")
	}
	if resumeAfter <= 0 {
		resumeAfter = 5 * time.Minute
	}
	return &RemittanceResumeJob{
		repo:        repo,
		remittances: svc,
		metrics:     m,
		logg:        logg,
		resumeAfter: resumeAfter,
		now:         time.Now,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *RemittanceResumeJob) Name() string {
	return remittanceResumeJobName
}

// Run resumes every stale pending remittance. Failures are collected rather
// than aborting the sweep; one stuck unit must not starve the others.
func (j *RemittanceResumeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.resumeAfter)
	stale, err := j.repo.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale remittances: %w", err)
	}
	j.metrics.SetPending(len(stale))

	var errs error
	for _, rem := range stale {
		if _, err := j.remittances.Resume(ctx, rem.ID, remitResumeActor); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
				// Someone holds the unit lock right now; the next sweep
				// will pick this marker up again.
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("resume %s: %w", rem.ID, err))
			continue
		}
		j.metrics.IncResumed()
		if j.logg != nil {
			logCtx := j.logg.WithField(ctx, "remittance_id", rem.ID.String())
			j.logg.Info(logCtx, "stale remittance reconciled")
		}
	}
	return errs
}
