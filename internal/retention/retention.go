package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// InviteDeleter removes pending invites that expired at or before a moment.
type InviteDeleter interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type Recorder interface {
	InvitesPurged(n int64)
}

type AuditLogger interface {
	LogInvitesPurged(ctx context.Context, count int64) error
}

// Job purges expired invites. It is run by the cron scheduler and is safe to
// run repeatedly.
type Job struct {
	invites InviteDeleter
	metrics Recorder
	auditor AuditLogger
	now     func() time.Time
}

// NewJob creates a purge job. metrics and auditor may be nil.
func NewJob(invites InviteDeleter, metrics Recorder, auditor AuditLogger) *Job {
	return &Job{
		invites: invites,
		metrics: metrics,
		auditor: auditor,
		now:     time.Now,
	}
}

// Run deletes the expired invites and returns how many were removed.
func (j *Job) Run(ctx context.Context) (int64, error) {
	log.Info().Msg("Starting expired invite purge")
	startTime := time.Now()

	deleted, err := j.invites.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge expired invites")
		return 0, fmt.Errorf("expired invite purge failed: %w", err)
	}

	if j.metrics != nil {
		j.metrics.InvitesPurged(deleted)
	}
	if deleted > 0 && j.auditor != nil {
		if err := j.auditor.LogInvitesPurged(ctx, deleted); err != nil {
			log.Error().Err(err).Msg("Failed to log audit event")
		}
	}

	log.Info().
		Int64("invites_deleted", deleted).
		Dur("duration", time.Since(startTime)).
		Msg("Expired invite purge completed")

	return deleted, nil
}
