// Package poller follows a reconciliation job on the remote API until it
// finishes, keeping the checkpoint in step with each status report.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/forestar-be/forestar-facturation/internal/api"
	"github.com/forestar-be/forestar-facturation/internal/checkpoint"
	"github.com/forestar-be/forestar-facturation/internal/logger"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// DefaultInterval is the delay between two status requests.
const DefaultInterval = 5 * time.Second

var (
	// ErrNotFound is returned when the API no longer knows the job.
	ErrNotFound = errors.New("reconciliation not found")

	// ErrJobFailed is returned when the job ends in the ERROR status.
	ErrJobFailed = errors.New("reconciliation failed")
)

// Source is the part of the API client the poller needs.
type Source interface {
	GetStatus(ctx context.Context, reconciliationID string) (*models.StatusReport, error)
	FetchReconciliation(ctx context.Context, reconciliationID string) (*models.ReconciliationDetails, error)
}

// Poller polls one job at a time.
type Poller struct {
	source   Source
	tracker  *checkpoint.Tracker
	interval time.Duration
	log      zerolog.Logger

	// OnUpdate, when set, receives every status report.
	OnUpdate func(models.StatusReport)
}

// New returns a poller. tracker may be nil when no checkpoint is kept.
func New(source Source, tracker *checkpoint.Tracker, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		tracker:  tracker,
		interval: interval,
		log:      logger.WithComponent("poller"),
	}
}

// Wait polls reconciliationID until it completes and returns its result.
// Any failure, including an ERROR status, ends polling and clears the
// checkpoint. A cancelled context stops polling but keeps the checkpoint so
// the job can be resumed.
func (p *Poller) Wait(ctx context.Context, reconciliationID string) (*models.ReconciliationDetails, error) {
	const op = "Wait"

	log := p.log.With().Str("reconciliation_id", reconciliationID).Logger()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report, err := p.source.GetStatus(ctx, reconciliationID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, api.ErrNotFound) {
				err = ErrNotFound
			}
			p.clear(log)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if report.ID == "" {
			report.ID = reconciliationID
		}

		log.Debug().
			Str("status", string(report.Status)).
			Int("progress", report.Progress).
			Msg("Status received")
		if p.OnUpdate != nil {
			p.OnUpdate(*report)
		}

		switch report.Status {
		case models.StatusCompleted:
			details, err := p.source.FetchReconciliation(ctx, reconciliationID)
			p.clear(log)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			log.Info().Msg("Reconciliation completed")
			return details, nil

		case models.StatusError:
			p.clear(log)
			return nil, fmt.Errorf("%s: %w: %s", op, ErrJobFailed, report.StatusMessage())

		case models.StatusPending, models.StatusProcessing:
			if p.tracker != nil {
				if _, err := p.tracker.Update(ctx, *report); err != nil {
					log.Warn().Err(err).Msg("Failed to update checkpoint")
				}
			}

		default:
			p.clear(log)
			return nil, fmt.Errorf("%s: unknown status %q", op, report.Status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Resume continues the job recorded in the checkpoint, if one is active.
// It returns nil, nil when there is nothing to resume.
func (p *Poller) Resume(ctx context.Context) (*models.ReconciliationDetails, error) {
	if p.tracker == nil {
		return nil, nil
	}
	state, err := p.tracker.Active(ctx)
	if err != nil || state == nil {
		return nil, err
	}
	p.log.Info().
		Str("reconciliation_id", state.ReconciliationID).
		Int("progress", state.Progress).
		Msg("Resuming reconciliation")
	return p.Wait(ctx, state.ReconciliationID)
}

func (p *Poller) clear(log zerolog.Logger) {
	if p.tracker == nil {
		return
	}
	if err := p.tracker.Clear(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to clear checkpoint")
	}
}
