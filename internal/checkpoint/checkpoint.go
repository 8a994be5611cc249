// Package checkpoint remembers the reconciliation job currently being
// followed, so a restarted CLI or server can resume polling it.
package checkpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/forestar-be/forestar-facturation/internal/logger"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// MaxAge is how long a checkpoint stays valid after its job started.
const MaxAge = 24 * time.Hour

// State is the persisted view of the followed job.
type State struct {
	ReconciliationID string                      `json:"reconciliationId"`
	Status           models.ReconciliationStatus `json:"status"`
	Progress         int                         `json:"progress"`
	Message          string                      `json:"message,omitempty"`
	StartTime        time.Time                   `json:"startTime"`
	EndTime          *time.Time                  `json:"endTime,omitempty"`
}

// Store persists a single State.
type Store interface {
	// Load returns the saved state, or nil when there is none.
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state State) error
	Clear(ctx context.Context) error
}

// Tracker applies the checkpoint lifecycle on top of a Store: saved when a
// job starts, updated on each poll, cleared on completion or error.
type Tracker struct {
	store  Store
	maxAge time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

// NewTracker returns a tracker over store with the default MaxAge.
func NewTracker(store Store) *Tracker {
	return &Tracker{
		store:  store,
		maxAge: MaxAge,
		now:    time.Now,
		log:    logger.WithComponent("checkpoint"),
	}
}

// Start records a newly submitted job, replacing any previous one.
func (t *Tracker) Start(ctx context.Context, reconciliationID string) (*State, error) {
	const op = "Start"

	state := State{
		ReconciliationID: reconciliationID,
		Status:           models.StatusPending,
		Message:          "En attente de traitement...",
		StartTime:        t.now(),
	}
	if err := t.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	t.log.Debug().Str("reconciliation_id", reconciliationID).Msg("Checkpoint saved")
	return &state, nil
}

// Update merges a status report into the checkpoint of the same job. The
// end time is set once the job reaches a terminal status.
func (t *Tracker) Update(ctx context.Context, report models.StatusReport) (*State, error) {
	const op = "Update"

	state, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if state == nil || state.ReconciliationID != report.ID {
		state = &State{ReconciliationID: report.ID, StartTime: t.now()}
	}

	state.Status = report.Status
	state.Progress = report.Progress
	state.Message = report.StatusMessage()
	if report.Status.IsTerminal() && state.EndTime == nil {
		end := t.now()
		state.EndTime = &end
	}

	if err := t.store.Save(ctx, *state); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return state, nil
}

// Clear forgets the followed job.
func (t *Tracker) Clear(ctx context.Context) error {
	if err := t.store.Clear(ctx); err != nil {
		return fmt.Errorf("Clear: %w", err)
	}
	t.log.Debug().Msg("Checkpoint cleared")
	return nil
}

// Current returns the saved state. A state older than the max age is
// cleared and reported as absent.
func (t *Tracker) Current(ctx context.Context) (*State, error) {
	const op = "Current"

	state, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if state == nil {
		return nil, nil
	}
	if t.now().Sub(state.StartTime) > t.maxAge {
		t.log.Info().
			Str("reconciliation_id", state.ReconciliationID).
			Time("start_time", state.StartTime).
			Msg("Discarding expired checkpoint")
		if err := t.store.Clear(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, nil
	}
	return state, nil
}

// Active returns the saved state when its job is still pending or running.
func (t *Tracker) Active(ctx context.Context) (*State, error) {
	state, err := t.Current(ctx)
	if err != nil || state == nil || !state.Status.IsActive() {
		return nil, err
	}
	return state, nil
}

// HasActive reports whether a pending or running job is being followed.
func (t *Tracker) HasActive(ctx context.Context) (bool, error) {
	state, err := t.Active(ctx)
	return state != nil, err
}
