package resolver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/forestar-be/forestar-facturation/internal/logger"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// MatchStore is the remote match store the resolver writes to.
type MatchStore interface {
	CreateMatch(ctx context.Context, reconciliationID string, req models.CreateMatchRequest) (*models.Match, error)
	UpdateMatch(ctx context.Context, reconciliationID, matchID string, req models.UpdateMatchRequest) (*models.Match, error)
	DeleteMatch(ctx context.Context, reconciliationID, matchID string) error
}

// Loader refetches the authoritative snapshot after a resolution.
type Loader interface {
	FetchReconciliation(ctx context.Context, reconciliationID string) (*models.ReconciliationDetails, error)
}

// Strategy is how a conflict is resolved.
type Strategy string

const (
	// KeepExisting keeps one of the competing matches and deletes the others.
	KeepExisting Strategy = "keep_existing"
	// CreateNew deletes every competing match and creates one against another transaction.
	CreateNew Strategy = "create_new"
	// RejectAll deletes every competing match, leaving the invoice unmatched.
	RejectAll Strategy = "reject_all"
)

// Decision is the outcome chosen for one invoice.
type Decision struct {
	Strategy      Strategy `json:"strategy"`
	MatchID       string   `json:"matchId,omitempty"`       // KeepExisting
	TransactionID string   `json:"transactionId,omitempty"` // CreateNew
}

// Result reports what a resolution did.
type Result struct {
	ResolutionID string
	Deleted      []string
	Survivor     *models.Match
	Reloaded     *models.ReconciliationDetails
}

// Resolver applies decisions against the remote store.
type Resolver struct {
	store  MatchStore
	loader Loader
	log    zerolog.Logger
}

// New creates a resolver. loader may be nil to skip the reload.
func New(store MatchStore, loader Loader) *Resolver {
	return &Resolver{
		store:  store,
		loader: loader,
		log:    logger.WithComponent("resolver"),
	}
}

type step struct {
	op      string
	matchID string
	run     func(ctx context.Context) (*models.Match, error)
}

// ResolveMultiple resolves the conflicting matches of one invoice.
//
// Writes are issued one at a time, deletes first. Once the first write has
// started, cancelling ctx no longer stops the sequence: already-deleted
// matches cannot be restored, so the remaining writes are allowed to finish.
// A failure after an acknowledged write matches ErrPartiallyApplied. On
// success the snapshot is refetched; the local view is never patched.
func (r *Resolver) ResolveMultiple(ctx context.Context, reconciliationID, invoiceID string, matches []models.Match, decision Decision) (*Result, error) {
	const op = "ResolveMultiple"

	steps, err := r.plan(reconciliationID, invoiceID, matches, decision)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &Result{ResolutionID: uuid.NewString()}
	log := r.log.With().
		Str("resolution_id", result.ResolutionID).
		Str("reconciliation_id", reconciliationID).
		Str("invoice_id", invoiceID).
		Str("strategy", string(decision.Strategy)).
		Logger()
	log.Info().Int("matches", len(matches)).Int("steps", len(steps)).Msg("Resolving multiple matches")

	runCtx := context.WithoutCancel(ctx)
	for i, s := range steps {
		m, err := s.run(runCtx)
		if err != nil {
			rerr := &ResolutionError{Op: s.op, MatchID: s.matchID, Applied: i, Err: err}
			log.Error().
				Err(err).
				Str("op", s.op).
				Str("match_id", s.matchID).
				Int("applied", i).
				Bool("partial", i > 0).
				Msg("Resolution step failed")
			return result, rerr
		}
		if s.op == "delete" {
			result.Deleted = append(result.Deleted, s.matchID)
		} else {
			result.Survivor = m
		}
		log.Debug().Str("op", s.op).Str("match_id", s.matchID).Msg("Resolution step applied")
	}

	log.Info().Int("deleted", len(result.Deleted)).Msg("Multiple matches resolved")

	if r.loader == nil {
		return result, nil
	}
	details, err := r.loader.FetchReconciliation(runCtx, reconciliationID)
	if err != nil {
		log.Warn().Err(err).Msg("Reload after resolution failed")
		return result, fmt.Errorf("%s: %w: %w", op, ErrReloadFailed, err)
	}
	result.Reloaded = details
	return result, nil
}

// plan validates the decision and lists the writes it needs, without any I/O.
func (r *Resolver) plan(reconciliationID, invoiceID string, matches []models.Match, d Decision) ([]step, error) {
	if reconciliationID == "" {
		return nil, &models.ValidationError{Field: "reconciliationId", Message: "is required"}
	}
	if invoiceID == "" {
		return nil, &models.ValidationError{Field: "invoiceId", Message: "no invoice selected"}
	}
	if len(matches) == 0 {
		return nil, &models.ValidationError{Field: "matches", Message: "no matches to resolve"}
	}
	for _, m := range matches {
		if m.InvoiceID != invoiceID {
			return nil, &models.ValidationError{Field: "matches", Value: m.ID, Message: "belongs to another invoice"}
		}
	}

	deleteStep := func(id string) step {
		return step{op: "delete", matchID: id, run: func(ctx context.Context) (*models.Match, error) {
			return nil, r.store.DeleteMatch(ctx, reconciliationID, id)
		}}
	}

	var steps []step
	switch d.Strategy {
	case KeepExisting:
		if d.MatchID == "" {
			return nil, &models.ValidationError{Field: "matchId", Message: "select the match to keep"}
		}
		found := false
		for _, m := range matches {
			if m.ID == d.MatchID {
				found = true
				continue
			}
			steps = append(steps, deleteStep(m.ID))
		}
		if !found {
			return nil, &models.ValidationError{Field: "matchId", Value: d.MatchID, Message: "not one of the competing matches"}
		}
		manual := true
		steps = append(steps, step{op: "update", matchID: d.MatchID, run: func(ctx context.Context) (*models.Match, error) {
			return r.store.UpdateMatch(ctx, reconciliationID, d.MatchID, models.UpdateMatchRequest{
				IsManualMatch: &manual,
				Notes:         []string{models.NoteManualChoice},
			})
		}})

	case CreateNew:
		if d.TransactionID == "" {
			return nil, &models.ValidationError{Field: "transactionId", Message: "select a transaction for the new match"}
		}
		for _, m := range matches {
			steps = append(steps, deleteStep(m.ID))
		}
		steps = append(steps, step{op: "create", run: func(ctx context.Context) (*models.Match, error) {
			return r.store.CreateMatch(ctx, reconciliationID, models.CreateMatchRequest{
				InvoiceID:     invoiceID,
				TransactionID: d.TransactionID,
				IsManualMatch: true,
				Notes:         []string{models.NoteManualCreated},
			})
		}})

	case RejectAll:
		for _, m := range matches {
			steps = append(steps, deleteStep(m.ID))
		}

	default:
		return nil, &models.ValidationError{Field: "strategy", Value: string(d.Strategy), Message: "unknown strategy"}
	}
	return steps, nil
}
