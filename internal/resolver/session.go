package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// State is the phase of a resolution session.
type State string

const (
	ChoosingExisting State = "CHOOSING_EXISTING"
	CreatingNew      State = "CREATING_NEW"
	Resolving        State = "RESOLVING"
	Done             State = "DONE"
	Failed           State = "FAILED"
	Closed           State = "CLOSED"
)

// Session drives the resolution of one invoice's competing matches.
//
// It starts in ChoosingExisting and may toggle with CreatingNew any number
// of times; toggling drops the other mode's selection. Resolve moves through
// Resolving to Done or Failed.
type Session struct {
	reconciliationID string
	invoiceID        string
	matches          []models.Match

	state         State
	matchID       string
	transactionID string
	rejectAll     bool

	result *Result
	err    error
}

// NewSession opens a session on the matches of invoiceID.
func NewSession(reconciliationID, invoiceID string, matches []models.Match) (*Session, error) {
	if len(matches) < 2 {
		return nil, &models.ValidationError{Field: "matches", Message: "at least two competing matches are required"}
	}
	for _, m := range matches {
		if m.InvoiceID != invoiceID {
			return nil, &models.ValidationError{Field: "matches", Value: m.ID, Message: "belongs to another invoice"}
		}
	}
	return &Session{
		reconciliationID: reconciliationID,
		invoiceID:        invoiceID,
		matches:          append([]models.Match(nil), matches...),
		state:            ChoosingExisting,
	}, nil
}

// State returns the current phase.
func (s *Session) State() State { return s.state }

// InvoiceID returns the invoice being resolved.
func (s *Session) InvoiceID() string { return s.invoiceID }

// Matches returns the competing matches.
func (s *Session) Matches() []models.Match { return s.matches }

// SelectedMatch returns the match chosen in ChoosingExisting.
func (s *Session) SelectedMatch() string { return s.matchID }

// SelectedTransaction returns the transaction chosen in CreatingNew.
func (s *Session) SelectedTransaction() string { return s.transactionID }

// Err returns the failure of the last resolve, if any.
func (s *Session) Err() error { return s.err }

// Result returns the outcome of the last resolve, if any.
func (s *Session) Result() *Result { return s.result }

func (s *Session) selecting() bool {
	return s.state == ChoosingExisting || s.state == CreatingNew
}

// Toggle switches between keeping an existing match and creating a new one.
func (s *Session) Toggle() error {
	switch s.state {
	case ChoosingExisting:
		s.state = CreatingNew
		s.matchID = ""
	case CreatingNew:
		s.state = ChoosingExisting
		s.transactionID = ""
	default:
		return fmt.Errorf("toggle from %s: %w", s.state, ErrInvalidTransition)
	}
	s.rejectAll = false
	return nil
}

// SelectMatch chooses the match to keep.
func (s *Session) SelectMatch(matchID string) error {
	if s.state != ChoosingExisting {
		return fmt.Errorf("select match in %s: %w", s.state, ErrInvalidTransition)
	}
	for _, m := range s.matches {
		if m.ID == matchID {
			s.matchID = matchID
			s.rejectAll = false
			return nil
		}
	}
	return &models.ValidationError{Field: "matchId", Value: matchID, Message: "not one of the competing matches"}
}

// SelectTransaction chooses the transaction for the new match.
func (s *Session) SelectTransaction(transactionID string) error {
	if s.state != CreatingNew {
		return fmt.Errorf("select transaction in %s: %w", s.state, ErrInvalidTransition)
	}
	if transactionID == "" {
		return &models.ValidationError{Field: "transactionId", Message: "a transaction is required to create a match"}
	}
	s.transactionID = transactionID
	return nil
}

// RejectAll selects removing every competing match instead of keeping one.
func (s *Session) RejectAll() error {
	if s.state != ChoosingExisting {
		return fmt.Errorf("reject all in %s: %w", s.state, ErrInvalidTransition)
	}
	s.matchID = ""
	s.rejectAll = true
	return nil
}

// HasPendingSelection reports whether closing now would discard a choice.
func (s *Session) HasPendingSelection() bool {
	return s.selecting() && (s.matchID != "" || s.transactionID != "" || s.rejectAll)
}

// Decision returns the decision the current selection stands for.
func (s *Session) Decision() (Decision, error) {
	switch s.state {
	case ChoosingExisting:
		if s.rejectAll {
			return Decision{Strategy: RejectAll}, nil
		}
		if s.matchID == "" {
			return Decision{}, fmt.Errorf("keep existing: %w", ErrNoSelection)
		}
		return Decision{Strategy: KeepExisting, MatchID: s.matchID}, nil
	case CreatingNew:
		if s.transactionID == "" {
			return Decision{}, fmt.Errorf("create new: %w", ErrNoSelection)
		}
		return Decision{Strategy: CreateNew, TransactionID: s.transactionID}, nil
	}
	return Decision{}, fmt.Errorf("decision in %s: %w", s.state, ErrInvalidTransition)
}

// Resolve applies the current decision. The session ends in Done on success
// and in Failed otherwise; a failed session can be closed but not retried.
func (s *Session) Resolve(ctx context.Context, r *Resolver) error {
	d, err := s.Decision()
	if err != nil {
		return err
	}
	s.state = Resolving
	s.result, s.err = r.ResolveMultiple(ctx, s.reconciliationID, s.invoiceID, s.matches, d)
	if s.err != nil && !errors.Is(s.err, ErrReloadFailed) {
		s.state = Failed
		return s.err
	}
	s.state = Done
	return s.err
}

// Close ends the session. With a pending selection and no confirmation it
// refuses and returns false so the caller can ask first.
func (s *Session) Close(confirmDiscard bool) bool {
	if s.state == Resolving {
		return false
	}
	if s.HasPendingSelection() && !confirmDiscard {
		return false
	}
	s.state = Closed
	s.matchID, s.transactionID, s.rejectAll = "", "", false
	return true
}
