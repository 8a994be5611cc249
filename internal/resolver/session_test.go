package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

func TestNewSessionNeedsConflict(t *testing.T) {
	if _, err := NewSession("rec-1", "A", conflict()[:1]); err == nil {
		t.Error("NewSession with one match should fail")
	}
	if _, err := NewSession("rec-1", "B", conflict()); err == nil {
		t.Error("NewSession with foreign matches should fail")
	}
}

func TestSessionToggleClearsSelection(t *testing.T) {
	s, err := NewSession("rec-1", "A", conflict())
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != ChoosingExisting {
		t.Fatalf("initial state = %s, want %s", s.State(), ChoosingExisting)
	}

	if err := s.SelectMatch("m2"); err != nil {
		t.Fatal(err)
	}
	if err := s.Toggle(); err != nil {
		t.Fatal(err)
	}
	if s.State() != CreatingNew || s.SelectedMatch() != "" {
		t.Errorf("after toggle: state %s, match %q; want %s and no match", s.State(), s.SelectedMatch(), CreatingNew)
	}

	if err := s.SelectTransaction("t7"); err != nil {
		t.Fatal(err)
	}
	if err := s.Toggle(); err != nil {
		t.Fatal(err)
	}
	if s.State() != ChoosingExisting || s.SelectedTransaction() != "" {
		t.Errorf("after second toggle: state %s, transaction %q", s.State(), s.SelectedTransaction())
	}
}

func TestSessionSelectionRules(t *testing.T) {
	s, _ := NewSession("rec-1", "A", conflict())

	if err := s.SelectTransaction("t7"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("SelectTransaction while choosing existing = %v, want ErrInvalidTransition", err)
	}
	var verr *models.ValidationError
	if err := s.SelectMatch("zzz"); !errors.As(err, &verr) {
		t.Errorf("SelectMatch(unknown) = %v, want ValidationError", err)
	}
	if _, err := s.Decision(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Decision() without selection = %v, want ErrNoSelection", err)
	}

	_ = s.Toggle()
	if err := s.SelectTransaction(""); !errors.As(err, &verr) {
		t.Errorf("SelectTransaction(\"\") = %v, want ValidationError", err)
	}
	if _, err := s.Decision(); !errors.Is(err, ErrNoSelection) {
		t.Errorf("Decision() in create mode without transaction = %v, want ErrNoSelection", err)
	}
}

func TestSessionCloseConfirmation(t *testing.T) {
	s, _ := NewSession("rec-1", "A", conflict())
	if !s.Close(false) {
		t.Error("Close without selection should succeed")
	}

	s, _ = NewSession("rec-1", "A", conflict())
	_ = s.SelectMatch("m1")
	if s.Close(false) {
		t.Error("Close with a pending selection must ask for confirmation")
	}
	if s.State() != ChoosingExisting || s.SelectedMatch() != "m1" {
		t.Error("refused Close must keep the selection")
	}
	if !s.Close(true) || s.State() != Closed {
		t.Error("confirmed Close should discard the selection")
	}
}

func TestSessionResolve(t *testing.T) {
	store := newStore()
	s, _ := NewSession("rec-1", "A", conflict())
	_ = s.SelectMatch("m1")

	if err := s.Resolve(context.Background(), New(store, store)); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if s.State() != Done {
		t.Errorf("state = %s, want %s", s.State(), Done)
	}
	if s.Result() == nil || s.Result().Reloaded == nil {
		t.Error("a resolved session must carry the reloaded snapshot")
	}
	if err := s.Toggle(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Toggle after Done = %v, want ErrInvalidTransition", err)
	}
}

func TestSessionResolveFailure(t *testing.T) {
	store := newStore()
	store.failAt = 2
	s, _ := NewSession("rec-1", "A", conflict())
	_ = s.RejectAll()

	err := s.Resolve(context.Background(), New(store, store))
	if !IsPartial(err) {
		t.Fatalf("Resolve() error = %v, want a partial failure", err)
	}
	if s.State() != Failed || s.Err() == nil {
		t.Errorf("state = %s, err = %v; want %s with the error kept", s.State(), s.Err(), Failed)
	}
}
