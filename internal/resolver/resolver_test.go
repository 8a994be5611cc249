package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/forestar-be/forestar-facturation/internal/view"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

// fakeStore is an in-memory match store that can fail on the n-th write.
type fakeStore struct {
	mu      sync.Mutex
	matches []models.Match
	calls   []string
	failAt  int // 1-based write index to fail, 0 never
	nextID  int

	// cancel, when set, is called before the first write returns.
	cancel func()
	// ctxErrs records ctx.Err() seen by each write.
	ctxErrs []error
}

var errBoom = errors.New("boom")

func (f *fakeStore) write(ctx context.Context, call string) error {
	f.calls = append(f.calls, call)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	if f.failAt == len(f.calls) {
		return errBoom
	}
	return nil
}

func (f *fakeStore) CreateMatch(ctx context.Context, _ string, req models.CreateMatchRequest) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(ctx, "create:"+req.TransactionID); err != nil {
		return nil, err
	}
	f.nextID++
	m := models.Match{
		ID:               fmt.Sprintf("new-%d", f.nextID),
		InvoiceID:        req.InvoiceID,
		TransactionID:    req.TransactionID,
		IsManualMatch:    req.IsManualMatch,
		Notes:            req.Notes,
		ValidationStatus: models.ValidationPending,
	}
	f.matches = append(f.matches, m)
	return &m, nil
}

func (f *fakeStore) UpdateMatch(ctx context.Context, _ string, id string, req models.UpdateMatchRequest) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(ctx, "update:"+id); err != nil {
		return nil, err
	}
	for i := range f.matches {
		if f.matches[i].ID == id {
			if req.IsManualMatch != nil {
				f.matches[i].IsManualMatch = *req.IsManualMatch
			}
			if req.Notes != nil {
				f.matches[i].Notes = req.Notes
			}
			m := f.matches[i]
			return &m, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeStore) DeleteMatch(ctx context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write(ctx, "delete:"+id); err != nil {
		return err
	}
	kept := f.matches[:0]
	for _, m := range f.matches {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	f.matches = kept
	return nil
}

func (f *fakeStore) FetchReconciliation(_ context.Context, id string) (*models.ReconciliationDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.ReconciliationDetails{
		ReconciliationSummary: models.ReconciliationSummary{ID: id},
		Matches:               append([]models.Match(nil), f.matches...),
	}, nil
}

func conflict() []models.Match {
	return []models.Match{
		{ID: "m1", InvoiceID: "A", TransactionID: "t1", MatchType: models.MatchTypeExactRef, Confidence: 95},
		{ID: "m2", InvoiceID: "A", TransactionID: "t2", MatchType: models.MatchTypeFuzzyName, Confidence: 60},
		{ID: "m3", InvoiceID: "A", TransactionID: "t3", MatchType: models.MatchTypeCombined, Confidence: 40},
	}
}

func newStore() *fakeStore {
	other := models.Match{ID: "b1", InvoiceID: "B", TransactionID: "t9", MatchType: models.MatchTypeExactAmount}
	return &fakeStore{matches: append(conflict(), other)}
}

func invoiceMatches(details *models.ReconciliationDetails, invoiceID string) []models.Match {
	var out []models.Match
	for _, m := range details.Matches {
		if m.InvoiceID == invoiceID {
			out = append(out, m)
		}
	}
	return out
}

func TestResolveKeepExisting(t *testing.T) {
	store := newStore()
	r := New(store, store)

	result, err := r.ResolveMultiple(context.Background(), "rec-1", "A", conflict(), Decision{Strategy: KeepExisting, MatchID: "m2"})
	if err != nil {
		t.Fatalf("ResolveMultiple() error = %v", err)
	}

	wantCalls := []string{"delete:m1", "delete:m3", "update:m2"}
	if fmt.Sprint(store.calls) != fmt.Sprint(wantCalls) {
		t.Errorf("calls = %v, want %v", store.calls, wantCalls)
	}
	if result.Reloaded == nil {
		t.Fatal("Reloaded = nil, want a fresh snapshot")
	}
	left := invoiceMatches(result.Reloaded, "A")
	if len(left) != 1 || left[0].ID != "m2" || !left[0].IsManualMatch {
		t.Fatalf("invoice A after resolve = %+v, want only m2 as manual", left)
	}
	if len(left[0].Notes) != 1 || left[0].Notes[0] != models.NoteManualChoice {
		t.Errorf("notes = %v, want the manual choice note", left[0].Notes)
	}
	if len(invoiceMatches(result.Reloaded, "B")) != 1 {
		t.Error("matches of other invoices must be untouched")
	}
}

func TestResolveCreateNew(t *testing.T) {
	store := newStore()
	r := New(store, store)

	result, err := r.ResolveMultiple(context.Background(), "rec-1", "A", conflict(), Decision{Strategy: CreateNew, TransactionID: "t7"})
	if err != nil {
		t.Fatalf("ResolveMultiple() error = %v", err)
	}

	wantCalls := []string{"delete:m1", "delete:m2", "delete:m3", "create:t7"}
	if fmt.Sprint(store.calls) != fmt.Sprint(wantCalls) {
		t.Errorf("calls = %v, want %v", store.calls, wantCalls)
	}
	left := invoiceMatches(result.Reloaded, "A")
	if len(left) != 1 || left[0].TransactionID != "t7" || !left[0].IsManualMatch {
		t.Errorf("invoice A after resolve = %+v, want one manual match on t7", left)
	}
}

func TestResolveRejectAll(t *testing.T) {
	store := newStore()
	r := New(store, store)

	result, err := r.ResolveMultiple(context.Background(), "rec-1", "A", conflict(), Decision{Strategy: RejectAll})
	if err != nil {
		t.Fatalf("ResolveMultiple() error = %v", err)
	}
	if want := "[delete:m1 delete:m2 delete:m3]"; fmt.Sprint(store.calls) != want {
		t.Errorf("calls = %v, want %v", store.calls, want)
	}
	if result.Survivor != nil {
		t.Errorf("Survivor = %+v, want none", result.Survivor)
	}
	if left := invoiceMatches(result.Reloaded, "A"); len(left) != 0 {
		t.Errorf("invoice A after reject all = %+v, want no matches", left)
	}

	details := result.Reloaded
	details.Invoices = []models.Invoice{{ID: "A", MontantTTC: 100}}
	details.Transactions = []models.BankTransaction{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
	lookup := view.NewLookup(details.Invoices, details.Transactions)
	if unmatched := view.UnmatchedInvoices(details.Invoices, details.Matches, lookup); len(unmatched) != 1 || unmatched[0].ID != "A" {
		t.Errorf("UnmatchedInvoices = %+v, want A", unmatched)
	}
	stats := view.ComputeStatistics(details)
	if stats.UnmatchedInvoices != 1 || !stats.MatchedAmount.IsZero() || stats.UnmatchedTransactions != 3 {
		t.Errorf("stats after reject all = %+v, want A and every transaction unmatched", stats)
	}
}

func TestResolveValidationNeverReachesStore(t *testing.T) {
	tests := []struct {
		name     string
		invoice  string
		matches  []models.Match
		decision Decision
	}{
		{"keep without selection", "A", conflict(), Decision{Strategy: KeepExisting}},
		{"keep foreign match", "A", conflict(), Decision{Strategy: KeepExisting, MatchID: "b1"}},
		{"create without transaction", "A", conflict(), Decision{Strategy: CreateNew}},
		{"unknown strategy", "A", conflict(), Decision{Strategy: "merge"}},
		{"no invoice", "", conflict(), Decision{Strategy: RejectAll}},
		{"mixed invoices", "B", conflict(), Decision{Strategy: RejectAll}},
		{"no matches", "A", nil, Decision{Strategy: RejectAll}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			_, err := New(store, store).ResolveMultiple(context.Background(), "rec-1", tt.invoice, tt.matches, tt.decision)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want a ValidationError", err)
			}
			if len(store.calls) != 0 {
				t.Errorf("store received %v, want no calls", store.calls)
			}
		})
	}
}

func TestResolveCleanFailure(t *testing.T) {
	store := newStore()
	store.failAt = 1

	_, err := New(store, store).ResolveMultiple(context.Background(), "rec-1", "A", conflict(), Decision{Strategy: KeepExisting, MatchID: "m1"})

	var rerr *ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want a ResolutionError", err)
	}
	if IsPartial(err) {
		t.Error("a failure on the first write must not be reported as partial")
	}
	if !errors.Is(err, errBoom) {
		t.Error("error must wrap the store error")
	}
	if len(store.calls) != 1 {
		t.Errorf("calls = %v, want to stop after the failure", store.calls)
	}
}

func TestResolvePartialFailure(t *testing.T) {
	store := newStore()
	store.failAt = 4 // the create, after three deletes

	result, err := New(store, store).ResolveMultiple(context.Background(), "rec-1", "A", conflict(), Decision{Strategy: CreateNew, TransactionID: "t7"})
	if !IsPartial(err) {
		t.Fatalf("error = %v, want ErrPartiallyApplied", err)
	}
	var rerr *ResolutionError
	if !errors.As(err, &rerr) || rerr.Op != "create" || rerr.Applied != 3 {
		t.Errorf("ResolutionError = %+v, want create after 3 applied", rerr)
	}
	if len(result.Deleted) != 3 {
		t.Errorf("Deleted = %v, want the three acknowledged deletes", result.Deleted)
	}
	// No rollback: the deleted matches stay deleted.
	details, _ := store.FetchReconciliation(context.Background(), "rec-1")
	if n := len(invoiceMatches(details, "A")); n != 0 {
		t.Errorf("invoice A has %d matches, want 0 after the partial failure", n)
	}
}

func TestResolveSurvivesCancellation(t *testing.T) {
	store := newStore()
	ctx, cancel := context.WithCancel(context.Background())
	store.cancel = cancel

	_, err := New(store, store).ResolveMultiple(ctx, "rec-1", "A", conflict(), Decision{Strategy: KeepExisting, MatchID: "m1"})
	if err != nil {
		t.Fatalf("ResolveMultiple() error = %v, want the sequence to complete", err)
	}
	if len(store.calls) != 3 {
		t.Errorf("calls = %v, want all three writes", store.calls)
	}
	for i, cerr := range store.ctxErrs {
		if cerr != nil {
			t.Errorf("write %d saw ctx error %v", i, cerr)
		}
	}
}

func TestResolveCancelledBeforeStart(t *testing.T) {
	store := newStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(store, store).ResolveMultiple(ctx, "rec-1", "A", conflict(), Decision{Strategy: RejectAll})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("calls = %v, want none", store.calls)
	}
}

type failingLoader struct{}

func (failingLoader) FetchReconciliation(context.Context, string) (*models.ReconciliationDetails, error) {
	return nil, errBoom
}

func TestResolveReloadFailure(t *testing.T) {
	store := newStore()
	result, err := New(store, failingLoader{}).ResolveMultiple(context.Background(), "rec-1", "A", conflict(), Decision{Strategy: KeepExisting, MatchID: "m3"})

	if !errors.Is(err, ErrReloadFailed) {
		t.Fatalf("error = %v, want ErrReloadFailed", err)
	}
	if IsPartial(err) {
		t.Error("a reload failure is not a partial resolution")
	}
	if result == nil || result.Survivor == nil || result.Survivor.ID != "m3" {
		t.Errorf("result = %+v, want m3 as survivor", result)
	}
}
