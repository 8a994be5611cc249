package checkpoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/forestar-be/forestar-facturation/pkg/models"
)

func newTestTracker(t *testing.T) (*Tracker, *FileStore, *time.Time) {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tracker := NewTracker(store)
	tracker.now = func() time.Time { return now }
	return tracker, store, &now
}

func TestFileStoreEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if state != nil {
		t.Errorf("Load() = %+v, want nil", state)
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Errorf("Clear() on missing file error = %v", err)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewFileStore(path)
	ctx := context.Background()

	want := State{
		ReconciliationID: "rec-1",
		Status:           models.StatusProcessing,
		Progress:         40,
		StartTime:        time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil || got.ReconciliationID != want.ReconciliationID || got.Progress != 40 || !got.StartTime.Equal(want.StartTime) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("checkpoint file still present after Clear()")
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Error("Load() on corrupt file returned no error")
	}
}

func TestTrackerLifecycle(t *testing.T) {
	tracker, _, now := newTestTracker(t)
	ctx := context.Background()

	if _, err := tracker.Start(ctx, "rec-1"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	active, err := tracker.Active(ctx)
	if err != nil || active == nil {
		t.Fatalf("Active() = %v, %v; want state", active, err)
	}
	if active.Status != models.StatusPending {
		t.Errorf("status = %s, want PENDING", active.Status)
	}

	*now = now.Add(time.Minute)
	state, err := tracker.Update(ctx, models.StatusReport{ID: "rec-1", Status: models.StatusProcessing, Progress: 50})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if state.Message != "Traitement en cours... (50%)" {
		t.Errorf("message = %q", state.Message)
	}
	if state.EndTime != nil {
		t.Error("end time set on a running job")
	}
	if !state.StartTime.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("start time changed to %v", state.StartTime)
	}

	*now = now.Add(time.Minute)
	state, err = tracker.Update(ctx, models.StatusReport{ID: "rec-1", Status: models.StatusCompleted, Progress: 100})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if state.EndTime == nil || !state.EndTime.Equal(*now) {
		t.Errorf("end time = %v, want %v", state.EndTime, *now)
	}

	active, err = tracker.Active(ctx)
	if err != nil || active != nil {
		t.Errorf("Active() after completion = %v, %v; want nil", active, err)
	}
	current, err := tracker.Current(ctx)
	if err != nil || current == nil {
		t.Errorf("Current() after completion = %v, %v; want state", current, err)
	}

	if err := tracker.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if current, _ := tracker.Current(ctx); current != nil {
		t.Errorf("Current() after Clear() = %+v", current)
	}
}

func TestTrackerUpdateOtherJobReplaces(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	ctx := context.Background()

	if _, err := tracker.Start(ctx, "rec-1"); err != nil {
		t.Fatal(err)
	}
	state, err := tracker.Update(ctx, models.StatusReport{ID: "rec-2", Status: models.StatusProcessing, Progress: 10})
	if err != nil {
		t.Fatal(err)
	}
	if state.ReconciliationID != "rec-2" {
		t.Errorf("reconciliation id = %s, want rec-2", state.ReconciliationID)
	}
}

func TestTrackerExpiry(t *testing.T) {
	tracker, store, now := newTestTracker(t)
	ctx := context.Background()

	if _, err := tracker.Start(ctx, "rec-1"); err != nil {
		t.Fatal(err)
	}

	*now = now.Add(MaxAge - time.Second)
	if active, _ := tracker.Active(ctx); active == nil {
		t.Fatal("checkpoint expired too early")
	}

	*now = now.Add(2 * time.Second)
	active, err := tracker.Active(ctx)
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if active != nil {
		t.Errorf("Active() = %+v, want nil after expiry", active)
	}
	if saved, _ := store.Load(ctx); saved != nil {
		t.Error("expired checkpoint was not cleared from the store")
	}
}
