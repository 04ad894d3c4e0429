package snapshot

import (
	"errors"
	"testing"
	"time"

	"busmonitor.luzern.ch/internal/models"
)

func testDepartures(now time.Time) []models.Departure {
	return []models.Departure{
		{RouteID: "1", Destination: "Ebikon, Fildern", ScheduledTime: now.Add(10 * time.Minute), MinutesUntil: 10},
		{RouteID: "1", Destination: "Ebikon, Fildern", ScheduledTime: now.Add(25 * time.Minute), MinutesUntil: 25},
	}
}

func TestStoreInitialSnapshot(t *testing.T) {
	store := NewStore(90 * time.Second)

	snap := store.Read()
	if snap.Status != models.StatusError {
		t.Errorf("expected initial status ERROR, got %s", snap.Status)
	}
	if len(snap.Departures) != 0 {
		t.Errorf("expected empty initial departures, got %d", len(snap.Departures))
	}
	if snap.Departures == nil {
		t.Error("expected departures to be an empty slice, not nil")
	}
	if snap.LastError == "" {
		t.Error("expected a non-empty last_error before the first fetch")
	}
}

func TestStoreSetSuccess(t *testing.T) {
	store := NewStore(90 * time.Second)
	now := time.Now()

	store.SetSuccess(testDepartures(now), now)

	snap := store.Read()
	if snap.Status != models.StatusOK {
		t.Errorf("expected status OK, got %s", snap.Status)
	}
	if !snap.FetchedAt.Equal(now) {
		t.Errorf("expected fetched_at %v, got %v", now, snap.FetchedAt)
	}
	if len(snap.Departures) != 2 {
		t.Errorf("expected 2 departures, got %d", len(snap.Departures))
	}
	if snap.LastError != "" {
		t.Errorf("expected empty last_error, got %q", snap.LastError)
	}
}

func TestStoreSetSuccessNilDepartures(t *testing.T) {
	store := NewStore(90 * time.Second)

	store.SetSuccess(nil, time.Now())

	if snap := store.Read(); snap.Departures == nil {
		t.Error("expected a successful empty fetch to store an empty slice, not nil")
	}
}

func TestStoreFailureKeepsRecentDataAsStale(t *testing.T) {
	store := NewStore(90 * time.Second)
	now := time.Now()

	departures := testDepartures(now)
	store.SetSuccess(departures, now)
	store.SetFailure(errors.New("upstream unreachable"), now.Add(30*time.Second))

	snap := store.Read()
	if snap.Status != models.StatusStale {
		t.Fatalf("expected status STALE, got %s", snap.Status)
	}
	if len(snap.Departures) != len(departures) {
		t.Errorf("expected the previous departures to be kept, got %d", len(snap.Departures))
	}
	if !snap.FetchedAt.Equal(now) {
		t.Errorf("expected fetched_at to stay at the last successful fetch, got %v", snap.FetchedAt)
	}
	if snap.LastError != "upstream unreachable" {
		t.Errorf("expected last_error to be recorded, got %q", snap.LastError)
	}
}

func TestStoreFailureBeyondGraceBecomesError(t *testing.T) {
	store := NewStore(90 * time.Second)
	now := time.Now()

	store.SetSuccess(testDepartures(now), now)
	store.SetFailure(errors.New("still down"), now.Add(2*time.Minute))

	snap := store.Read()
	if snap.Status != models.StatusError {
		t.Fatalf("expected status ERROR after the grace period, got %s", snap.Status)
	}
	if len(snap.Departures) != 0 {
		t.Errorf("expected departures to be dropped, got %d", len(snap.Departures))
	}
	if snap.LastError != "still down" {
		t.Errorf("expected last_error to be recorded, got %q", snap.LastError)
	}
}

func TestStoreFailureOnFirstBootStaysError(t *testing.T) {
	store := NewStore(90 * time.Second)

	store.SetFailure(errors.New("timeout error: deadline exceeded"), time.Now())

	snap := store.Read()
	if snap.Status != models.StatusError {
		t.Fatalf("expected status ERROR, got %s", snap.Status)
	}
	if len(snap.Departures) != 0 {
		t.Errorf("expected empty departures, got %d", len(snap.Departures))
	}
	if snap.LastError == "" {
		t.Error("expected a non-empty last_error")
	}
}

func TestStoreStaleAgesOutAcrossConsecutiveFailures(t *testing.T) {
	store := NewStore(90 * time.Second)
	now := time.Now()

	store.SetSuccess(testDepartures(now), now)

	// Two failed cycles inside the grace period keep serving stale data.
	store.SetFailure(errors.New("cycle 2 failed"), now.Add(30*time.Second))
	store.SetFailure(errors.New("cycle 3 failed"), now.Add(60*time.Second))
	if snap := store.Read(); snap.Status != models.StatusStale {
		t.Fatalf("expected status STALE inside the grace period, got %s", snap.Status)
	}

	// The grace period is measured against the last successful fetch, so a
	// fourth failure finally degrades to ERROR.
	store.SetFailure(errors.New("cycle 4 failed"), now.Add(95*time.Second))
	snap := store.Read()
	if snap.Status != models.StatusError {
		t.Fatalf("expected status ERROR once the data aged out, got %s", snap.Status)
	}
	if len(snap.Departures) != 0 {
		t.Errorf("expected departures to be dropped, got %d", len(snap.Departures))
	}
}
