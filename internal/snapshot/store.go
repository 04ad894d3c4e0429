package snapshot

import (
	"sync"
	"time"

	"busmonitor.luzern.ch/internal/models"
)

// Store holds the single current snapshot served to API clients.
//
// The snapshot is replaced as a whole under the write lock and never mutated
// in place, so readers either see the previous value or the new one, never a
// half-written mix. Reads are immediate and never wait on an in-flight fetch.
type Store struct {
	mu         sync.RWMutex
	current    *models.Snapshot
	staleGrace time.Duration
}

// NewStore creates a Store whose initial snapshot is empty with status ERROR,
// which is what clients see until the first fetch cycle completes.
//
// staleGrace bounds how long departures from a previous successful cycle keep
// being served after fetches start failing; the scheduler passes three scan
// intervals.
func NewStore(staleGrace time.Duration) *Store {
	return &Store{
		current: &models.Snapshot{
			Departures: []models.Departure{},
			Status:     models.StatusError,
			LastError:  "no fetch completed yet",
		},
		staleGrace: staleGrace,
	}
}

// Read returns the current snapshot without blocking on fetch activity.
func (s *Store) Read() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.current
}

// SetSuccess replaces the snapshot with the departures of a successful fetch
// cycle completed at now.
func (s *Store) SetSuccess(departures []models.Departure, now time.Time) {
	if departures == nil {
		departures = []models.Departure{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &models.Snapshot{
		Departures: departures,
		FetchedAt:  now,
		Status:     models.StatusOK,
	}
}

// SetFailure records a failed fetch cycle. If the current snapshot still
// carries data from a successful cycle younger than the stale grace period,
// those departures are kept and the status degrades to STALE; the snapshot's
// fetched_at stays at the time of the data being served so clients can judge
// its age. Otherwise the snapshot becomes empty with status ERROR.
func (s *Store) SetFailure(err error, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current
	if prev.Status != models.StatusError && now.Sub(prev.FetchedAt) < s.staleGrace {
		s.current = &models.Snapshot{
			Departures: prev.Departures,
			FetchedAt:  prev.FetchedAt,
			Status:     models.StatusStale,
			LastError:  err.Error(),
		}
		return
	}

	s.current = &models.Snapshot{
		Departures: []models.Departure{},
		FetchedAt:  now,
		Status:     models.StatusError,
		LastError:  err.Error(),
	}
}
