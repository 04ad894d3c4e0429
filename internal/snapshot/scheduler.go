package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"busmonitor.luzern.ch/internal/fetch"
	"busmonitor.luzern.ch/internal/metrics"
	"busmonitor.luzern.ch/internal/models"
	"busmonitor.luzern.ch/internal/report"
	"busmonitor.luzern.ch/internal/utils"
	"github.com/getsentry/sentry-go"
)

// Scheduler drives fetch cycles on a fixed interval and feeds the results
// into the Store. Fetch failures are absorbed: they are logged, reported, and
// surfaced through the snapshot status, but they never stop the loop.
type Scheduler struct {
	fetcher    fetch.Fetcher
	store      *Store
	routes     []models.Route
	hoursAhead int
	interval   time.Duration
	timeout    time.Duration
	logger     *slog.Logger
	inFlight   atomic.Bool
}

// NewScheduler creates a Scheduler. interval is the scan interval between
// cycles and timeout the upstream deadline of a single cycle.
func NewScheduler(fetcher fetch.Fetcher, store *Store, routes []models.Route, hoursAhead int, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		fetcher:    fetcher,
		store:      store,
		routes:     routes,
		hoursAhead: hoursAhead,
		interval:   interval,
		timeout:    timeout,
		logger:     logger,
	}
}

// Start launches the polling loop on its own goroutine and returns. The first
// cycle runs immediately; afterwards one cycle starts per tick. The loop
// stops when ctx is cancelled, leaving the last snapshot intact.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping fetch scheduler")
			return
		case <-ticker.C:
			go s.RunCycle(ctx)
		}
	}
}

// RunCycle executes a single fetch cycle. At most one cycle is in flight at a
// time: a cycle that starts while another is still running is skipped, not
// queued; the next tick is the retry.
func (s *Scheduler) RunCycle(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("skipping fetch cycle, previous cycle still running")
		metrics.FetchCyclesTotal.WithLabelValues("skipped").Inc()
		return
	}
	defer s.inFlight.Store(false)

	cycleCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	departures, err := s.fetcher.Fetch(cycleCtx, s.routes, s.hoursAhead)
	metrics.FetchDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		s.store.SetFailure(err, time.Now())
		metrics.FetchCyclesTotal.WithLabelValues("failure").Inc()
		s.logger.Error("fetch cycle failed", "error", err, "kind", errorKind(err))
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Tags:  utils.MakeMap("error_kind", errorKind(err)),
			Level: sentry.LevelError,
		})
	} else {
		s.store.SetSuccess(departures, time.Now())
		metrics.FetchCyclesTotal.WithLabelValues("success").Inc()
		metrics.LastSuccessTimestamp.SetToCurrentTime()
		s.logger.Info("fetch cycle completed", "departures", len(departures), "duration", time.Since(start))
	}

	snap := s.store.Read()
	metrics.SnapshotDepartures.Set(float64(len(snap.Departures)))
	metrics.SetSnapshotStatus(snap.Status)
}

// errorKind extracts the fetch error taxonomy kind for logs and Sentry tags.
func errorKind(err error) string {
	var fetchErr *fetch.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind.String()
	}
	return "unknown"
}
