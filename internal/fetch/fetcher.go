package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"time"

	"busmonitor.luzern.ch/internal/models"
)

// Fetcher queries an upstream departure source for all configured routes and
// returns the normalized, merged, and sorted departures inside the window.
//
// Implementations are pure with respect to process state: the only side
// effect is the outbound network call. Any failure is returned as a
// *FetchError; the scheduler decides what to do with it.
type Fetcher interface {
	Fetch(ctx context.Context, routes []models.Route, hoursAhead int) ([]models.Departure, error)
}

// ErrorKind classifies fetch failures.
type ErrorKind int

const (
	// KindNetwork covers transport-level failures and unexpected upstream
	// status codes.
	KindNetwork ErrorKind = iota
	// KindParse covers malformed upstream responses.
	KindParse
	// KindTimeout covers fetches that exceeded their deadline.
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// FetchError is the typed failure returned by every Fetcher implementation.
type FetchError struct {
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err with an explicit kind.
func NewFetchError(kind ErrorKind, err error) *FetchError {
	return &FetchError{Kind: kind, Err: err}
}

// classifyTransportError maps a transport failure to a FetchError. Deadline
// and net timeouts become KindTimeout, everything else KindNetwork.
func classifyTransportError(err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewFetchError(KindTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewFetchError(KindTimeout, err)
	}
	return NewFetchError(KindNetwork, err)
}

// finalize applies the shared normalization pipeline: drop departures in the
// past or beyond now + hoursAhead, derive minutes_until (clamped at zero),
// and sort ascending by scheduled time with route_id breaking ties.
func finalize(departures []models.Departure, now time.Time, hoursAhead int) []models.Departure {
	cutoff := now.Add(time.Duration(hoursAhead) * time.Hour)

	kept := make([]models.Departure, 0, len(departures))
	for _, d := range departures {
		if d.ScheduledTime.Before(now) || d.ScheduledTime.After(cutoff) {
			continue
		}
		minutes := int(d.ScheduledTime.Sub(now).Minutes())
		if minutes < 0 {
			minutes = 0
		}
		d.MinutesUntil = minutes
		kept = append(kept, d)
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].ScheduledTime.Equal(kept[j].ScheduledTime) {
			return kept[i].RouteID < kept[j].RouteID
		}
		return kept[i].ScheduledTime.Before(kept[j].ScheduledTime)
	})

	return kept
}
