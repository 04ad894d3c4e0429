package models

import "time"

// Status describes the freshness of the cached snapshot.
type Status string

const (
	// StatusOK means the snapshot comes from the most recent fetch cycle.
	StatusOK Status = "OK"
	// StatusStale means the most recent cycle failed but departures from an
	// earlier successful cycle are still being served.
	StatusStale Status = "STALE"
	// StatusError means there is no recent successful cycle to serve from.
	StatusError Status = "ERROR"
)

// Departure is one upcoming bus departure for a monitored route.
// Values are fixed at fetch time and never mutated afterwards.
type Departure struct {
	RouteID       string    `json:"route_id"`
	Destination   string    `json:"destination"`
	From          string    `json:"from,omitempty"`
	Platform      string    `json:"platform,omitempty"`
	DelaySeconds  int       `json:"delay_seconds,omitempty"`
	ScheduledTime time.Time `json:"scheduled_time"`
	MinutesUntil  int       `json:"minutes_until"`
}

// Snapshot is the result of the last fetch cycle as served to API clients.
// The snapshot store replaces the whole value atomically; departures are
// always sorted ascending by scheduled time.
type Snapshot struct {
	Departures []Departure `json:"departures"`
	FetchedAt  time.Time   `json:"fetched_at"`
	Status     Status      `json:"status"`
	LastError  string      `json:"last_error,omitempty"`
}

// Route is one monitored bus route, loaded once at startup.
// Station is the stop whose departure board is queried and Destination is a
// substring match against the upstream headsign.
type Route struct {
	RouteID     string `json:"route_id" yaml:"route_id" validate:"required"`
	Label       string `json:"label" yaml:"label" validate:"required"`
	Station     string `json:"station" yaml:"station" validate:"required"`
	Destination string `json:"destination" yaml:"destination"`
}

// NewRoute creates a Route with the given identifiers.
func NewRoute(routeID, label, station, destination string) *Route {
	return &Route{
		RouteID:     routeID,
		Label:       label,
		Station:     station,
		Destination: destination,
	}
}
