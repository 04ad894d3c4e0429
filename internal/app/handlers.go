package app

import (
	"encoding/json"
	"net/http"
	"time"

	"busmonitor.luzern.ch/internal/models"
)

// StatusResponse is the body of GET /api/status. It always reports 200 while
// the process is alive; data freshness lives in the Status field, not in the
// HTTP status code.
type StatusResponse struct {
	Status       models.Status `json:"status"`
	FetchedAt    time.Time     `json:"fetched_at"`
	RoutesLoaded int           `json:"routes_loaded"`
	HoursAhead   int           `json:"hours_ahead"`
	Version      string        `json:"version"`
	Environment  string        `json:"environment"`
}

// DeparturesResponse is the body of GET /api/bus_departures.
type DeparturesResponse struct {
	Departures      []models.Departure `json:"departures"`
	TotalDepartures int                `json:"total_departures"`
	Status          models.Status      `json:"status"`
	FetchedAt       time.Time          `json:"fetched_at"`
	LastError       string             `json:"last_error,omitempty"`
}

// RoutesResponse is the body of GET /api/routes.
type RoutesResponse struct {
	Routes      []models.Route `json:"routes"`
	TotalRoutes int            `json:"total_routes"`
}

// statusHandler reports the freshness of the cached snapshot along with the
// static runtime settings. It succeeds regardless of fetcher state.
func (app *Application) statusHandler(w http.ResponseWriter, r *http.Request) {
	snap := app.Store.Read()

	app.writeJSON(w, StatusResponse{
		Status:       snap.Status,
		FetchedAt:    snap.FetchedAt,
		RoutesLoaded: len(app.Config.Routes),
		HoursAhead:   app.Config.HoursAhead,
		Version:      app.Version,
		Environment:  app.Config.Env,
	})
}

// busDeparturesHandler serves the departures of the current snapshot. It
// never triggers a fetch; a failed or not-yet-run first cycle shows up as an
// empty list with status ERROR.
func (app *Application) busDeparturesHandler(w http.ResponseWriter, r *http.Request) {
	snap := app.Store.Read()

	app.writeJSON(w, DeparturesResponse{
		Departures:      snap.Departures,
		TotalDepartures: len(snap.Departures),
		Status:          snap.Status,
		FetchedAt:       snap.FetchedAt,
		LastError:       snap.LastError,
	})
}

// routesHandler serves the static route configuration.
func (app *Application) routesHandler(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, RoutesResponse{
		Routes:      app.Config.Routes,
		TotalRoutes: len(app.Config.Routes),
	})
}

func (app *Application) writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		app.Logger.Error("failed to encode response", "error", err)
	}
}
