package app

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"busmonitor.luzern.ch/internal/config"
	"busmonitor.luzern.ch/internal/models"
	"busmonitor.luzern.ch/internal/snapshot"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	route := models.NewRoute("1", "Express", "Luzern, Bahnhof", "Ebikon")
	cfg := config.NewConfig(5000, "testing", 2, 30, []models.Route{*route})

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store := snapshot.NewStore(3 * cfg.ScanIntervalDuration())

	return New(cfg, store, logger, "test-version")
}

func seedSnapshot(app *Application, now time.Time) []models.Departure {
	departures := []models.Departure{
		{
			RouteID:       "1",
			Destination:   "Ebikon, Fildern",
			From:          "Luzern, Bahnhof",
			Platform:      "2",
			ScheduledTime: now.Add(10 * time.Minute),
			MinutesUntil:  10,
		},
	}
	app.Store.SetSuccess(departures, now)
	return departures
}
