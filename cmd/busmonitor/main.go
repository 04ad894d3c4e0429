package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"busmonitor.luzern.ch/internal/app"
	"busmonitor.luzern.ch/internal/config"
	"busmonitor.luzern.ch/internal/fetch"
	"busmonitor.luzern.ch/internal/report"
	"busmonitor.luzern.ch/internal/snapshot"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
)

const version = "1.0.0"

func main() {
	// A missing .env file is fine; environment variables may come from the
	// add-on supervisor directly.
	_ = godotenv.Load()

	var cfg config.Config

	flag.IntVar(&cfg.Port, "port", config.EnvInt("BUS_MONITOR_PORT", 5000), "API server port")
	flag.StringVar(&cfg.Env, "env", config.EnvString("BUS_MONITOR_ENV", "development"), "Environment (development|staging|production)")
	flag.IntVar(&cfg.HoursAhead, "hours-ahead", config.EnvInt("BUS_MONITOR_HOURS", 2), "Departure window in hours")
	flag.IntVar(&cfg.ScanInterval, "scan-interval", config.EnvInt("BUS_MONITOR_SCAN_INTERVAL", 30), "Fetch cycle interval in seconds")
	flag.IntVar(&cfg.FetchTimeout, "fetch-timeout", config.EnvInt("BUS_MONITOR_FETCH_TIMEOUT", 10), "Upstream fetch deadline in seconds")
	flag.StringVar(&cfg.Provider, "provider", config.EnvString("BUS_MONITOR_PROVIDER", config.ProviderOpendata), "Departure provider (opendata|gtfsrt|oba)")

	flag.StringVar(&cfg.StationboardURL, "stationboard-url", config.EnvString("BUS_MONITOR_STATIONBOARD_URL", ""), "Override for the stationboard endpoint")
	flag.StringVar(&cfg.GtfsRtFeedURL, "gtfsrt-url", config.EnvString("BUS_MONITOR_GTFSRT_URL", ""), "GTFS-RT TripUpdates feed URL")
	flag.StringVar(&cfg.GtfsRtHeaderKey, "gtfsrt-header-key", config.EnvString("BUS_MONITOR_GTFSRT_HEADER_KEY", ""), "GTFS-RT API key header name")
	flag.StringVar(&cfg.GtfsRtHeaderVal, "gtfsrt-header-value", config.EnvString("BUS_MONITOR_GTFSRT_HEADER_VALUE", ""), "GTFS-RT API key header value")
	flag.StringVar(&cfg.ObaBaseURL, "oba-base-url", config.EnvString("BUS_MONITOR_OBA_BASE_URL", ""), "OneBusAway server base URL")
	flag.StringVar(&cfg.ObaApiKey, "oba-api-key", config.EnvString("BUS_MONITOR_OBA_API_KEY", ""), "OneBusAway API key")

	routesFile := flag.String("routes-file", config.EnvString("BUS_MONITOR_ROUTES_FILE", "routes.yaml"), "Path to the YAML routes file")

	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	routes, err := config.LoadRoutesFromFile(*routesFile)
	if err != nil {
		logger.Error("failed to load routes", "error", err)
		os.Exit(1)
	}
	cfg.Routes = routes

	if err := cfg.Validate(); err != nil {
		logger.Error("refusing to start", "error", err)
		os.Exit(1)
	}

	report.SetupSentry()
	defer report.FlushSentry()
	report.ConfigureScope(cfg.Env, version)

	client := app.NewPooledClient(cfg.FetchTimeoutDuration())

	fetcher, err := buildFetcher(&cfg, client)
	if err != nil {
		logger.Error("refusing to start", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := snapshot.NewStore(3 * cfg.ScanIntervalDuration())
	scheduler := snapshot.NewScheduler(fetcher, store, cfg.Routes, cfg.HoursAhead, cfg.ScanIntervalDuration(), cfg.FetchTimeoutDuration(), logger)
	scheduler.Start(ctx)

	application := app.New(&cfg, store, logger, version)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      application.Routes(ctx),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("starting server",
		"addr", srv.Addr,
		"env", cfg.Env,
		"provider", cfg.Provider,
		"routes", len(cfg.Routes),
		"hours_ahead", cfg.HoursAhead,
		"scan_interval", cfg.ScanInterval,
	)

	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("server stopped")
		return
	}
	report.ReportError(err, sentry.LevelFatal)
	report.FlushSentry()
	logger.Error(err.Error())
	os.Exit(1)
}

// buildFetcher selects the upstream provider implementation from the
// configuration. Validation has already checked the provider name and its
// required settings.
func buildFetcher(cfg *config.Config, client *http.Client) (fetch.Fetcher, error) {
	switch cfg.Provider {
	case config.ProviderOpendata:
		return fetch.NewOpendataClient(cfg.StationboardURL, client), nil
	case config.ProviderGtfsRt:
		return fetch.NewGtfsRtClient(cfg.GtfsRtFeedURL, cfg.GtfsRtHeaderKey, cfg.GtfsRtHeaderVal, client), nil
	case config.ProviderOba:
		return fetch.NewObaClient(cfg.ObaBaseURL, cfg.ObaApiKey), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
