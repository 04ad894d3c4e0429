package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"busmonitor.luzern.ch/internal/models"
	"github.com/go-playground/validator/v10"
)

// Provider names accepted for the upstream departure source.
const (
	ProviderOpendata = "opendata"
	ProviderGtfsRt   = "gtfsrt"
	ProviderOba      = "oba"
)

// Config holds all the configuration settings for the application.
// Everything here is loaded once at startup and read-only afterwards.
type Config struct {
	Port int    `validate:"required,min=1,max=65535"`
	Env  string `validate:"required"`

	// HoursAhead is the departure window: departures scheduled later than
	// now + HoursAhead are dropped from the snapshot.
	HoursAhead int `validate:"required,gt=0"`
	// ScanInterval is the fetch cycle interval in seconds.
	ScanInterval int `validate:"required,gt=0"`
	// FetchTimeout is the per-cycle upstream deadline in seconds.
	FetchTimeout int `validate:"required,gt=0"`

	Provider string `validate:"required,oneof=opendata gtfsrt oba"`

	Routes []models.Route `validate:"required,min=1,dive"`

	// Provider-specific settings. Only the block matching Provider is used.
	StationboardURL string
	GtfsRtFeedURL   string
	GtfsRtHeaderKey string
	GtfsRtHeaderVal string
	ObaBaseURL      string
	ObaApiKey       string
}

// NewConfig creates a Config with the given runtime settings and routes.
func NewConfig(port int, env string, hoursAhead, scanInterval int, routes []models.Route) *Config {
	return &Config{
		Port:         port,
		Env:          env,
		HoursAhead:   hoursAhead,
		ScanInterval: scanInterval,
		FetchTimeout: 10,
		Provider:     ProviderOpendata,
		Routes:       routes,
	}
}

// Validate checks the configuration and returns a descriptive error if any
// setting would make the process unable to run. A failed validation is fatal
// at startup; the process must refuse to serve with a broken configuration.
func (cfg *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch cfg.Provider {
	case ProviderGtfsRt:
		if cfg.GtfsRtFeedURL == "" {
			return fmt.Errorf("invalid configuration: provider %q requires a GTFS-RT feed URL", cfg.Provider)
		}
	case ProviderOba:
		if cfg.ObaBaseURL == "" {
			return fmt.Errorf("invalid configuration: provider %q requires a base URL", cfg.Provider)
		}
	}
	return nil
}

// ScanIntervalDuration returns the fetch cycle interval as a time.Duration.
func (cfg *Config) ScanIntervalDuration() time.Duration {
	return time.Duration(cfg.ScanInterval) * time.Second
}

// FetchTimeoutDuration returns the per-cycle upstream deadline as a time.Duration.
func (cfg *Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(cfg.FetchTimeout) * time.Second
}

// EnvString returns the value of the environment variable key, or fallback
// when it is unset or empty.
func EnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvInt returns the integer value of the environment variable key, or
// fallback when it is unset, empty, or not a valid integer.
func EnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
