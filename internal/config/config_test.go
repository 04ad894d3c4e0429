package config

import (
	"testing"
	"time"

	"busmonitor.luzern.ch/internal/models"
)

func validTestConfig() *Config {
	cfg := NewConfig(5000, "testing", 2, 30, []models.Route{
		{RouteID: "1", Label: "Express", Station: "Luzern, Bahnhof", Destination: "Ebikon"},
	})
	return cfg
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := validTestConfig().Validate(); err != nil {
		t.Fatalf("expected valid config to pass, got %v", err)
	}
}

func TestValidateRejectsBrokenConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero hours ahead", func(c *Config) { c.HoursAhead = 0 }},
		{"negative hours ahead", func(c *Config) { c.HoursAhead = -1 }},
		{"zero scan interval", func(c *Config) { c.ScanInterval = 0 }},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"no routes", func(c *Config) { c.Routes = nil }},
		{"route without id", func(c *Config) { c.Routes[0].RouteID = "" }},
		{"route without station", func(c *Config) { c.Routes[0].Station = "" }},
		{"unknown provider", func(c *Config) { c.Provider = "teleport" }},
		{"out of range port", func(c *Config) { c.Port = 70000 }},
		{"gtfsrt without feed URL", func(c *Config) { c.Provider = ProviderGtfsRt }},
		{"oba without base URL", func(c *Config) { c.Provider = ProviderOba }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation to fail, got nil")
			}
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := validTestConfig()

	if got := cfg.ScanIntervalDuration(); got != 30*time.Second {
		t.Errorf("expected 30s scan interval, got %v", got)
	}
	if got := cfg.FetchTimeoutDuration(); got != 10*time.Second {
		t.Errorf("expected 10s fetch timeout, got %v", got)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("BUS_MONITOR_TEST_STR", "value")
	t.Setenv("BUS_MONITOR_TEST_INT", "42")
	t.Setenv("BUS_MONITOR_TEST_BAD_INT", "forty-two")

	if got := EnvString("BUS_MONITOR_TEST_STR", "fallback"); got != "value" {
		t.Errorf("expected 'value', got %q", got)
	}
	if got := EnvString("BUS_MONITOR_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
	if got := EnvInt("BUS_MONITOR_TEST_INT", 7); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := EnvInt("BUS_MONITOR_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("expected fallback on unparseable int, got %d", got)
	}
}
