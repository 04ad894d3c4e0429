package app

import (
	"log/slog"

	"busmonitor.luzern.ch/internal/config"
	"busmonitor.luzern.ch/internal/snapshot"
)

// Application holds the dependencies shared by the HTTP handlers: the static
// configuration, the snapshot store written by the scheduler, the logger, and
// the application version.
type Application struct {
	Config  *config.Config
	Store   *snapshot.Store
	Logger  *slog.Logger
	Version string
}

// New wires an Application from its dependencies.
func New(cfg *config.Config, store *snapshot.Store, logger *slog.Logger, version string) *Application {
	return &Application{
		Config:  cfg,
		Store:   store,
		Logger:  logger,
		Version: version,
	}
}
