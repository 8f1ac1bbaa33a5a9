package app

import "go.trai.ch/pnp/internal/core/ports"

// Components holds what the command line needs from the application graph.
type Components struct {
	App    *App
	Logger ports.Logger
}

// NewComponents creates a new Components instance.
func NewComponents(app *App, logger ports.Logger) *Components {
	return &Components{App: app, Logger: logger}
}
