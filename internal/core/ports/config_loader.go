package ports

import "go.trai.ch/pnp/internal/core/domain"

// ConfigLoader defines the interface for loading the runtime settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the configuration from the given working directory and returns the settings.
	// Paths in the returned settings are absolute.
	Load(cwd string) (*domain.Settings, error)
}
