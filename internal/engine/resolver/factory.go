package resolver

import (
	"go.trai.ch/pnp/internal/core/domain"
	"go.trai.ch/pnp/internal/core/ports"
)

// Factory opens runtimes sharing the same collaborators.
type Factory struct {
	fs     ports.FileSystem
	logger ports.Logger
}

// NewFactory creates a Factory.
func NewFactory(fs ports.FileSystem, logger ports.Logger) *Factory {
	return &Factory{fs: fs, logger: logger}
}

// Open hydrates state with the resolution settings of s.
func (f *Factory) Open(state *domain.SerializedState, s *domain.Settings) (*Runtime, error) {
	return New(state, s.ResolvedBasePath(),
		WithFileSystem(f.fs),
		WithLogger(f.logger),
		WithSettings(s),
	)
}
