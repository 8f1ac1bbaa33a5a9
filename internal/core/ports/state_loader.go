package ports

import "go.trai.ch/pnp/internal/core/domain"

// StateLoader reads a serialized state document.
//
//go:generate mockgen -source=state_loader.go -destination=mocks/mock_state_loader.go -package=mocks
type StateLoader interface {
	// Load reads and decodes the state file at path. The document is validated before it is returned.
	Load(path string) (*domain.SerializedState, error)
}
