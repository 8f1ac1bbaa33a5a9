package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pnp/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pnp/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pnp/internal/core/ports"
)

// NodeID is the unique identifier for the runtime factory Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.FileSystemNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			fileSystem, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewFactory(fileSystem, log), nil
		},
	})
}
