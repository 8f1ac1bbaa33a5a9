package state

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pnp/internal/adapters/fs"
	"go.trai.ch/pnp/internal/core/ports"
)

// NodeID is the unique identifier for the state loader Graft node.
const NodeID graft.ID = "adapter.state_loader"

func init() {
	graft.Register(graft.Node[ports.StateLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.FileSystemNodeID},
		Run: func(ctx context.Context) (ports.StateLoader, error) {
			fileSystem, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(fileSystem), nil
		},
	})
}
