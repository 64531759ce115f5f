package dpkg

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/dh/internal/core/ports"
)

// NodeID is the unique identifier for the architecture table Graft node.
const NodeID graft.ID = "adapter.dpkg"

func init() {
	graft.Register(graft.Node[ports.ArchTable]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ArchTable, error) {
			return NewTable(), nil
		},
	})
}
