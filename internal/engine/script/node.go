package script

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/dh/internal/adapters/logger"
	"go.trai.ch/dh/internal/core/ports"
)

// NodeID is the unique identifier for the script engine Graft node.
const NodeID graft.ID = "engine.script"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Engine, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewEngine(log, filepath.Base(os.Args[0])), nil
		},
	})
}
