package control

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/dh/internal/adapters/logger"
	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/core/ports"
)

// NodeID is the unique identifier for the control parser Graft node.
const NodeID graft.ID = "adapter.control"

func init() {
	graft.Register(graft.Node[*Parser]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Parser, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			profiles := domain.NewProfileSet(os.Getenv("DEB_BUILD_PROFILES"))
			return NewParser(log, profiles), nil
		},
	})
}
