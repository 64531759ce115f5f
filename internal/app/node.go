package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/dh/internal/adapters/control"
	"go.trai.ch/dh/internal/adapters/dpkg"
	"go.trai.ch/dh/internal/adapters/logger"
	"go.trai.ch/dh/internal/core/ports"
	"go.trai.ch/dh/internal/engine/script"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			control.NodeID,
			dpkg.NodeID,
			script.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			parser, err := graft.Dep[*control.Parser](ctx)
			if err != nil {
				return nil, err
			}
			arch, err := graft.Dep[ports.ArchTable](ctx)
			if err != nil {
				return nil, err
			}
			scripts, err := graft.Dep[*script.Engine](ctx)
			if err != nil {
				return nil, err
			}
			return New(log, parser, arch, scripts), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: app, Logger: log}, nil
		},
	})
}
