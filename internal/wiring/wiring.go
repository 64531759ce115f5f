// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/dh/internal/adapters/control"
	_ "go.trai.ch/dh/internal/adapters/dpkg"
	_ "go.trai.ch/dh/internal/adapters/logger"
	// Register app and engine nodes.
	_ "go.trai.ch/dh/internal/app"
	_ "go.trai.ch/dh/internal/engine/script"
)
