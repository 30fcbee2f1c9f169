// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/modcache/internal/adapters/cas"
	_ "go.trai.ch/modcache/internal/adapters/config"
	_ "go.trai.ch/modcache/internal/adapters/fs"
	_ "go.trai.ch/modcache/internal/adapters/httpprobe"
	_ "go.trai.ch/modcache/internal/adapters/logger"
	_ "go.trai.ch/modcache/internal/adapters/manifest"
	_ "go.trai.ch/modcache/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/modcache/internal/app"
)
