package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/modcache/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/modcache/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/modcache/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/modcache/internal/adapters/httpprobe" //nolint:depguard // Wired in app layer
	"go.trai.ch/modcache/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/modcache/internal/adapters/manifest"  //nolint:depguard // Wired in app layer
	"go.trai.ch/modcache/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/modcache/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components holds what the command line entry point needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			manifest.NodeID,
			manifest.ImportMapNodeID,
			fs.NodeID,
			httpprobe.NodeID,
			cas.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	configLoader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	manifestLoader, err := graft.Dep[ports.ManifestLoader](ctx)
	if err != nil {
		return nil, err
	}

	importMapLoader, err := graft.Dep[ports.ImportMapLoader](ctx)
	if err != nil {
		return nil, err
	}

	fileSystem, err := graft.Dep[ports.FileSystem](ctx)
	if err != nil {
		return nil, err
	}

	prober, err := graft.Dep[ports.RedirectProber](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.ContentStore](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(configLoader, manifestLoader, importMapLoader, fileSystem, prober, store, tracer, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    app,
		Logger: log,
	}, nil
}
