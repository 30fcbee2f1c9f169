package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/modcache/internal/adapters/logger"
	"go.trai.ch/modcache/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the lock map loader Graft node.
	NodeID graft.ID = "adapter.manifest_loader"

	// ImportMapNodeID is the unique identifier for the import map loader Graft node.
	ImportMapNodeID graft.ID = "adapter.import_map_loader"
)

func init() {
	graft.Register(graft.Node[ports.ManifestLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ManifestLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})

	graft.Register(graft.Node[ports.ImportMapLoader]{
		ID:        ImportMapNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ImportMapLoader, error) {
			return NewImportMapLoader(), nil
		},
	})
}
