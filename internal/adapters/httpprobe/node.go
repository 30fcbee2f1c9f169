package httpprobe

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/core/ports"
)

// NodeID is the unique identifier for the redirect prober Graft node.
const NodeID graft.ID = "adapter.redirect_prober"

func init() {
	graft.Register(graft.Node[ports.RedirectProber]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RedirectProber, error) {
			return New(domain.DefaultRedirectTimeout), nil
		},
	})
}
