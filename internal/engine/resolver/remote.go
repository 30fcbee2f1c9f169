package resolver

import (
	"context"
	"net/url"

	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/engine/cachepath"
)

// resolveRemote finds u in the lock map, following recorded redirects first
// and asking the server second. A URL the lock map does not know is a
// warning, not an error. A probe that fails or times out counts as no
// redirect; only cancellation of ctx itself aborts.
func (e *Engine) resolveRemote(ctx context.Context, c *call, u *url.URL) (*domain.ResolvedModule, error) {
	requested := domain.Href(u)
	href := e.manifest.FollowRedirects(requested)
	hash, ok := e.manifest.RemoteHash(href)

	if !ok {
		probeCtx, cancel := context.WithTimeout(ctx, e.opts.RedirectTimeout)
		location, err := e.prober.RedirectLocation(probeCtx, href)
		cancel()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err == nil && location != "" {
			href = e.manifest.FollowRedirects(location)
			hash, ok = e.manifest.RemoteHash(href)
		}
	}
	if !ok {
		c.warn("%s not found in lock map", requested)
		return nil, nil
	}

	target, err := domain.ParseURL(href)
	if err != nil {
		return nil, err
	}
	path, err := cachepath.ToCachePath(target, e.opts.CacheDir)
	if err != nil {
		return nil, err
	}
	return &domain.ResolvedModule{
		Kind:         domain.ModuleRemote,
		URL:          target,
		CachePath:    path,
		ExpectedHash: hash,
		Loader:       e.opts.Loaders.Match(href),
	}, nil
}
