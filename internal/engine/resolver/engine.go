// Package resolver turns an import specifier and its importer into a
// resolved module: a canonical URL, the cache file holding its bytes and the
// hash those bytes must have.
package resolver

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/core/ports"
	"go.trai.ch/modcache/internal/engine/cachepath"
	"go.trai.ch/modcache/internal/engine/importmap"
	"go.trai.ch/zerr"
)

// Options configures an Engine.
type Options struct {
	// CacheDir is the cache root holding deps/ and npm/.
	CacheDir string

	// PreferImport picks "import" before "require" in export conditions.
	PreferImport bool

	// RedirectTimeout bounds each redirect probe. Zero means
	// domain.DefaultRedirectTimeout.
	RedirectTimeout time.Duration

	// Loaders assigns a loader to every resolved URL.
	Loaders domain.LoaderRules
}

// Request is a single edge of the module graph.
type Request struct {
	Specifier string
	Importer  *url.URL

	// MustMap resolves the specifier through the import map only. A miss is
	// ErrSpecifierNotMapped instead of a soft miss.
	MustMap bool
}

// Engine is the resolution context of one build. It owns the lock map, the
// import map and the derived caches; it is safe for concurrent use.
type Engine struct {
	manifest *domain.Manifest
	imports  *importmap.Resolver
	fs       ports.FileSystem
	prober   ports.RedirectProber
	tracer   ports.Tracer
	opts     Options
}

// New creates an Engine. imports may be nil when the build has no import map.
func New(
	manifest *domain.Manifest,
	imports *importmap.Resolver,
	fs ports.FileSystem,
	prober ports.RedirectProber,
	tracer ports.Tracer,
	opts Options,
) *Engine {
	if imports == nil {
		imports = importmap.New(nil, &url.URL{Scheme: domain.SchemeFile, Path: "/"})
	}
	if opts.Loaders == nil {
		opts.Loaders = domain.NewLoaderRules(nil)
	}
	if opts.RedirectTimeout <= 0 {
		opts.RedirectTimeout = domain.DefaultRedirectTimeout
	}
	return &Engine{
		manifest: manifest,
		imports:  imports,
		fs:       fs,
		prober:   prober,
		tracer:   tracer,
		opts:     opts,
	}
}

// call carries the per-edge state of one Resolve.
type call struct {
	Request
	warnings []domain.Warning
}

func (c *call) warn(format string, args ...any) {
	c.warnings = append(c.warnings, domain.Warning{Specifier: c.Specifier, Text: fmt.Sprintf(format, args...)})
}

// strategy is one step of a resolution chain. A nil URL with a nil error
// hands the edge to the next strategy.
type strategy func(ctx context.Context, c *call) (*url.URL, error)

// Resolve resolves one edge. A nil Module with a nil error is a soft miss.
func (e *Engine) Resolve(ctx context.Context, req Request) (*domain.Resolution, error) {
	ctx, span := e.tracer.Start(ctx, "resolve")
	defer span.End()
	span.SetAttribute("specifier", req.Specifier)

	if req.Importer == nil {
		err := zerr.With(domain.ErrInvalidSpecifier, "importer", "")
		span.RecordError(err)
		return nil, err
	}
	req.Importer = domain.CanonicalURL(req.Importer)
	span.SetAttribute("importer", domain.Href(req.Importer))

	c := &call{Request: req}
	module, err := e.resolve(ctx, c)
	if err != nil {
		err = zerr.With(zerr.With(err, "specifier", req.Specifier), "importer", domain.Href(req.Importer))
		span.RecordError(err)
		return nil, err
	}

	if module != nil {
		span.SetAttribute("module.kind", module.Kind.String())
		span.SetAttribute("module.url", domain.Href(module.URL))
	}
	return &domain.Resolution{Module: module, Warnings: c.warnings}, nil
}

func (e *Engine) resolve(ctx context.Context, c *call) (*domain.ResolvedModule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.MustMap {
		u, err := e.imports.MustResolve(c.Specifier, c.Importer)
		if err != nil {
			return nil, err
		}
		return e.dispatch(ctx, c, u, false)
	}

	if c.Importer.Scheme == domain.SchemeNpm {
		return e.resolveFromPackage(ctx, c)
	}

	u, err := e.first(ctx, c, e.urlImporterStrategies())
	if err != nil || u == nil {
		return nil, err
	}
	return e.dispatch(ctx, c, u, false)
}

// first runs strategies in order and returns the first URL found.
func (e *Engine) first(ctx context.Context, c *call, strategies []strategy) (*url.URL, error) {
	for _, s := range strategies {
		u, err := s(ctx, c)
		if err != nil || u != nil {
			return u, err
		}
	}
	return nil, nil
}

// urlImporterStrategies is the chain for modules imported from file: and
// http(s): modules.
func (e *Engine) urlImporterStrategies() []strategy {
	return []strategy{
		e.viaImportMap,
		viaCoreModule,
		e.viaImporterURL,
		e.viaRootPackage,
	}
}

// viaImportMap looks the raw specifier up in the import map. Local modules
// hand every specifier to the map as written; remote modules only hand over
// bare names, since their relative imports are relative to the remote URL.
func (e *Engine) viaImportMap(_ context.Context, c *call) (*url.URL, error) {
	if c.Importer.Scheme != domain.SchemeFile && domain.IsURLLikeSpecifier(c.Specifier) {
		return nil, nil
	}
	return e.imports.Resolve(c.Specifier, mapScope(c.Importer))
}

// mapScope is the URL import map scopes are matched against. A remote
// module is scoped by its directory.
func mapScope(importer *url.URL) *url.URL {
	if domain.IsRemoteScheme(importer.Scheme) {
		return domain.Dir(importer)
	}
	return importer
}

func viaCoreModule(_ context.Context, c *call) (*url.URL, error) {
	if !domain.IsCoreModule(c.Specifier) {
		return nil, nil
	}
	return domain.CoreModuleURL(c.Specifier), nil
}

// viaImporterURL resolves relative, absolute and full URL specifiers against
// the importer, then gives the import map a chance to remap the result.
func (e *Engine) viaImporterURL(_ context.Context, c *call) (*url.URL, error) {
	var (
		u   *url.URL
		err error
	)
	switch domain.Classify(c.Specifier) {
	case domain.KindRelative, domain.KindAbsolute:
		u, err = domain.ResolveReference(c.Importer, c.Specifier)
	case domain.KindFullURL:
		u, err = domain.ParseURL(c.Specifier)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	mapped, err := e.imports.ResolveOrSelf(domain.Href(u), mapScope(c.Importer))
	if err != nil || mapped == nil {
		return u, err
	}
	return mapped, nil
}

// viaRootPackage maps a bare specifier of a local module to a package entry
// through the lock map's root specifiers.
func (e *Engine) viaRootPackage(_ context.Context, c *call) (*url.URL, error) {
	if domain.Classify(c.Specifier) != domain.KindBarePackage {
		return nil, nil
	}
	if c.Importer.Scheme != domain.SchemeFile {
		c.warn("%s is not mapped by the import map", c.Specifier)
		return nil, nil
	}
	pkg, subpath := domain.SplitBareSpecifier(c.Specifier)
	full, ok := e.manifest.RootPackage(pkg)
	if !ok {
		c.warn("package %s not found in lock map", pkg)
		return nil, nil
	}
	return domain.NewPackageURL(full, subpath), nil
}

// dispatch turns a resolved URL into a module according to its scheme.
// concrete marks package URLs that already name a probed file.
func (e *Engine) dispatch(ctx context.Context, c *call, u *url.URL, concrete bool) (*domain.ResolvedModule, error) {
	switch {
	case domain.IsRemoteScheme(u.Scheme):
		return e.resolveRemote(ctx, c, u)
	case u.Scheme == domain.SchemeNpm:
		if !concrete {
			resolved, err := e.resolvePackageURL(ctx, c, u)
			if err != nil || resolved == nil {
				return nil, err
			}
			u = resolved
		}
		return e.packageModule(u)
	case u.Scheme == domain.SchemeNode:
		return e.resolveCore(ctx, c, u)
	case u.Scheme == domain.SchemeFile:
		return &domain.ResolvedModule{
			Kind:      domain.ModuleLocal,
			URL:       u,
			CachePath: filepath.FromSlash(u.Path),
			Loader:    e.opts.Loaders.Match(domain.Href(u)),
		}, nil
	default:
		c.warn("%s has an unsupported scheme", domain.Href(u))
		return nil, nil
	}
}

// resolveCore applies the bundling policy to a core module: an import map
// polyfill wins, an "empty" loader rule makes it an empty module, anything
// else cannot be bundled.
func (e *Engine) resolveCore(ctx context.Context, c *call, u *url.URL) (*domain.ResolvedModule, error) {
	href := domain.Href(u)
	polyfill, err := e.imports.Resolve(href, c.Importer)
	if err != nil {
		return nil, err
	}
	if polyfill != nil && polyfill.Scheme != domain.SchemeNode {
		return e.dispatch(ctx, c, polyfill, false)
	}

	loader := e.opts.Loaders.Match(href)
	if loader != domain.LoaderEmpty {
		return nil, zerr.With(domain.ErrCoreModuleNotBundlable, "module", href)
	}
	return &domain.ResolvedModule{Kind: domain.ModuleCore, URL: u, Loader: loader}, nil
}

func (e *Engine) packageModule(u *url.URL) (*domain.ResolvedModule, error) {
	path, err := cachepath.ToCachePath(u, e.opts.CacheDir)
	if err != nil {
		return nil, err
	}
	return &domain.ResolvedModule{
		Kind:      domain.ModulePackage,
		URL:       u,
		CachePath: path,
		Loader:    e.opts.Loaders.Match(domain.Href(u)),
	}, nil
}
