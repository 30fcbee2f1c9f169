package resolver

import (
	"context"
	"net/url"
	"strings"

	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// packageImporterStrategies is the Node-style chain for modules imported
// from inside a package.
func (e *Engine) packageImporterStrategies() []strategy {
	return []strategy{
		viaCoreModule,
		e.viaPackageImports,
		e.viaRelativePath,
		e.viaFullURL,
		e.viaSelfReference,
		e.viaDependency,
	}
}

// resolveFromPackage resolves an import made by a package module. The import
// map gets the final say on the result, which is how polyfills replace files
// deep inside a package.
func (e *Engine) resolveFromPackage(ctx context.Context, c *call) (*domain.ResolvedModule, error) {
	resolved, err := e.first(ctx, c, e.packageImporterStrategies())
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		c.warn("%s could not be resolved from %s", c.Specifier, domain.Href(c.Importer))
		return nil, nil
	}

	href := domain.Href(resolved)
	mapped, err := e.imports.ResolveOrSelf(href, c.Importer)
	if err != nil {
		return nil, err
	}
	if mapped != nil && domain.Href(mapped) != href {
		return e.dispatch(ctx, c, mapped, false)
	}
	return e.dispatch(ctx, c, resolved, resolved.Scheme == domain.SchemeNpm)
}

// viaPackageImports resolves "#name" specifiers through the imports field of
// the nearest package.json in the importer's package.
func (e *Engine) viaPackageImports(ctx context.Context, c *call) (*url.URL, error) {
	if !strings.HasPrefix(c.Specifier, "#") {
		return nil, nil
	}
	var found *url.URL
	err := e.walkPackageScopes(ctx, c.Importer, func(dir *url.URL, desc *domain.PackageDescriptor) (bool, error) {
		if len(desc.Imports) == 0 {
			return true, nil
		}
		entries := make(map[string]string, len(desc.Imports))
		for key, target := range desc.Imports {
			if p := target.Choose(e.opts.PreferImport); p != "" {
				entries[key] = p
			}
		}
		target, ok := domain.ResolveSubpath(c.Specifier, entries)
		if !ok {
			return true, nil
		}
		u, err := domain.ResolveReference(dir, target)
		if err != nil {
			return true, err
		}
		found, err = e.probe(ctx, u)
		return true, err
	})
	return found, err
}

func (e *Engine) viaRelativePath(ctx context.Context, c *call) (*url.URL, error) {
	switch domain.Classify(c.Specifier) {
	case domain.KindAbsolute:
		return nil, zerr.With(domain.ErrAbsoluteImportInPackage, "specifier", c.Specifier)
	case domain.KindRelative:
		u, err := domain.ResolveReference(c.Importer, c.Specifier)
		if err != nil {
			return nil, err
		}
		return e.probe(ctx, u)
	default:
		return nil, nil
	}
}

func (e *Engine) viaFullURL(ctx context.Context, c *call) (*url.URL, error) {
	if domain.Classify(c.Specifier) != domain.KindFullURL {
		return nil, nil
	}
	u, err := domain.ParseURL(c.Specifier)
	if err != nil {
		return nil, err
	}
	if u.Scheme == domain.SchemeNpm {
		return e.resolvePackageURL(ctx, c, u)
	}
	return u, nil
}

// viaSelfReference resolves a package importing its own name through its own
// exports field. main is not consulted.
func (e *Engine) viaSelfReference(ctx context.Context, c *call) (*url.URL, error) {
	if domain.Classify(c.Specifier) != domain.KindBarePackage || strings.HasPrefix(c.Specifier, "#") {
		return nil, nil
	}
	pkg, subpath := domain.SplitBareSpecifier(c.Specifier)
	name, _ := domain.DecomposePackageName(pkg)

	var found *url.URL
	err := e.walkPackageScopes(ctx, c.Importer, func(dir *url.URL, desc *domain.PackageDescriptor) (bool, error) {
		if desc.Name != name {
			return false, nil
		}
		target, ok := domain.ResolveSubpath(exportsKey(subpath), desc.Entries(e.opts.PreferImport, false))
		if !ok {
			return true, nil
		}
		u, err := domain.ResolveReference(dir, target)
		if err != nil {
			return true, err
		}
		found, err = e.probe(ctx, u)
		return true, err
	})
	return found, err
}

// viaDependency looks the package up among the importer's dependency edges.
func (e *Engine) viaDependency(ctx context.Context, c *call) (*url.URL, error) {
	if domain.Classify(c.Specifier) != domain.KindBarePackage || strings.HasPrefix(c.Specifier, "#") {
		return nil, nil
	}
	importer, err := domain.ParsePackageURL(c.Importer)
	if err != nil {
		return nil, err
	}
	pkg, subpath := domain.SplitBareSpecifier(c.Specifier)
	full, ok := e.manifest.Dependency(importer.FullName, pkg)
	if !ok {
		c.warn("package %s is not a dependency of %s in lock map", pkg, importer.FullName)
		return nil, nil
	}
	return e.resolvePackageEntry(ctx, full, subpath)
}

// walkPackageScopes visits every package.json from the importer's directory up
// to its package root. visit returns true to stop the walk.
func (e *Engine) walkPackageScopes(
	ctx context.Context,
	importer *url.URL,
	visit func(dir *url.URL, desc *domain.PackageDescriptor) (bool, error),
) error {
	pkg, err := domain.ParsePackageURL(importer)
	if err != nil {
		return err
	}
	root := domain.Href(pkg.Root())

	dir := domain.Dir(importer)
	for strings.HasPrefix(domain.Href(dir), root) {
		desc, err := e.readDescriptor(ctx, dir)
		if err != nil {
			return err
		}
		if desc != nil {
			stop, err := visit(dir, desc)
			if err != nil || stop {
				return err
			}
		}
		if domain.Href(dir) == root {
			return nil
		}
		dir, err = domain.ResolveReference(dir, "..")
		if err != nil {
			return err
		}
		dir = domain.WithTrailingSlash(dir)
	}
	return nil
}

// resolvePackageURL pins an npm URL written by a user or an import map,
// such as "npm:react@^18.2.0/jsx-runtime", and resolves it to a file.
func (e *Engine) resolvePackageURL(ctx context.Context, c *call, u *url.URL) (*url.URL, error) {
	pkg, err := domain.ParsePackageURL(u)
	if err != nil {
		return nil, err
	}
	full, ok := e.manifest.RootPackage(pkg.FullName)
	if !ok {
		c.warn("the URL %s may not be cached, run the cache step for the entry module", domain.Href(u))
		return nil, nil
	}
	return e.resolvePackageEntry(ctx, full, pkg.Subpath)
}

// resolvePackageEntry resolves subpath of the pinned package full through its
// package.json. A subpath the exports field does not cover is taken as a path
// inside the package.
func (e *Engine) resolvePackageEntry(ctx context.Context, full, subpath string) (*url.URL, error) {
	root := domain.NewPackageURL(full, "/")
	desc, err := e.readDescriptor(ctx, root)
	if err != nil || desc == nil {
		return nil, err
	}

	target, ok := domain.ResolveSubpath(exportsKey(subpath), desc.Entries(e.opts.PreferImport, true))
	if !ok {
		if subpath == "/" {
			return e.probeIndex(ctx, root)
		}
		return e.probe(ctx, domain.NewPackageURL(full, subpath))
	}
	u, err := domain.ResolveReference(root, target)
	if err != nil {
		return nil, err
	}
	return e.probe(ctx, u)
}

// exportsKey turns a bare specifier subpath ("/" or "/x") into an exports key.
func exportsKey(subpath string) string {
	if subpath == "" || subpath == "/" {
		return "."
	}
	return "." + subpath
}
