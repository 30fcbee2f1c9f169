package resolver

import (
	"context"
	"net/url"

	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/engine/cachepath"
	"go.trai.ch/zerr"
)

// fileProbeSuffixes are appended to a module URL, in order, when probing it as a file.
var fileProbeSuffixes = []string{"", ".js", ".cjs", ".mjs", ".json", ".node"}

// indexProbeNames are tried, in order, inside a directory.
var indexProbeNames = []string{"index.js", "index.cjs", "index.mjs", "index.json", "index.node"}

// exists reports whether the cache file of a package URL is present.
func (e *Engine) exists(ctx context.Context, u *url.URL) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := cachepath.ToCachePath(u, e.opts.CacheDir)
	if err != nil {
		return false, err
	}
	return e.fs.IsFile(path)
}

// probeFile tries u with each of fileProbeSuffixes.
func (e *Engine) probeFile(ctx context.Context, u *url.URL) (*url.URL, error) {
	for _, suffix := range fileProbeSuffixes {
		candidate := *u
		candidate.Path += suffix
		candidate.RawPath = ""
		ok, err := e.exists(ctx, &candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			return &candidate, nil
		}
	}
	return nil, nil
}

// probeIndex tries each of indexProbeNames inside the directory u.
func (e *Engine) probeIndex(ctx context.Context, u *url.URL) (*url.URL, error) {
	dir := domain.WithTrailingSlash(u)
	for _, name := range indexProbeNames {
		candidate, err := domain.ResolveReference(dir, name)
		if err != nil {
			return nil, err
		}
		ok, err := e.exists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			return candidate, nil
		}
	}
	return nil, nil
}

// probeDirectory resolves u as a directory: the "." entry of its
// package.json as a file, then as a directory index, then the directory's
// own index. Without a package.json only the index is tried.
func (e *Engine) probeDirectory(ctx context.Context, u *url.URL) (*url.URL, error) {
	dir := domain.WithTrailingSlash(u)
	desc, err := e.readDescriptor(ctx, dir)
	if err != nil || desc == nil {
		if err != nil {
			return nil, err
		}
		return e.probeIndex(ctx, dir)
	}

	if main, ok := desc.Entries(e.opts.PreferImport, true)["."]; ok {
		mainURL, err := domain.ResolveReference(dir, main)
		if err != nil {
			return nil, err
		}
		found, err := e.probeFile(ctx, mainURL)
		if err != nil || found != nil {
			return found, err
		}
		found, err = e.probeIndex(ctx, mainURL)
		if err != nil || found != nil {
			return found, err
		}
	}
	return e.probeIndex(ctx, dir)
}

// probe resolves u as a file, then as a directory.
func (e *Engine) probe(ctx context.Context, u *url.URL) (*url.URL, error) {
	found, err := e.probeFile(ctx, u)
	if err != nil || found != nil {
		return found, err
	}
	return e.probeDirectory(ctx, u)
}

// readDescriptor parses dir/package.json. A missing file yields nil.
func (e *Engine) readDescriptor(ctx context.Context, dir *url.URL) (*domain.PackageDescriptor, error) {
	pj, err := domain.ResolveReference(dir, domain.PackageDescriptorName)
	if err != nil {
		return nil, err
	}
	ok, err := e.exists(ctx, pj)
	if err != nil || !ok {
		return nil, err
	}
	path, err := cachepath.ToCachePath(pj, e.opts.CacheDir)
	if err != nil {
		return nil, err
	}
	data, err := e.fs.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheLoadFailed.Error()), "path", path)
	}
	desc, err := domain.ParsePackageDescriptor(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return desc, nil
}
