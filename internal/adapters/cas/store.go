// Package cas reads module bytes out of the content-addressed module cache
// and checks remote modules against the lock map.
package cas

import (
	"context"

	"github.com/opencontainers/go-digest"
	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store implements ports.ContentStore on top of a cache file system.
// It never writes to the cache.
type Store struct {
	fs     ports.FileSystem
	tracer ports.Tracer
}

// NewStore creates a Store reading through fs.
func NewStore(fs ports.FileSystem, tracer ports.Tracer) *Store {
	return &Store{fs: fs, tracer: tracer}
}

// Load returns the bytes of module. Remote content must hash to the module's
// expected digest; package and local content is returned as read. Core
// modules and modules with the empty loader load as zero bytes.
func (s *Store) Load(ctx context.Context, module *domain.ResolvedModule) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "load")
	defer span.End()
	span.SetAttribute("module.url", domain.Href(module.URL))
	span.SetAttribute("module.kind", module.Kind.String())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if module.Kind == domain.ModuleCore || module.Loader == domain.LoaderEmpty {
		return []byte{}, nil
	}

	data, err := s.read(module.CachePath)
	if err != nil {
		span.RecordError(err)
		return nil, zerr.With(err, "url", domain.Href(module.URL))
	}

	if module.Kind == domain.ModuleRemote {
		if err := check(data, module.ExpectedHash); err != nil {
			err = zerr.With(zerr.With(err, "url", domain.Href(module.URL)), "path", module.CachePath)
			span.RecordError(err)
			return nil, err
		}
	}
	span.SetAttribute("bytes", len(data))
	return data, nil
}

// Verify reports whether the file at path hashes to the expected sha256 hex
// digest. A read failure is returned as ErrCacheLoadFailed, never as a
// mismatch.
func (s *Store) Verify(ctx context.Context, path, expected string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	data, err := s.read(path)
	if err != nil {
		return false, err
	}
	return check(data, expected) == nil, nil
}

func (s *Store) read(path string) ([]byte, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheLoadFailed.Error()), "path", path)
	}
	return data, nil
}

// check hashes data and compares it to the lock map digest. A malformed
// digest can never match, so it is reported as outdated content too.
func check(data []byte, expected string) error {
	want := digest.NewDigestFromEncoded(digest.SHA256, expected)
	if err := want.Validate(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrOutdatedCache.Error()), "expected", expected)
	}

	v := want.Verifier()
	if _, err := v.Write(data); err != nil {
		return zerr.Wrap(err, domain.ErrOutdatedCache.Error())
	}
	if !v.Verified() {
		err := zerr.With(domain.ErrOutdatedCache, "expected", expected)
		return zerr.With(err, "actual", digest.FromBytes(data).Encoded())
	}
	return nil
}
