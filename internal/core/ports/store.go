package ports

import (
	"context"

	"go.trai.ch/modcache/internal/core/domain"
)

// ContentStore reads module bytes out of the content-addressed cache.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ContentStore interface {
	// Load returns the bytes of a resolved module. Remote modules are
	// checked against their expected hash.
	Load(ctx context.Context, module *domain.ResolvedModule) ([]byte, error)

	// Verify reports whether the file at path hashes to the expected sha256
	// hex digest. The error is reserved for failures to read the file.
	Verify(ctx context.Context, path, expected string) (bool, error)
}
