package ports

import "go.trai.ch/modcache/internal/core/domain"

//go:generate mockgen -source=manifest_loader.go -destination=mocks/mock_manifest_loader.go -package=mocks

// ManifestLoader reads the lock map.
type ManifestLoader interface {
	// Load reads and decodes the lock map at path.
	Load(path string) (*domain.Manifest, error)
}

// ImportMapLoader reads an import map document.
type ImportMapLoader interface {
	// Load reads and decodes the import map at path.
	Load(path string) (*domain.ImportMap, error)
}
