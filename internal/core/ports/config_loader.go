package ports

import "go.trai.ch/modcache/internal/core/domain"

// ConfigLoader defines the interface for loading the resolver configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the configuration starting at cwd. A missing config file
	// yields the defaults rooted at cwd.
	Load(cwd string) (*domain.Config, error)

	// LoadFile reads the configuration file at path.
	LoadFile(path string) (*domain.Config, error)
}
