package domain

import "time"

// DefaultRedirectTimeout bounds a single redirect probe.
const DefaultRedirectTimeout = 10 * time.Second

// Config holds the settings for one build.
type Config struct {
	// Root is the directory the config file was found in, or the working directory.
	Root string

	// CacheDir is the cache root holding deps/ and npm/.
	CacheDir string

	// LockFile is the path of the lock map.
	LockFile string

	// ImportMap is the path of the import map. Empty means no import map.
	ImportMap string

	// ImportMapBase is the directory relative import map entries resolve against.
	ImportMapBase string

	// RedirectTimeout bounds each redirect probe.
	RedirectTimeout time.Duration

	// PreferImport selects "import" before "require" in export conditions.
	PreferImport bool

	// LoaderRules are consulted before DefaultLoaderRules.
	LoaderRules []LoaderRule
}
