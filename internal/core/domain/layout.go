package domain

import (
	"os"
	"path/filepath"
)

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "modcache.yaml"

	// DefaultLockFileName is the lock map looked up next to the config file when none is configured.
	DefaultLockFileName = "deno.lock"

	// CacheDirEnv names the environment variable that overrides the cache root.
	CacheDirEnv = "DENO_DIR"

	// CacheDirName is the directory created under the user cache dir when no cache root is configured.
	CacheDirName = "deno"

	// RemoteCacheDirName is the top-level cache directory for remote modules.
	RemoteCacheDirName = "deps"

	// PackageCacheDirName is the top-level cache directory for npm packages.
	PackageCacheDirName = "npm"

	// PackageRegistryHost is the registry directory below PackageCacheDirName.
	PackageRegistryHost = "registry.npmjs.org"

	// PackageDescriptorName is the file name of a package descriptor.
	PackageDescriptorName = "package.json"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultCacheDir returns the cache root used when the configuration does not name one.
// $DENO_DIR wins, then the user cache directory joined with "deno".
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv(CacheDirEnv); dir != "" {
		return filepath.Clean(dir), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", ErrCacheDirNotFound
	}
	return filepath.Join(base, CacheDirName), nil
}
