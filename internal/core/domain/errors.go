package domain

import "go.trai.ch/zerr"

var (
	// ErrUnsupportedManifestVersion is returned when the lock map declares a version other than "2" or "3".
	ErrUnsupportedManifestVersion = zerr.New("unsupported lock map version")

	// ErrManifestReadFailed is returned when the lock map file cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read lock map")

	// ErrManifestParseFailed is returned when the lock map file is not valid JSON.
	ErrManifestParseFailed = zerr.New("failed to parse lock map")

	// ErrInvalidPackageName is returned when a package full name cannot be split into name and version.
	ErrInvalidPackageName = zerr.New("invalid package full name")

	// ErrImportMapReadFailed is returned when the import map file cannot be read.
	ErrImportMapReadFailed = zerr.New("failed to read import map")

	// ErrInvalidImportMap is returned when the import map document is malformed.
	ErrInvalidImportMap = zerr.New("invalid import map")

	// ErrImportMapBacktracking is returned when a prefix remap escapes the mapped address.
	ErrImportMapBacktracking = zerr.New("import map resolution backtracks out of its prefix")

	// ErrSpecifierNotMapped is returned when a specifier must resolve through the import map but has no entry.
	ErrSpecifierNotMapped = zerr.New("specifier is not mapped by the import map")

	// ErrMixedExportKeys is returned when package.json exports mixes subpath keys with condition keys.
	ErrMixedExportKeys = zerr.New("condition and path keys are mixed in package.json exports")

	// ErrInvalidPackageDescriptor is returned when a package.json cannot be parsed.
	ErrInvalidPackageDescriptor = zerr.New("invalid package.json")

	// ErrAbsoluteImportInPackage is returned when a package module imports an absolute path.
	ErrAbsoluteImportInPackage = zerr.New("absolute path import is not permitted in Node.js modules")

	// ErrCoreModuleNotBundlable is returned when a core module is imported without a polyfill or an empty loader.
	ErrCoreModuleNotBundlable = zerr.New("cannot import Node.js core modules")

	// ErrUnsupportedScheme is returned when a URL has a scheme the cache layout does not cover.
	ErrUnsupportedScheme = zerr.New("unsupported URL scheme")

	// ErrInvalidSpecifier is returned when a specifier cannot be turned into a URL.
	ErrInvalidSpecifier = zerr.New("invalid module specifier")

	// ErrOutdatedCache is returned when cached remote content does not match the lock map hash.
	ErrOutdatedCache = zerr.New("outdated cache detected")

	// ErrCacheLoadFailed is returned when a cache file is missing or unreadable.
	ErrCacheLoadFailed = zerr.New("failed to load cache")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidLoaderRule is returned when a loader rule has a bad pattern or an unknown loader.
	ErrInvalidLoaderRule = zerr.New("invalid loader rule")

	// ErrLockFileNotConfigured is returned when no lock map path is available.
	ErrLockFileNotConfigured = zerr.New("no lock file configured")

	// ErrCacheDirNotFound is returned when no cache directory could be determined.
	ErrCacheDirNotFound = zerr.New("could not determine cache directory")

	// ErrModuleNotFound is returned when a specifier that must load resolves to nothing.
	ErrModuleNotFound = zerr.New("module could not be resolved")

	// ErrUnresolvedSpecifiers is returned when a batch left at least one specifier unresolved.
	ErrUnresolvedSpecifiers = zerr.New("one or more specifiers could not be resolved")

	// ErrVerificationFailed is returned when at least one cached remote module failed verification.
	ErrVerificationFailed = zerr.New("cache verification failed")
)
