package domain

import "net/url"

// ModuleKind says where the bytes of a resolved module come from.
type ModuleKind int

const (
	// ModuleLocal is a file: module read straight from disk.
	ModuleLocal ModuleKind = iota
	// ModuleRemote is an http(s) module served from the remote cache and verified on load.
	ModuleRemote
	// ModulePackage is an npm module served from the package cache.
	ModulePackage
	// ModuleCore is a core module replaced by an empty loader.
	ModuleCore
)

func (k ModuleKind) String() string {
	switch k {
	case ModuleLocal:
		return "local"
	case ModuleRemote:
		return "remote"
	case ModulePackage:
		return "package"
	case ModuleCore:
		return "core"
	default:
		return "unknown"
	}
}

// ResolvedModule is the outcome of a successful resolution.
type ResolvedModule struct {
	Kind ModuleKind

	// URL is the canonical module URL.
	URL *url.URL

	// CachePath is the file holding the module bytes. It is empty for core modules.
	CachePath string

	// ExpectedHash is the lock map digest of a remote module.
	ExpectedHash string

	// Loader is the content type the host should use. Empty when no rule matched.
	Loader Loader
}

// Warning is a non-fatal diagnostic produced while resolving one edge.
type Warning struct {
	Specifier string
	Text      string
}

// Resolution is what a single resolve call yields. A nil Module with no error
// is a soft miss: the caller may try another strategy or fail the edge.
type Resolution struct {
	Module   *ResolvedModule
	Warnings []Warning
}

// Found reports whether the resolution produced a module.
func (r *Resolution) Found() bool {
	return r != nil && r.Module != nil
}
