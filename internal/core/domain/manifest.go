package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Manifest is the frozen lock map a build resolves against.
// It is immutable once loaded and safe to share between goroutines.
type Manifest struct {
	// Version is the lock map format version ("2" or "3").
	Version string

	// Remote maps every known remote URL to the sha256 hex digest of its content.
	Remote map[string]string

	// Redirects maps a URL to the URL it redirects to, one hop per entry.
	Redirects map[string]string

	// PackageSpecifiers maps root-level package specifiers to pinned full names.
	PackageSpecifiers map[string]string

	// Packages maps a pinned full name to its lock entry.
	Packages map[string]PackageEntry
}

// PackageEntry is the lock entry of a single pinned package.
type PackageEntry struct {
	// Integrity is the registry integrity string. It is recorded but not checked on load.
	Integrity string

	// Dependencies maps dependency names to pinned full names.
	Dependencies map[string]string
}

// maxRedirectHops bounds FollowRedirects so a cyclic redirect map terminates.
const maxRedirectHops = 32

// FollowRedirects follows the redirect map from href until it reaches a URL
// with no further redirect.
func (m *Manifest) FollowRedirects(href string) string {
	for range maxRedirectHops {
		next, ok := m.Redirects[href]
		if !ok || next == href {
			return href
		}
		href = next
	}
	return href
}

// RemoteHash returns the expected content hash of a remote URL.
func (m *Manifest) RemoteHash(href string) (string, bool) {
	hash, ok := m.Remote[href]
	return hash, ok
}

// RootPackage looks up a root-level package specifier. An exact key wins;
// otherwise the first key, in sorted order, naming the same package is used.
// A full name that is itself a package key resolves to itself.
func (m *Manifest) RootPackage(specifier string) (string, bool) {
	if full, ok := m.PackageSpecifiers[specifier]; ok {
		return full, true
	}
	if _, ok := m.Packages[specifier]; ok {
		return specifier, true
	}
	name, _ := DecomposePackageName(specifier)
	return lookupByName(m.PackageSpecifiers, name)
}

// Dependency looks up a dependency of the pinned package importer.
func (m *Manifest) Dependency(importer, specifier string) (string, bool) {
	entry, ok := m.Packages[importer]
	if !ok {
		return "", false
	}
	if full, ok := entry.Dependencies[specifier]; ok {
		return full, true
	}
	name, _ := DecomposePackageName(specifier)
	return lookupByName(entry.Dependencies, name)
}

func lookupByName(specifiers map[string]string, name string) (string, bool) {
	keys := make([]string, 0, len(specifiers))
	for k := range specifiers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if n, _ := DecomposePackageName(k); n == name {
			return specifiers[k], true
		}
	}
	return "", false
}

// DanglingEdges returns every dependency edge whose target is not a package key.
// Each entry is formatted as "from -> to".
func (m *Manifest) DanglingEdges() []string {
	var dangling []string
	for from, entry := range m.Packages {
		for _, to := range entry.Dependencies {
			if _, ok := m.Packages[to]; ok || IsCoreModule(to) {
				continue
			}
			dangling = append(dangling, from+" -> "+to)
		}
	}
	slices.Sort(dangling)
	return dangling
}

// Validate checks that every package full name carries a version.
func (m *Manifest) Validate() error {
	for full := range m.Packages {
		if _, version := DecomposePackageName(TrimPeerSuffix(full)); version == "" {
			return zerr.With(ErrInvalidPackageName, "package", full)
		}
	}
	return nil
}
