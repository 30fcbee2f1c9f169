// Package manifest reads lock maps and import maps from disk.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/core/ports"
	"go.trai.ch/zerr"
)

const npmPrefix = domain.SchemeNpm + ":"

// Loader implements ports.ManifestLoader for JSON lock maps.
type Loader struct {
	log ports.Logger
}

// NewLoader creates a new lock map loader.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{log: log}
}

// Load reads and validates the lock map at path.
func (l *Loader) Load(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the configuration
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}
	m, err := l.Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return m, nil
}

// Parse decodes a lock map document. Only versions "2" and "3" are accepted.
func (l *Loader) Parse(data []byte) (*domain.Manifest, error) {
	var raw lockFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, zerr.Wrap(err, domain.ErrManifestParseFailed.Error())
	}

	m := &domain.Manifest{
		Version:           raw.Version,
		Remote:            orEmpty(raw.Remote),
		Redirects:         orEmpty(raw.Redirects),
		PackageSpecifiers: make(map[string]string),
		Packages:          make(map[string]domain.PackageEntry),
	}

	var (
		specifiers map[string]string
		packages   map[string]packageDTO
	)
	switch raw.Version {
	case "2":
		if raw.Npm != nil {
			specifiers, packages = raw.Npm.Specifiers, raw.Npm.Packages
		}
	case "3":
		if raw.Packages != nil {
			specifiers, packages = raw.Packages.Specifiers, raw.Packages.Npm
		}
	default:
		return nil, zerr.With(domain.ErrUnsupportedManifestVersion, "version", raw.Version)
	}

	for key, value := range specifiers {
		key, ok := trimNpm(key)
		if !ok {
			continue
		}
		value, _ = trimNpm(value)
		m.PackageSpecifiers[key] = value
	}
	for full, pkg := range packages {
		entry := domain.PackageEntry{
			Integrity:    pkg.Integrity,
			Dependencies: make(map[string]string, len(pkg.Dependencies)),
		}
		for name, dep := range pkg.Dependencies {
			dep, _ = trimNpm(dep)
			entry.Dependencies[name] = dep
		}
		m.Packages[full] = entry
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	for _, edge := range m.DanglingEdges() {
		l.log.Warn(fmt.Sprintf("lock map edge %s has no package entry", edge))
	}
	l.log.Debug(fmt.Sprintf("lock map v%s: %d remote, %d redirects, %d packages",
		m.Version, len(m.Remote), len(m.Redirects), len(m.Packages)))
	return m, nil
}

// trimNpm drops the "npm:" prefix. Keys in version 3 lock maps carry a scheme
// for every registry; anything that is not npm is reported as not ok.
func trimNpm(s string) (string, bool) {
	if rest, ok := strings.CutPrefix(s, npmPrefix); ok {
		return rest, true
	}
	if i := strings.Index(s, ":"); i > 0 && !strings.Contains(s[:i], "@") && !strings.Contains(s[:i], "/") {
		return s, false
	}
	return s, true
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// ImportMapLoader implements ports.ImportMapLoader.
type ImportMapLoader struct{}

// NewImportMapLoader creates a new import map loader.
func NewImportMapLoader() *ImportMapLoader {
	return &ImportMapLoader{}
}

// Load reads the import map at path.
func (ImportMapLoader) Load(path string) (*domain.ImportMap, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the configuration
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrImportMapReadFailed.Error()), "path", path)
	}
	m, err := ParseImportMap(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return m, nil
}

// ParseImportMap decodes an import map document.
func ParseImportMap(data []byte) (*domain.ImportMap, error) {
	var m domain.ImportMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, zerr.Wrap(err, domain.ErrInvalidImportMap.Error())
	}
	return &m, nil
}
