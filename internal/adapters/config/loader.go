// Package config provides the configuration loader for modcache.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the configuration schema version this loader understands.
const SupportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds modcache.yaml in cwd or one of its parents and returns the
// resulting configuration. Without a file the defaults apply with cwd as the
// project root.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	path, found := findConfiguration(cwd)
	if !found {
		l.Logger.Debug(fmt.Sprintf("no %s found from %s, using defaults", domain.ConfigFileName, cwd))
		return l.build(cwd, &Modfile{})
	}
	return l.LoadFile(path)
}

// LoadFile reads the configuration file at path.
func (l *Loader) LoadFile(path string) (*domain.Config, error) {
	var modfile Modfile
	if err := readAndUnmarshalYAML(path, &modfile); err != nil {
		return nil, err
	}
	if modfile.Version != "" && modfile.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", path, modfile.Version, SupportedVersion))
	}
	l.Logger.Debug("using configuration " + path)
	return l.build(filepath.Dir(path), &modfile)
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func readAndUnmarshalYAML(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is discovered from the working directory
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}
	return nil
}

// build turns the file representation into a domain.Config. Relative paths
// are relative to root.
func (l *Loader) build(root string, m *Modfile) (*domain.Config, error) {
	cfg := &domain.Config{
		Root:            root,
		CacheDir:        resolvePath(root, m.CacheDir),
		LockFile:        resolvePath(root, m.LockFile),
		ImportMap:       resolvePath(root, m.ImportMap),
		ImportMapBase:   resolvePath(root, m.ImportMapBase),
		RedirectTimeout: domain.DefaultRedirectTimeout,
		PreferImport:    m.PreferImport,
	}

	if cfg.CacheDir == "" {
		dir, err := domain.DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		cfg.CacheDir = dir
	}

	if cfg.LockFile == "" {
		candidate := filepath.Join(root, domain.DefaultLockFileName)
		if _, err := os.Stat(candidate); err == nil {
			cfg.LockFile = candidate
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", candidate)
		}
	}

	if cfg.ImportMap != "" && cfg.ImportMapBase == "" {
		cfg.ImportMapBase = filepath.Dir(cfg.ImportMap)
	}

	if m.RedirectTimeout != "" {
		d, err := time.ParseDuration(m.RedirectTimeout)
		if err != nil || d <= 0 {
			err = zerr.With(domain.ErrConfigParseFailed, "redirectTimeout", m.RedirectTimeout)
			return nil, err
		}
		cfg.RedirectTimeout = d
	}

	for i, dto := range m.LoaderRules {
		rule, err := domain.NewLoaderRule(dto.Test, dto.Loader)
		if err != nil {
			return nil, zerr.With(err, "rule", i)
		}
		cfg.LoaderRules = append(cfg.LoaderRules, rule)
	}

	return cfg, nil
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
