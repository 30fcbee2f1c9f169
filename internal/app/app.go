// Package app implements the application layer for modcache.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/core/ports"
	"go.trai.ch/modcache/internal/engine/cachepath"
	"go.trai.ch/modcache/internal/engine/importmap"
	"go.trai.ch/modcache/internal/engine/resolver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader    ports.ConfigLoader
	manifestLoader  ports.ManifestLoader
	importMapLoader ports.ImportMapLoader
	fs              ports.FileSystem
	prober          ports.RedirectProber
	store           ports.ContentStore
	tracer          ports.Tracer
	logger          ports.Logger
	workers         int
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	manifestLoader ports.ManifestLoader,
	importMapLoader ports.ImportMapLoader,
	fs ports.FileSystem,
	prober ports.RedirectProber,
	store ports.ContentStore,
	tracer ports.Tracer,
	log ports.Logger,
) *App {
	return &App{
		configLoader:    configLoader,
		manifestLoader:  manifestLoader,
		importMapLoader: importMapLoader,
		fs:              fs,
		prober:          prober,
		store:           store,
		tracer:          tracer,
		logger:          log,
		workers:         runtime.NumCPU(),
	}
}

// WithWorkers bounds the number of concurrent resolutions and verifications.
func (a *App) WithWorkers(n int) *App {
	if n > 0 {
		a.workers = n
	}
	return a
}

// SetVerbose toggles debug logging when the logger supports it.
func (a *App) SetVerbose(enable bool) {
	if l, ok := a.logger.(interface{ SetVerbose(bool) }); ok {
		l.SetVerbose(enable)
	}
}

// Overrides carries settings given on the command line. Empty fields keep
// the configured value.
type Overrides struct {
	// Dir is the working directory configuration discovery starts from.
	Dir string

	// ConfigFile skips discovery and reads this file.
	ConfigFile string

	CacheDir  string
	LockFile  string
	ImportMap string
}

// LoadConfig reads the configuration and applies the overrides.
func (a *App) LoadConfig(ov Overrides) (*domain.Config, error) {
	dir := ov.Dir
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve working directory")
	}

	var cfg *domain.Config
	if ov.ConfigFile != "" {
		cfg, err = a.configLoader.LoadFile(ov.ConfigFile)
	} else {
		cfg, err = a.configLoader.Load(dir)
	}
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if ov.CacheDir != "" {
		cfg.CacheDir = ov.CacheDir
	}
	if ov.LockFile != "" {
		cfg.LockFile = ov.LockFile
	}
	if ov.ImportMap != "" {
		cfg.ImportMap = ov.ImportMap
		cfg.ImportMapBase = filepath.Dir(ov.ImportMap)
	}
	return cfg, nil
}

// session is the build context of one command: the configuration, the
// frozen lock map and the engine resolving against them.
type session struct {
	config   *domain.Config
	manifest *domain.Manifest
	engine   *resolver.Engine
}

func (a *App) open(ov Overrides) (*session, error) {
	cfg, err := a.LoadConfig(ov)
	if err != nil {
		return nil, err
	}
	if cfg.LockFile == "" {
		return nil, zerr.With(domain.ErrLockFileNotConfigured, "root", cfg.Root)
	}

	manifest, err := a.manifestLoader.Load(cfg.LockFile)
	if err != nil {
		return nil, err
	}

	imports, err := a.loadImportMap(cfg)
	if err != nil {
		return nil, err
	}

	engine := resolver.New(manifest, imports, a.fs, a.prober, a.tracer, resolver.Options{
		CacheDir:        cfg.CacheDir,
		PreferImport:    cfg.PreferImport,
		RedirectTimeout: cfg.RedirectTimeout,
		Loaders:         domain.NewLoaderRules(cfg.LoaderRules),
	})
	return &session{config: cfg, manifest: manifest, engine: engine}, nil
}

func (a *App) loadImportMap(cfg *domain.Config) (*importmap.Resolver, error) {
	if cfg.ImportMap == "" {
		return nil, nil
	}
	raw, err := a.importMapLoader.Load(cfg.ImportMap)
	if err != nil {
		return nil, err
	}
	base := cfg.ImportMapBase
	if base == "" {
		base = filepath.Dir(cfg.ImportMap)
	}
	imports := importmap.New(raw, domain.FileURL(base, true))
	for _, w := range imports.Warnings() {
		a.logger.Warn(w.Text)
	}
	return imports, nil
}

// importerURL turns the --importer value into a URL. A value without a scheme
// is a path relative to the project root; empty means the root itself.
func importerURL(cfg *domain.Config, raw string) (*url.URL, error) {
	if raw == "" {
		return domain.FileURL(cfg.Root, true), nil
	}
	if u, err := domain.ParseURL(raw); err == nil && len(u.Scheme) > 1 {
		return u, nil
	}
	p := raw
	if !filepath.IsAbs(p) {
		p = filepath.Join(cfg.Root, p)
	}
	return domain.FileURL(p, false), nil
}

// ResolveOptions configures Resolve and Load.
type ResolveOptions struct {
	Overrides

	// Importer is the URL or path of the importing module.
	Importer string

	// MustMap resolves through the import map only.
	MustMap bool
}

// Result is the outcome of resolving one specifier.
type Result struct {
	Specifier  string
	Resolution *domain.Resolution
}

// Resolve resolves every specifier against one importer. Results keep the
// order of specifiers. The first hard error cancels the batch.
func (a *App) Resolve(ctx context.Context, opts ResolveOptions, specifiers []string) ([]Result, error) {
	s, err := a.open(opts.Overrides)
	if err != nil {
		return nil, err
	}
	importer, err := importerURL(s.config, opts.Importer)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(specifiers))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, spec := range specifiers {
		g.Go(func() error {
			res, err := s.engine.Resolve(ctx, resolver.Request{
				Specifier: spec,
				Importer:  importer,
				MustMap:   opts.MustMap,
			})
			if err != nil {
				return err
			}
			results[i] = Result{Specifier: spec, Resolution: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		for _, w := range r.Resolution.Warnings {
			a.logger.Debug(fmt.Sprintf("%s: %s", w.Specifier, w.Text))
		}
	}
	return results, nil
}

// Loaded is a resolved module together with its bytes.
type Loaded struct {
	Module   *domain.ResolvedModule
	Warnings []domain.Warning
	Data     []byte
}

// Load resolves specifier and reads its bytes from the cache. A soft miss is
// reported as ErrModuleNotFound carrying the resolution warnings.
func (a *App) Load(ctx context.Context, opts ResolveOptions, specifier string) (*Loaded, error) {
	results, err := a.Resolve(ctx, opts, []string{specifier})
	if err != nil {
		return nil, err
	}
	res := results[0].Resolution
	if !res.Found() {
		err := zerr.With(domain.ErrModuleNotFound, "specifier", specifier)
		for i, w := range res.Warnings {
			err = zerr.With(err, fmt.Sprintf("warning.%d", i), w.Text)
		}
		return nil, err
	}

	data, err := a.store.Load(ctx, res.Module)
	if err != nil {
		return nil, err
	}
	return &Loaded{Module: res.Module, Warnings: res.Warnings, Data: data}, nil
}

// VerifyReport lists the outcome of checking every remote lock map entry.
type VerifyReport struct {
	// Checked counts the entries found in the cache.
	Checked int

	// Missing lists remote URLs with no cache file.
	Missing []string

	// Outdated lists remote URLs whose cache file does not match the lock map.
	Outdated []string
}

// OK reports whether no cached entry failed verification.
func (r *VerifyReport) OK() bool {
	return len(r.Outdated) == 0
}

// Verify re-hashes every remote module of the lock map that is present in
// the cache. Missing files are reported, not failed; a stale file makes the
// returned error wrap ErrVerificationFailed. A cached file that cannot be
// read aborts the run with ErrCacheLoadFailed.
func (a *App) Verify(ctx context.Context, ov Overrides) (*VerifyReport, error) {
	s, err := a.open(ov)
	if err != nil {
		return nil, err
	}

	ctx, span := a.tracer.Start(ctx, "verify")
	defer span.End()

	hrefs := make([]string, 0, len(s.manifest.Remote))
	for href := range s.manifest.Remote {
		hrefs = append(hrefs, href)
	}
	slices.Sort(hrefs)
	span.SetAttribute("entries", len(hrefs))

	var (
		mu     sync.Mutex
		report VerifyReport
		errs   error
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, href := range hrefs {
		g.Go(func() error {
			status, err := a.verifyEntry(ctx, s, href)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			switch status {
			case statusMissing:
				report.Missing = append(report.Missing, href)
			case statusOutdated:
				report.Checked++
				report.Outdated = append(report.Outdated, href)
			case statusOK:
				report.Checked++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	slices.Sort(report.Missing)
	slices.Sort(report.Outdated)
	for _, href := range report.Outdated {
		errs = errors.Join(errs, zerr.With(domain.ErrOutdatedCache, "url", href))
	}
	if errs != nil {
		errs = errors.Join(domain.ErrVerificationFailed, errs)
		span.RecordError(errs)
		return &report, errs
	}
	return &report, nil
}

type entryStatus int

const (
	statusOK entryStatus = iota
	statusMissing
	statusOutdated
)

func (a *App) verifyEntry(ctx context.Context, s *session, href string) (entryStatus, error) {
	u, err := domain.ParseURL(href)
	if err != nil {
		return 0, err
	}
	path, err := cachepath.ToCachePath(u, s.config.CacheDir)
	if err != nil {
		return 0, err
	}
	ok, err := a.fs.IsFile(path)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrCacheLoadFailed.Error()), "path", path)
	}
	if !ok {
		a.logger.Debug(fmt.Sprintf("%s is not cached", href))
		return statusMissing, nil
	}

	match, err := a.store.Verify(ctx, path, s.manifest.Remote[href])
	if err != nil {
		return 0, zerr.With(err, "url", href)
	}
	if match {
		return statusOK, nil
	}
	a.logger.Warn(fmt.Sprintf("%s does not match the lock map", href))
	return statusOutdated, nil
}

// CachePath maps a module URL to its file in the cache.
func (a *App) CachePath(ov Overrides, rawURL string) (string, error) {
	cfg, err := a.LoadConfig(ov)
	if err != nil {
		return "", err
	}
	u, err := domain.ParseURL(rawURL)
	if err != nil {
		return "", err
	}
	return cachepath.ToCachePath(u, cfg.CacheDir)
}
