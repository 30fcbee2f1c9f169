package app_test

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/modcache/internal/adapters/cas"
	"go.trai.ch/modcache/internal/adapters/fs"
	"go.trai.ch/modcache/internal/adapters/telemetry"
	"go.trai.ch/modcache/internal/app"
	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/core/ports/mocks"
	"go.trai.ch/modcache/internal/engine/cachepath"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const (
	stdMod  = "https://deno.land/std@0.200.0/path/mod.ts"
	stdJoin = "https://deno.land/std@0.200.0/path/join.ts"
	stdSep  = "https://deno.land/std@0.200.0/path/sep.ts"
)

type fixture struct {
	app      *app.App
	root     string
	cache    string
	config   *mocks.MockConfigLoader
	imports  *mocks.MockImportMapLoader
	logger   *mocks.MockLogger
	prober   *mocks.MockRedirectProber
	manifest *domain.Manifest

	manifests *mocks.MockManifestLoader
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
}

func remotePath(t *testing.T, cache, href string) string {
	t.Helper()
	u, err := url.Parse(href)
	require.NoError(t, err)
	p, err := cachepath.ToCachePath(u, cache)
	require.NoError(t, err)
	return p
}

// setup lays out a project with a lock map and a populated cache:
// mod.ts is cached and current, join.ts is cached but stale, sep.ts is not cached.
func setup(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	cache := t.TempDir()

	writeFile(t, filepath.Join(root, "main.ts"), "import './dep.ts';")
	writeFile(t, remotePath(t, cache, stdMod), "export * from './join.ts';")
	writeFile(t, remotePath(t, cache, stdJoin), "tampered")
	npm := filepath.Join(cache, "npm", "registry.npmjs.org", "react", "18.2.0")
	writeFile(t, filepath.Join(npm, "package.json"), `{"name":"react","main":"index.js"}`)
	writeFile(t, filepath.Join(npm, "index.js"), "module.exports = {};")

	manifest := &domain.Manifest{
		Version: "3",
		Remote: map[string]string{
			stdMod:  digest.FromString("export * from './join.ts';").Encoded(),
			stdJoin: digest.FromString("export function join() {}").Encoded(),
			stdSep:  digest.FromString("export const SEP = '/';").Encoded(),
		},
		Redirects: map[string]string{
			"https://deno.land/std/path/mod.ts": stdMod,
		},
		PackageSpecifiers: map[string]string{"react@^18.2.0": "react@18.2.0"},
		Packages:          map[string]domain.PackageEntry{"react@18.2.0": {}},
	}

	f := &fixture{
		root:     root,
		cache:    cache,
		config:   mocks.NewMockConfigLoader(ctrl),
		imports:  mocks.NewMockImportMapLoader(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		prober:   mocks.NewMockRedirectProber(ctrl),
		manifest: manifest,
	}

	lockFile := filepath.Join(root, "deno.lock")
	f.config.EXPECT().Load(root).DoAndReturn(func(string) (*domain.Config, error) {
		return &domain.Config{Root: root, CacheDir: cache, LockFile: lockFile}, nil
	}).AnyTimes()

	manifests := mocks.NewMockManifestLoader(ctrl)
	manifests.EXPECT().Load(lockFile).Return(manifest, nil).AnyTimes()
	f.manifests = manifests

	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	osfs := fs.NewOSFS()
	tracer := telemetry.NewNoOpTracer()
	f.app = app.New(
		f.config,
		manifests,
		f.imports,
		osfs,
		f.prober,
		cas.NewStore(osfs, tracer),
		tracer,
		f.logger,
	).WithWorkers(2)
	return f
}

func (f *fixture) opts() app.ResolveOptions {
	return app.ResolveOptions{Overrides: app.Overrides{Dir: f.root}}
}

func TestApp_Resolve(t *testing.T) {
	f := setup(t)

	results, err := f.app.Resolve(context.Background(), f.opts(), []string{
		"./main.ts",
		"react",
		"https://deno.land/std/path/mod.ts",
		"vue",
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	local := results[0]
	assert.Equal(t, "./main.ts", local.Specifier)
	require.True(t, local.Resolution.Found())
	assert.Equal(t, domain.ModuleLocal, local.Resolution.Module.Kind)
	assert.Equal(t, filepath.Join(f.root, "main.ts"), local.Resolution.Module.CachePath)

	pkg := results[1].Resolution
	require.True(t, pkg.Found())
	assert.Equal(t, domain.ModulePackage, pkg.Module.Kind)
	assert.Equal(t, "npm:/react@18.2.0/index.js", pkg.Module.URL.String())

	remote := results[2].Resolution
	require.True(t, remote.Found())
	assert.Equal(t, domain.ModuleRemote, remote.Module.Kind)
	assert.Equal(t, stdMod, remote.Module.URL.String())
	assert.Equal(t, remotePath(t, f.cache, stdMod), remote.Module.CachePath)

	miss := results[3].Resolution
	assert.False(t, miss.Found())
	require.Len(t, miss.Warnings, 1)
	assert.Equal(t, "package vue not found in lock map", miss.Warnings[0].Text)
}

func TestApp_Resolve_Importer(t *testing.T) {
	f := setup(t)

	opts := f.opts()
	opts.Importer = "src/app.ts"
	results, err := f.app.Resolve(context.Background(), opts, []string{"../main.ts"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.root, "main.ts"), results[0].Resolution.Module.CachePath)

	opts.Importer = stdMod
	results, err = f.app.Resolve(context.Background(), opts, []string{"./join.ts"})
	require.NoError(t, err)
	assert.Equal(t, stdJoin, results[0].Resolution.Module.URL.String())
}

func TestApp_Resolve_NoLockFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()

	config := mocks.NewMockConfigLoader(ctrl)
	config.EXPECT().Load(root).Return(&domain.Config{Root: root, CacheDir: t.TempDir()}, nil)

	a := app.New(
		config,
		mocks.NewMockManifestLoader(ctrl),
		mocks.NewMockImportMapLoader(ctrl),
		fs.NewOSFS(),
		mocks.NewMockRedirectProber(ctrl),
		mocks.NewMockContentStore(ctrl),
		telemetry.NewNoOpTracer(),
		mocks.NewMockLogger(ctrl),
	)

	_, err := a.Resolve(context.Background(), app.ResolveOptions{Overrides: app.Overrides{Dir: root}}, []string{"react"})
	require.ErrorContains(t, err, domain.ErrLockFileNotConfigured.Error())
}

func TestApp_Resolve_ConfigError(t *testing.T) {
	f := setup(t)

	f.config.EXPECT().LoadFile("broken.yaml").Return(nil, errors.New("boom"))

	opts := f.opts()
	opts.ConfigFile = "broken.yaml"
	_, err := f.app.Resolve(context.Background(), opts, []string{"react"})
	require.ErrorContains(t, err, "boom")
}

func TestApp_Resolve_ImportMap(t *testing.T) {
	f := setup(t)

	mapFile := filepath.Join(f.root, "import_map.json")
	f.imports.EXPECT().Load(mapFile).Return(&domain.ImportMap{
		Imports: map[string]string{
			"std/":    "https://deno.land/std@0.200.0/",
			"broken/": "./no-slash",
		},
	}, nil)
	f.logger.EXPECT().Warn(gomock.Any()).Times(1)

	opts := f.opts()
	opts.ImportMap = mapFile
	opts.MustMap = true
	results, err := f.app.Resolve(context.Background(), opts, []string{"std/path/join.ts"})
	require.NoError(t, err)
	assert.Equal(t, stdJoin, results[0].Resolution.Module.URL.String())
}

func TestApp_Resolve_Cancelled(t *testing.T) {
	f := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.app.Resolve(ctx, f.opts(), []string{"react"})
	require.ErrorContains(t, err, "context canceled")
}

func TestApp_Load(t *testing.T) {
	f := setup(t)

	t.Run("remote", func(t *testing.T) {
		loaded, err := f.app.Load(context.Background(), f.opts(), stdMod)
		require.NoError(t, err)
		assert.Equal(t, "export * from './join.ts';", string(loaded.Data))
		assert.Equal(t, domain.ModuleRemote, loaded.Module.Kind)
	})

	t.Run("local", func(t *testing.T) {
		loaded, err := f.app.Load(context.Background(), f.opts(), "./main.ts")
		require.NoError(t, err)
		assert.Equal(t, "import './dep.ts';", string(loaded.Data))
	})

	t.Run("stale", func(t *testing.T) {
		_, err := f.app.Load(context.Background(), f.opts(), stdJoin)
		require.ErrorContains(t, err, domain.ErrOutdatedCache.Error())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.app.Load(context.Background(), f.opts(), "vue")
		require.ErrorContains(t, err, domain.ErrModuleNotFound.Error())
	})
}

func TestApp_Verify(t *testing.T) {
	f := setup(t)
	f.logger.EXPECT().Warn(gomock.Any()).Times(1)

	report, err := f.app.Verify(context.Background(), app.Overrides{Dir: f.root})
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrVerificationFailed)
	require.ErrorContains(t, err, domain.ErrOutdatedCache.Error())

	require.NotNil(t, report)
	assert.False(t, report.OK())
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, []string{stdJoin}, report.Outdated)
	assert.Equal(t, []string{stdSep}, report.Missing)
}

func TestApp_Verify_Clean(t *testing.T) {
	f := setup(t)
	writeFile(t, remotePath(t, f.cache, stdJoin), "export function join() {}")

	report, err := f.app.Verify(context.Background(), app.Overrides{Dir: f.root})
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 2, report.Checked)
	assert.Empty(t, report.Outdated)
}

func TestApp_Verify_Unreadable(t *testing.T) {
	f := setup(t)
	ctrl := gomock.NewController(t)

	joinPath := remotePath(t, f.cache, stdJoin)
	store := mocks.NewMockContentStore(ctrl)
	store.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, path, _ string) (bool, error) {
			if path == joinPath {
				return false, zerr.With(zerr.Wrap(os.ErrPermission, domain.ErrCacheLoadFailed.Error()), "path", path)
			}
			return true, nil
		}).AnyTimes()

	a := app.New(
		f.config,
		f.manifests,
		f.imports,
		fs.NewOSFS(),
		f.prober,
		store,
		telemetry.NewNoOpTracer(),
		f.logger,
	).WithWorkers(1)

	report, err := a.Verify(context.Background(), app.Overrides{Dir: f.root})
	require.ErrorContains(t, err, domain.ErrCacheLoadFailed.Error())
	assert.NotErrorIs(t, err, domain.ErrVerificationFailed)
	assert.Nil(t, report)
}

func TestApp_CachePath(t *testing.T) {
	f := setup(t)

	other := t.TempDir()
	got, err := f.app.CachePath(app.Overrides{Dir: f.root, CacheDir: other}, "npm:/react@18.2.0/index.js")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(other, "npm", "registry.npmjs.org", "react", "18.2.0", "index.js"), got)

	_, err = f.app.CachePath(app.Overrides{Dir: f.root}, "ftp://example.com/x")
	require.ErrorContains(t, err, domain.ErrUnsupportedScheme.Error())
}
