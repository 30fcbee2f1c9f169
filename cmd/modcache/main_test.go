package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/modcache/internal/adapters/telemetry"
	"go.trai.ch/modcache/internal/app"
	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	config   *mocks.MockConfigLoader
	manifest *mocks.MockManifestLoader
	logger   *mocks.MockLogger
	provider ComponentProvider
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		config:   mocks.NewMockConfigLoader(ctrl),
		manifest: mocks.NewMockManifestLoader(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}

	application := app.New(
		f.config,
		f.manifest,
		mocks.NewMockImportMapLoader(ctrl),
		mocks.NewMockFileSystem(ctrl),
		mocks.NewMockRedirectProber(ctrl),
		mocks.NewMockContentStore(ctrl),
		telemetry.NewNoOpTracer(),
		f.logger,
	)

	f.provider = func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: f.logger,
		}, func() {}, nil
	}
	return f
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	f := setup(t)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, stderr, f.provider)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "modcache version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that a failing command is logged and exits 1.
func TestRun_ExecutionError(t *testing.T) {
	f := setup(t)
	dir := t.TempDir()

	f.config.EXPECT().Load(dir).Return(nil, errors.New("load failed"))
	f.logger.EXPECT().Error(gomock.Any()).Times(1)

	exitCode := run(context.Background(), []string{"resolve", "-C", dir, "react"},
		new(bytes.Buffer), new(bytes.Buffer), f.provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_Unresolved verifies that an unresolved specifier exits 1 without an error log.
func TestRun_Unresolved(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	f := setup(t)
	dir := t.TempDir()
	lock := filepath.Join(dir, "deno.lock")

	f.config.EXPECT().Load(dir).Return(&domain.Config{Root: dir, CacheDir: dir, LockFile: lock}, nil)
	f.manifest.EXPECT().Load(lock).Return(&domain.Manifest{Version: "3"}, nil)
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"resolve", "-C", dir, "vue"},
		stdout, new(bytes.Buffer), f.provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stdout.String(), "✗ vue")
	assert.Contains(t, stdout.String(), "package vue not found in lock map")
}
