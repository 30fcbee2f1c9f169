package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/modcache/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*logger.Logger)
		level string
		msg   string
	}{
		{"info", func(l *logger.Logger) { l.Info("resolved 3 modules") }, "INFO", "resolved 3 modules"},
		{"warn", func(l *logger.Logger) { l.Warn("https://x.test/a.js not found in lock map") }, "WARN", "not found in lock map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			tt.log(lg)
			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), tt.msg)
		})
	}
}

func TestLogger_Debug(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Debug("hidden")
	assert.Empty(t, buf.String())

	lg.SetVerbose(true)
	lg.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_ErrorChain(t *testing.T) {
	lg, buf := newTestLogger(t)

	base := errors.New("open /cache/deps/https/x: no such file or directory")
	err := zerr.Wrap(zerr.Wrap(base, "failed to load cache"), "loading entry module")
	lg.Error(err)

	out := buf.String()
	assert.Contains(t, out, "Error: loading entry module")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, "→ failed to load cache")
	assert.Contains(t, out, "no such file or directory")
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(errors.New("boom"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "boom", record["error"])
}
