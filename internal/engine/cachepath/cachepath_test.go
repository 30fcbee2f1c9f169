package cachepath_test

import (
	"net/url"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/engine/cachepath"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestToCacheURL(t *testing.T) {
	root := mustParse(t, "file:///home/user/.cache/deno/")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "remote",
			in:   "https://example.com/test.js",
			want: "file:///home/user/.cache/deno/deps/https/example.com/062b4f93067a219972f47a23d79b25200061a2149da746af1395ed8f15752a99",
		},
		{
			name: "remote ignores query and port",
			in:   "https://example.com:8443/test.js?v=2#frag",
			want: "file:///home/user/.cache/deno/deps/https/example.com/062b4f93067a219972f47a23d79b25200061a2149da746af1395ed8f15752a99",
		},
		{
			name: "package file",
			in:   "npm:/react@1.0.0/package.json",
			want: "file:///home/user/.cache/deno/npm/registry.npmjs.org/react/1.0.0/package.json",
		},
		{
			name: "scoped package",
			in:   "npm:/@types/node@20.1.0/index.d.ts",
			want: "file:///home/user/.cache/deno/npm/registry.npmjs.org/@types/node/20.1.0/index.d.ts",
		},
		{
			name: "peer suffix is dropped",
			in:   "npm:/react-dom@18.2.0_react@18.2.0/index.js",
			want: "file:///home/user/.cache/deno/npm/registry.npmjs.org/react-dom/18.2.0/index.js",
		},
		{
			name: "package root",
			in:   "npm:/react@1.0.0/",
			want: "file:///home/user/.cache/deno/npm/registry.npmjs.org/react/1.0.0/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cachepath.ToCacheURL(mustParse(t, tt.in), root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToCacheURL_Deterministic(t *testing.T) {
	root := mustParse(t, "file:///cache/")
	a, err := cachepath.ToCacheURL(mustParse(t, "https://example.com/a.js"), root)
	require.NoError(t, err)
	again, err := cachepath.ToCacheURL(mustParse(t, "https://example.com/a.js"), root)
	require.NoError(t, err)
	b, err := cachepath.ToCacheURL(mustParse(t, "https://example.com/b.js"), root)
	require.NoError(t, err)

	assert.Equal(t, a.String(), again.String())
	assert.NotEqual(t, a.String(), b.String())
}

func TestRemoteHash(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		pathname string
	}{
		{"plain", "https://example.com/test.js", "/test.js"},
		{"empty path", "https://example.com", "/"},
		{"caret", "https://esm.sh/preact@^10.19.2", "/preact@^10.19.2"},
		{"pipe", "https://esm.sh/v135/a|b.js", "/v135/a|b.js"},
		{"space", "https://example.com/a%20b.js", "/a%20b.js"},
		{"query ignored", "https://esm.sh/preact@^10.19.2?target=es2022", "/preact@^10.19.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, digest.FromString(tt.pathname).Encoded(), cachepath.RemoteHash(mustParse(t, tt.in)))
		})
	}

	assert.Equal(t,
		"062b4f93067a219972f47a23d79b25200061a2149da746af1395ed8f15752a99",
		cachepath.RemoteHash(mustParse(t, "https://example.com/test.js")))
}

func TestToCacheURL_Errors(t *testing.T) {
	root := mustParse(t, "file:///cache/")

	_, err := cachepath.ToCacheURL(mustParse(t, "node:fs"), root)
	require.ErrorContains(t, err, domain.ErrUnsupportedScheme.Error())

	_, err = cachepath.ToCacheURL(mustParse(t, "npm:/react/index.js"), root)
	require.ErrorContains(t, err, domain.ErrInvalidPackageName.Error())
}

func TestToCachePath(t *testing.T) {
	rootDir := t.TempDir()

	got, err := cachepath.ToCachePath(mustParse(t, "https://example.com/package/index.js"), rootDir)
	require.NoError(t, err)
	assert.Equal(t,
		filepath.Join(rootDir, "deps", "https", "example.com", "e828a20945a43e9a7cd0946c44ea9b69942446887e6a188edb6ecde7a8256bf1"),
		got)

	got, err = cachepath.ToCachePath(domain.NewPackageURL("@scope/pkg@2.0.0", "lib/a.js"), rootDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(rootDir, "npm", "registry.npmjs.org", "@scope", "pkg", "2.0.0", "lib", "a.js"), got)
}
