package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/modcache/internal/adapters/manifest"
	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const lockV2 = `{
  "version": "2",
  "remote": {
    "https://deno.land/std@0.200.0/path/mod.ts": "abc"
  },
  "npm": {
    "specifiers": {
      "react@^18.2.0": "react@18.2.0"
    },
    "packages": {
      "react@18.2.0": {
        "integrity": "sha512-xyz",
        "dependencies": { "loose-envify": "loose-envify@1.4.0" }
      },
      "loose-envify@1.4.0": {
        "integrity": "sha512-abc",
        "dependencies": {}
      }
    }
  }
}`

const lockV3 = `{
  "version": "3",
  "redirects": {
    "https://deno.land/std/path/mod.ts": "https://deno.land/std@0.200.0/path/mod.ts"
  },
  "remote": {
    "https://deno.land/std@0.200.0/path/mod.ts": "abc"
  },
  "packages": {
    "specifiers": {
      "npm:react@^18.2.0": "npm:react@18.2.0",
      "jsr:@std/path@^1.0.0": "jsr:@std/path@1.0.0"
    },
    "npm": {
      "react@18.2.0": {
        "integrity": "sha512-xyz",
        "dependencies": { "loose-envify": "npm:loose-envify@1.4.0" }
      }
    }
  }
}`

func newLoader(t *testing.T) (*manifest.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return manifest.NewLoader(log), log
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
	return path
}

func TestLoader_V2(t *testing.T) {
	loader, _ := newLoader(t)

	m, err := loader.Load(writeFile(t, "deno.lock", lockV2))
	require.NoError(t, err)

	assert.Equal(t, "2", m.Version)
	assert.Equal(t, "abc", m.Remote["https://deno.land/std@0.200.0/path/mod.ts"])
	assert.Empty(t, m.Redirects)
	assert.Equal(t, map[string]string{"react@^18.2.0": "react@18.2.0"}, m.PackageSpecifiers)
	assert.Equal(t, "sha512-xyz", m.Packages["react@18.2.0"].Integrity)

	dep, ok := m.Dependency("react@18.2.0", "loose-envify")
	require.True(t, ok)
	assert.Equal(t, "loose-envify@1.4.0", dep)
}

func TestLoader_V3(t *testing.T) {
	loader, log := newLoader(t)
	log.EXPECT().Warn("lock map edge react@18.2.0 -> loose-envify@1.4.0 has no package entry")

	m, err := loader.Load(writeFile(t, "deno.lock", lockV3))
	require.NoError(t, err)

	assert.Equal(t, "3", m.Version)
	assert.Equal(t, "https://deno.land/std@0.200.0/path/mod.ts", m.FollowRedirects("https://deno.land/std/path/mod.ts"))
	assert.Equal(t, map[string]string{"react@^18.2.0": "react@18.2.0"}, m.PackageSpecifiers, "npm: is stripped and other registries are skipped")
	assert.Equal(t, "loose-envify@1.4.0", m.Packages["react@18.2.0"].Dependencies["loose-envify"])
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"unsupported version", `{"version":"99","remote":{}}`, domain.ErrUnsupportedManifestVersion},
		{"missing version", `{"remote":{}}`, domain.ErrUnsupportedManifestVersion},
		{"invalid json", `{"version":`, domain.ErrManifestParseFailed},
		{"unversioned package", `{"version":"3","packages":{"npm":{"react":{}}}}`, domain.ErrInvalidPackageName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t)
			_, err := loader.Parse([]byte(tt.content))
			require.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestLoader_MissingFile(t *testing.T) {
	loader, _ := newLoader(t)
	_, err := loader.Load(filepath.Join(t.TempDir(), "deno.lock"))
	require.ErrorContains(t, err, domain.ErrManifestReadFailed.Error())
}

func TestImportMapLoader(t *testing.T) {
	loader := manifest.NewImportMapLoader()

	path := writeFile(t, "import_map.json", `{
  "imports": { "preact": "https://esm.sh/preact@10.19.2" },
  "scopes": { "/vendor/": { "preact": "./vendor/preact.js" } }
}`)
	m, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://esm.sh/preact@10.19.2", m.Imports["preact"])
	assert.Equal(t, "./vendor/preact.js", m.Scopes["/vendor/"]["preact"])

	_, err = loader.Load(writeFile(t, "bad.json", `{"imports": ["preact"]}`))
	require.ErrorContains(t, err, domain.ErrInvalidImportMap.Error())

	_, err = loader.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(t, err, domain.ErrImportMapReadFailed.Error())
}
