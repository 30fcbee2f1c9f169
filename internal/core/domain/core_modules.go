package domain

import (
	"net/url"
	"strings"
)

// coreModules lists the Node.js built-in modules that cannot be bundled as ordinary source.
var coreModules = map[string]bool{
	"assert":              true,
	"assert/strict":       true,
	"async_hooks":         true,
	"buffer":              true,
	"child_process":       true,
	"cluster":             true,
	"console":             true,
	"constants":           true,
	"crypto":              true,
	"dgram":               true,
	"diagnostics_channel": true,
	"dns":                 true,
	"dns/promises":        true,
	"domain":              true,
	"events":              true,
	"fs":                  true,
	"fs/promises":         true,
	"http":                true,
	"http2":               true,
	"https":               true,
	"inspector":           true,
	"module":              true,
	"net":                 true,
	"os":                  true,
	"path":                true,
	"path/posix":          true,
	"path/win32":          true,
	"perf_hooks":          true,
	"process":             true,
	"punycode":            true,
	"querystring":         true,
	"readline":            true,
	"readline/promises":   true,
	"repl":                true,
	"stream":              true,
	"stream/promises":     true,
	"stream/web":          true,
	"string_decoder":      true,
	"sys":                 true,
	"timers":              true,
	"timers/promises":     true,
	"tls":                 true,
	"trace_events":        true,
	"tty":                 true,
	"url":                 true,
	"util":                true,
	"util/types":          true,
	"v8":                  true,
	"vm":                  true,
	"wasi":                true,
	"worker_threads":      true,
	"zlib":                true,
}

// IsCoreModule reports whether specifier names a Node.js built-in,
// either with the "node:" prefix or as a bare name.
func IsCoreModule(specifier string) bool {
	if strings.HasPrefix(specifier, SchemeNode+":") {
		return true
	}
	return coreModules[specifier]
}

// CoreModuleURL returns the canonical "node:<name>" URL of a core module specifier.
func CoreModuleURL(specifier string) *url.URL {
	name := strings.TrimPrefix(specifier, SchemeNode+":")
	return &url.URL{Scheme: SchemeNode, Opaque: name}
}
