// Package cachepath maps module URLs to their location in the cache tree.
//
// The layout is shared with the tool that populates the cache, so it must not
// change without bumping LayoutVersion:
//
//	deps/<scheme>/<hostname>/<sha256(pathname)>       remote modules
//	npm/registry.npmjs.org/<name>/<version>/<subpath>  package files
//
// Remote paths hash only the pathname, serialized as a browser does (a ^ stays
// literal). Two URLs that differ only in query or fragment share one cache
// file.
package cachepath

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// LayoutVersion identifies the cache layout produced by this package.
const LayoutVersion = 1

// RemoteHash returns the hex sha256 of the URL pathname used as the remote file name.
func RemoteHash(u *url.URL) string {
	p := domain.Pathname(u)
	if p == "" {
		p = "/"
	}
	return digest.FromString(p).Encoded()
}

// RelativePath returns the slash separated path of u below the cache root.
func RelativePath(u *url.URL) (string, error) {
	switch {
	case domain.IsRemoteScheme(u.Scheme):
		return path.Join(domain.RemoteCacheDirName, u.Scheme, u.Hostname(), RemoteHash(u)), nil
	case u.Scheme == domain.SchemeNpm:
		return packagePath(u)
	default:
		return "", zerr.With(domain.ErrUnsupportedScheme, "url", u.String())
	}
}

func packagePath(u *url.URL) (string, error) {
	pkg, err := domain.ParsePackageURL(u)
	if err != nil {
		return "", err
	}
	name, version := domain.DecomposePackageName(domain.TrimPeerSuffix(pkg.FullName))
	if version == "" {
		return "", zerr.With(domain.ErrInvalidPackageName, "url", u.String())
	}
	rel := path.Join(domain.PackageCacheDirName, domain.PackageRegistryHost, name, version)
	sub := strings.TrimPrefix(pkg.Subpath, "/")
	if sub == "" {
		return rel + "/", nil
	}
	if strings.HasSuffix(sub, "/") {
		return path.Join(rel, sub) + "/", nil
	}
	return path.Join(rel, sub), nil
}

// ToCacheURL resolves the cache location of u against cacheRoot, which should
// be a directory URL ending in "/".
func ToCacheURL(u, cacheRoot *url.URL) (*url.URL, error) {
	rel, err := RelativePath(u)
	if err != nil {
		return nil, err
	}
	return cacheRoot.ResolveReference(&url.URL{Path: rel}), nil
}

// ToCachePath returns the file system path of u below the cache directory rootDir.
func ToCachePath(u *url.URL, rootDir string) (string, error) {
	rel, err := RelativePath(u)
	if err != nil {
		return "", err
	}
	return filepath.Join(rootDir, filepath.FromSlash(rel)), nil
}
