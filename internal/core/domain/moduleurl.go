package domain

import (
	"net/url"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// URL schemes understood by the resolver.
const (
	SchemeFile  = "file"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeNpm   = "npm"
	SchemeNode  = "node"
)

// IsRemoteScheme reports whether the scheme is served from the remote cache.
func IsRemoteScheme(scheme string) bool {
	return scheme == SchemeHTTP || scheme == SchemeHTTPS
}

// IsSpecialScheme reports whether the scheme is a WHATWG special scheme.
// Prefix remapping in import maps only applies to specifiers with these schemes.
func IsSpecialScheme(scheme string) bool {
	switch scheme {
	case "ftp", SchemeFile, SchemeHTTP, SchemeHTTPS, "ws", "wss":
		return true
	default:
		return false
	}
}

// Href returns the serialized form of u as a browser prints it. Go's
// String escapes bytes such as ^ and | that a WHATWG serializer keeps, and
// lock map keys are written the WHATWG way.
func Href(u *url.URL) string {
	if u.Opaque != "" {
		return u.String()
	}

	var b strings.Builder
	authority := url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host, OmitHost: u.OmitHost}
	b.WriteString(authority.String())

	p := Pathname(u)
	if u.Scheme != "" && u.Host == "" && u.User == nil && !u.OmitHost && p != "" {
		b.WriteString("//")
	}
	if u.Host != "" && p != "" && p[0] != '/' {
		b.WriteByte('/')
	}
	b.WriteString(p)

	if u.ForceQuery || u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(percentEncode(u.Fragment, inFragmentSet))
	}
	return b.String()
}

// Pathname returns the serialized path of u. Special URLs always have at
// least "/".
func Pathname(u *url.URL) string {
	if u.Opaque != "" {
		return u.Opaque
	}
	if u.RawPath != "" && u.EscapedPath() == u.RawPath {
		return u.RawPath
	}
	p := u.Path
	if p == "" && IsSpecialScheme(u.Scheme) {
		p = "/"
	}
	return EscapePath(p)
}

// EscapePath percent-encodes a decoded path with the WHATWG path
// percent-encode set. A literal % can only come from %25, so it is encoded
// again.
func EscapePath(p string) string {
	return percentEncode(p, inPathSet)
}

func inFragmentSet(c byte) bool {
	switch c {
	case ' ', '"', '<', '>', '`', '%':
		return true
	}
	return c < 0x20 || c >= 0x7f
}

func inPathSet(c byte) bool {
	switch c {
	case '#', '?', '{', '}':
		return true
	}
	return inFragmentSet(c)
}

func percentEncode(s string, encode func(byte) bool) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if encode(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if encode(c) {
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ParseURL parses an absolute URL. A string without a scheme is rejected.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrInvalidSpecifier.Error()), "specifier", raw)
	}
	if u.Scheme == "" {
		return nil, zerr.With(ErrInvalidSpecifier, "specifier", raw)
	}
	return normalizeURL(u), nil
}

// ResolveReference resolves ref against base and keeps npm URLs in their
// host-less "npm:/name@version/path" form.
func ResolveReference(base *url.URL, ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrInvalidSpecifier.Error()), "specifier", ref)
	}
	return normalizeURL(base.ResolveReference(r)), nil
}

// Dir returns the URL of the directory containing u, with a trailing slash.
func Dir(u *url.URL) *url.URL {
	if u.Opaque != "" {
		return u
	}
	c := *u
	c.RawQuery = ""
	c.Fragment = ""
	c.RawFragment = ""
	if i := strings.LastIndex(c.Path, "/"); i >= 0 {
		c.Path = c.Path[:i+1]
	} else {
		c.Path = "/"
	}
	c.RawPath = ""
	return normalizeURL(&c)
}

// WithTrailingSlash returns u with a trailing slash appended to its path.
func WithTrailingSlash(u *url.URL) *url.URL {
	if strings.HasSuffix(u.Path, "/") || u.Opaque != "" {
		return u
	}
	c := *u
	c.Path += "/"
	c.RawPath = ""
	return normalizeURL(&c)
}

// CanonicalURL returns a copy of u in the form the resolver compares and
// walks. The opaque npm:name@version/sub becomes npm:/name@version/sub.
func CanonicalURL(u *url.URL) *url.URL {
	c := *u
	return normalizeURL(&c)
}

func normalizeURL(u *url.URL) *url.URL {
	if u.Scheme != SchemeNpm {
		return u
	}
	if u.Opaque != "" {
		if p, err := url.PathUnescape(u.Opaque); err == nil {
			u.Path = "/" + p
			u.RawPath = ""
			u.Opaque = ""
		}
	}
	if u.Host == "" && u.Opaque == "" {
		u.OmitHost = true
	}
	return u
}

// PackageURL is a decomposed npm module URL.
type PackageURL struct {
	// FullName is the pinned "name@version" as it appears in the lock map.
	FullName string
	// Name is the package name including any scope.
	Name string
	// Version is empty when the URL names a package without a version.
	Version string
	// Subpath always starts with "/".
	Subpath string
}

// Root returns the URL of the package root directory.
func (p PackageURL) Root() *url.URL {
	return NewPackageURL(p.FullName, "/")
}

// NewPackageURL builds "npm:/<fullName><subpath>".
func NewPackageURL(fullName, subpath string) *url.URL {
	if !strings.HasPrefix(subpath, "/") {
		subpath = "/" + subpath
	}
	return &url.URL{Scheme: SchemeNpm, Path: "/" + fullName + subpath, OmitHost: true}
}

// ParsePackageURL decomposes "npm:/name@version/sub" and the opaque "npm:name@version/sub".
func ParsePackageURL(u *url.URL) (PackageURL, error) {
	if u.Scheme != SchemeNpm {
		return PackageURL{}, zerr.With(ErrUnsupportedScheme, "url", u.String())
	}
	raw := u.Path
	if raw == "" {
		raw = u.Opaque
	}
	fullName, subpath := SplitBareSpecifier(strings.TrimPrefix(raw, "/"))
	if fullName == "" {
		return PackageURL{}, zerr.With(ErrInvalidPackageName, "url", u.String())
	}
	name, version := DecomposePackageName(TrimPeerSuffix(fullName))
	return PackageURL{FullName: fullName, Name: name, Version: version, Subpath: subpath}, nil
}

// DecomposePackageName splits a package full name on its last "@" at index > 0.
// A name without a version yields an empty version.
func DecomposePackageName(fullName string) (name, version string) {
	i := strings.LastIndex(fullName, "@")
	if i <= 0 {
		return fullName, ""
	}
	return fullName[:i], fullName[i+1:]
}

// TrimPeerSuffix drops the peer dependency suffix from a lock map full name,
// so "react-dom@18.2.0_react@18.2.0" becomes "react-dom@18.2.0".
func TrimPeerSuffix(fullName string) string {
	at := strings.Index(fullName[min(1, len(fullName)):], "@")
	if at < 0 {
		return fullName
	}
	at++
	if us := strings.Index(fullName[at:], "_"); us >= 0 {
		return fullName[:at+us]
	}
	return fullName
}

// FileURL returns the file URL of the absolute path p. Directories get a
// trailing slash so relative references resolve inside them.
func FileURL(p string, dir bool) *url.URL {
	slashed := filepath.ToSlash(p)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	if dir && !strings.HasSuffix(slashed, "/") {
		slashed += "/"
	}
	return &url.URL{Scheme: SchemeFile, Path: slashed}
}
