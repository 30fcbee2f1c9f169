// Package importmap resolves specifiers through a WHATWG import map.
package importmap

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"go.trai.ch/modcache/internal/core/domain"
	"go.trai.ch/modcache/internal/engine/memo"
	"go.trai.ch/zerr"
)

type entry struct {
	key   string
	value *url.URL
}

// specifierMap is a normalized imports table. Exact keys are looked up
// directly; prefix keys are kept longest first.
type specifierMap struct {
	exact    map[string]*url.URL
	prefixes []entry
}

type scope struct {
	key      string
	isURL    bool
	href     string
	segments []string
	imports  specifierMap
}

func (s *scope) matches(importer *url.URL) bool {
	if s.isURL {
		href := domain.Href(importer)
		return href == s.href || (strings.HasSuffix(s.href, "/") && strings.HasPrefix(href, s.href))
	}
	p := importer.Path
	if importer.Opaque != "" {
		p = importer.Opaque
	}
	if len(s.segments) == 0 {
		return strings.HasPrefix(p, "/")
	}
	joined := "/" + strings.Join(s.segments, "/")
	return strings.Contains(p, joined+"/") || strings.HasSuffix(p, joined)
}

// Resolver is an import map bound to its base URL. It is safe for concurrent use.
type Resolver struct {
	base     *url.URL
	imports  specifierMap
	scopes   []*scope
	warnings []domain.Warning

	// matched memoizes the applicable scopes per importer href.
	matched *memo.Map[[]*scope]
}

// New normalizes m against base. Entries that cannot be used are dropped and
// reported through Warnings. A nil or empty map yields a resolver that never matches.
func New(m *domain.ImportMap, base *url.URL) *Resolver {
	r := &Resolver{base: base, matched: memo.New[[]*scope]()}
	if m == nil {
		return r
	}
	r.imports = r.normalizeMap(m.Imports)

	for key, imports := range m.Scopes {
		s := &scope{key: key, imports: r.normalizeMap(imports)}
		if u, err := url.Parse(key); err == nil && u.Scheme != "" {
			s.isURL = true
			s.href = domain.Href(u)
			s.segments = pathSegments(u.Path)
		} else {
			s.segments = pathSegments(key)
		}
		r.scopes = append(r.scopes, s)
	}
	slices.SortFunc(r.scopes, func(a, b *scope) int {
		if d := len(b.segments) - len(a.segments); d != 0 {
			return d
		}
		return strings.Compare(a.key, b.key)
	})
	return r
}

func pathSegments(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s == "" || s == "." || s == ".." {
			continue
		}
		segs = append(segs, s)
	}
	return segs
}

func (r *Resolver) warn(specifier, format string, args ...any) {
	r.warnings = append(r.warnings, domain.Warning{Specifier: specifier, Text: fmt.Sprintf(format, args...)})
}

func (r *Resolver) normalizeMap(raw map[string]string) specifierMap {
	m := specifierMap{exact: make(map[string]*url.URL, len(raw))}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		value := raw[key]
		if key == "" {
			r.warn(key, "import map specifier key is empty and is ignored")
			continue
		}
		normalized := r.normalizeSpecifier(key)

		address := r.parseURLLike(value)
		if address == nil {
			r.warn(key, "import map value %q for %q is invalid and is ignored", value, key)
			continue
		}
		if strings.HasSuffix(key, "/") && !strings.HasSuffix(domain.Href(address), "/") {
			r.warn(key, "import map key %q ends with \"/\" but its address %s does not", key, domain.Href(address))
			continue
		}

		if strings.HasSuffix(normalized, "/") {
			m.prefixes = append(m.prefixes, entry{key: normalized, value: address})
		}
		m.exact[normalized] = address
	}

	slices.SortStableFunc(m.prefixes, func(a, b entry) int {
		return len(b.key) - len(a.key)
	})
	return m
}

// parseURLLike resolves relative and absolute paths against the base URL and
// parses anything else as an absolute URL. It returns nil when neither works.
func (r *Resolver) parseURLLike(specifier string) *url.URL {
	if domain.IsRelativeSpecifier(specifier) || strings.HasPrefix(specifier, "/") {
		u, err := domain.ResolveReference(r.base, specifier)
		if err != nil {
			return nil
		}
		return u
	}
	u, err := domain.ParseURL(specifier)
	if err != nil {
		return nil
	}
	return u
}

func (r *Resolver) normalizeSpecifier(specifier string) string {
	if u := r.parseURLLike(specifier); u != nil {
		return domain.Href(u)
	}
	return specifier
}

// Warnings returns the diagnostics collected while normalizing the map.
func (r *Resolver) Warnings() []domain.Warning {
	return r.warnings
}

// Resolve remaps specifier for a module imported from importer. Relative and
// absolute specifiers are normalized against the map's base URL, not the
// importer. A miss returns nil and no error.
func (r *Resolver) Resolve(specifier string, importer *url.URL) (*url.URL, error) {
	specifierURL := r.parseURLLike(specifier)
	normalized := specifier
	if specifierURL != nil {
		normalized = domain.Href(specifierURL)
	}
	prefixable := specifierURL == nil || domain.IsSpecialScheme(specifierURL.Scheme)

	if importer != nil {
		for _, s := range r.scopesFor(importer) {
			u, err := s.imports.resolve(normalized, prefixable)
			if err != nil || u != nil {
				return u, err
			}
		}
	}
	return r.imports.resolve(normalized, prefixable)
}

// MustResolve is Resolve with a miss turned into ErrSpecifierNotMapped.
func (r *Resolver) MustResolve(specifier string, importer *url.URL) (*url.URL, error) {
	u, err := r.Resolve(specifier, importer)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, zerr.With(domain.ErrSpecifierNotMapped, "specifier", specifier)
	}
	return u, nil
}

// ResolveOrSelf is Resolve falling back to the specifier's own URL on a miss.
// It returns nil when the specifier is neither mapped nor URL-like.
func (r *Resolver) ResolveOrSelf(specifier string, importer *url.URL) (*url.URL, error) {
	u, err := r.Resolve(specifier, importer)
	if err != nil || u != nil {
		return u, err
	}
	return r.parseURLLike(specifier), nil
}

func (r *Resolver) scopesFor(importer *url.URL) []*scope {
	if len(r.scopes) == 0 {
		return nil
	}
	return r.matched.GetOrCompute(domain.Href(importer), func() []*scope {
		var matched []*scope
		for _, s := range r.scopes {
			if s.matches(importer) {
				matched = append(matched, s)
			}
		}
		return matched
	})
}

func (m specifierMap) resolve(normalized string, prefixable bool) (*url.URL, error) {
	if u, ok := m.exact[normalized]; ok {
		return u, nil
	}
	if !prefixable {
		return nil, nil
	}
	for _, e := range m.prefixes {
		if !strings.HasPrefix(normalized, e.key) {
			continue
		}
		rest := normalized[len(e.key):]
		u, err := domain.ResolveReference(e.value, "./"+rest)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(domain.Href(u), domain.Href(e.value)) {
			return nil, zerr.With(zerr.With(domain.ErrImportMapBacktracking, "specifier", normalized), "prefix", e.key)
		}
		return u, nil
	}
	return nil, nil
}
