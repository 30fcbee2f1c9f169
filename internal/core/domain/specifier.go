package domain

import (
	"net/url"
	"strings"
)

// SpecifierKind is the syntactic category of an import specifier.
type SpecifierKind int

const (
	// KindCoreModule is a runtime built-in such as "fs" or "node:fs".
	KindCoreModule SpecifierKind = iota
	// KindRelative starts with "./" or "../".
	KindRelative
	// KindAbsolute starts with "/".
	KindAbsolute
	// KindFullURL carries its own scheme.
	KindFullURL
	// KindBarePackage is anything else, such as "react" or "@scope/pkg/sub".
	KindBarePackage
)

func (k SpecifierKind) String() string {
	switch k {
	case KindCoreModule:
		return "core"
	case KindRelative:
		return "relative"
	case KindAbsolute:
		return "absolute"
	case KindFullURL:
		return "url"
	case KindBarePackage:
		return "bare"
	default:
		return "unknown"
	}
}

// Classify returns the kind of specifier. The rules are applied in order and
// the first match wins.
func Classify(specifier string) SpecifierKind {
	switch {
	case IsCoreModule(specifier):
		return KindCoreModule
	case IsRelativeSpecifier(specifier):
		return KindRelative
	case strings.HasPrefix(specifier, "/"):
		return KindAbsolute
	case hasScheme(specifier):
		return KindFullURL
	default:
		return KindBarePackage
	}
}

// IsRelativeSpecifier reports whether specifier starts with "./" or "../".
func IsRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// IsURLLikeSpecifier reports whether specifier is relative, absolute, or carries a scheme.
func IsURLLikeSpecifier(specifier string) bool {
	return IsRelativeSpecifier(specifier) || strings.HasPrefix(specifier, "/") || hasScheme(specifier)
}

func hasScheme(specifier string) bool {
	u, err := url.Parse(specifier)
	return err == nil && u.Scheme != ""
}

// SplitBareSpecifier splits a bare specifier into the package part and the
// subpath. The split happens at the first "/" after an optional "@scope/".
// The subpath always starts with "/"; it is "/" when the specifier names the
// package itself.
func SplitBareSpecifier(specifier string) (pkg, subpath string) {
	rest := specifier
	offset := 0
	if strings.HasPrefix(rest, "@") {
		i := strings.Index(rest, "/")
		if i < 0 {
			return specifier, "/"
		}
		offset = i + 1
		rest = rest[offset:]
	}
	i := strings.Index(rest, "/")
	if i < 0 {
		return specifier, "/"
	}
	return specifier[:offset+i], specifier[offset+i:]
}
