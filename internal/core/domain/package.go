package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"go.trai.ch/zerr"
)

// Export conditions the resolver understands. Any other condition is ignored.
const (
	ConditionImport  = "import"
	ConditionRequire = "require"
	ConditionDefault = "default"
)

// PackageDescriptor is the subset of package.json the resolver reads.
// It is parsed per resolution call and never mutated.
type PackageDescriptor struct {
	Name    string
	Main    string
	Exports ExportsField
	Imports map[string]*ExportTarget
}

// ExportsKind tags the shape of the exports field.
type ExportsKind int

const (
	// ExportsNone means the field is absent.
	ExportsNone ExportsKind = iota
	// ExportsString is a single target for ".".
	ExportsString
	// ExportsPaths is keyed by subpaths such as "." or "./feature".
	ExportsPaths
	// ExportsConditions is keyed by conditions and applies to ".".
	ExportsConditions
)

// ExportsField is the validated exports field.
type ExportsField struct {
	Kind ExportsKind

	// Root holds the target of ExportsString and ExportsConditions.
	Root *ExportTarget

	// Paths holds the targets of ExportsPaths.
	Paths map[string]*ExportTarget
}

// ExportTarget is a single exports value: a path, a condition map, or null.
// An array collapses to its first usable element.
type ExportTarget struct {
	Path       string
	Conditions map[string]*ExportTarget
}

// Choose picks the path for the given condition preference. "default" is
// always tried last. An empty result means the target is excluded.
func (t *ExportTarget) Choose(preferImport bool) string {
	if t == nil {
		return ""
	}
	if t.Path != "" {
		return t.Path
	}
	order := []string{ConditionRequire, ConditionImport, ConditionDefault}
	if preferImport {
		order = []string{ConditionImport, ConditionRequire, ConditionDefault}
	}
	for _, cond := range order {
		if p := t.Conditions[cond].Choose(preferImport); p != "" {
			return p
		}
	}
	return ""
}

// Entries flattens the descriptor into a subpath to target map.
// When useMain is set, "main" fills "." unless exports defines it.
func (d *PackageDescriptor) Entries(preferImport, useMain bool) map[string]string {
	entries := make(map[string]string)
	if useMain && d.Main != "" {
		entries["."] = d.Main
	}
	switch d.Exports.Kind {
	case ExportsString, ExportsConditions:
		if p := d.Exports.Root.Choose(preferImport); p != "" {
			entries["."] = p
		}
	case ExportsPaths:
		for key, target := range d.Exports.Paths {
			if p := target.Choose(preferImport); p != "" {
				entries[key] = p
			}
		}
	case ExportsNone:
	}
	return entries
}

// ResolveSubpath matches subpath ("." or "./x") against flattened entries.
// An exact key wins; otherwise the longest "/"-terminated key that prefixes
// subpath is used. Keys with "*" are not supported and never match.
func ResolveSubpath(subpath string, entries map[string]string) (string, bool) {
	if subpath == "" || subpath == "./" {
		subpath = "."
	}
	if target, ok := entries[subpath]; ok {
		return target, true
	}
	best := ""
	for key := range entries {
		if strings.Contains(key, "*") || !strings.HasSuffix(key, "/") {
			continue
		}
		if strings.HasPrefix(subpath, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return "", false
	}
	return entries[best] + subpath[len(best):], true
}

type rawDescriptor struct {
	Name    string          `json:"name"`
	Main    json.RawMessage `json:"main"`
	Exports json.RawMessage `json:"exports"`
	Imports json.RawMessage `json:"imports"`
}

// ParsePackageDescriptor parses package.json and validates the exports shape.
// A mix of subpath and condition keys fails with ErrMixedExportKeys.
func ParsePackageDescriptor(data []byte) (*PackageDescriptor, error) {
	var raw rawDescriptor
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, zerr.Wrap(err, ErrInvalidPackageDescriptor.Error())
	}

	d := &PackageDescriptor{Name: raw.Name}
	if len(raw.Main) > 0 {
		// A non-string main is ignored like any other unusable value.
		_ = json.Unmarshal(raw.Main, &d.Main)
	}

	exports, err := parseExports(raw.Exports)
	if err != nil {
		return nil, zerr.With(err, "package", raw.Name)
	}
	d.Exports = exports

	imports, err := parseImports(raw.Imports)
	if err != nil {
		return nil, zerr.With(err, "package", raw.Name)
	}
	d.Imports = imports

	return d, nil
}

func parseExports(raw json.RawMessage) (ExportsField, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ExportsField{Kind: ExportsNone}, nil
	}

	switch raw[0] {
	case '"':
		target, err := parseTarget(raw)
		if err != nil {
			return ExportsField{}, err
		}
		return ExportsField{Kind: ExportsString, Root: target}, nil
	case '[':
		target, err := parseTarget(raw)
		if err != nil {
			return ExportsField{}, err
		}
		return ExportsField{Kind: ExportsString, Root: target}, nil
	case '{':
	default:
		return ExportsField{Kind: ExportsNone}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ExportsField{}, zerr.Wrap(err, ErrInvalidPackageDescriptor.Error())
	}

	paths, conditions := 0, 0
	for key := range fields {
		if key == "." || strings.HasPrefix(key, "./") {
			paths++
		} else {
			conditions++
		}
	}
	if paths > 0 && conditions > 0 {
		return ExportsField{}, ErrMixedExportKeys
	}

	if conditions > 0 {
		target, err := parseTarget(raw)
		if err != nil {
			return ExportsField{}, err
		}
		return ExportsField{Kind: ExportsConditions, Root: target}, nil
	}

	field := ExportsField{Kind: ExportsPaths, Paths: make(map[string]*ExportTarget, len(fields))}
	for key, value := range fields {
		target, err := parseTarget(value)
		if err != nil {
			return ExportsField{}, zerr.With(err, "subpath", key)
		}
		if target != nil {
			field.Paths[key] = target
		}
	}
	return field, nil
}

func parseImports(raw json.RawMessage) (map[string]*ExportTarget, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, zerr.Wrap(err, ErrInvalidPackageDescriptor.Error())
	}
	imports := make(map[string]*ExportTarget, len(fields))
	for key, value := range fields {
		if !strings.HasPrefix(key, "#") {
			continue
		}
		target, err := parseTarget(value)
		if err != nil {
			return nil, zerr.With(err, "import", key)
		}
		if target != nil {
			imports[key] = target
		}
	}
	return imports, nil
}

// parseTarget decodes one exports value. null and unusable shapes yield nil.
func parseTarget(raw json.RawMessage) (*ExportTarget, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, zerr.Wrap(err, ErrInvalidPackageDescriptor.Error())
		}
		return &ExportTarget{Path: s}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, zerr.Wrap(err, ErrInvalidPackageDescriptor.Error())
		}
		for _, item := range items {
			target, err := parseTarget(item)
			if err != nil {
				return nil, err
			}
			if target != nil {
				return target, nil
			}
		}
		return nil, nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, zerr.Wrap(err, ErrInvalidPackageDescriptor.Error())
		}
		target := &ExportTarget{Conditions: make(map[string]*ExportTarget, len(fields))}
		for cond, value := range fields {
			sub, err := parseTarget(value)
			if err != nil {
				return nil, err
			}
			if sub != nil {
				target.Conditions[cond] = sub
			}
		}
		return target, nil
	default:
		return nil, nil
	}
}
