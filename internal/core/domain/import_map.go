package domain

// ImportMap is a WHATWG import map as read from disk, before normalization.
type ImportMap struct {
	Imports map[string]string            `json:"imports,omitempty"`
	Scopes  map[string]map[string]string `json:"scopes,omitempty"`
}

// IsEmpty reports whether the map has neither imports nor scopes.
func (m *ImportMap) IsEmpty() bool {
	return m == nil || (len(m.Imports) == 0 && len(m.Scopes) == 0)
}
