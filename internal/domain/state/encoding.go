package state

import "slices"

// MappingEntry pairs an id key with the colour key used for it.
type MappingEntry struct {
	ID  string
	Key string
}

// ColorMapping selects a colour key per id key. Entry order is the order of
// declaration and is significant for fallback.
type ColorMapping []MappingEntry

// Lookup returns the colour key for id, falling back to the first declared
// entry when id is not mapped.
func (m ColorMapping) Lookup(id string) (string, bool) {
	if len(m) == 0 {
		return "", false
	}
	for _, e := range m {
		if e.ID == id {
			return e.Key, true
		}
	}
	return m[0].Key, true
}

// ValueScale maps numeric values onto a colour ramp.
type ValueScale struct {
	Key    string
	Min    float64
	Max    float64
	Colors []string
}

// ColorEncoding selects what drives shape colour.
type ColorEncoding struct {
	// Value is a plain record key. Mapping, when non-empty, takes precedence
	// and selects a key per id field.
	Value   string
	Mapping ColorMapping
	Changed bool

	// Key is the resolved record key, Type its classification.
	Key        string
	Type       KeyType
	ValueScale *ValueScale
}

// IsSet reports whether a colour encoding is configured.
func (c *ColorEncoding) IsSet() bool {
	return c.Value != "" || len(c.Mapping) > 0
}

// Equals reports whether the configured encoding is the plain key k. A
// mapping never equals a plain key.
func (c *ColorEncoding) Equals(k string) bool {
	return len(c.Mapping) == 0 && c.Value != "" && c.Value == k
}

// ResolveKey returns the record key the encoding refers to for the given id
// field.
func (c *ColorEncoding) ResolveKey(id string) string {
	if len(c.Mapping) > 0 {
		key, _ := c.Mapping.Lookup(id)
		return key
	}
	return c.Value
}

// IDEncoding is the id field and the grouping hierarchy.
type IDEncoding struct {
	Value   string
	Nesting []string
	Changed bool
}

// Contains reports whether key is part of the grouping hierarchy.
func (i *IDEncoding) Contains(key string) bool {
	return slices.Contains(i.Nesting, key)
}

// Levels returns the grouping hierarchy, defaulting to the id field alone.
func (i *IDEncoding) Levels() []string {
	if len(i.Nesting) > 0 {
		return i.Nesting
	}
	if i.Value == "" {
		return nil
	}
	return []string{i.Value}
}

// Selection is a set of id values with a changed marker.
type Selection struct {
	Values  []string
	Changed bool
}

// Has reports whether v is selected.
func (s *Selection) Has(v string) bool {
	return slices.Contains(s.Values, v)
}

// TimeEncoding is the time field and its selection state.
type TimeEncoding struct {
	Value   string
	Changed bool

	// Fixed restricts rendering to the Selected time values.
	Fixed    Flag
	Selected []string

	Solo Selection
	Mute Selection
}

// Depth is the active level in the grouping hierarchy.
type Depth struct {
	Value   int
	Changed bool
}

// ResolveColorType classifies the colour encoding.
//
// When the encoding is set and changed the key is resolved against the id
// field, the value scale is dropped, and the type is looked up in the data
// key index, then the attrs key index. When no encoding is set the type
// mirrors the data index entry for the id field.
func (s *State) ResolveColorType() {
	switch {
	case s.Color.IsSet() && s.Color.Changed:
		s.Color.ValueScale = nil
		key := s.Color.ResolveKey(s.ID.Value)
		s.Color.Key = key
		switch {
		case s.Data.Keys.Has(key):
			s.Color.Type = s.Data.Keys[key]
		case s.Attrs.Keys.Has(key):
			s.Color.Type = s.Attrs.Keys[key]
		default:
			s.Color.Type = KeyUnknown
		}
	case !s.Color.IsSet():
		s.Color.Key = ""
		if s.Data.Keys != nil {
			s.Color.Type = s.Data.Keys[s.ID.Value]
		} else {
			s.Color.Type = KeyUnknown
		}
	}
}
