package state

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ChannelName names one of the data-bearing channels.
type ChannelName string

// Data-bearing channels, in declaration order.
const (
	ChannelData   ChannelName = "data"
	ChannelAttrs  ChannelName = "attrs"
	ChannelCoords ChannelName = "coords"
	ChannelNodes  ChannelName = "nodes"
	ChannelEdges  ChannelName = "edges"
)

// Channels lists the data-bearing channels in declaration order. Remote
// loads are planned in this order.
func Channels() []ChannelName {
	return []ChannelName{ChannelData, ChannelAttrs, ChannelCoords, ChannelNodes, ChannelEdges}
}

// String returns the channel name.
func (c ChannelName) String() string {
	return string(c)
}

// Record is a single row of a dataset.
type Record map[string]any

// KeyType classifies the values stored under a record key.
type KeyType string

// Key types produced by key indexing. The zero value means the type is
// unknown or the key was not found.
const (
	KeyUnknown KeyType = ""
	KeyNumber  KeyType = "number"
	KeyString  KeyType = "string"
	KeyBoolean KeyType = "boolean"
	KeyKeys    KeyType = "keys"
	KeyArray   KeyType = "array"
)

// KeyIndex maps a record key to the type of its values.
type KeyIndex map[string]KeyType

// Has reports whether key is present in the index.
func (k KeyIndex) Has(key string) bool {
	if k == nil {
		return false
	}
	_, ok := k[key]
	return ok
}

// Channel is a data-bearing channel that may be loaded from a URL.
type Channel struct {
	Name    ChannelName
	URL     string
	Loaded  bool
	Changed bool
	Value   []Record
	Keys    KeyIndex

	// Restricted caches a filtered view of Value. It is discarded whenever
	// the data channel changes.
	Restricted []Record
}

// HasSource reports whether the channel carries data.
func (c *Channel) HasSource() bool {
	return c.Value != nil
}

// NeedsLoad reports whether the channel has an unresolved URL.
func (c *Channel) NeedsLoad() bool {
	return c.URL != "" && !c.Loaded
}

// Assign stores loaded rows and marks the channel as loaded.
func (c *Channel) Assign(rows []Record) {
	if rows == nil {
		rows = []Record{}
	}
	c.Value = rows
	c.Loaded = true
	c.Changed = true
}

// DataChannel is the primary dataset plus its derived working sets.
type DataChannel struct {
	Channel

	// Cache holds per-field computations; reset when data changes.
	Cache map[string]any

	// Nested is the working dataset grouped by time then id.
	Nested Nest

	// Pool is the dataset unrestricted by time; Viz is what gets drawn.
	Pool []Record
	Viz  []Record
}

// Nest is data grouped by time value and then by id value. Times keeps the
// time values in ascending order.
type Nest struct {
	Times  []string
	Groups map[string]map[string][]Record
}

// Link is a parsed edge between two node ids.
type Link struct {
	Source string
	Target string
	Record Record
}

// EdgeChannel holds raw edge rows and their parsed links.
type EdgeChannel struct {
	Channel
	SourceKey string
	TargetKey string
	Linked    bool
	Links     []Link
}

// Point is a position in viewport coordinates.
type Point struct {
	X float64
	Y float64
}

// NodeChannel holds raw node rows and the derived node positions.
type NodeChannel struct {
	Channel
	Positions map[string]Point
}

// Channel returns the base record of the named channel, or nil when the name
// is not a data-bearing channel.
func (s *State) Channel(name ChannelName) *Channel {
	switch name {
	case ChannelData:
		return &s.Data.Channel
	case ChannelAttrs:
		return &s.Attrs
	case ChannelCoords:
		return &s.Coords
	case ChannelNodes:
		return &s.Nodes.Channel
	case ChannelEdges:
		return &s.Edges.Channel
	}
	return nil
}

// Number converts a record value to a float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Text converts a record value to its string form. Missing values yield "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}
