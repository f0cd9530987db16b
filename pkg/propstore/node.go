package propstore

import "github.com/orneryd/graphcore/pkg/schema"

// NodePropertyValues is a single node property's dense column, one slot
// per internal id (spec §4.6). Values not explicitly set read back as
// the column's configured fallback.
type NodePropertyValues struct {
	schema   schema.PropertySchema
	values   []float64
	present  []bool
	fallback float64
}

// NewNodePropertyValues returns a column sized for nodeCount internal
// ids, all initially unset.
func NewNodePropertyValues(ps schema.PropertySchema, nodeCount int64, fallback float64) *NodePropertyValues {
	return &NodePropertyValues{
		schema:   ps,
		values:   make([]float64, nodeCount),
		present:  make([]bool, nodeCount),
		fallback: fallback,
	}
}

// Set records value for internal id node, coercing it through the
// column's declared value type.
func (c *NodePropertyValues) Set(node int64, value any) {
	raw := EncodeValue(c.schema.ValueType, value)
	c.values[node] = DecodeValue(c.schema.ValueType, uint64(raw))
	c.present[node] = true
}

// Get returns node's value, or the column's fallback if node has none.
func (c *NodePropertyValues) Get(node int64) float64 {
	if node < 0 || int(node) >= len(c.values) || !c.present[node] {
		return c.fallback
	}
	return c.values[node]
}

// Schema returns this column's property schema.
func (c *NodePropertyValues) Schema() schema.PropertySchema { return c.schema }

// NodePropertyStore is the keyed collection of a graph's node property
// columns (spec §4.6), analogous to RelationshipPropertyStore but keyed
// by internal node id rather than (source, target).
type NodePropertyStore struct {
	properties map[string]*NodePropertyValues
}

// NewNodePropertyStore returns an empty store.
func NewNodePropertyStore() *NodePropertyStore {
	return &NodePropertyStore{properties: make(map[string]*NodePropertyValues)}
}

// Put registers column under key, replacing any existing entry.
func (s *NodePropertyStore) Put(key string, column *NodePropertyValues) {
	s.properties[key] = column
}

// Get returns the column registered under key, or false if none is.
func (s *NodePropertyStore) Get(key string) (*NodePropertyValues, bool) {
	c, ok := s.properties[key]
	return c, ok
}

// Keys returns every registered property key.
func (s *NodePropertyStore) Keys() []string {
	out := make([]string, 0, len(s.properties))
	for k := range s.properties {
		out = append(out, k)
	}
	return out
}

// IsEmpty reports whether the store has no registered columns.
func (s *NodePropertyStore) IsEmpty() bool {
	return len(s.properties) == 0
}

// ContainsKey reports whether key is registered.
func (s *NodePropertyStore) ContainsKey(key string) bool {
	_, ok := s.properties[key]
	return ok
}

// Filter returns a new store containing only key, or an empty store if
// key is absent.
func (s *NodePropertyStore) Filter(key string) *NodePropertyStore {
	out := NewNodePropertyStore()
	if c, ok := s.properties[key]; ok {
		out.properties[key] = c
	}
	return out
}

// StringNodePropertyValues is a node property column for STRING-valued
// properties (spec §3's STRING value type), which have no dense numeric
// representation to pack into a []float64 column the way
// NodePropertyValues does. Backed by a plain Go map instead, since string
// node properties are expected to be comparatively rare and small.
type StringNodePropertyValues struct {
	schema schema.PropertySchema
	values map[int64]string
}

// NewStringNodePropertyValues returns an empty column.
func NewStringNodePropertyValues(ps schema.PropertySchema) *StringNodePropertyValues {
	return &StringNodePropertyValues{schema: ps, values: make(map[int64]string)}
}

// Set records value for internal id node.
func (c *StringNodePropertyValues) Set(node int64, value string) {
	c.values[node] = value
}

// Get returns node's value and true, or ("", false) if node has none.
func (c *StringNodePropertyValues) Get(node int64) (string, bool) {
	v, ok := c.values[node]
	return v, ok
}

// Schema returns this column's property schema.
func (c *StringNodePropertyValues) Schema() schema.PropertySchema { return c.schema }

// StringNodePropertyStore is the keyed collection of a graph's
// STRING-valued node property columns, kept separate from
// NodePropertyStore because its columns have a different Get signature
// (string, bool) rather than a uniform float64.
type StringNodePropertyStore struct {
	properties map[string]*StringNodePropertyValues
}

// NewStringNodePropertyStore returns an empty store.
func NewStringNodePropertyStore() *StringNodePropertyStore {
	return &StringNodePropertyStore{properties: make(map[string]*StringNodePropertyValues)}
}

// Put registers column under key, replacing any existing entry.
func (s *StringNodePropertyStore) Put(key string, column *StringNodePropertyValues) {
	s.properties[key] = column
}

// Get returns the column registered under key, or false if none is.
func (s *StringNodePropertyStore) Get(key string) (*StringNodePropertyValues, bool) {
	c, ok := s.properties[key]
	return c, ok
}

// Keys returns every registered property key.
func (s *StringNodePropertyStore) Keys() []string {
	out := make([]string, 0, len(s.properties))
	for k := range s.properties {
		out = append(out, k)
	}
	return out
}

// IsEmpty reports whether the store has no registered columns.
func (s *StringNodePropertyStore) IsEmpty() bool {
	return len(s.properties) == 0
}
