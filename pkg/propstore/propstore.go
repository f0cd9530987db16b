// Package propstore implements the dense, per-key property columns spec
// §4.6 describes: a RelationshipPropertyStore keyed by relationship
// property name (backed by the compressed adjacency property columns of
// pkg/adjacency), and a NodePropertyStore keyed by internal node id
// (backed by a plain dense array, since node properties have no
// adjacency structure to ride along with).
//
// Grounded on the teacher's Node/Edge property maps (map[string]any per
// node/edge) for the store-of-named-columns shape, generalized here from
// one property bag per entity to one dense column per property key —
// the layout the teacher's own huge-array packages (pkg/bigarray) and
// this module's pkg/adjacency already use for ids and targets.
package propstore

import (
	"math"

	"github.com/orneryd/graphcore/pkg/adjacency"
	"github.com/orneryd/graphcore/pkg/convert"
	"github.com/orneryd/graphcore/pkg/schema"
)

// EncodeValue converts an arbitrary Go value into the int64 wire
// representation pkg/adjacency's Compressor stores per edge: LONG and
// BOOLEAN pack directly, DOUBLE packs its IEEE-754 bit pattern (so that
// a plain int64 column transports a float column without the compressor
// needing to know the difference).
func EncodeValue(vt schema.ValueType, v any) int64 {
	switch vt {
	case schema.DOUBLE:
		f, _ := convert.ToFloat64(v)
		return int64(math.Float64bits(f))
	case schema.BOOLEAN:
		if b, ok := v.(bool); ok && b {
			return 1
		}
		return 0
	default: // LONG
		i, _ := convert.ToInt64(v)
		return i
	}
}

// DecodeValue reverses EncodeValue, always returning a float64 so that
// RelationshipProperties has one uniform return type regardless of the
// backing value type (spec §4.6: "Property values are dense columns ...
// Querying RelationshipProperties without an index is not required to be
// O(1)").
func DecodeValue(vt schema.ValueType, raw uint64) float64 {
	switch vt {
	case schema.DOUBLE:
		return math.Float64frombits(raw)
	case schema.BOOLEAN:
		if raw != 0 {
			return 1
		}
		return 0
	default: // LONG
		return float64(int64(raw))
	}
}

// RelationshipProperties answers point queries for one relationship
// property across the whole graph (spec §4.6). Implementations: a
// constant value shared by every edge, an empty store that always
// returns the caller's fallback, and a cursor-backed store reading
// pkg/adjacency's compressed property columns.
type RelationshipProperties interface {
	// Get returns the value of this property on the edge (source,
	// target), or fallback if that edge has no value (including when the
	// edge itself does not exist).
	Get(source, target int64, fallback float64) float64
}

// ConstantRelationshipProperties is a RelationshipProperties backed by a
// single value shared by every edge in the graph (e.g. a uniform default
// weight).
type ConstantRelationshipProperties struct {
	Value float64
}

func (c ConstantRelationshipProperties) Get(source, target int64, fallback float64) float64 {
	return c.Value
}

// EmptyRelationshipProperties is a RelationshipProperties that never has
// a value for any edge; every Get returns fallback.
// RelationshipPropertyStore.Filter on an absent key returns an empty
// store, not this type.
type EmptyRelationshipProperties struct{}

func (EmptyRelationshipProperties) Get(source, target int64, fallback float64) float64 {
	return fallback
}

// CursorRelationshipProperties is a RelationshipProperties backed by a
// compressed adjacency list's property column: Get scans source's
// targets in ascending order (the same order pkg/adjacency.Cursor
// decodes them in) until it finds target or passes where target would
// be.
type CursorRelationshipProperties struct {
	list          *adjacency.AdjacencyList
	propertyIndex int
	valueType     schema.ValueType
}

// NewCursorRelationshipProperties returns a CursorRelationshipProperties
// reading column propertyIndex of list, interpreting raw values as
// valueType.
func NewCursorRelationshipProperties(list *adjacency.AdjacencyList, propertyIndex int, valueType schema.ValueType) *CursorRelationshipProperties {
	return &CursorRelationshipProperties{list: list, propertyIndex: propertyIndex, valueType: valueType}
}

func (c *CursorRelationshipProperties) Get(source, target int64, fallback float64) float64 {
	col, hasColumn := c.list.PropertyColumn(source, c.propertyIndex)

	var cur adjacency.Cursor
	cur.Reset(c.list, source)
	idx := 0
	for {
		v, ok := cur.Next()
		if !ok {
			return fallback
		}
		if v == target {
			if hasColumn && idx < len(col) {
				raw := col[idx]
				if int64(raw) == adjacency.IgnoreValue {
					return fallback
				}
				return DecodeValue(c.valueType, raw)
			}
			return fallback
		}
		if v > target {
			return fallback
		}
		idx++
	}
}

// RelationshipProperty pairs a relationship property's schema with its
// value store (spec §4.6).
type RelationshipProperty struct {
	Schema schema.PropertySchema
	Values RelationshipProperties
}

// RelationshipPropertyStore is the keyed collection of a single
// relationship type's properties (spec §4.6).
type RelationshipPropertyStore struct {
	properties map[string]RelationshipProperty
}

// NewRelationshipPropertyStore returns an empty store.
func NewRelationshipPropertyStore() *RelationshipPropertyStore {
	return &RelationshipPropertyStore{properties: make(map[string]RelationshipProperty)}
}

// Put registers a property under key, replacing any existing entry.
func (s *RelationshipPropertyStore) Put(key string, prop RelationshipProperty) {
	s.properties[key] = prop
}

// Get returns the property registered under key, or false if none is.
func (s *RelationshipPropertyStore) Get(key string) (RelationshipProperty, bool) {
	p, ok := s.properties[key]
	return p, ok
}

// Values returns every registered RelationshipProperty.
func (s *RelationshipPropertyStore) Values() []RelationshipProperty {
	out := make([]RelationshipProperty, 0, len(s.properties))
	for _, p := range s.properties {
		out = append(out, p)
	}
	return out
}

// Keys returns every registered property key.
func (s *RelationshipPropertyStore) Keys() []string {
	out := make([]string, 0, len(s.properties))
	for k := range s.properties {
		out = append(out, k)
	}
	return out
}

// IsEmpty reports whether the store has no registered properties.
func (s *RelationshipPropertyStore) IsEmpty() bool {
	return len(s.properties) == 0
}

// ContainsKey reports whether key is registered.
func (s *RelationshipPropertyStore) ContainsKey(key string) bool {
	_, ok := s.properties[key]
	return ok
}

// Filter returns a new store containing only key, or an empty store (not
// an error) if key is absent — spec §4.6: "filter-on-absent-key ->
// empty store".
func (s *RelationshipPropertyStore) Filter(key string) *RelationshipPropertyStore {
	out := NewRelationshipPropertyStore()
	if p, ok := s.properties[key]; ok {
		out.properties[key] = p
	}
	return out
}
