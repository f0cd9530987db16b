package propstore

import (
	"testing"

	"github.com/orneryd/graphcore/pkg/adjacency"
	"github.com/orneryd/graphcore/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantRelationshipProperties(t *testing.T) {
	p := ConstantRelationshipProperties{Value: 4.5}
	assert.Equal(t, 4.5, p.Get(1, 2, -1))
	assert.Equal(t, 4.5, p.Get(99, 100, -1))
}

func TestEmptyRelationshipPropertiesAlwaysReturnsFallback(t *testing.T) {
	p := EmptyRelationshipProperties{}
	assert.Equal(t, 7.0, p.Get(1, 2, 7))
}

func TestCursorRelationshipProperties_LongValues(t *testing.T) {
	c := adjacency.NewCompressor(1)
	c.Add(1, 10, 100)
	c.Add(1, 20, 200)
	c.Add(1, 30, 300)
	list := c.Build()

	props := NewCursorRelationshipProperties(list, 0, schema.LONG)
	assert.Equal(t, 200.0, props.Get(1, 20, -1))
	assert.Equal(t, -1.0, props.Get(1, 25, -1), "no edge to 25, fallback returned")
	assert.Equal(t, -1.0, props.Get(2, 10, -1), "source 2 does not exist")
}

func TestCursorRelationshipProperties_DoubleValues(t *testing.T) {
	c := adjacency.NewCompressor(1)
	c.Add(1, 10, int64(EncodeValue(schema.DOUBLE, 3.25)))
	list := c.Build()

	props := NewCursorRelationshipProperties(list, 0, schema.DOUBLE)
	assert.Equal(t, 3.25, props.Get(1, 10, -1))
}

func TestCursorRelationshipProperties_MissingPropertyFallsBack(t *testing.T) {
	c := adjacency.NewCompressor(2)
	c.Add(1, 10, 5) // only first of 2 property columns supplied
	list := c.Build()

	props := NewCursorRelationshipProperties(list, 1, schema.LONG)
	assert.Equal(t, -9.0, props.Get(1, 10, -9))
}

func TestRelationshipPropertyStore_FilterOnAbsentKeyReturnsEmptyStore(t *testing.T) {
	s := NewRelationshipPropertyStore()
	s.Put("weight", RelationshipProperty{
		Schema: schema.PropertySchema{Key: "weight", ValueType: schema.LONG},
		Values: ConstantRelationshipProperties{Value: 1},
	})

	filtered := s.Filter("nonexistent")
	assert.True(t, filtered.IsEmpty())
	assert.False(t, filtered.ContainsKey("weight"))

	present := s.Filter("weight")
	require.True(t, present.ContainsKey("weight"))
	assert.Equal(t, []string{"weight"}, present.Keys())
}

func TestRelationshipPropertyStore_KeysAndValues(t *testing.T) {
	s := NewRelationshipPropertyStore()
	assert.True(t, s.IsEmpty())
	s.Put("a", RelationshipProperty{Schema: schema.PropertySchema{Key: "a"}, Values: EmptyRelationshipProperties{}})
	s.Put("b", RelationshipProperty{Schema: schema.PropertySchema{Key: "b"}, Values: EmptyRelationshipProperties{}})
	assert.ElementsMatch(t, []string{"a", "b"}, s.Keys())
	assert.Len(t, s.Values(), 2)
}

func TestNodePropertyValues_SetAndGet(t *testing.T) {
	col := NewNodePropertyValues(schema.PropertySchema{Key: "age", ValueType: schema.LONG}, 5, -1)
	col.Set(2, int64(42))
	assert.Equal(t, 42.0, col.Get(2))
	assert.Equal(t, -1.0, col.Get(3), "unset slot returns fallback")
	assert.Equal(t, -1.0, col.Get(99), "out of range returns fallback")
}

func TestNodePropertyValues_DoubleCoercion(t *testing.T) {
	col := NewNodePropertyValues(schema.PropertySchema{Key: "score", ValueType: schema.DOUBLE}, 3, 0)
	col.Set(0, 3.14)
	assert.InDelta(t, 3.14, col.Get(0), 1e-9)
}

func TestNodePropertyStore_Filter(t *testing.T) {
	s := NewNodePropertyStore()
	s.Put("age", NewNodePropertyValues(schema.PropertySchema{Key: "age", ValueType: schema.LONG}, 1, 0))

	assert.True(t, s.Filter("missing").IsEmpty())
	filtered := s.Filter("age")
	_, ok := filtered.Get("age")
	assert.True(t, ok)
}
