package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphSchema_AddLabelIsIdempotentAndMerges(t *testing.T) {
	s := New()
	s.AddLabel("Person", map[string]PropertySchema{
		"age": {Key: "age", ValueType: LONG, State: PERSISTENT},
	})
	s.AddLabel("Person", map[string]PropertySchema{
		"name": {Key: "name", ValueType: STRING, State: PERSISTENT},
	})
	keys := s.AllProperties("Person")
	assert.ElementsMatch(t, []string{"age", "name"}, keys)
}

func TestGraphSchema_AddRelationshipPropertyRequiresMatchingDirection(t *testing.T) {
	s := New()
	require.NoError(t, s.AddRelationshipType("KNOWS", Directed, nil))
	err := s.AddRelationshipProperty("KNOWS", Undirected, PropertySchema{Key: "since", ValueType: LONG})
	var dirErr *ConflictingDirectionError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "KNOWS", dirErr.Type)
}

func TestGraphSchema_RemovePropertyIsNoOpWhenAbsent(t *testing.T) {
	s := New()
	s.RemoveNodeProperty("Ghost", "nope")
	s.AddLabel("Person", nil)
	s.RemoveNodeProperty("Person", "nope")
	assert.Empty(t, s.AllProperties("Person"))
}

// TestGraphSchema_UnionDirectionConflict is spec §8 scenario S5: unioning
// KNOWS as DIRECTED on one side and UNDIRECTED on the other must fail.
func TestGraphSchema_UnionDirectionConflict(t *testing.T) {
	a := New()
	require.NoError(t, a.AddRelationshipType("KNOWS", Directed, nil))
	b := New()
	require.NoError(t, b.AddRelationshipType("KNOWS", Undirected, nil))

	_, err := a.Union(b)
	var dirErr *ConflictingDirectionError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "KNOWS", dirErr.Type)
}

// TestGraphSchema_UnionPropertyTypeConflict is spec §8 scenario S6: label
// X declaring property "value" as LONG on one side and DOUBLE on the
// other must fail to union.
func TestGraphSchema_UnionPropertyTypeConflict(t *testing.T) {
	a := New()
	a.AddLabel("X", map[string]PropertySchema{"value": {Key: "value", ValueType: LONG}})
	b := New()
	b.AddLabel("X", map[string]PropertySchema{"value": {Key: "value", ValueType: DOUBLE}})

	_, err := a.Union(b)
	var typeErr *ConflictingPropertyTypesError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "value", typeErr.Key)
}

func TestGraphSchema_UnionLeftWinsStablyAndIdempotently(t *testing.T) {
	a := New()
	a.AddLabel("X", map[string]PropertySchema{"value": {Key: "value", ValueType: LONG, DefaultValue: int64(1)}})
	b := New()
	b.AddLabel("X", map[string]PropertySchema{"value": {Key: "value", ValueType: LONG, DefaultValue: int64(99)}})

	merged, err := a.Union(b)
	require.NoError(t, err)
	dump := merged.Dump()
	assert.Equal(t, int64(1), dump.Nodes["X"].Properties["value"].DefaultValue)

	// P9: union is idempotent (A union A == A).
	selfMerged, err := a.Union(a)
	require.NoError(t, err)
	assert.Equal(t, a.Dump(), selfMerged.Dump())
}

// TestGraphSchema_UnionIsAssociative is spec §8 property P9.
func TestGraphSchema_UnionIsAssociative(t *testing.T) {
	a := New()
	a.AddLabel("A", map[string]PropertySchema{"x": {Key: "x", ValueType: LONG}})
	b := New()
	b.AddLabel("B", map[string]PropertySchema{"y": {Key: "y", ValueType: STRING}})
	c := New()
	c.AddLabel("C", map[string]PropertySchema{"z": {Key: "z", ValueType: BOOLEAN}})

	abThenC, err := mustUnion(t, a, b)
	require.NoError(t, err)
	abThenC, err = abThenC.Union(c)
	require.NoError(t, err)

	bcThenA, err := mustUnion(t, b, c)
	require.NoError(t, err)
	aThenBC, err := a.Union(bcThenA)
	require.NoError(t, err)

	assert.Equal(t, abThenC.Dump(), aThenBC.Dump())
}

func mustUnion(t *testing.T, a, b *GraphSchema) (*GraphSchema, error) {
	t.Helper()
	return a.Union(b)
}

func TestGraphSchema_FilterOmitsUnknownIdentifiers(t *testing.T) {
	s := New()
	s.AddLabel("Person", nil)
	s.AddLabel("Company", nil)
	require.NoError(t, s.AddRelationshipType("WORKS_AT", Directed, nil))

	filtered := s.Filter([]string{"Person", "Nonexistent"}, []string{"WORKS_AT"})
	ids := filtered.AvailableIdentifiers()
	assert.Equal(t, []string{"Person"}, ids.Labels)
	assert.Equal(t, []string{"WORKS_AT"}, ids.RelationshipTypes)
}

func TestGraphSchema_Normalize(t *testing.T) {
	s := New()
	require.NoError(t, s.AddRelationshipType("KNOWS", Directed, map[string]PropertySchema{
		"weight": {Key: "weight", ValueType: DOUBLE, Aggregation: AggDefault},
	}))
	s.Normalize()
	dump := s.Dump()
	assert.Equal(t, resolveDefault.String(), dump.Relationships["KNOWS"].Properties["weight"].Aggregation)
}

func TestGraphSchema_IsUndirected(t *testing.T) {
	s := New()
	require.NoError(t, s.AddRelationshipType("KNOWS", Undirected, nil))
	assert.True(t, s.IsUndirected("KNOWS"))
	assert.True(t, s.IsUndirected())

	require.NoError(t, s.AddRelationshipType("FOLLOWS", Directed, nil))
	assert.False(t, s.IsUndirected())
	assert.False(t, s.IsUndirected("FOLLOWS"))
}

func TestGraphSchema_YAMLRoundTrip(t *testing.T) {
	s := New()
	s.AddLabel("Person", map[string]PropertySchema{
		"age": {Key: "age", ValueType: LONG, DefaultValue: int64(0), State: PERSISTENT},
	})
	require.NoError(t, s.AddRelationshipType("KNOWS", Undirected, map[string]PropertySchema{
		"since": {Key: "since", ValueType: LONG, State: TRANSIENT, Aggregation: AggSum},
	}))

	data, err := s.ToYAML()
	require.NoError(t, err)
	restored, err := LoadYAML(data)
	require.NoError(t, err)
	assert.Equal(t, s.Dump(), restored.Dump())
}

func TestGraphSchema_JSONRoundTrip(t *testing.T) {
	s := New()
	s.AddLabel("Person", map[string]PropertySchema{
		"name": {Key: "name", ValueType: STRING, State: PERSISTENT},
	})

	data, err := s.ToJSON()
	require.NoError(t, err)
	restored, err := LoadJSON(data)
	require.NoError(t, err)
	assert.Equal(t, s.Dump(), restored.Dump())
}
