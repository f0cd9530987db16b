package graphstore

import (
	"testing"

	"github.com/orneryd/graphcore/pkg/config"
	"github.com/orneryd/graphcore/pkg/idmap"
	"github.com/orneryd/graphcore/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{Threads: 2, PagesPerThread: 4, MinPageSize: config.DefaultMinPageSize, MaxPageSize: config.DefaultMaxPageSize}
}

// TestBuilder_TinyGraphEndToEnd is spec §8 scenario S1.
func TestBuilder_TinyGraphEndToEnd(t *testing.T) {
	b := NewBuilder(testConfig(t))
	for _, original := range []int64{10, 20, 30, 40} {
		_, err := b.AddNode(original, "A")
		require.NoError(t, err)
	}
	g, err := b.Build()
	require.NoError(t, err)

	assert.EqualValues(t, 4, g.IDMap().NodeCount())
	assert.EqualValues(t, 2, g.IDMap().ToMapped(30))
	assert.EqualValues(t, 30, g.IDMap().ToOriginal(2))
	assert.False(t, g.IDMap().ContainsOriginal(25))

	var seen []int64
	it := g.IDMap().IterNodes()
	for it.HasNext() {
		seen = append(seen, it.Next())
	}
	assert.Equal(t, []int64{0, 1, 2, 3}, seen)
}

func TestBuilder_AddNodeIsIdempotent(t *testing.T) {
	b := NewBuilder(testConfig(t))
	first, err := b.AddNode(5, "Person")
	require.NoError(t, err)
	second, err := b.AddNode(5, "Person")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	g, err := b.Build()
	require.NoError(t, err)
	assert.EqualValues(t, 1, g.IDMap().NodeCount())
}

func TestBuilder_AddNodeRejectsNegativeID(t *testing.T) {
	b := NewBuilder(testConfig(t))
	_, err := b.AddNode(-1, "Person")
	var negErr *idmap.NegativeIDError
	require.ErrorAs(t, err, &negErr)
}

func TestBuilder_AddEdgeWithProperties(t *testing.T) {
	b := NewBuilder(testConfig(t))
	_, err := b.AddNode(1, "Person")
	require.NoError(t, err)
	_, err = b.AddNode(2, "Person")
	require.NoError(t, err)
	require.NoError(t, b.AddEdge("KNOWS", 1, 2, schema.Directed, map[string]any{"since": int64(2020)}))

	g, err := b.Build()
	require.NoError(t, err)

	src := g.IDMap().ToMapped(1)
	dst := g.IDMap().ToMapped(2)
	assert.EqualValues(t, 1, g.Degree("KNOWS", src))

	cur, ok := g.Cursor("KNOWS", src)
	require.True(t, ok)
	target, hasNext := cur.Next()
	require.True(t, hasNext)
	assert.Equal(t, dst, target)
	g.ReleaseCursor("KNOWS", cur)

	store, ok := g.RelationshipProperties("KNOWS")
	require.True(t, ok)
	since, ok := store.Get("since")
	require.True(t, ok)
	assert.Equal(t, 2020.0, since.Values.Get(src, dst, -1))
}

// TestBuilder_UndirectedEdgeMaterializesBothEndpoints exercises I5: an
// UNDIRECTED edge must appear in both endpoints' adjacency lists.
func TestBuilder_UndirectedEdgeMaterializesBothEndpoints(t *testing.T) {
	b := NewBuilder(testConfig(t))
	require.NoError(t, b.AddEdge("FRIENDS", 1, 2, schema.Undirected, nil))

	g, err := b.Build()
	require.NoError(t, err)

	src := g.IDMap().ToMapped(1)
	dst := g.IDMap().ToMapped(2)
	assert.EqualValues(t, 1, g.Degree("FRIENDS", src))
	assert.EqualValues(t, 1, g.Degree("FRIENDS", dst))
}

func TestBuilder_AddEdgeRegistersSchema(t *testing.T) {
	b := NewBuilder(testConfig(t))
	require.NoError(t, b.AddEdge("KNOWS", 1, 2, schema.Directed, nil))
	_, err := b.AddNode(3, "Person")
	require.NoError(t, err)

	g, err := b.Build()
	require.NoError(t, err)

	ids := g.Schema().AvailableIdentifiers()
	assert.Contains(t, ids.RelationshipTypes, "KNOWS")
	assert.Contains(t, ids.Labels, "Person")
}

func TestBuilder_PrepareForFlushRejectsFurtherMutation(t *testing.T) {
	b := NewBuilder(testConfig(t))
	b.PrepareForFlush()
	_, err := b.AddNode(1, "Person")
	assert.ErrorIs(t, err, ErrBuilderFlushed)
	assert.ErrorIs(t, b.AddEdge("KNOWS", 1, 2, schema.Directed, nil), ErrBuilderFlushed)
}

func TestBuilder_NodeWithProperties(t *testing.T) {
	b := NewBuilder(testConfig(t))
	_, err := b.AddNodeWithProperties(1, []string{"Person"}, map[string]any{
		"age":  int64(30),
		"name": "Ada",
	})
	require.NoError(t, err)

	g, err := b.Build()
	require.NoError(t, err)
	internal := g.IDMap().ToMapped(1)

	ageCol, ok := g.NodeProperties().Get("age")
	require.True(t, ok)
	assert.Equal(t, 30.0, ageCol.Get(internal))

	nameCol, ok := g.StringNodeProperties().Get("name")
	require.True(t, ok)
	name, ok := nameCol.Get(internal)
	require.True(t, ok)
	assert.Equal(t, "Ada", name)
}

func TestEstimateIDMap_BoundsAreOrdered(t *testing.T) {
	r := EstimateIDMap(1000, 5000, 3)
	assert.LessOrEqual(t, r.Low, r.High)
	assert.Greater(t, r.Low, int64(0))
}

func TestEstimateAdjacency_BoundsAreOrdered(t *testing.T) {
	r := EstimateAdjacency(10, 1000, 2)
	assert.LessOrEqual(t, r.Low, r.High)
	assert.Greater(t, r.Low, int64(0))
}
