package idmap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_AddNodeIsIdempotent(t *testing.T) {
	b := NewBuilder(0)

	first, err := b.AddNode(42, "Person")
	require.NoError(t, err)

	second, err := b.AddNode(42, "Person")
	require.NoError(t, err)

	assert.Equal(t, first, second, "re-adding the same original id must return the same internal id")
	assert.Equal(t, int64(1), b.NodeCount(), "repeat insertion must not grow the node count")
}

func TestBuilder_AddNodeRejectsNegativeID(t *testing.T) {
	b := NewBuilder(0)
	_, err := b.AddNode(-1)
	require.Error(t, err)
	var negErr *NegativeIDError
	assert.ErrorAs(t, err, &negErr)
}

func TestBuilder_ConcurrentDistinctInsertionsAssignDistinctIDs(t *testing.T) {
	b := NewBuilder(0)
	const n = 5000

	var wg sync.WaitGroup
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := b.AddNode(int64(i))
			require.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "internal id %d assigned twice", id)
		seen[id] = true
	}
	assert.Equal(t, int64(n), b.NodeCount())
}

func TestBuilder_BuildRoundTripsOriginalIDs(t *testing.T) {
	b := NewBuilder(0)
	originals := []int64{5, 100, 3, 999_999, 0}
	internals := make(map[int64]int64, len(originals))
	for _, o := range originals {
		id, err := b.AddNode(o)
		require.NoError(t, err)
		internals[o] = id
	}

	m, err := b.Build(4)
	require.NoError(t, err)

	assert.Equal(t, int64(len(originals)), m.NodeCount())
	assert.Equal(t, int64(999_999), m.HighestOriginalID())

	for _, o := range originals {
		assert.Equal(t, internals[o], m.ToMapped(o))
		assert.Equal(t, o, m.ToOriginal(internals[o]))
		assert.True(t, m.ContainsOriginal(o))
	}
	assert.False(t, m.ContainsOriginal(123456))
	assert.Equal(t, NotFound, m.ToMapped(123456))
	assert.Equal(t, NotFound, m.ToMapped(-5))
}

func TestBuilder_LabelsSurviveSingleToMultiUpgrade(t *testing.T) {
	b := NewBuilder(0)
	personID, err := b.AddNode(1, "Person")
	require.NoError(t, err)
	_, err = b.AddNode(2, "Person")
	require.NoError(t, err)
	employeeID, err := b.AddNode(3, "Person", "Employee")
	require.NoError(t, err)

	m, err := b.Build(2)
	require.NoError(t, err)

	assert.Equal(t, int64(3), m.NodeCount(Label("Person")))
	assert.Equal(t, int64(1), m.NodeCount(Label("Employee")))
	assert.True(t, m.labels.HasLabel(personID, "Person"))
	assert.True(t, m.labels.HasLabel(employeeID, "Employee"))
	assert.False(t, m.labels.HasLabel(personID, "Employee"))
}

func TestArrayIdMap_IterNodesAllNodesIsRestartable(t *testing.T) {
	b := NewBuilder(0)
	for i := int64(0); i < 10; i++ {
		_, err := b.AddNode(i)
		require.NoError(t, err)
	}
	m, err := b.Build(2)
	require.NoError(t, err)

	it := m.IterNodes()
	var first []int64
	for it.HasNext() {
		first = append(first, it.Next())
	}
	assert.Len(t, first, 10)

	it.Reset()
	var second []int64
	for it.HasNext() {
		second = append(second, it.Next())
	}
	assert.Equal(t, first, second)
}

func TestArrayIdMap_IterNodesByLabel(t *testing.T) {
	b := NewBuilder(0)
	_, err := b.AddNode(1, "Person")
	require.NoError(t, err)
	_, err = b.AddNode(2, "Movie")
	require.NoError(t, err)
	_, err = b.AddNode(3, "Person")
	require.NoError(t, err)

	m, err := b.Build(1)
	require.NoError(t, err)

	it := m.IterNodes("Person")
	var count int
	for it.HasNext() {
		id := it.Next()
		assert.True(t, m.labels.HasLabel(id, "Person"))
		count++
	}
	assert.Equal(t, 2, count)
}

func TestArrayIdMap_BatchIterablesCoversWholeRange(t *testing.T) {
	b := NewBuilder(0)
	for i := int64(0); i < 97; i++ {
		_, err := b.AddNode(i)
		require.NoError(t, err)
	}
	m, err := b.Build(4)
	require.NoError(t, err)

	ranges := m.BatchIterables(10)
	var total int64
	for _, r := range ranges {
		total += r.Len()
	}
	assert.Equal(t, int64(97), total)
	assert.Equal(t, int64(0), ranges[0].Lo)
	assert.Equal(t, int64(97), ranges[len(ranges)-1].Hi)
}

func TestArrayIdMap_WithFilteredLabels(t *testing.T) {
	b := NewBuilder(0)
	_, err := b.AddNode(10, "Person")
	require.NoError(t, err)
	_, err = b.AddNode(20, "Movie")
	require.NoError(t, err)
	_, err = b.AddNode(30, "Person")
	require.NoError(t, err)

	m, err := b.Build(1)
	require.NoError(t, err)

	filtered, err := m.WithFilteredLabels([]Label{"Person"}, 1)
	require.NoError(t, err)
	require.NotNil(t, filtered)
	assert.Equal(t, int64(2), filtered.NodeCount())

	f0 := filtered.ToOriginal(0)
	f1 := filtered.ToOriginal(1)
	assert.ElementsMatch(t, []int64{10, 30}, []int64{f0, f1})

	assert.Equal(t, int64(0), filtered.ToMapped(10))
	assert.Equal(t, NotFound, filtered.ToMapped(20))
}

func TestArrayIdMap_WithFilteredLabelsUnknownLabelReturnsError(t *testing.T) {
	b := NewBuilder(0)
	_, err := b.AddNode(1, "Person")
	require.NoError(t, err)
	m, err := b.Build(1)
	require.NoError(t, err)

	filtered, err := m.WithFilteredLabels([]Label{"Ghost"}, 1)
	require.Error(t, err)
	assert.Nil(t, filtered)
	var unknown *UnknownLabelError
	assert.ErrorAs(t, err, &unknown)
}
