package idmap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowingBitSet_SetGetAcrossWordBoundaries(t *testing.T) {
	b := newGrowingBitSet()
	bits := []int64{0, 1, 63, 64, 65, 127, 1000}
	for _, bit := range bits {
		b.Set(bit)
	}
	for _, bit := range bits {
		assert.True(t, b.Get(bit), "bit %d should be set", bit)
	}
	assert.False(t, b.Get(2))
	assert.False(t, b.Get(999))
}

func TestGrowingBitSet_GrowsBeyondInitialWords(t *testing.T) {
	b := newGrowingBitSet()
	b.Set(10_000)
	assert.True(t, b.Get(10_000))
	assert.False(t, b.Get(9_999))
}

func TestGrowingBitSet_ConcurrentSetsAreAllObserved(t *testing.T) {
	b := newGrowingBitSet()
	const n = 2000
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Set(int64(i))
		}(i)
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		assert.True(t, b.Get(int64(i)), "bit %d missing after concurrent set", i)
	}
}

func TestGrowingBitSet_Freeze(t *testing.T) {
	b := newGrowingBitSet()
	b.Set(3)
	b.Set(70)
	b.Set(100) // beyond the frozen size, must be dropped

	frozen := b.freeze(80)
	assert.True(t, frozen.Get(3))
	assert.True(t, frozen.Get(70))
	assert.False(t, frozen.Get(100))
	assert.Equal(t, int64(2), frozen.Cardinality())
}

func TestFrozenBitSet_NextSetBit(t *testing.T) {
	b := emptyFrozenBitSet(200)
	for _, bit := range []int64{5, 64, 65, 199} {
		b.words[bit>>6] |= uint64(1) << uint(bit&63)
	}

	var got []int64
	for bit := b.NextSetBit(0); bit != -1; bit = b.NextSetBit(bit + 1) {
		got = append(got, bit)
	}
	assert.Equal(t, []int64{5, 64, 65, 199}, got)
}

func TestFrozenBitSet_NextSetBitNoneReturnsNegativeOne(t *testing.T) {
	b := emptyFrozenBitSet(64)
	assert.Equal(t, int64(-1), b.NextSetBit(0))
}

func TestFullFrozenBitSet_HasExactCardinality(t *testing.T) {
	b := fullFrozenBitSet(70)
	assert.Equal(t, int64(70), b.Cardinality())
	assert.True(t, b.Get(69))
	assert.False(t, b.Get(70))
}

func TestUnionBitsets(t *testing.T) {
	a := emptyFrozenBitSet(10)
	a.words[0] |= 1 << 1
	c := emptyFrozenBitSet(10)
	c.words[0] |= 1 << 3

	u := unionBitsets([]*frozenBitSet{a, c}, 10)
	assert.True(t, u.Get(1))
	assert.True(t, u.Get(3))
	assert.False(t, u.Get(2))
	assert.Equal(t, int64(2), u.Cardinality())
}
