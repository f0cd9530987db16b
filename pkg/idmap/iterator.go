package idmap

// NodeIterator is a finite, restartable ascending iterator over internal
// ids (spec §4.1: IterNodes). Both IdMap implementations hand these out
// rather than a plain slice so that an all-nodes iteration (the common
// case) never has to materialize a bitset.
type NodeIterator struct {
	// Exactly one of rng or bits is set.
	rng  *rangeState
	bits *bitsetState
}

type rangeState struct {
	total int64
	pos   int64
}

type bitsetState struct {
	set *frozenBitSet
	pos int64
}

func newRangeIterator(total int64) *NodeIterator {
	return &NodeIterator{rng: &rangeState{total: total, pos: 0}}
}

func newBitsetIterator(set *frozenBitSet) *NodeIterator {
	return &NodeIterator{bits: &bitsetState{set: set, pos: set.NextSetBit(0)}}
}

// HasNext reports whether Next would return another id.
func (it *NodeIterator) HasNext() bool {
	if it.rng != nil {
		return it.rng.pos < it.rng.total
	}
	return it.bits.pos != -1
}

// Next returns the next ascending internal id. Callers check HasNext
// first: Next does not panic when HasNext is false, and the value it
// returns then is not a valid internal id.
func (it *NodeIterator) Next() int64 {
	if it.rng != nil {
		id := it.rng.pos
		it.rng.pos++
		return id
	}
	id := it.bits.pos
	it.bits.pos = it.bits.set.NextSetBit(id + 1)
	return id
}

// Reset rewinds the iterator to its first id.
func (it *NodeIterator) Reset() {
	if it.rng != nil {
		it.rng.pos = 0
		return
	}
	it.bits.pos = it.bits.set.NextSetBit(0)
}
