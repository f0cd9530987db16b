package adjacency

// adjacencyEntry is one source's finalized, immutable compressed target
// list plus its parallel property columns and block index.
type adjacencyEntry struct {
	data  []byte
	count int32

	// blockStarts[i] is the byte offset where block i's varint stream
	// begins; blockBase[i] is the cumulative (decoded) target value
	// immediately before block i starts, i.e. the maximum value reached
	// by block i-1. Both have len = numBlocks+1, with the trailing entry
	// describing the position just past the last block. Targets are
	// sorted ascending before encoding (see buildEntry), so blockBase is
	// non-decreasing and usable as a binary-search key.
	blockStarts []int32
	blockBase   []int64

	properties [][]uint64
}

func buildBlockTable(data []byte, count int32, properties [][]uint64) *adjacencyEntry {
	numBlocks := (int(count) + BlockSize - 1) / BlockSize
	blockStarts := make([]int32, numBlocks+1)
	blockBase := make([]int64, numBlocks+1)

	pos := 0
	var last int64
	for i := 0; i < int(count); i++ {
		if i%BlockSize == 0 {
			blockStarts[i/BlockSize] = int32(pos)
			blockBase[i/BlockSize] = last
		}
		v, newPos := getVarint(data, pos)
		pos = newPos
		last += zigzagDecode(v)
	}
	blockStarts[numBlocks] = int32(pos)
	blockBase[numBlocks] = last

	return &adjacencyEntry{
		data:        data,
		count:       count,
		blockStarts: blockStarts,
		blockBase:   blockBase,
		properties:  properties,
	}
}

// AdjacencyList is the immutable, finalized compressed adjacency structure
// produced by Compressor.Build.
type AdjacencyList struct {
	bySource map[int64]*adjacencyEntry
}

// Degree returns the number of targets stored for source, or 0 if source
// has none.
func (l *AdjacencyList) Degree(source int64) int32 {
	if e, ok := l.bySource[source]; ok {
		return e.count
	}
	return 0
}

// MemoryEstimate returns the exact byte footprint of the compressed
// streams and property columns (spec §4.3).
func (l *AdjacencyList) MemoryEstimate() int64 {
	var total int64
	for _, e := range l.bySource {
		total += int64(len(e.data))
		total += int64(len(e.blockStarts)) * 4
		total += int64(len(e.blockBase)) * 8
		for _, col := range e.properties {
			total += int64(len(col)) * 8
		}
	}
	return total
}

// Cursor decodes a source's compressed target stream 64 elements (one
// block) at a time (spec §4.4). A zero-value Cursor is usable once Reset
// has been called; it is not safe for concurrent use by multiple
// goroutines, but independent Cursors over the same AdjacencyList are
// (the AdjacencyList itself is read-only after Build).
type Cursor struct {
	entry    *adjacencyEntry
	blockIdx int
	pos      int32
	block    [BlockSize]int64
	blockLen int
	within   int
}

// Reset points the cursor at the start of source's target stream. Passing
// a source with no entries leaves the cursor exhausted (HasNext false).
func (c *Cursor) Reset(list *AdjacencyList, source int64) {
	entry, ok := list.bySource[source]
	if !ok {
		c.entry = nil
		c.blockLen = 0
		c.within = 0
		c.pos = 0
		return
	}
	c.entry = entry
	c.seekBlock(0)
}

func (c *Cursor) seekBlock(blockIdx int) {
	entry := c.entry
	c.blockIdx = blockIdx
	c.pos = int32(blockIdx) * BlockSize

	n := BlockSize
	if remaining := int(entry.count) - int(c.pos); remaining < n {
		n = remaining
	}
	if n < 0 {
		n = 0
	}

	bytePos := int(entry.blockStarts[blockIdx])
	last := entry.blockBase[blockIdx]
	for i := 0; i < n; i++ {
		v, newPos := getVarint(entry.data, bytePos)
		bytePos = newPos
		last += zigzagDecode(v)
		c.block[i] = last
	}
	c.blockLen = n
	c.within = 0
}

// HasNext reports whether Next/Peek would return another target.
func (c *Cursor) HasNext() bool {
	return c.entry != nil && int(c.pos)+c.within < int(c.entry.count)
}

// Next returns the next target in ascending order and advances.
func (c *Cursor) Next() (int64, bool) {
	if !c.HasNext() {
		return 0, false
	}
	if c.within >= c.blockLen {
		c.seekBlock(c.blockIdx + 1)
	}
	v := c.block[c.within]
	c.within++
	return v, true
}

// Peek returns the next target without advancing.
func (c *Cursor) Peek() (int64, bool) {
	if !c.HasNext() {
		return 0, false
	}
	if c.within >= c.blockLen {
		c.seekBlock(c.blockIdx + 1)
	}
	return c.block[c.within], true
}

// AdvanceBy skips n elements forward (n >= 0) and returns the element the
// cursor then lands on, consuming it (equivalent to calling Next n+1
// times, but jumps directly to the landing block via the block index
// instead of decoding every intervening block).
func (c *Cursor) AdvanceBy(n int) (int64, bool) {
	if c.entry == nil || n < 0 {
		return 0, false
	}
	newAbs := int(c.pos) + c.within + n
	if newAbs >= int(c.entry.count) {
		return 0, false
	}
	targetBlock := newAbs / BlockSize
	if targetBlock != c.blockIdx || c.within >= c.blockLen {
		c.seekBlock(targetBlock)
	}
	c.within = newAbs % BlockSize
	v := c.block[c.within]
	c.within++
	return v, true
}

// seekForward drives the shared block-skip search behind SkipUntil and
// Advance. blockClears(base) reports whether a block whose maximum value is
// base can no longer contain anything the caller wants skipped (so binary
// search can stop narrowing past it); stop(v) reports whether a decoded
// element satisfies the caller's target. The two methods differ only in
// these two predicates, both built from the same strict/inclusive boundary
// so they stay consistent with each other.
//
// Block-skip optimization: blockBase holds each block's maximum value (the
// cumulative value reached by its last element), which is non-decreasing
// since targets are sorted ascending before encoding. A binary search over
// blockBase jumps straight to the one block that can contain the answer,
// decoding only that block instead of walking every block from the
// cursor's current position.
func (c *Cursor) seekForward(blockClears func(base int64) bool, stop func(v int64) bool) (int64, bool) {
	if c.entry == nil || !c.HasNext() {
		return 0, false
	}
	entry := c.entry
	numBlocks := len(entry.blockStarts) - 1

	lo, hi := c.blockIdx, numBlocks-1
	found := numBlocks
	for lo <= hi {
		mid := (lo + hi) / 2
		if blockClears(entry.blockBase[mid+1]) {
			found = mid
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	if found >= numBlocks {
		c.pos = entry.count
		c.blockLen = 0
		c.within = 0
		return 0, false
	}

	if found != c.blockIdx {
		c.seekBlock(found)
	}

	for {
		if c.within >= c.blockLen {
			if c.blockIdx+1 >= numBlocks {
				return 0, false
			}
			c.seekBlock(c.blockIdx + 1)
		}
		v := c.block[c.within]
		c.within++
		if stop(v) {
			return v, true
		}
	}
}

// SkipUntil advances the cursor to the first target strictly greater than
// target and returns it, or returns (0, false) if no such target remains.
// A target equal to an element present in the stream is skipped past, not
// returned (spec §4.4, scenario S4: skip_until(10) over [5,10,15,20]
// yields 15, not 10).
func (c *Cursor) SkipUntil(target int64) (int64, bool) {
	return c.seekForward(
		func(base int64) bool { return base > target },
		func(v int64) bool { return v > target },
	)
}

// Advance moves the cursor to the first target greater than or equal to
// target and returns it, or returns (0, false) if no such target remains.
// Unlike SkipUntil, a target that is itself present in the stream is the
// returned value.
func (c *Cursor) Advance(target int64) (int64, bool) {
	return c.seekForward(
		func(base int64) bool { return base >= target },
		func(v int64) bool { return v >= target },
	)
}

// CopyFrom makes c an independent cursor at other's current position,
// letting a caller fork a read position (e.g. to look ahead) without
// disturbing other.
func (c *Cursor) CopyFrom(other *Cursor) {
	c.entry = other.entry
	c.blockIdx = other.blockIdx
	c.pos = other.pos
	c.block = other.block
	c.blockLen = other.blockLen
	c.within = other.within
}

// PropertyCursor iterates one property column in lockstep with a Cursor
// over the same source (spec §4.4's "parallel, simpler cursor" for
// property values: no block skipping, since property lookups are always
// consumed in the same ascending order as their targets).
type PropertyCursor struct {
	values []uint64
	pos    int
}

// Init points the cursor at the start of values.
func (p *PropertyCursor) Init(values []uint64) {
	p.values = values
	p.pos = 0
}

// HasNext reports whether NextValue would return another value.
func (p *PropertyCursor) HasNext() bool {
	return p.pos < len(p.values)
}

// NextValue returns the next property value and advances.
func (p *PropertyCursor) NextValue() (int64, bool) {
	if !p.HasNext() {
		return 0, false
	}
	v := int64(p.values[p.pos])
	p.pos++
	return v, true
}

// Close releases the cursor's reference to its backing column.
func (p *PropertyCursor) Close() {
	p.values = nil
	p.pos = 0
}

// PropertyColumn returns the i'th property column for source, for
// initializing a PropertyCursor. Returns nil, false if source or the
// column index is unknown.
func (l *AdjacencyList) PropertyColumn(source int64, propertyIndex int) ([]uint64, bool) {
	e, ok := l.bySource[source]
	if !ok || propertyIndex < 0 || propertyIndex >= len(e.properties) {
		return nil, false
	}
	return e.properties[propertyIndex], true
}
