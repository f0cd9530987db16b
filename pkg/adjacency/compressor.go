package adjacency

import (
	"runtime"
	"sort"
	"sync"
)

// IgnoreValue is the pre-aggregation sentinel a property column stores for
// an edge that carried no value for that property (spec §4.3). It is
// distinct from idmap.NotFound's role: NotFound means "no such node",
// IgnoreValue means "this edge has no opinion about this property, do not
// let it participate in aggregation".
const IgnoreValue = int64(-1) << 63

// IgnoreTarget is the sentinel an entry's target field carries when a
// producer has flagged it as a pre-aggregated duplicate (spec §4.3/I2:
// "targets[i] = IGNORE is skipped"). It shares IgnoreValue's bit pattern
// (both mean "not a real value", just at different granularities — one
// whole edge vs. one property) but the two are never compared against
// each other: IgnoreValue lives in a property column, IgnoreTarget only
// ever appears in edgeEntry.target and is stripped out entirely before an
// entry reaches the byte stream or any property column.
const IgnoreTarget = int64(-1) << 63

// edgeEntry is one (target, properties) pair buffered against a source
// before sorting and delta-encoding at Build time.
type edgeEntry struct {
	target int64
	props  []int64
}

func (e edgeEntry) ignored() bool {
	return e.target == IgnoreTarget
}

type sourceBuffer struct {
	edges []edgeEntry
}

type bucket struct {
	mu      sync.Mutex
	sources map[int64]*sourceBuffer
}

// Compressor is the mutable, concurrent-write staging area for adjacency
// lists during ingestion. Producers call Add for any source from any
// goroutine; Build() sorts, delta/zigzag/varint-encodes, and freezes every
// source's buffer into an immutable AdjacencyList.
//
// Concurrency: a fixed lock table, one mutex per bucket, bucket =
// source % bucketCount, bucketCount = GOMAXPROCS*4 (spec §5's chosen
// strategy — the core's external contract lets any producer thread touch
// any source, so a lock table beats hash-partitioning producers, which
// would require callers to coordinate which goroutine owns which source).
//
// Grounded on other_examples' dgraph bulk mapper (one mutex per shard
// guarding a map, entries buffered and sorted before the final encode)
// and other_examples' graphdb storage (CompressedEdgeList per source,
// 256-way shard locking generalized here to a GOMAXPROCS-scaled count).
type Compressor struct {
	buckets       []bucket
	propertyCount int
}

// NewCompressor returns a Compressor that will allocate propertyCount
// parallel property columns per source.
func NewCompressor(propertyCount int) *Compressor {
	bucketCount := runtime.GOMAXPROCS(0) * 4
	if bucketCount < 1 {
		bucketCount = 4
	}
	c := &Compressor{buckets: make([]bucket, bucketCount), propertyCount: propertyCount}
	for i := range c.buckets {
		c.buckets[i].sources = make(map[int64]*sourceBuffer)
	}
	return c
}

func (c *Compressor) bucketFor(source int64) *bucket {
	return &c.buckets[uint64(source)%uint64(len(c.buckets))]
}

// Add records one edge from source to target, with optional property
// values (padded with IgnoreValue for any property not supplied, and
// truncated if more are supplied than this Compressor was built with).
// Safe for any number of concurrent callers across any sources.
func (c *Compressor) Add(source, target int64, props ...int64) {
	b := c.bucketFor(source)
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, ok := b.sources[source]
	if !ok {
		buf = &sourceBuffer{}
		b.sources[source] = buf
	}

	entry := edgeEntry{target: target}
	if c.propertyCount > 0 {
		entry.props = make([]int64, c.propertyCount)
		for i := range entry.props {
			entry.props[i] = IgnoreValue
		}
		copy(entry.props, props)
	}
	buf.edges = append(buf.edges, entry)
}

// AddIgnored records a placeholder edge for source that Build will drop
// entirely: it never reaches the encoded byte stream, never occupies a
// slot in any property column, and never counts toward Degree or
// valid_count. Producers use this to mark a pre-aggregated duplicate
// they've already buffered a slot for (e.g. during dedup/merge) without
// having to splice it back out of whatever they've accumulated so far.
func (c *Compressor) AddIgnored(source int64) {
	b := c.bucketFor(source)
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, ok := b.sources[source]
	if !ok {
		buf = &sourceBuffer{}
		b.sources[source] = buf
	}
	buf.edges = append(buf.edges, edgeEntry{target: IgnoreTarget})
}

// Degree returns the number of valid (non-ignored) edges buffered so far
// for source.
func (c *Compressor) Degree(source int64) int {
	b := c.bucketFor(source)
	b.mu.Lock()
	defer b.mu.Unlock()
	if buf, ok := b.sources[source]; ok {
		n := 0
		for _, e := range buf.edges {
			if !e.ignored() {
				n++
			}
		}
		return n
	}
	return 0
}

// MemoryEstimate returns a rough byte estimate of the staging buffers'
// footprint (spec §4.3's memory estimator): count of buffered edges times
// the per-edge cost of a raw (target, properties) pair, before
// compression shrinks it.
func (c *Compressor) MemoryEstimate() int64 {
	perEdge := int64(8 + 8*c.propertyCount)
	var total int64
	for i := range c.buckets {
		c.buckets[i].mu.Lock()
		for _, buf := range c.buckets[i].sources {
			for _, e := range buf.edges {
				if !e.ignored() {
					total += perEdge
				}
			}
		}
		c.buckets[i].mu.Unlock()
	}
	return total
}

// Build sorts and delta/zigzag/varint-encodes every source's buffered
// edges into an immutable AdjacencyList. The Compressor remains usable
// afterward (Build does not consume the staging buffers), mirroring the
// builder/graph split elsewhere in the core: callers that want a single
// snapshot should stop calling Add once they call Build.
func (c *Compressor) Build() *AdjacencyList {
	list := &AdjacencyList{bySource: make(map[int64]*adjacencyEntry)}
	for i := range c.buckets {
		c.buckets[i].mu.Lock()
		for source, buf := range c.buckets[i].sources {
			list.bySource[source] = buildEntry(buf.edges, c.propertyCount)
		}
		c.buckets[i].mu.Unlock()
	}
	return list
}

func buildEntry(edges []edgeEntry, propertyCount int) *adjacencyEntry {
	sorted := make([]edgeEntry, 0, len(edges))
	for _, e := range edges {
		if !e.ignored() {
			sorted = append(sorted, e)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].target < sorted[j].target })

	var buf pow2Buffer
	properties := make([][]uint64, propertyCount)
	for i := range properties {
		properties[i] = make([]uint64, 0, len(sorted))
	}

	var last int64
	for _, e := range sorted {
		delta := e.target - last
		last = e.target
		buf.appendVarint(zigzagEncode(delta))
		for i := 0; i < propertyCount; i++ {
			properties[i] = append(properties[i], uint64(e.props[i]))
		}
	}

	return buildBlockTable(buf.bytes(), int32(len(sorted)), properties)
}
