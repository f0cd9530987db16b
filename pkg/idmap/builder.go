package idmap

import (
	"sync"

	"github.com/orneryd/graphcore/pkg/bigarray"
	"github.com/orneryd/graphcore/pkg/sizing"
)

// defaultPagesPerThread mirrors the value pkg/sizing's own tests exercise
// and is small enough that a handful of goroutines each get several pages
// to work with during the parallel finalize fan-out.
const defaultPagesPerThread = 4

// scratchPageSize is the page size for the builder's in-progress forward
// array. Unlike the finalized PagedLongArray (sized once node count is
// known, per spec §4.7), the scratch array must grow while the node
// count is still unknown, so it uses a fixed page size and appends pages
// on demand instead of going through pkg/sizing's geometry selection.
const scratchPageSize = 1 << 16

// Builder assigns dense internal ids to original ids as they are seen
// during ingestion, tracks each node's labels, and freezes both into a
// read-only ArrayIdMap on Build.
//
// Construction follows spec §4.1's "Deduplication (lazy variant)": a
// sharded map does the check-and-assign in one atomic step, so add_node
// is idempotent without a second lookup, and the assigned id is handed
// straight out as the final internal id (this implementation collapses
// the two-stage import-id/internal-id indirection spec.md describes as
// an option, since nothing downstream needs a separate import-time id).
//
// The forward array (internal -> original) is a growableForward during
// the build: internal ids are assigned by the counter before the final
// node count is known, so a dense PagedLongArray can't be sized ahead of
// time. Build() copies it into a properly paged, finalized PagedLongArray
// once the node count is fixed.
type Builder struct {
	counter *int64counter
	dedup   *shardedDedupMap
	forward *growableForward
	labels  *LabelInfoBuilder

	highestMu sync.Mutex
	highest   int64
}

// NewBuilder returns an empty Builder. capacityHint is advisory only: a
// rough upper bound on the number of distinct original ids expected, used
// solely to size structures the caller builds alongside this one (e.g. a
// property store's initial capacity). It has no effect on the builder's
// own correctness or capacity.
func NewBuilder(capacityHint int64) *Builder {
	_ = capacityHint
	counter := &int64counter{}
	return &Builder{
		counter: counter,
		dedup:   newShardedDedupMap(counter),
		forward: newGrowableForward(scratchPageSize),
		labels:  NewLabelInfoBuilder(),
		highest: -1,
	}
}

// growableForward is an unbounded, lock-growth page list: pages are
// appended as higher internal ids are assigned, under a mutex that only
// ever guards the page-table slice header, never per-element writes.
// Grounded on pkg/bigarray.SparsePagedLongArray's "mutex around the
// pointer check, not the element access" shape, generalized from a
// fixed-size pointer table to one that grows by appending.
type growableForward struct {
	mu       sync.Mutex
	pageSize int64
	pages    [][]int64
}

func newGrowableForward(pageSize int64) *growableForward {
	return &growableForward{pageSize: pageSize}
}

func (g *growableForward) Set(idx, value int64) {
	pageIdx := int(idx / g.pageSize)
	page := g.page(pageIdx)
	page[idx%g.pageSize] = value
}

func (g *growableForward) Get(idx int64) int64 {
	pageIdx := int(idx / g.pageSize)
	g.mu.Lock()
	defer g.mu.Unlock()
	if pageIdx >= len(g.pages) {
		return bigarray.NotPresent
	}
	return g.pages[pageIdx][idx%g.pageSize]
}

func (g *growableForward) page(pageIdx int) []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	for pageIdx >= len(g.pages) {
		g.pages = append(g.pages, make([]int64, g.pageSize))
	}
	return g.pages[pageIdx]
}

// AddNode assigns original an internal id (or returns its existing one,
// per spec I1's idempotency requirement) and records labels against that
// internal id. Safe for concurrent callers.
func (b *Builder) AddNode(original int64, labels ...Label) (int64, error) {
	if original < 0 {
		return 0, &NegativeIDError{ID: original}
	}

	v := b.dedup.add(original)
	fresh := v >= 0
	internal := v
	if !fresh {
		internal = -(v + 1)
	}

	if fresh {
		b.forward.Set(internal, original)
		b.bumpHighest(original)
	}
	if len(labels) > 0 {
		b.labels.AddLabels(internal, labels)
	}
	return internal, nil
}

func (b *Builder) bumpHighest(original int64) {
	b.highestMu.Lock()
	if original > b.highest {
		b.highest = original
	}
	b.highestMu.Unlock()
}

// NodeCount returns the number of distinct original ids seen so far.
func (b *Builder) NodeCount() int64 {
	return b.counter.load()
}

// Build freezes the builder into a read-only ArrayIdMap. concurrency
// controls how many goroutines partition the forward/reverse array
// fan-out (spec §5: a simple degree-of-parallelism hint, not a hard cap on
// actual goroutines spawned).
func (b *Builder) Build(concurrency int) (*ArrayIdMap, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	nodeCount := b.counter.load()
	highest := b.highest
	if highest < nodeCount-1 {
		// Every assigned internal id has a distinct non-negative
		// original id, so the domain is at least as large as the
		// node count even if original ids were assigned in a way
		// that left the tracked highest stale (defensive only; in
		// practice bumpHighest always keeps pace with AddNode).
		highest = nodeCount - 1
	}

	forwardGeom, err := sizing.ForNodeCount(nodeCount, concurrency, defaultPagesPerThread)
	if err != nil {
		return nil, err
	}
	forward := bigarray.NewPagedLongArray(nodeCount, forwardGeom)

	reverseGeom, err := sizing.ForNodeCount(highest+1, concurrency, defaultPagesPerThread)
	if err != nil {
		return nil, err
	}
	reverse := bigarray.NewSparsePagedLongArray(highest+1, reverseGeom, bigarray.NotPresent)

	ranges := batchRanges(nodeCount, forwardGeom.PageSize)
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	for _, r := range ranges {
		r := r
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			for idx := r.Lo; idx < r.Hi; idx++ {
				original := b.forward.Get(idx)
				forward.Set(idx, original)
				reverse.Set(original, idx)
			}
		}()
	}
	wg.Wait()

	return &ArrayIdMap{
		forward:   forward,
		reverse:   reverse,
		nodeCount: nodeCount,
		highest:   highest,
		labels:    b.labels.Freeze(nodeCount),
	}, nil
}

// int64counter (dedup.go) uses a mutex rather than atomic.Int64: a dedup
// shard's check-then-assign must be atomic together with the counter
// increment, which a bare CAS loop on an atomic int can't express without
// folding the shard map update into the same compare-and-swap.
