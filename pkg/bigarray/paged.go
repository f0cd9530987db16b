// Package bigarray provides paged "huge array" primitives for data that is
// too large, or too sparse, to live in one contiguous Go slice.
//
// PagedLongArray is the ID map's forward array (internal id -> original
// id): dense, pre-sized to the known node count, split into fixed-size
// pages so concurrent builders can write disjoint page ranges without a
// lock.
//
// SparsePagedLongArray is the ID map's reverse array (original id ->
// internal id): the domain can be far larger than the number of entries
// actually present, so pages are allocated lazily on first write and
// unallocated pages read back as the configured "unset" sentinel.
package bigarray

import (
	"sync"

	"github.com/orneryd/graphcore/pkg/sizing"
)

// NotPresent is the sentinel PagedLongArray and SparsePagedLongArray return
// for an index that was never written. It is distinct from any valid
// internal or original id (both are non-negative by contract).
const NotPresent int64 = -1

// PagedLongArray is a dense, fixed-capacity array of int64 values backed by
// fixed-size pages. It is safe for concurrent readers once fully
// allocated; concurrent writers must write disjoint index ranges (the ID
// map builder guarantees this by handing out disjoint [lo, hi) ranges from
// its atomic counter).
type PagedLongArray struct {
	geom  sizing.Geometry
	pages [][]int64
	size  int64
}

// NewPagedLongArray allocates a PagedLongArray with capacity for at least
// size elements, using geom for its page layout. All pages are allocated
// eagerly and zero-filled.
func NewPagedLongArray(size int64, geom sizing.Geometry) *PagedLongArray {
	pages := make([][]int64, geom.PageCount)
	for i := range pages {
		pages[i] = make([]int64, geom.PageSize)
	}
	return &PagedLongArray{geom: geom, pages: pages, size: size}
}

// Size returns the logical element count this array was sized for.
func (a *PagedLongArray) Size() int64 {
	return a.size
}

// Get returns the value at idx. idx must be in [0, Size()); out-of-range
// access is undefined behavior per spec §4.1 (to_original on an
// out-of-range mapped id), not a guarded error.
func (a *PagedLongArray) Get(idx int64) int64 {
	page := idx >> a.geom.PageShift()
	offset := idx & a.geom.PageMask()
	return a.pages[page][offset]
}

// Set writes value at idx. Safe for concurrent callers writing disjoint
// idx values; not safe for concurrent writes to the same idx.
func (a *PagedLongArray) Set(idx, value int64) {
	page := idx >> a.geom.PageShift()
	offset := idx & a.geom.PageMask()
	a.pages[page][offset] = value
}

// ForEach calls fn(idx, value) once per element in [0, Size()), ascending,
// on the calling goroutine.
func (a *PagedLongArray) ForEach(fn func(idx, value int64)) {
	var idx int64
	for _, page := range a.pages {
		for offset, v := range page {
			if idx >= a.size {
				return
			}
			fn(idx, v)
			_ = offset
			idx++
		}
	}
}

// ForEachRange calls fn(idx, value) for idx in [lo, hi). Used to partition
// ForEach's work across worker goroutines.
func (a *PagedLongArray) ForEachRange(lo, hi int64, fn func(idx, value int64)) {
	if hi > a.size {
		hi = a.size
	}
	for idx := lo; idx < hi; idx++ {
		fn(idx, a.Get(idx))
	}
}

// sparsePage is one lazily-allocated page of a SparsePagedLongArray.
// Pages are only materialized for original-id ranges a producer actually
// touched; an absent page reads as NotPresent everywhere.
type sparsePage struct {
	values []int64
}

// SparsePagedLongArray is a pages-of-pages array over a domain that may be
// far larger than its entry count. This is the "hot ranges, cold gaps"
// layout the design notes call for: a single-level page table fails on
// the sparsest inputs because it must allocate every page up front.
type SparsePagedLongArray struct {
	mu       sync.Mutex
	geom     sizing.Geometry
	pages    []*sparsePage
	domain   int64
	fillWith int64
}

// NewSparsePagedLongArray allocates the top-level page pointer table for a
// domain of size domainSize (e.g. highestOriginalId+1). No per-value
// storage is allocated until Set is called. fillWith is the value unset
// entries read as (NotPresent for the ID map's reverse array).
func NewSparsePagedLongArray(domainSize int64, geom sizing.Geometry, fillWith int64) *SparsePagedLongArray {
	pageCount := (domainSize + geom.PageSize - 1) / geom.PageSize
	if pageCount < 1 {
		pageCount = 1
	}
	return &SparsePagedLongArray{
		geom:     geom,
		pages:    make([]*sparsePage, pageCount),
		domain:   domainSize,
		fillWith: fillWith,
	}
}

// Get returns the value at idx, or fillWith if idx falls in a page that
// was never written.
func (a *SparsePagedLongArray) Get(idx int64) int64 {
	pageIdx := idx >> a.geom.PageShift()
	offset := idx & a.geom.PageMask()

	a.mu.Lock()
	page := a.pages[pageIdx]
	a.mu.Unlock()

	if page == nil {
		return a.fillWith
	}
	return page.values[offset]
}

// Set writes value at idx, allocating and zero/fillWith-initializing the
// backing page on first write to that page. Safe for concurrent callers;
// the page table itself is guarded by a single mutex, but contention is
// low because writes to the same page are rare for a genuinely sparse
// domain and the critical section is just a pointer check-and-allocate.
func (a *SparsePagedLongArray) Set(idx, value int64) {
	pageIdx := idx >> a.geom.PageShift()
	offset := idx & a.geom.PageMask()

	a.mu.Lock()
	page := a.pages[pageIdx]
	if page == nil {
		page = newSparsePage(a.geom.PageSize, a.fillWith)
		a.pages[pageIdx] = page
	}
	a.mu.Unlock()

	page.values[offset] = value
}

func newSparsePage(size, fillWith int64) *sparsePage {
	values := make([]int64, size)
	if fillWith != 0 {
		for i := range values {
			values[i] = fillWith
		}
	}
	return &sparsePage{values: values}
}
