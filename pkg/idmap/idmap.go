// Package idmap implements the bidirectional original-id <-> internal-id
// mapping described in spec §4.1, plus the label membership tracking of
// §4.2 that rides along with it (a node's labels are as much a property of
// its place in the id space as its original id is).
//
// Grounded on the teacher's indexed, RWMutex-guarded in-memory maps
// (this package keeps the same "build mutable, read frozen" shape) and
// its transaction builder's build-then-commit lifecycle (here:
// Builder.Build freezes a mutable builder into a read-only ArrayIdMap).
package idmap

import "fmt"

// NotFound is the sentinel returned by lookup and cursor-miss operations.
// It is never a valid original or internal id (both are non-negative by
// contract).
const NotFound int64 = -1

// Label identifies a node label by value, not identity.
type Label string

// AllNodes is the universal label: membership is always true, and its
// node count is the graph's total node count. Chosen to be unrepresentable
// as an ordinary label typed in by a caller.
const AllNodes Label = "\x00ALL_NODES\x00"

// Range is a half-open [Lo, Hi) partition of the internal id domain, as
// returned by BatchIterables.
type Range struct {
	Lo, Hi int64
}

// Len returns Hi-Lo.
func (r Range) Len() int64 { return r.Hi - r.Lo }

// IdMap is the bidirectional original<->internal id mapping contract
// (spec §4.1). ArrayIdMap is the root, array-backed implementation;
// FilteredIdMap composes a root IdMap with a label-filtered sub-map. Both
// satisfy this interface so callers never need to type-switch.
type IdMap interface {
	// ToMapped returns the internal id for original, or NotFound.
	ToMapped(original int64) int64
	// ToOriginal returns the original id for mapped. mapped must be in
	// [0, NodeCount()); out of range is undefined behavior, not a
	// guarded error (spec §4.1).
	ToOriginal(mapped int64) int64
	// ContainsOriginal reports whether original was ingested.
	ContainsOriginal(original int64) bool
	// HighestOriginalID returns the highest original id ingested (or
	// declared at build time).
	HighestOriginalID() int64
	// NodeCount returns the total node count with no arguments, or the
	// count of nodes carrying any of the given labels (a union) otherwise.
	// An unknown label contributes zero.
	NodeCount(labels ...Label) int64
	// IterNodes returns a finite, restartable ascending iterator over
	// internal ids, optionally restricted to nodes carrying any of the
	// given labels.
	IterNodes(labels ...Label) *NodeIterator
	// BatchIterables partitions [0, NodeCount()) into ascending
	// half-open ranges of at most batchSize elements.
	BatchIterables(batchSize int64) []Range
	// WithFilteredLabels returns a view restricted to nodes carrying any
	// of labels, or (nil, nil) if the union is empty. concurrency is a
	// degree-of-parallelism hint only (spec §5); it is not observed for
	// cancellation.
	WithFilteredLabels(labels []Label, concurrency int) (IdMap, error)
}

// ArrayIdMap is the root IdMap implementation: a dense forward array
// (internal -> original) and a sparse reverse array (original ->
// internal), built once by a Builder and read-only thereafter.
type ArrayIdMap struct {
	forward   forwardArray
	reverse   reverseArray
	nodeCount int64
	highest   int64
	labels    *LabelInfo
}

// forwardArray and reverseArray are the minimal surfaces ArrayIdMap needs
// from pkg/bigarray, kept as interfaces so tests can substitute simple
// slice-backed fakes without pulling in page geometry.
type forwardArray interface {
	Get(idx int64) int64
}

type reverseArray interface {
	Get(idx int64) int64
}

func (m *ArrayIdMap) ToMapped(original int64) int64 {
	if original < 0 || original > m.highest {
		return NotFound
	}
	return m.reverse.Get(original)
}

func (m *ArrayIdMap) ToOriginal(mapped int64) int64 {
	return m.forward.Get(mapped)
}

func (m *ArrayIdMap) ContainsOriginal(original int64) bool {
	return m.ToMapped(original) != NotFound
}

func (m *ArrayIdMap) HighestOriginalID() int64 {
	return m.highest
}

func (m *ArrayIdMap) NodeCount(labels ...Label) int64 {
	if len(labels) == 0 {
		return m.nodeCount
	}
	if len(labels) == 1 {
		return m.labels.NodeCount(labels[0])
	}
	return m.labels.UnionBitset(labels).Cardinality()
}

func (m *ArrayIdMap) IterNodes(labels ...Label) *NodeIterator {
	if len(labels) == 0 {
		return newRangeIterator(m.nodeCount)
	}
	return newBitsetIterator(m.labels.UnionBitset(labels))
}

func (m *ArrayIdMap) BatchIterables(batchSize int64) []Range {
	return batchRanges(m.nodeCount, batchSize)
}

func (m *ArrayIdMap) WithFilteredLabels(labels []Label, concurrency int) (IdMap, error) {
	if err := m.labels.ValidateFilter(labels); err != nil {
		return nil, err
	}
	union := m.labels.UnionBitset(labels)
	if union.Cardinality() == 0 {
		return nil, nil
	}
	sub := newSubMap(union)
	remap := func(rootInternal int64) (int64, bool) {
		v, ok := sub.rootToFiltered[rootInternal]
		return v, ok
	}
	return &FilteredIdMap{
		root:      m,
		sub:       sub,
		labelInfo: m.labels.filterRemapped(labels, sub.size(), remap),
	}, nil
}

func batchRanges(total, batchSize int64) []Range {
	if batchSize <= 0 {
		batchSize = total
	}
	if batchSize <= 0 {
		return nil
	}
	ranges := make([]Range, 0, (total+batchSize-1)/batchSize)
	for lo := int64(0); lo < total; lo += batchSize {
		hi := lo + batchSize
		if hi > total {
			hi = total
		}
		ranges = append(ranges, Range{Lo: lo, Hi: hi})
	}
	return ranges
}

// UnknownLabelError is returned by filter/validation operations when one
// or more requested labels are not present in the id map's label
// information.
type UnknownLabelError struct {
	Names     []Label
	Available []Label
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown label(s) %v; available: %v", e.Names, e.Available)
}

// NegativeIDError is returned by ingestion when a caller supplies a
// negative original id (spec §7).
type NegativeIDError struct {
	ID int64
}

func (e *NegativeIDError) Error() string {
	return fmt.Sprintf("negative original id: %d", e.ID)
}
