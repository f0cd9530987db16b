package idmap

// subMap is the dense root-internal <-> filtered-internal indirection
// layer a FilteredIdMap rides on top of a root IdMap (spec §4.1: "A
// filtered map carries two pointers: one to the root map... and one to a
// sub-map"). filteredToRoot is built once, in ascending order, from the
// label union's set bits, so filtered ids are themselves dense and
// order-preserving relative to root ids.
type subMap struct {
	filteredToRoot []int64
	rootToFiltered map[int64]int64
}

func newSubMap(union *frozenBitSet) *subMap {
	card := union.Cardinality()
	s := &subMap{
		filteredToRoot: make([]int64, 0, card),
		rootToFiltered: make(map[int64]int64, card),
	}
	filtered := int64(0)
	for bit := union.NextSetBit(0); bit != -1; bit = union.NextSetBit(bit + 1) {
		s.filteredToRoot = append(s.filteredToRoot, bit)
		s.rootToFiltered[bit] = filtered
		filtered++
	}
	return s
}

func (s *subMap) size() int64 { return int64(len(s.filteredToRoot)) }

// FilteredIdMap is a label-restricted view over a root IdMap (spec §4.1,
// I6: "A filtered map must not outlive its root map"; Go's garbage
// collector enforces this automatically since FilteredIdMap holds a live
// reference to root).
type FilteredIdMap struct {
	root      IdMap
	sub       *subMap
	labelInfo *LabelInfo
}

func (f *FilteredIdMap) ToMapped(original int64) int64 {
	rootInternal := f.root.ToMapped(original)
	if rootInternal == NotFound {
		return NotFound
	}
	filtered, ok := f.sub.rootToFiltered[rootInternal]
	if !ok {
		return NotFound
	}
	return filtered
}

func (f *FilteredIdMap) ToOriginal(mapped int64) int64 {
	rootInternal := f.sub.filteredToRoot[mapped]
	return f.root.ToOriginal(rootInternal)
}

func (f *FilteredIdMap) ContainsOriginal(original int64) bool {
	return f.ToMapped(original) != NotFound
}

func (f *FilteredIdMap) HighestOriginalID() int64 {
	return f.root.HighestOriginalID()
}

func (f *FilteredIdMap) NodeCount(labels ...Label) int64 {
	if len(labels) == 0 {
		return f.sub.size()
	}
	if len(labels) == 1 {
		return f.labelInfo.NodeCount(labels[0])
	}
	return f.labelInfo.UnionBitset(labels).Cardinality()
}

func (f *FilteredIdMap) IterNodes(labels ...Label) *NodeIterator {
	if len(labels) == 0 {
		return newRangeIterator(f.sub.size())
	}
	return newBitsetIterator(f.labelInfo.UnionBitset(labels))
}

func (f *FilteredIdMap) BatchIterables(batchSize int64) []Range {
	return batchRanges(f.sub.size(), batchSize)
}

func (f *FilteredIdMap) WithFilteredLabels(labels []Label, concurrency int) (IdMap, error) {
	if err := f.labelInfo.ValidateFilter(labels); err != nil {
		return nil, err
	}
	union := f.labelInfo.UnionBitset(labels)
	if union.Cardinality() == 0 {
		return nil, nil
	}
	nested := newSubMap(union)
	// Compose: nested filtered ids index into f's already-filtered id
	// space, which in turn indexes into the root. Flatten so the
	// resulting map's ToOriginal/ToMapped go straight to the true root,
	// avoiding an extra indirection hop per lookup.
	flattened := &subMap{
		filteredToRoot: make([]int64, len(nested.filteredToRoot)),
		rootToFiltered: make(map[int64]int64, len(nested.filteredToRoot)),
	}
	for i, outerFiltered := range nested.filteredToRoot {
		rootInternal := f.sub.filteredToRoot[outerFiltered]
		flattened.filteredToRoot[i] = rootInternal
		flattened.rootToFiltered[rootInternal] = int64(i)
	}
	remap := func(rootInternal int64) (int64, bool) {
		v, ok := flattened.rootToFiltered[rootInternal]
		return v, ok
	}
	nestedInfo := f.labelInfo.filterRemapped(labels, flattened.size(), remap)
	return &FilteredIdMap{root: f.root, sub: flattened, labelInfo: nestedInfo}, nil
}
