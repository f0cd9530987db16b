package idmap

import "sync"

// labelMode tracks which storage strategy a LabelInfoBuilder has adopted.
// The transition empty -> single -> multi is one-way: once a second
// distinct label shows up, every node's labels live in the multi map,
// even nodes that only ever carried the original single label.
type labelMode uint8

const (
	modeEmpty labelMode = iota
	modeSingle
	modeMulti
)

// LabelInfoBuilder accumulates per-node label membership during ingestion.
// It starts in single-label mode (one growingBitSet, cheapest case for a
// graph with exactly one node label) and upgrades to multi-label mode on
// the first node that needs a second distinct label.
//
// Grounded on the teacher's mutex-guarded named-map idiom for schema
// constraints (keyed by "Label:property"); here the map is keyed by Label
// alone and the values are bitsets instead of constraint records.
type LabelInfoBuilder struct {
	mu          sync.RWMutex
	mode        labelMode
	singleLabel Label
	singleSet   *growingBitSet
	multiSets   map[Label]*growingBitSet
}

// NewLabelInfoBuilder returns an empty builder.
func NewLabelInfoBuilder() *LabelInfoBuilder {
	return &LabelInfoBuilder{mode: modeEmpty}
}

// AddLabels records that internal id id carries every label in labels.
// Safe for concurrent callers, including concurrent callers on the same
// id or overlapping labels.
func (b *LabelInfoBuilder) AddLabels(id int64, labels []Label) {
	if len(labels) == 0 {
		return
	}

	// Fast path: no mode transition or new label needed, so only a read
	// lock is required and the bitset writes themselves are CAS operations
	// under the bitset's own read lock.
	b.mu.RLock()
	if b.mode == modeSingle && len(labels) == 1 && labels[0] == b.singleLabel {
		set := b.singleSet
		b.mu.RUnlock()
		set.Set(id)
		return
	}
	if b.mode == modeMulti {
		sets := make([]*growingBitSet, len(labels))
		allPresent := true
		for i, l := range labels {
			s, ok := b.multiSets[l]
			if !ok {
				allPresent = false
				break
			}
			sets[i] = s
		}
		b.mu.RUnlock()
		if allPresent {
			for _, s := range sets {
				s.Set(id)
			}
			return
		}
	} else {
		b.mu.RUnlock()
	}

	// Slow path: introduce a new label or upgrade storage mode.
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.mode {
	case modeEmpty:
		if len(labels) == 1 {
			b.mode = modeSingle
			b.singleLabel = labels[0]
			b.singleSet = newGrowingBitSet()
		} else {
			b.upgradeToMultiLocked()
		}
	case modeSingle:
		if !(len(labels) == 1 && labels[0] == b.singleLabel) {
			b.upgradeToMultiLocked()
		}
	}

	if b.mode == modeSingle {
		b.singleSet.Set(id)
		return
	}
	for _, l := range labels {
		s, ok := b.multiSets[l]
		if !ok {
			s = newGrowingBitSet()
			b.multiSets[l] = s
		}
		s.Set(id)
	}
}

func (b *LabelInfoBuilder) upgradeToMultiLocked() {
	if b.mode == modeMulti {
		return
	}
	b.multiSets = make(map[Label]*growingBitSet)
	if b.mode == modeSingle {
		b.multiSets[b.singleLabel] = b.singleSet
	}
	b.mode = modeMulti
	b.singleSet = nil
}

// Freeze converts the mutable builder into an immutable LabelInfo sized to
// exactly nodeCount bits per label. Note: unlike a two-stage id map
// builder (import-time id remapped to a final dense id before freeze),
// this package's Builder assigns the final internal id directly at
// AddLabels time (see dedup.go), so Freeze needs no remap function.
func (b *LabelInfoBuilder) Freeze(nodeCount int64) *LabelInfo {
	b.mu.Lock()
	defer b.mu.Unlock()

	info := &LabelInfo{size: nodeCount, mode: b.mode}
	switch b.mode {
	case modeSingle:
		info.singleLabel = b.singleLabel
		info.single = b.singleSet.freeze(nodeCount)
	case modeMulti:
		info.multi = make(map[Label]*frozenBitSet, len(b.multiSets))
		for l, s := range b.multiSets {
			info.multi[l] = s.freeze(nodeCount)
		}
	}
	return info
}

// LabelInfo is the read-only, finalized label membership table for an
// IdMap (spec §4.2).
type LabelInfo struct {
	size        int64
	mode        labelMode
	singleLabel Label
	single      *frozenBitSet
	multi       map[Label]*frozenBitSet
}

// AvailableLabels returns every label this LabelInfo has membership data
// for (AllNodes is always implicitly available and is not included).
func (li *LabelInfo) AvailableLabels() []Label {
	switch li.mode {
	case modeSingle:
		return []Label{li.singleLabel}
	case modeMulti:
		out := make([]Label, 0, len(li.multi))
		for l := range li.multi {
			out = append(out, l)
		}
		return out
	default:
		return nil
	}
}

// NodeCount returns the number of nodes carrying label. AllNodes returns
// the graph's total node count. An unknown label returns zero.
func (li *LabelInfo) NodeCount(label Label) int64 {
	if label == AllNodes {
		return li.size
	}
	switch li.mode {
	case modeSingle:
		if label == li.singleLabel {
			return li.single.Cardinality()
		}
	case modeMulti:
		if s, ok := li.multi[label]; ok {
			return s.Cardinality()
		}
	}
	return 0
}

// HasLabel reports whether internal id carries label.
func (li *LabelInfo) HasLabel(id int64, label Label) bool {
	if label == AllNodes {
		return true
	}
	switch li.mode {
	case modeSingle:
		return label == li.singleLabel && li.single.Get(id)
	case modeMulti:
		if s, ok := li.multi[label]; ok {
			return s.Get(id)
		}
	}
	return false
}

// UnionBitset returns the bitwise union of every label in labels. An empty
// slice, or a slice containing AllNodes, returns every node.
func (li *LabelInfo) UnionBitset(labels []Label) *frozenBitSet {
	if len(labels) == 0 {
		return fullFrozenBitSet(li.size)
	}
	for _, l := range labels {
		if l == AllNodes {
			return fullFrozenBitSet(li.size)
		}
	}

	var sets []*frozenBitSet
	for _, l := range labels {
		switch li.mode {
		case modeSingle:
			if l == li.singleLabel {
				sets = append(sets, li.single)
			}
		case modeMulti:
			if s, ok := li.multi[l]; ok {
				sets = append(sets, s)
			}
		}
	}
	return unionBitsets(sets, li.size)
}

// ValidateFilter returns an *UnknownLabelError if any label in labels
// (other than AllNodes) has no membership data in this LabelInfo.
func (li *LabelInfo) ValidateFilter(labels []Label) error {
	available := li.AvailableLabels()
	var missing []Label
	for _, l := range labels {
		if l == AllNodes {
			continue
		}
		found := false
		for _, a := range available {
			if a == l {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, l)
		}
	}
	if len(missing) > 0 {
		return &UnknownLabelError{Names: missing, Available: available}
	}
	return nil
}

// Filter returns a new LabelInfo scoped to a filtered sub-map's dense id
// space: remap maps each requested label's bitset through the sub-map's
// root-internal -> filtered-internal indirection so that HasLabel/NodeCount
// on the result operate in filtered-id space.
func (li *LabelInfo) filterRemapped(labels []Label, newSize int64, remap func(rootInternal int64) (filteredInternal int64, ok bool)) *LabelInfo {
	out := &LabelInfo{size: newSize, mode: modeMulti, multi: make(map[Label]*frozenBitSet)}
	wanted := labels
	if len(wanted) == 0 {
		wanted = li.AvailableLabels()
	}
	for _, l := range wanted {
		if l == AllNodes {
			continue
		}
		var src *frozenBitSet
		switch li.mode {
		case modeSingle:
			if l == li.singleLabel {
				src = li.single
			}
		case modeMulti:
			src = li.multi[l]
		}
		if src == nil {
			continue
		}
		dst := emptyFrozenBitSet(newSize)
		for bit := src.NextSetBit(0); bit != -1; bit = src.NextSetBit(bit + 1) {
			if filtered, ok := remap(bit); ok {
				dst.words[filtered>>6] |= uint64(1) << uint(filtered&63)
			}
		}
		out.multi[l] = dst
	}
	return out
}
