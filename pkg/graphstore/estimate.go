package graphstore

// MemoryRange is a [Low, High] byte-count estimate, as spec I4's
// estimate_idmap/estimate_adjacency return (spec §4.3's "best/worst-case
// range" note).
type MemoryRange struct {
	Low, High int64
}

const bytesPerWord = 8

// EstimateIDMap returns a byte-footprint estimate for an id map holding
// nodeCount nodes, whose original ids range up to highestOriginalID,
// tracking labelCount distinct labels (spec I4: estimate_idmap).
//
// The forward array (internal -> original) is always dense, so its
// contribution is exact. The reverse array (original -> internal) is
// sparse (pkg/bigarray.SparsePagedLongArray): Low assumes its pages pack
// as tightly as the forward array does, High assumes one word is
// reserved for every original id in [0, highestOriginalID], the two ends
// of how sparse the domain could turn out to be. Each label contributes
// one bit per node, rounded up to a whole 64-bit word.
func EstimateIDMap(nodeCount, highestOriginalID int64, labelCount int) MemoryRange {
	if nodeCount < 0 {
		nodeCount = 0
	}
	if highestOriginalID < nodeCount-1 {
		highestOriginalID = nodeCount - 1
	}
	forward := nodeCount * bytesPerWord
	reverseLow := nodeCount * bytesPerWord
	reverseHigh := (highestOriginalID + 1) * bytesPerWord
	labelWords := (nodeCount + 63) / 64
	labels := int64(labelCount) * labelWords * bytesPerWord

	return MemoryRange{
		Low:  forward + reverseLow + labels,
		High: forward + reverseHigh + labels,
	}
}

// EstimateAdjacency returns a byte-footprint estimate for a compressed
// adjacency structure holding nodeCount sources at avgDegree average
// out-degree, each edge carrying propertyCount properties (spec I4:
// estimate_adjacency).
//
// Low assumes every delta-encodes to a 1-byte varint (adjacent, densely
// numbered targets); High assumes the worst case, a full 10-byte varint
// per target (spec §4.3's encoding pipeline: varints run 1-10 bytes).
// Property columns are always bytesPerWord bytes per value regardless of
// encoding, since pkg/adjacency stores them as plain uint64 slices.
func EstimateAdjacency(avgDegree float64, nodeCount int64, propertyCount int) MemoryRange {
	if avgDegree < 0 || nodeCount < 0 {
		return MemoryRange{}
	}
	edges := int64(avgDegree * float64(nodeCount))
	properties := edges * int64(propertyCount) * bytesPerWord

	return MemoryRange{
		Low:  edges*1 + properties,
		High: edges*10 + properties,
	}
}
