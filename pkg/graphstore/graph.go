package graphstore

import (
	"sort"
	"sync"

	"github.com/orneryd/graphcore/pkg/adjacency"
	"github.com/orneryd/graphcore/pkg/idmap"
	"github.com/orneryd/graphcore/pkg/propstore"
	"github.com/orneryd/graphcore/pkg/schema"
)

// Graph is the read-only, finalized result of Builder.Build: an id map,
// a schema, one compressed adjacency list per relationship type, and the
// node/relationship property stores riding alongside them (spec I3's
// query surface).
type Graph struct {
	ids                  idmap.IdMap
	schema               *schema.GraphSchema
	adjacency            map[string]*adjacency.AdjacencyList
	relProperties        map[string]*propstore.RelationshipPropertyStore
	nodeProperties       *propstore.NodePropertyStore
	stringNodeProperties *propstore.StringNodePropertyStore

	poolMu      sync.Mutex
	cursorPools map[string]*adjacency.CursorPool
}

// IDMap returns the graph's bidirectional original<->internal id
// mapping.
func (g *Graph) IDMap() idmap.IdMap { return g.ids }

// Schema returns the graph's schema registry.
func (g *Graph) Schema() *schema.GraphSchema { return g.schema }

// NodeProperties returns the graph's numeric (LONG/DOUBLE/BOOLEAN) node
// property store.
func (g *Graph) NodeProperties() *propstore.NodePropertyStore { return g.nodeProperties }

// StringNodeProperties returns the graph's STRING-valued node property
// store.
func (g *Graph) StringNodeProperties() *propstore.StringNodePropertyStore {
	return g.stringNodeProperties
}

// RelationshipProperties returns relType's property store, or false if
// relType has no adjacency list.
func (g *Graph) RelationshipProperties(relType string) (*propstore.RelationshipPropertyStore, bool) {
	p, ok := g.relProperties[relType]
	return p, ok
}

// RelationshipTypes returns every relationship type with an adjacency
// list, sorted for deterministic iteration.
func (g *Graph) RelationshipTypes() []string {
	out := make([]string, 0, len(g.adjacency))
	for relType := range g.adjacency {
		out = append(out, relType)
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of relType-typed outgoing edges from
// internal id source, or 0 if relType is unknown or source has none.
func (g *Graph) Degree(relType string, source int64) int32 {
	list, ok := g.adjacency[relType]
	if !ok {
		return 0
	}
	return list.Degree(source)
}

func (g *Graph) cursorPool(relType string) *adjacency.CursorPool {
	g.poolMu.Lock()
	defer g.poolMu.Unlock()
	pool, ok := g.cursorPools[relType]
	if !ok {
		pool = adjacency.NewCursorPool()
		g.cursorPools[relType] = pool
	}
	return pool
}

// Cursor returns a pooled *adjacency.Cursor over source's relType-typed
// targets, or (nil, false) if relType has no adjacency list. The
// returned cursor must be released with ReleaseCursor.
func (g *Graph) Cursor(relType string, source int64) (*adjacency.Cursor, bool) {
	list, ok := g.adjacency[relType]
	if !ok {
		return nil, false
	}
	return g.cursorPool(relType).Get(list, source), true
}

// ReleaseCursor returns c, obtained from Cursor(relType, ...), to its
// pool. Callers must not use c afterward.
func (g *Graph) ReleaseCursor(relType string, c *adjacency.Cursor) {
	g.cursorPool(relType).Put(c)
}

// AdjacencyList returns relType's raw adjacency list (for callers that
// need direct PropertyColumn access rather than a pooled Cursor), or
// false if relType is unknown.
func (g *Graph) AdjacencyList(relType string) (*adjacency.AdjacencyList, bool) {
	list, ok := g.adjacency[relType]
	return list, ok
}

// MemoryEstimate returns the exact byte footprint of every relType's
// compressed adjacency structure plus a rough estimate of the id map's
// footprint (spec I4).
func (g *Graph) MemoryEstimate() int64 {
	var total int64
	for _, list := range g.adjacency {
		total += list.MemoryEstimate()
	}
	labelCount := len(g.schema.AvailableIdentifiers().Labels)
	idRange := EstimateIDMap(g.ids.NodeCount(), g.ids.HighestOriginalID(), labelCount)
	total += (idRange.Low + idRange.High) / 2
	return total
}
