// Package graphstore wires pkg/idmap, pkg/adjacency, pkg/schema, and
// pkg/propstore into the single Builder/Graph facade spec §6 describes
// (I1 node ingestion, I2 edge ingestion, I3 query, I4 memory
// estimation), the way the teacher's pkg/storage.Engine/MemoryEngine
// sits in front of its own lower-level maps — generalized here from a
// Neo4j-compatible CRUD engine to the spec's build-then-query lifecycle
// (mutate during Builder, read-only once Build returns a Graph).
package graphstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/orneryd/graphcore/pkg/adjacency"
	"github.com/orneryd/graphcore/pkg/config"
	"github.com/orneryd/graphcore/pkg/idmap"
	"github.com/orneryd/graphcore/pkg/propstore"
	"github.com/orneryd/graphcore/pkg/schema"
)

// ErrBuilderFlushed is returned by every ingestion method once
// PrepareForFlush has been called: the spec's I1 lifecycle marker before
// build() means no further mutation is accepted (spec §3: "adjacency
// append-only during build then read-only").
var ErrBuilderFlushed = errors.New("graphstore: builder already prepared for flush")

type nodePropertyRecord struct {
	internal int64
	key      string
	value    any
}

// Builder is the mutable staging area for a graph under construction.
// Node ingestion (I1) and edge ingestion (I2) may both proceed
// concurrently from any number of goroutines; Build (I1's build
// operation) freezes everything into a read-only Graph.
//
// Reconciling spec vocabulary with the lower-level packages: I1 names
// builder.build(label_information_builder, highest_original_id,
// concurrency) as three separate arguments, but pkg/idmap.Builder already
// owns its LabelInfoBuilder internally and computes highest_original_id
// itself from whatever was ingested (see idmap.Builder.Build's doc
// comment) — so Builder.Build here takes no arguments at all, sourcing
// concurrency from the Config it was constructed with. Likewise I2 names
// compressor.add_with_properties(source, targets[lo..hi],
// property_columns[][lo..hi], valid_count) as a single batched call;
// this Builder exposes the spec's per-edge vocabulary (AddEdge) and lets
// pkg/adjacency.Compressor's Add/AddIgnored do the batching internally
// across however many AddEdge calls a producer makes.
type Builder struct {
	cfg *config.Config

	ids    *idmap.Builder
	schema *schema.GraphSchema

	mu              sync.Mutex
	flushed         bool
	compressors     map[string]*adjacency.Compressor
	relPropertyKeys map[string][]string
	nodePending     []nodePropertyRecord
	nodePropertyTypes map[string]schema.ValueType
}

// NewBuilder returns an empty Builder configured by cfg.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		cfg:               cfg,
		ids:               idmap.NewBuilder(0),
		schema:            schema.New(),
		compressors:       make(map[string]*adjacency.Compressor),
		relPropertyKeys:   make(map[string][]string),
		nodePropertyTypes: make(map[string]schema.ValueType),
	}
}

func toLabels(labels []string) []idmap.Label {
	out := make([]idmap.Label, len(labels))
	for i, l := range labels {
		out[i] = idmap.Label(l)
	}
	return out
}

// AddNode ingests original under labels, returning its internal id
// (spec I1: idempotent — re-adding the same original returns the same
// internal id without growing the map).
func (b *Builder) AddNode(original int64, labels ...string) (int64, error) {
	if err := b.checkNotFlushed(); err != nil {
		return 0, err
	}
	for _, l := range labels {
		b.schema.AddLabel(l, nil)
	}
	return b.ids.AddNode(original, toLabels(labels)...)
}

// AddNodeWithProperties is AddNode plus a property map, staged for
// replay once Build knows the final node count (spec I1:
// add_node_with_properties).
func (b *Builder) AddNodeWithProperties(original int64, labels []string, properties map[string]any) (int64, error) {
	internal, err := b.AddNode(original, labels...)
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, value := range properties {
		vt := inferValueType(value)
		if existing, ok := b.nodePropertyTypes[key]; ok && existing != vt {
			return internal, fmt.Errorf("graphstore: node property %q already typed %s, got %s", key, existing, vt)
		}
		b.nodePropertyTypes[key] = vt
		b.nodePending = append(b.nodePending, nodePropertyRecord{internal: internal, key: key, value: value})
	}
	return internal, nil
}

// PrepareForFlush marks the builder as done accepting mutations (spec
// I1). Calling it more than once is a no-op.
func (b *Builder) PrepareForFlush() {
	b.mu.Lock()
	b.flushed = true
	b.mu.Unlock()
}

func (b *Builder) checkNotFlushed() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.flushed {
		return ErrBuilderFlushed
	}
	return nil
}

// AddEdge ingests one relType edge from sourceOriginal to
// targetOriginal (spec I2). Both endpoints are registered as nodes if
// they were not already (idmap.Builder.AddNode's idempotency makes this
// safe to call regardless of ingestion order). If direction is
// Undirected, the edge is materialized on both endpoints (I5); if
// sourceOriginal == targetOriginal it is recorded once, not twice.
//
// The first AddEdge call for a given relType fixes that type's property
// key ordering (sorted for determinism) and its per-source compressor's
// property count; later calls for the same relType must not introduce a
// property key absent from that first call, since the compressor's
// column layout cannot grow after sources have already been buffered
// against it.
func (b *Builder) AddEdge(relType string, sourceOriginal, targetOriginal int64, direction schema.Direction, properties map[string]any) error {
	if err := b.checkNotFlushed(); err != nil {
		return err
	}
	if err := b.schema.AddRelationshipType(relType, direction, nil); err != nil {
		return err
	}

	srcInternal, err := b.ids.AddNode(sourceOriginal)
	if err != nil {
		return err
	}
	tgtInternal, err := b.ids.AddNode(targetOriginal)
	if err != nil {
		return err
	}

	keys, props, err := b.resolveEdgeProperties(relType, direction, properties)
	if err != nil {
		return err
	}
	c := b.ensureCompressor(relType, len(keys))

	c.Add(srcInternal, tgtInternal, props...)
	if direction == schema.Undirected && srcInternal != tgtInternal {
		c.Add(tgtInternal, srcInternal, props...)
	}
	return nil
}

func (b *Builder) resolveEdgeProperties(relType string, direction schema.Direction, properties map[string]any) ([]string, []int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys, ok := b.relPropertyKeys[relType]
	if !ok {
		keys = make([]string, 0, len(properties))
		for k := range properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.relPropertyKeys[relType] = keys
	}

	props := make([]int64, len(keys))
	for i, k := range keys {
		v, present := properties[k]
		if !present {
			props[i] = adjacency.IgnoreValue
			continue
		}
		vt := inferValueType(v)
		if err := b.schema.AddRelationshipProperty(relType, direction, schema.PropertySchema{Key: k, ValueType: vt, State: schema.PERSISTENT}); err != nil {
			return nil, nil, err
		}
		props[i] = propstore.EncodeValue(vt, v)
	}
	return keys, props, nil
}

func (b *Builder) ensureCompressor(relType string, propertyCount int) *adjacency.Compressor {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.compressors[relType]
	if !ok {
		c = adjacency.NewCompressor(propertyCount)
		b.compressors[relType] = c
	}
	return c
}

func inferValueType(v any) schema.ValueType {
	switch v.(type) {
	case float32, float64:
		return schema.DOUBLE
	case bool:
		return schema.BOOLEAN
	case string:
		return schema.STRING
	default:
		return schema.LONG
	}
}

// Build freezes the builder into a read-only Graph (spec I1's build
// operation). The Builder remains internally consistent afterward but
// callers should treat it as consumed, per spec §7's partial-failure
// note ("a failed build leaves the builder in an unspecified state;
// callers must drop it").
func (b *Builder) Build() (*Graph, error) {
	threads := 1
	if b.cfg != nil && b.cfg.Threads > 0 {
		threads = b.cfg.Threads
	}

	ids, err := b.ids.Build(threads)
	if err != nil {
		return nil, err
	}
	b.schema.Normalize()

	adjacencyLists := make(map[string]*adjacency.AdjacencyList, len(b.compressors))
	for relType, c := range b.compressors {
		adjacencyLists[relType] = c.Build()
	}

	nodeProps := propstore.NewNodePropertyStore()
	stringProps := propstore.NewStringNodePropertyStore()
	nodeCount := ids.NodeCount()

	columns := make(map[string]*propstore.NodePropertyValues)
	stringColumns := make(map[string]*propstore.StringNodePropertyValues)
	for key, vt := range b.nodePropertyTypes {
		if vt == schema.STRING {
			stringColumns[key] = propstore.NewStringNodePropertyValues(schema.PropertySchema{Key: key, ValueType: vt, State: schema.PERSISTENT})
		} else {
			columns[key] = propstore.NewNodePropertyValues(schema.PropertySchema{Key: key, ValueType: vt, State: schema.PERSISTENT}, nodeCount, 0)
		}
	}
	for _, rec := range b.nodePending {
		if col, ok := columns[rec.key]; ok {
			col.Set(rec.internal, rec.value)
		} else if sc, ok := stringColumns[rec.key]; ok {
			sc.Set(rec.internal, rec.value.(string))
		}
	}
	for k, col := range columns {
		nodeProps.Put(k, col)
	}
	for k, sc := range stringColumns {
		stringProps.Put(k, sc)
	}

	relProps := make(map[string]*propstore.RelationshipPropertyStore, len(b.relPropertyKeys))
	for relType, keys := range b.relPropertyKeys {
		store := propstore.NewRelationshipPropertyStore()
		list := adjacencyLists[relType]
		for i, key := range keys {
			ps, ok := b.schema.RelationshipPropertySchema(relType, key)
			if !ok {
				continue
			}
			store.Put(key, propstore.RelationshipProperty{
				Schema: ps,
				Values: propstore.NewCursorRelationshipProperties(list, i, ps.ValueType),
			})
		}
		relProps[relType] = store
	}

	return &Graph{
		ids:                  ids,
		schema:               b.schema,
		adjacency:            adjacencyLists,
		relProperties:        relProps,
		nodeProperties:       nodeProps,
		stringNodeProperties: stringProps,
		cursorPools:          make(map[string]*adjacency.CursorPool, len(adjacencyLists)),
	}, nil
}
