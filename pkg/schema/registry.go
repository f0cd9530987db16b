package schema

import "sync"

// GraphSchema is the graph-level schema registry (spec §3, §4.5): node
// labels and relationship types each map to a SchemaEntry, plus a
// graph-level property map that follows the same union rules as any
// entry's properties.
//
// Grounded on the teacher's schema manager, which guards its entire
// constraint table behind one RWMutex rather than per-entry locks —
// appropriate here too since schema mutation happens only during the
// build phase, never on the traversal hot path (spec §3 lifecycles).
type GraphSchema struct {
	mu         sync.RWMutex
	nodes      map[string]*SchemaEntry
	rels       map[string]*SchemaEntry
	graphProps map[string]PropertySchema
}

// New returns an empty schema registry.
func New() *GraphSchema {
	return &GraphSchema{
		nodes:      make(map[string]*SchemaEntry),
		rels:       make(map[string]*SchemaEntry),
		graphProps: make(map[string]PropertySchema),
	}
}

// AddLabel registers label, merging props into its existing property map
// if the label is already present (add_label is idempotent: spec §4.5).
func (s *GraphSchema) AddLabel(label string, props map[string]PropertySchema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.nodes[label]
	if !ok {
		entry = newEntry(label, Directed)
		s.nodes[label] = entry
	}
	for k, v := range props {
		entry.Properties[k] = v
	}
}

// AddRelationshipType registers relType with the given direction, merging
// props into its existing property map if relType is already present. If
// relType is already present with a different direction, the existing
// entry is left untouched and a *ConflictingDirectionError is returned.
func (s *GraphSchema) AddRelationshipType(relType string, dir Direction, props map[string]PropertySchema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rels[relType]
	if !ok {
		entry = newEntry(relType, dir)
		s.rels[relType] = entry
	} else if entry.Direction != dir {
		return &ConflictingDirectionError{Type: relType}
	}
	for k, v := range props {
		entry.Properties[k] = v
	}
	return nil
}

// AddNodeProperty adds or overwrites key on label's property map,
// implicitly registering label if it is not already present.
func (s *GraphSchema) AddNodeProperty(label string, ps PropertySchema) {
	s.AddLabel(label, map[string]PropertySchema{ps.Key: ps})
}

// AddRelationshipProperty adds or overwrites key on relType's property
// map, registering relType with dir if it is absent. If relType exists
// with a different direction, nothing changes and a
// *ConflictingDirectionError is returned.
func (s *GraphSchema) AddRelationshipProperty(relType string, dir Direction, ps PropertySchema) error {
	return s.AddRelationshipType(relType, dir, map[string]PropertySchema{ps.Key: ps})
}

// RemoveNodeProperty deletes key from label's property map. A no-op if
// either is absent.
func (s *GraphSchema) RemoveNodeProperty(label, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.nodes[label]; ok {
		delete(entry.Properties, key)
	}
}

// RemoveRelationshipProperty deletes key from relType's property map. A
// no-op if either is absent.
func (s *GraphSchema) RemoveRelationshipProperty(relType, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.rels[relType]; ok {
		delete(entry.Properties, key)
	}
}

// AddGraphProperty adds or overwrites a graph-level property.
func (s *GraphSchema) AddGraphProperty(ps PropertySchema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphProps[ps.Key] = ps
}

// RelationshipPropertySchema returns relType's property schema for key,
// or false if either is not registered.
func (s *GraphSchema) RelationshipPropertySchema(relType, key string) (PropertySchema, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.rels[relType]
	if !ok {
		return PropertySchema{}, false
	}
	ps, ok := entry.Properties[key]
	return ps, ok
}

// RelationshipDirection returns relType's registered direction, or false
// if relType is not registered.
func (s *GraphSchema) RelationshipDirection(relType string) (Direction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.rels[relType]
	if !ok {
		return 0, false
	}
	return entry.Direction, true
}

// Identifiers is the pair of name sets AvailableIdentifiers returns.
type Identifiers struct {
	Labels            []string
	RelationshipTypes []string
}

// AvailableIdentifiers returns every node label and relationship type
// this schema has an entry for.
func (s *GraphSchema) AvailableIdentifiers() Identifiers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Identifiers{
		Labels:            make([]string, 0, len(s.nodes)),
		RelationshipTypes: make([]string, 0, len(s.rels)),
	}
	for l := range s.nodes {
		out.Labels = append(out.Labels, l)
	}
	for r := range s.rels {
		out.RelationshipTypes = append(out.RelationshipTypes, r)
	}
	return out
}

// IsUndirected reports whether relType is registered as UNDIRECTED. With
// no argument it reports whether every registered relationship type is
// UNDIRECTED (vacuously true if none are registered).
func (s *GraphSchema) IsUndirected(relType ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(relType) > 0 {
		entry, ok := s.rels[relType[0]]
		return ok && entry.Direction == Undirected
	}
	for _, entry := range s.rels {
		if entry.Direction != Undirected {
			return false
		}
	}
	return true
}

// AllProperties returns the property keys for a single identifier (node
// label or relationship type, whichever matches), or the union of every
// property key across every node entry, relationship entry, and the
// graph-level map when called with no argument.
func (s *GraphSchema) AllProperties(identifier ...string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(identifier) > 0 {
		id := identifier[0]
		if entry, ok := s.nodes[id]; ok {
			return propertyKeys(entry.Properties)
		}
		if entry, ok := s.rels[id]; ok {
			return propertyKeys(entry.Properties)
		}
		return nil
	}
	seen := make(map[string]struct{})
	for _, entry := range s.nodes {
		for k := range entry.Properties {
			seen[k] = struct{}{}
		}
	}
	for _, entry := range s.rels {
		for k := range entry.Properties {
			seen[k] = struct{}{}
		}
	}
	for k := range s.graphProps {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	return out
}

func propertyKeys(m map[string]PropertySchema) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Normalize resolves every Aggregation::DEFAULT on every relationship
// property (node properties ignore Aggregation) to a concrete mode,
// mutating the schema in place (spec §4.5).
func (s *GraphSchema) Normalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.rels {
		for k, ps := range entry.Properties {
			if ps.Aggregation == AggDefault {
				ps.Aggregation = resolveDefault
				entry.Properties[k] = ps
			}
		}
	}
}

// Filter returns a new schema containing only the requested node labels
// and relationship types. Identifiers not present in s are silently
// omitted from the result, matching spec §4.5's filter contract (no
// validation step is specified here, unlike LabelInfo.ValidateFilter).
func (s *GraphSchema) Filter(labels, relTypes []string) *GraphSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := New()
	for _, l := range labels {
		if entry, ok := s.nodes[l]; ok {
			out.nodes[l] = entry.clone()
		}
	}
	for _, r := range relTypes {
		if entry, ok := s.rels[r]; ok {
			out.rels[r] = entry.clone()
		}
	}
	return out
}

// Union returns a new schema combining s and other. Identifiers unique to
// either side pass through unchanged; identifiers present in both are
// merged per unionEntry's rules, and the graph-level property maps are
// merged the same way. Neither s nor other is mutated. The first
// conflict encountered aborts the whole union with an error; s and other
// remain unchanged (spec §7: "a failed union ... returns the error
// without mutating the receiver").
func (s *GraphSchema) Union(other *GraphSchema) (*GraphSchema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	out := New()
	for l, entry := range s.nodes {
		out.nodes[l] = entry.clone()
	}
	for l, entry := range other.nodes {
		if existing, ok := out.nodes[l]; ok {
			merged, err := unionEntry(existing, entry, false)
			if err != nil {
				return nil, err
			}
			out.nodes[l] = merged
		} else {
			out.nodes[l] = entry.clone()
		}
	}

	for r, entry := range s.rels {
		out.rels[r] = entry.clone()
	}
	for r, entry := range other.rels {
		if existing, ok := out.rels[r]; ok {
			merged, err := unionEntry(existing, entry, true)
			if err != nil {
				return nil, err
			}
			out.rels[r] = merged
		} else {
			out.rels[r] = entry.clone()
		}
	}

	graphEntry, err := unionEntry(
		&SchemaEntry{Properties: clonePropertyMap(s.graphProps)},
		&SchemaEntry{Properties: clonePropertyMap(other.graphProps)},
		false,
	)
	if err != nil {
		return nil, err
	}
	out.graphProps = graphEntry.Properties

	return out, nil
}
