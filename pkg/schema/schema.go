// Package schema implements the graph's typed schema registry (spec §4.5):
// node label -> property map, relationship type -> (direction, property
// map), and a graph-level property map, each independently filterable and
// unionable with hard-error conflict rules.
//
// Grounded on the teacher's mutex-guarded, named-map schema manager
// (constraints keyed by "Label:property", a single RWMutex around the
// whole registry) — generalized here to typed property schemas instead of
// constraint records, and to the spec's union/filter contract instead of
// Cypher-style constraint CRUD.
package schema

import "fmt"

// ValueType is the set of property value types the core understands
// (spec §3, extensible).
type ValueType int

const (
	LONG ValueType = iota
	DOUBLE
	STRING
	BOOLEAN
)

func (v ValueType) String() string {
	switch v {
	case LONG:
		return "LONG"
	case DOUBLE:
		return "DOUBLE"
	case STRING:
		return "STRING"
	case BOOLEAN:
		return "BOOLEAN"
	default:
		return fmt.Sprintf("ValueType(%d)", int(v))
	}
}

// Fallback returns the canonical zero value for v.
func (v ValueType) Fallback() any {
	switch v {
	case LONG:
		return int64(0)
	case DOUBLE:
		return float64(0)
	case STRING:
		return ""
	case BOOLEAN:
		return false
	default:
		return nil
	}
}

func parseValueType(s string) (ValueType, error) {
	switch s {
	case "LONG":
		return LONG, nil
	case "DOUBLE":
		return DOUBLE, nil
	case "STRING":
		return STRING, nil
	case "BOOLEAN":
		return BOOLEAN, nil
	default:
		return 0, fmt.Errorf("schema: unknown value type %q", s)
	}
}

// PropertyState controls whether a property survives projection
// boundaries (spec §3).
type PropertyState int

const (
	PERSISTENT PropertyState = iota
	TRANSIENT
	REMOTE
)

func (s PropertyState) String() string {
	switch s {
	case PERSISTENT:
		return "PERSISTENT"
	case TRANSIENT:
		return "TRANSIENT"
	case REMOTE:
		return "REMOTE"
	default:
		return fmt.Sprintf("PropertyState(%d)", int(s))
	}
}

func parsePropertyState(s string) (PropertyState, error) {
	switch s {
	case "PERSISTENT":
		return PERSISTENT, nil
	case "TRANSIENT":
		return TRANSIENT, nil
	case "REMOTE":
		return REMOTE, nil
	default:
		return 0, fmt.Errorf("schema: unknown property state %q", s)
	}
}

// Aggregation is a relationship property's aggregation mode (spec §3).
// Node property schemas carry this field but ignore it.
type Aggregation int

const (
	AggNone Aggregation = iota
	AggSingle
	AggSum
	AggMin
	AggMax
	AggAvg
	AggCount
	AggDefault
)

func (a Aggregation) String() string {
	switch a {
	case AggNone:
		return "NONE"
	case AggSingle:
		return "SINGLE"
	case AggSum:
		return "SUM"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggAvg:
		return "AVG"
	case AggCount:
		return "COUNT"
	case AggDefault:
		return "DEFAULT"
	default:
		return fmt.Sprintf("Aggregation(%d)", int(a))
	}
}

func parseAggregation(s string) (Aggregation, error) {
	switch s {
	case "", "NONE":
		return AggNone, nil
	case "SINGLE":
		return AggSingle, nil
	case "SUM":
		return AggSum, nil
	case "MIN":
		return AggMin, nil
	case "MAX":
		return AggMax, nil
	case "AVG":
		return AggAvg, nil
	case "COUNT":
		return AggCount, nil
	case "DEFAULT":
		return AggDefault, nil
	default:
		return 0, fmt.Errorf("schema: unknown aggregation %q", s)
	}
}

// resolveDefault is what Aggregation::DEFAULT concretizes to (spec §4.5
// normalize, Open Question resolution: the source never pins a concrete
// default, so SINGLE — "last write wins, no merge" — is chosen here as
// the least surprising behavior for a relationship property nothing else
// configured).
const resolveDefault = AggSingle

// Direction is a relationship type's directionality (spec §3). Two
// schemas carrying the same relationship type name but different
// directions can never be unioned (I5).
type Direction int

const (
	Directed Direction = iota
	Undirected
)

func (d Direction) String() string {
	if d == Undirected {
		return "UNDIRECTED"
	}
	return "DIRECTED"
}

func parseDirection(s string) (Direction, error) {
	switch s {
	case "", "DIRECTED":
		return Directed, nil
	case "UNDIRECTED":
		return Undirected, nil
	default:
		return 0, fmt.Errorf("schema: unknown direction %q", s)
	}
}

// PropertySchema is the 5-tuple spec §3 describes: (key, value_type,
// default_value, state, aggregation). Node property schemas populate
// Aggregation but callers reading node schemas ignore it.
type PropertySchema struct {
	Key          string
	ValueType    ValueType
	DefaultValue any
	State        PropertyState
	Aggregation  Aggregation
}

func clonePropertyMap(m map[string]PropertySchema) map[string]PropertySchema {
	out := make(map[string]PropertySchema, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SchemaEntry is a (identifier, property_map) pair (spec §3). Identifier
// is a node label for node entries, or a relationship type name for
// relationship entries; Direction is meaningful only for the latter.
type SchemaEntry struct {
	Identifier string
	Direction  Direction
	Properties map[string]PropertySchema
}

func newEntry(identifier string, dir Direction) *SchemaEntry {
	return &SchemaEntry{Identifier: identifier, Direction: dir, Properties: make(map[string]PropertySchema)}
}

func (e *SchemaEntry) clone() *SchemaEntry {
	return &SchemaEntry{Identifier: e.Identifier, Direction: e.Direction, Properties: clonePropertyMap(e.Properties)}
}

// unionEntry merges b's properties into a clone of a, per spec §4.5's
// union rules. relationship controls whether a direction mismatch is
// checked (node entries have no direction to conflict on).
func unionEntry(a, b *SchemaEntry, relationship bool) (*SchemaEntry, error) {
	if relationship && a.Direction != b.Direction {
		return nil, &ConflictingDirectionError{Type: a.Identifier}
	}
	merged := a.clone()
	for key, incoming := range b.Properties {
		existing, ok := merged.Properties[key]
		if !ok {
			merged.Properties[key] = incoming
			continue
		}
		if existing.ValueType != incoming.ValueType {
			return nil, &ConflictingPropertyTypesError{Key: key, Left: existing.ValueType, Right: incoming.ValueType}
		}
		// Left-hand wins: stable and idempotent (A union A == A).
	}
	return merged, nil
}
