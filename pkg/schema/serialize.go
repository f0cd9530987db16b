package schema

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/orneryd/graphcore/pkg/convert"
)

// PropertyDump is PropertySchema's map-shaped serialized form (spec
// §4.5: "{valueType, defaultValue, state[, aggregation]}").
type PropertyDump struct {
	ValueType    string `yaml:"valueType" json:"valueType"`
	DefaultValue any    `yaml:"defaultValue" json:"defaultValue"`
	State        string `yaml:"state" json:"state"`
	Aggregation  string `yaml:"aggregation,omitempty" json:"aggregation,omitempty"`
}

func dumpProperty(ps PropertySchema) PropertyDump {
	return PropertyDump{
		ValueType:    ps.ValueType.String(),
		DefaultValue: ps.DefaultValue,
		State:        ps.State.String(),
		Aggregation:  ps.Aggregation.String(),
	}
}

func loadProperty(key string, d PropertyDump) (PropertySchema, error) {
	vt, err := parseValueType(d.ValueType)
	if err != nil {
		return PropertySchema{}, err
	}
	st, err := parsePropertyState(d.State)
	if err != nil {
		return PropertySchema{}, err
	}
	agg, err := parseAggregation(d.Aggregation)
	if err != nil {
		return PropertySchema{}, err
	}
	// YAML and JSON decode numbers into `any` as int or float64; restore
	// the Go type the value type uses so a round trip is exact.
	def := d.DefaultValue
	switch vt {
	case LONG:
		if i, ok := convert.ToInt64(def); ok {
			def = i
		}
	case DOUBLE:
		if f, ok := convert.ToFloat64(def); ok {
			def = f
		}
	}
	return PropertySchema{Key: key, ValueType: vt, DefaultValue: def, State: st, Aggregation: agg}, nil
}

// EntryDump is SchemaEntry's map-shaped serialized form (spec §4.5).
// Direction is only populated (and only read back) for relationship
// entries.
type EntryDump struct {
	Properties map[string]PropertyDump `yaml:"properties" json:"properties"`
	Direction  string                  `yaml:"direction,omitempty" json:"direction,omitempty"`
}

func dumpEntry(e *SchemaEntry, relationship bool) EntryDump {
	d := EntryDump{Properties: make(map[string]PropertyDump, len(e.Properties))}
	for k, ps := range e.Properties {
		d.Properties[k] = dumpProperty(ps)
	}
	if relationship {
		d.Direction = e.Direction.String()
	}
	return d
}

func loadEntry(identifier string, d EntryDump, relationship bool) (*SchemaEntry, error) {
	dir := Directed
	var err error
	if relationship {
		dir, err = parseDirection(d.Direction)
		if err != nil {
			return nil, err
		}
	}
	entry := newEntry(identifier, dir)
	for k, pd := range d.Properties {
		ps, err := loadProperty(k, pd)
		if err != nil {
			return nil, err
		}
		entry.Properties[k] = ps
	}
	return entry, nil
}

// GraphSchemaDump is GraphSchema's map-shaped serialized form: node
// labels, relationship types, and graph-level properties each dumped
// independently.
type GraphSchemaDump struct {
	Nodes           map[string]EntryDump      `yaml:"nodes" json:"nodes"`
	Relationships   map[string]EntryDump      `yaml:"relationships" json:"relationships"`
	GraphProperties map[string]PropertyDump   `yaml:"graphProperties,omitempty" json:"graphProperties,omitempty"`
}

// Dump converts s into its map-shaped serialized form.
func (s *GraphSchema) Dump() GraphSchemaDump {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := GraphSchemaDump{
		Nodes:         make(map[string]EntryDump, len(s.nodes)),
		Relationships: make(map[string]EntryDump, len(s.rels)),
	}
	for l, entry := range s.nodes {
		out.Nodes[l] = dumpEntry(entry, false)
	}
	for r, entry := range s.rels {
		out.Relationships[r] = dumpEntry(entry, true)
	}
	if len(s.graphProps) > 0 {
		out.GraphProperties = make(map[string]PropertyDump, len(s.graphProps))
		for k, ps := range s.graphProps {
			out.GraphProperties[k] = dumpProperty(ps)
		}
	}
	return out
}

// LoadDump reconstructs a GraphSchema from its map-shaped serialized
// form.
func LoadDump(d GraphSchemaDump) (*GraphSchema, error) {
	out := New()
	for l, ed := range d.Nodes {
		entry, err := loadEntry(l, ed, false)
		if err != nil {
			return nil, err
		}
		out.nodes[l] = entry
	}
	for r, ed := range d.Relationships {
		entry, err := loadEntry(r, ed, true)
		if err != nil {
			return nil, err
		}
		out.rels[r] = entry
	}
	for k, pd := range d.GraphProperties {
		ps, err := loadProperty(k, pd)
		if err != nil {
			return nil, err
		}
		out.graphProps[k] = ps
	}
	return out, nil
}

// ToYAML serializes s using gopkg.in/yaml.v3, the teacher's config/schema
// serialization library of choice.
func (s *GraphSchema) ToYAML() ([]byte, error) {
	return yaml.Marshal(s.Dump())
}

// LoadYAML reconstructs a GraphSchema from ToYAML's output.
func LoadYAML(data []byte) (*GraphSchema, error) {
	var d GraphSchemaDump
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return LoadDump(d)
}

// ToJSON serializes s using encoding/json, for callers that want JSON
// rather than YAML.
func (s *GraphSchema) ToJSON() ([]byte, error) {
	return json.Marshal(s.Dump())
}

// LoadJSON reconstructs a GraphSchema from ToJSON's output.
func LoadJSON(data []byte) (*GraphSchema, error) {
	var d GraphSchemaDump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return LoadDump(d)
}
