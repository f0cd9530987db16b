package schema

import "fmt"

// ConflictingPropertyTypesError is returned by Union when two entries
// declare the same property key with different value types (spec §4.5,
// scenario S6).
type ConflictingPropertyTypesError struct {
	Key         string
	Left, Right ValueType
}

func (e *ConflictingPropertyTypesError) Error() string {
	return fmt.Sprintf("schema: property %q has conflicting value types %s and %s", e.Key, e.Left, e.Right)
}

// ConflictingDirectionError is returned by Union when the same
// relationship type is declared DIRECTED on one side and UNDIRECTED on
// the other (spec §4.5, scenario S5; I5).
type ConflictingDirectionError struct {
	Type string
}

func (e *ConflictingDirectionError) Error() string {
	return fmt.Sprintf("schema: relationship type %q has conflicting directions", e.Type)
}
