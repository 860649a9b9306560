// Package variables resolves Dockerfile build variables.
//
// A Table is built from ENV and ARG instructions in source order. Each
// instruction's definitions are resolved against everything defined before
// it, then merged with last-write-wins semantics. Resolved values, together
// with assignments local to a single RUN command, are then substituted into
// the arguments of all other instructions.
package variables

import (
	"maps"
	"slices"
)

// Variable is a single name=value definition. Name has no $ prefix.
type Variable struct {
	Name  string
	Value string
}

// Table maps variable names to values and remembers the order in which
// names were first defined.
type Table struct {
	values map[string]string
	order  []string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{values: make(map[string]string)}
}

// Set defines or overwrites name.
func (t *Table) Set(name, value string) {
	if _, ok := t.values[name]; !ok {
		t.order = append(t.order, name)
	}
	t.values[name] = value
}

// Merge sets every variable in order.
func (t *Table) Merge(vars []Variable) {
	for _, v := range vars {
		t.Set(v.Name, v.Value)
	}
}

// Get returns the value of name.
func (t *Table) Get(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Len returns the number of names defined.
func (t *Table) Len() int {
	return len(t.order)
}

// Variables returns the definitions in first-definition order.
func (t *Table) Variables() []Variable {
	out := make([]Variable, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, Variable{Name: name, Value: t.values[name]})
	}
	return out
}

// ByNameLength returns the definitions with the longest names first, so
// that MY_VAR2 is substituted before its prefix MY_VAR. Names of equal
// length keep their definition order.
func (t *Table) ByNameLength() []Variable {
	out := t.Variables()
	slices.SortStableFunc(out, func(a, b Variable) int {
		return len(b.Name) - len(a.Name)
	})
	return out
}

// Map returns a copy of the table as a plain map.
func (t *Table) Map() map[string]string {
	return maps.Clone(t.values)
}
