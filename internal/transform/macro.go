package transform

import (
	"github.com/iancoleman/orderedmap"

	"usmtf_importer/internal/output"
)

// positionScaffold is what an operator replaces with a real position.
const positionScaffold = " <latitude-value> <longitude-value>"

// Macro is a placeholder definition for data the message did not carry.
type Macro struct {
	Key      string
	Scaffold string
}

// NewPositionMacro returns the position placeholder for a named location.
func NewPositionMacro(name string) Macro {
	return Macro{Key: replaceSpaces(name), Scaffold: positionScaffold}
}

// Placeholder is the text that stands in for the macro value.
func (m Macro) Placeholder() string { return "$<" + m.Key + ">$" }

// Definition is the $define line an operator completes.
func (m Macro) Definition() string { return "$define " + m.Key + m.Scaffold }

func (m Macro) OutputBlock() *output.Block {
	b := output.NewRoot()
	b.Flag(m.Definition())
	return b
}

// Macros is a set of macros keyed by Key that keeps insertion order.
type Macros struct {
	m *orderedmap.OrderedMap
}

func NewMacros() *Macros {
	return &Macros{m: orderedmap.New()}
}

// Add stores m unless its key is already present and reports whether it
// was added.
func (ms *Macros) Add(m Macro) bool {
	if _, ok := ms.m.Get(m.Key); ok {
		return false
	}
	ms.m.Set(m.Key, m)
	return true
}

// Merge adds every macro of other.
func (ms *Macros) Merge(other *Macros) {
	for _, m := range other.List() {
		ms.Add(m)
	}
}

func (ms *Macros) Len() int { return len(ms.m.Keys()) }

// List returns the macros in insertion order.
func (ms *Macros) List() []Macro {
	keys := ms.m.Keys()
	out := make([]Macro, 0, len(keys))
	for _, k := range keys {
		v, _ := ms.m.Get(k)
		out = append(out, v.(Macro))
	}
	return out
}

// OutputBlock renders every definition as a flat list.
func (ms *Macros) OutputBlock() *output.Block {
	b := output.NewRoot()
	for _, m := range ms.List() {
		b.Flag(m.Definition())
	}
	return b
}
