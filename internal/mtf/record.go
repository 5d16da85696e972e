package mtf

import (
	"log/slog"
	"strings"
)

// Record is implemented by *Set and by every specialised record type that
// embeds it.
type Record interface {
	Type() string
	Field(i int) (Field, error)
	Fields() []Field
	FieldCount() int
	IsEmpty() bool
	IsValid() bool
	AddError(summary, value, hint string)
	Errors() []ValidationError
	LogErrors(logger *slog.Logger)
	Registered() bool
	String() string
}

// Set is the generic record: a type tag followed by 1-indexed fields. The
// type tag itself is not counted as a field.
type Set struct {
	Validatable
	typ        string
	fields     []Field
	registered bool
}

// NewSet builds a generic record. The fields slice is owned by the Set
// afterwards.
func NewSet(typ string, fields []Field) *Set {
	return &Set{typ: typ, fields: fields}
}

func (s *Set) Type() string { return s.typ }

// Field returns the field at the 1-indexed position i.
func (s *Set) Field(i int) (Field, error) {
	if i < 1 || i > len(s.fields) {
		return Field{}, recordf("field %d out of range for %s with %d fields", i, s.typ, len(s.fields))
	}
	return s.fields[i-1], nil
}

// Fields returns the data fields in order. Index 0 holds field 1.
func (s *Set) Fields() []Field { return s.fields }

func (s *Set) FieldCount() int { return len(s.fields) }

func (s *Set) IsEmpty() bool { return len(s.fields) == 0 }

// Registered reports whether a registered constructor built this record
// rather than the generic fallback.
func (s *Set) Registered() bool { return s.registered }

// MarkRegistered is called by the type registry when a registered
// constructor produced the record.
func (s *Set) MarkRegistered() { s.registered = true }

// String reconstructs the record text, e.g. "CIRCLE/LATM:2037N05934E/10NM//".
func (s *Set) String() string {
	var b strings.Builder
	b.WriteString(s.typ)
	for _, f := range s.fields {
		b.WriteByte('/')
		b.WriteString(f.Raw())
	}
	b.WriteString("//")
	return b.String()
}
