// Package transform turns segments of a parsed message into the entities of
// the scenario format: zones from ACO airspace segments and platforms from
// ATO mission segments.
//
// A Transformer and everything built from it are views over a Segment and
// must not outlive the Message the Segment was cut from.
package transform

import (
	"strings"

	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/registry"
	"usmtf_importer/internal/sets"
)

// Transformer extracts typed records from one Segment and accumulates the
// validation errors of everything it extracted.
type Transformer struct {
	mtf.Validatable
	segment *mtf.Segment
	records *sets.Registry
}

// NewTransformer wraps seg. Records are cast against the constructors
// registered in records.
func NewTransformer(seg *mtf.Segment, records *sets.Registry) *Transformer {
	return &Transformer{segment: seg, records: records}
}

func (t *Transformer) Segment() *mtf.Segment { return t.segment }

type extractOptions struct {
	optional       bool
	skipValidation bool
}

// ExtractOption adjusts how Extract treats a missing or invalid record.
type ExtractOption func(*extractOptions)

// Optional makes a missing record acceptable.
func Optional() ExtractOption {
	return func(o *extractOptions) { o.optional = true }
}

// SkipValidation keeps the errors of an invalid record off the transformer.
// The caller is expected to check IsValid itself.
func SkipValidation() ExtractOption {
	return func(o *extractOptions) { o.skipValidation = true }
}

// Extract finds the first record with tag in the segment and returns it as
// T. The boolean is true only for a present, registered and valid record.
// concept names the entity being built in error messages.
func Extract[T mtf.Record](t *Transformer, tag, concept string, opts ...ExtractOption) (T, bool) {
	var zero T
	var o extractOptions
	for _, opt := range opts {
		opt(&o)
	}

	e, found := t.segment.Find(tag)
	if !found {
		if !o.optional {
			t.AddError("Missing "+tag+" record", concept, "a "+concept+" requires a "+tag+" record")
		}
		return zero, false
	}

	v, ok := registry.CastIfRegistered[T](t.records, e.Record)
	if !ok {
		t.AddError("to create a "+concept+" you must register a record handling "+tag,
			e.Record.String(), tag+" registered with its record constructor")
		return zero, false
	}

	if !v.IsValid() {
		if !o.skipValidation {
			for _, err := range v.Errors() {
				t.AddError(tag+" in "+concept+": "+err.Summary, err.Value, err.Hint)
			}
		}
		return v, false
	}
	return v, true
}

// ExtractAll returns every registered record with tag, valid or not.
func ExtractAll[T mtf.Record](t *Transformer, tag string) []T {
	var out []T
	for _, e := range t.segment.All(tag) {
		if v, ok := registry.CastIfRegistered[T](t.records, e.Record); ok {
			out = append(out, v)
		}
	}
	return out
}

func replaceSpaces(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}
