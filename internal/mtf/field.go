// Package mtf provides the record/field data model for USMTF message text:
// fields, records ("sets"), messages and the segments carved out of them.
package mtf

import "strings"

// Field is one '/'-delimited token of a record. A field may carry a
// descriptor, written before the first ':' (for example "LATM:2037N05934E").
type Field struct {
	raw        string
	descriptor string
	content    string
	hasDesc    bool
}

// NewField splits raw on the first ':' into descriptor and content.
func NewField(raw string) Field {
	f := Field{raw: raw, content: raw}
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		f.descriptor = raw[:i]
		f.content = raw[i+1:]
		f.hasDesc = true
	}
	return f
}

func (f Field) Content() string     { return f.content }
func (f Field) Descriptor() string  { return f.descriptor }
func (f Field) HasDescriptor() bool { return f.hasDesc }

// Raw returns the field exactly as it appeared in the record.
func (f Field) Raw() string { return f.raw }

// IsNull reports whether the field holds the USMTF null value "-".
func (f Field) IsNull() bool { return f.content == "-" }
