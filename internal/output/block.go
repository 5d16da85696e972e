// Package output renders the nested keyword-block scenario format:
//
//	header name
//	   property
//
//	   child_header child
//	   end_child_header
//	end_header
//
// Blocks nest with three spaces of indentation per level. A flat block
// renders its contents without header, footer or extra indentation and is
// used to batch blocks for one file.
package output

import (
	"io"
	"strings"
)

const indentUnit = "   "

// Property is one line inside a block.
type Property struct {
	Name      string
	Value     string
	Separator string

	// nameOnly properties render just their name, e.g. "circular".
	nameOnly bool
}

// NewProperty returns name = value.
func NewProperty(name, value string) Property {
	return Property{Name: name, Value: value, Separator: " = "}
}

// NewSpacedProperty returns name value.
func NewSpacedProperty(name, value string) Property {
	return Property{Name: name, Value: value, Separator: " "}
}

// NewFlag returns a property that renders only its name.
func NewFlag(name string) Property {
	return Property{Name: name, nameOnly: true}
}

// NewComment returns a "# text" line.
func NewComment(text string) Property {
	return NewFlag("# " + text)
}

func (p Property) String() string {
	if p.nameOnly {
		return p.Name
	}
	return p.Name + p.Separator + p.Value
}

// Block is a node of the output tree.
type Block struct {
	header     string
	name       string
	footer     bool
	flat       bool
	properties []Property
	children   []*Block
}

// Option configures a Block.
type Option func(*Block)

// WithoutFooter omits the end_<header> line.
func WithoutFooter() Option {
	return func(b *Block) { b.footer = false }
}

// Flat renders the block contents without header, footer or nesting.
func Flat() Option {
	return func(b *Block) { b.flat = true }
}

func NewBlock(header, name string, opts ...Option) *Block {
	b := &Block{header: header, name: name, footer: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewRoot returns a flat block for batching other blocks.
func NewRoot() *Block {
	return NewBlock("", "", Flat(), WithoutFooter())
}

func (b *Block) Header() string            { return b.header }
func (b *Block) Name() string              { return b.name }
func (b *Block) Properties() []Property    { return b.properties }
func (b *Block) Children() []*Block        { return b.children }
func (b *Block) IsFlat() bool              { return b.flat }
func (b *Block) HasFooter() bool           { return b.footer }
func (b *Block) SetName(name string)       { b.name = name }
func (b *Block) AddProperty(p ...Property) { b.properties = append(b.properties, p...) }

// Set appends name = value.
func (b *Block) Set(name, value string) { b.AddProperty(NewProperty(name, value)) }

// SetSpaced appends name value.
func (b *Block) SetSpaced(name, value string) { b.AddProperty(NewSpacedProperty(name, value)) }

// Flag appends a name-only property.
func (b *Block) Flag(name string) { b.AddProperty(NewFlag(name)) }

// Comment appends a "# text" line.
func (b *Block) Comment(text string) { b.AddProperty(NewComment(text)) }

// AddBlock appends child blocks. Nil children are skipped.
func (b *Block) AddBlock(children ...*Block) {
	for _, c := range children {
		if c != nil {
			b.children = append(b.children, c)
		}
	}
}

// String renders the block.
func (b *Block) String() string {
	var sb strings.Builder
	b.render(&sb, 0)
	return sb.String()
}

// WriteTo renders the block to w.
func (b *Block) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func (b *Block) render(sb *strings.Builder, depth int) {
	if b.flat {
		b.renderFlat(sb, depth)
		return
	}
	indent := strings.Repeat(indentUnit, depth)

	sb.WriteString(indent)
	sb.WriteString(b.header)
	if b.name != "" {
		sb.WriteByte(' ')
		sb.WriteString(b.name)
	}
	sb.WriteByte('\n')

	for _, p := range b.properties {
		sb.WriteString(indent)
		sb.WriteString(indentUnit)
		sb.WriteString(p.String())
		sb.WriteByte('\n')
	}
	for _, c := range b.children {
		sb.WriteByte('\n')
		c.render(sb, depth+1)
	}
	if b.footer {
		sb.WriteString(indent)
		sb.WriteString("end_")
		sb.WriteString(b.header)
		sb.WriteByte('\n')
	}
}

// renderFlat writes properties and children at the current depth, with a
// blank line between consecutive children.
func (b *Block) renderFlat(sb *strings.Builder, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	for _, p := range b.properties {
		sb.WriteString(indent)
		sb.WriteString(p.String())
		sb.WriteByte('\n')
	}
	for i, c := range b.children {
		if i > 0 || len(b.properties) > 0 {
			sb.WriteByte('\n')
		}
		c.render(sb, depth)
	}
}

// Exportable is implemented by every entity that renders to a block.
type Exportable interface {
	OutputBlock() *Block
}
