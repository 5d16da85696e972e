package transform

import (
	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/output"
)

// Comment is a block of "#" lines.
type Comment struct {
	Lines []string
}

func NewComment(lines ...string) *Comment {
	return &Comment{Lines: lines}
}

// NewRecordComment echoes each record of entries as a comment line.
func NewRecordComment(entries []mtf.Entry) *Comment {
	c := &Comment{}
	for _, e := range entries {
		c.Lines = append(c.Lines, e.Record.String())
	}
	return c
}

func (c *Comment) OutputBlock() *output.Block {
	b := output.NewRoot()
	for _, l := range c.Lines {
		b.Comment(l)
	}
	return b
}
