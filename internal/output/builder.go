package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrExport is returned when an output file cannot be created or written.
var ErrExport = errors.New("export error")

// Banner frames every exported file.
const Banner = "# ************************** Generated by usmtf_importer **************************"

// Builder collects top-level blocks for one output file.
type Builder struct {
	root *Block
}

func NewBuilder() *Builder {
	return &Builder{root: NewRoot()}
}

// Add appends the blocks of each exportable entity.
func (b *Builder) Add(items ...Exportable) {
	for _, it := range items {
		b.root.AddBlock(it.OutputBlock())
	}
}

// AddBlock appends ready-made blocks.
func (b *Builder) AddBlock(blocks ...*Block) {
	b.root.AddBlock(blocks...)
}

// Len returns the number of top-level blocks.
func (b *Builder) Len() int { return len(b.root.children) }

// WriteTo writes the banner, the blocks and the closing banner to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, part := range []string{Banner + "\n\n", b.root.String(), "\n" + Banner + "\n"} {
		n, err := io.WriteString(w, part)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Export writes the file at path, replacing any existing file.
func (b *Builder) Export(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrExport, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close %s: %v", ErrExport, path, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if _, err := b.WriteTo(w); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrExport, path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrExport, path, err)
	}
	return nil
}
