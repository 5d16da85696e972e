// Package parser reads USMTF text into a Message. Records are built through
// the record registry and the message through the message registry, so the
// result is as specialised as the registries allow.
package parser

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"slices"
	"strings"

	"usmtf_importer/internal/messages"
	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/sets"
)

// mainTextTags open the main text. Anything before the first record carrying
// one of them is free-form preamble.
var mainTextTags = []string{"EXER", "OPER"}

const maxTokenSize = 16 * 1024 * 1024

// Parser turns a stream of '/'-delimited records into a Message.
type Parser struct {
	records  *sets.Registry
	messages *messages.Registry
}

// New returns a parser over the given registries. Both must be fully
// configured before the first Read.
func New(records *sets.Registry, msgs *messages.Registry) *Parser {
	return &Parser{records: records, messages: msgs}
}

// ReadFile parses the file at path.
func (p *Parser) ReadFile(path string) (mtf.Typed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mtf.NewImportError("cannot open %s: %v", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err == nil && info.Size() == 0 {
		return nil, mtf.NewImportError("%s is empty", path)
	}
	return p.Read(f)
}

// Read parses one message from r.
func (p *Parser) Read(r io.Reader) (mtf.Typed, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTokenSize)
	scanner.Split(splitFields)

	var records []mtf.Record
	started := false
	for scanner.Scan() {
		tag := scanner.Text()
		if !started {
			start, ok := mainTextStart(tag)
			if !ok {
				continue
			}
			tag, started = start, true
		}
		tag = clean(tag)
		if tag == "" {
			break
		}

		var fields []mtf.Field
		for scanner.Scan() {
			raw := clean(scanner.Text())
			if raw == "" {
				break
			}
			fields = append(fields, mtf.NewField(raw))
		}
		records = append(records, p.records.Create(tag, mtf.NewSet(tag, fields)))
	}
	if err := scanner.Err(); err != nil {
		return nil, mtf.NewImportError("read: %v", err)
	}

	switch {
	case !started:
		return nil, mtf.NewImportError("no EXER or OPER record starts the main text")
	case len(records) < 2:
		return nil, mtf.NewImportError("main text has %d records, at least EXER/OPER and MSGID are required", len(records))
	case records[1].Type() != "MSGID":
		return nil, mtf.NewImportError("second record is %s, expected MSGID", records[1].Type())
	}
	msgID, err := records[1].Field(1)
	if err != nil || msgID.Content() == "" {
		return nil, mtf.NewImportError("MSGID does not name a message type")
	}

	typ := msgID.Content()
	return p.messages.Create(typ, mtf.NewMessage(typ, records)), nil
}

// splitFields is a bufio.SplitFunc yielding the text between '/'
// delimiters. A trailing token without a delimiter is returned at EOF.
func splitFields(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '/'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// mainTextStart reports whether token ends with an EXER or OPER record tag.
// The tag must sit alone on the last line of the token, so preamble text
// only counts up to the line break before it.
func mainTextStart(token string) (string, bool) {
	tag := strings.TrimSpace(token[strings.LastIndexAny(token, "\r\n")+1:])
	if slices.Contains(mainTextTags, tag) {
		return tag, true
	}
	return "", false
}

// clean drops line breaks, which may fall anywhere inside a field, and
// surrounding blanks.
func clean(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.TrimSpace(s)
}
