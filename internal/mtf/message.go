package mtf

import "log/slog"

// Typed is implemented by *Message and by every specialised message type
// that embeds it.
type Typed interface {
	Type() string
	Base() *Message
	IsValid() bool
	Errors() []ValidationError
	LogErrors(logger *slog.Logger)
	Registered() bool
}

// Entry pairs a record with its 0-based position in the owning Message.
type Entry struct {
	Record   Record
	Position int
}

// Message owns the records parsed from one input file. Record 0 is the
// EXER or OPER record and record 1 is MSGID.
type Message struct {
	Validatable
	typ        string
	records    []Record
	registered bool
}

func NewMessage(typ string, records []Record) *Message {
	return &Message{typ: typ, records: records}
}

func (m *Message) Type() string     { return m.typ }
func (m *Message) Base() *Message   { return m }
func (m *Message) Registered() bool { return m.registered }
func (m *Message) MarkRegistered()  { m.registered = true }

func (m *Message) NumberOfRecords() int { return len(m.records) }
func (m *Message) IsEmpty() bool        { return len(m.records) == 0 }

// Record returns the record at the 0-based position i.
func (m *Message) Record(i int) (Record, error) {
	if i < 0 || i >= len(m.records) {
		return nil, messagef("record %d out of range for %s with %d records", i, m.typ, len(m.records))
	}
	return m.records[i], nil
}

// Records returns every record whose type matches one of tags, in message
// order.
func (m *Message) Records(tags ...string) []Entry {
	var out []Entry
	for i, r := range m.records {
		for _, tag := range tags {
			if r.Type() == tag {
				out = append(out, Entry{Record: r, Position: i})
				break
			}
		}
	}
	return out
}

// Segment returns a view over the inclusive record range [start, stop].
func (m *Message) Segment(start, stop int) (*Segment, error) {
	if start < 0 || start >= len(m.records) {
		return nil, messagef("segment start %d out of range for %d records", start, len(m.records))
	}
	if stop < 0 || stop >= len(m.records) {
		return nil, messagef("segment stop %d out of range for %d records", stop, len(m.records))
	}
	if start > stop {
		return nil, messagef("segment start %d is after stop %d", start, stop)
	}
	entries := make([]Entry, 0, stop-start+1)
	for i := start; i <= stop; i++ {
		entries = append(entries, Entry{Record: m.records[i], Position: i})
	}
	return &Segment{msg: m, entries: entries}, nil
}

// Segments returns one segment per record of type tag. Each segment starts
// at that record and runs up to, but not including, the next record of the
// same type, or to the end of the message.
func (m *Message) Segments(tag string) []*Segment {
	starts := m.Records(tag)
	out := make([]*Segment, 0, len(starts))
	for i, s := range starts {
		stop := len(m.records) - 1
		if i+1 < len(starts) {
			stop = starts[i+1].Position - 1
		}
		entries := make([]Entry, 0, stop-s.Position+1)
		for j := s.Position; j <= stop; j++ {
			entries = append(entries, Entry{Record: m.records[j], Position: j})
		}
		out = append(out, &Segment{msg: m, entries: entries})
	}
	return out
}
