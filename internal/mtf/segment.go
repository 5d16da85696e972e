package mtf

// Segment is an ordered, non-owning view of records from one Message.
//
// A Segment holds pointers into the Message it was cut from and is only
// meaningful while that Message is in use; everything built from a Segment
// shares the same lifetime.
type Segment struct {
	msg     *Message
	entries []Entry
}

// NewSegment builds a view over an arbitrary selection of entries of msg.
func NewSegment(msg *Message, entries []Entry) *Segment {
	return &Segment{msg: msg, entries: entries}
}

// Message returns the Message the segment was cut from.
func (s *Segment) Message() *Message { return s.msg }

func (s *Segment) Entries() []Entry { return s.entries }
func (s *Segment) Len() int         { return len(s.entries) }

// Find returns the first entry of type tag.
func (s *Segment) Find(tag string) (Entry, bool) {
	for _, e := range s.entries {
		if e.Record.Type() == tag {
			return e, true
		}
	}
	return Entry{}, false
}

func (s *Segment) Has(tag string) bool {
	_, ok := s.Find(tag)
	return ok
}

// All returns every entry of type tag.
func (s *Segment) All(tag string) []Entry {
	var out []Entry
	for _, e := range s.entries {
		if e.Record.Type() == tag {
			out = append(out, e)
		}
	}
	return out
}

// SubSegments splits the segment at every record of type tag. Entries that
// precede the first tag record are not part of any sub-segment.
func (s *Segment) SubSegments(tag string) []*Segment {
	var out []*Segment
	var cur []Entry
	for _, e := range s.entries {
		if e.Record.Type() == tag {
			if cur != nil {
				out = append(out, NewSegment(s.msg, cur))
			}
			cur = []Entry{e}
			continue
		}
		if cur != nil {
			cur = append(cur, e)
		}
	}
	if cur != nil {
		out = append(out, NewSegment(s.msg, cur))
	}
	return out
}
