package sets

import (
	"strings"

	"usmtf_importer/internal/ffirn"
	"usmtf_importer/internal/mtf"
)

// Exer names the exercise a message belongs to.
type Exer struct {
	*mtf.Set
	Name       string `json:"name"`
	Additional string `json:"additional,omitempty"`
}

func NewExer(s *mtf.Set) mtf.Record {
	e := &Exer{Set: s}
	requireFields(s, 1, -1)
	e.Name, _ = ffirn.Apply(s, 1, ffirn.ParseFreeText)
	e.Additional, _ = ffirn.ApplyOptional(s, 2, ffirn.ParseFreeText)
	return e
}

// Oper names the operation a message belongs to.
type Oper struct {
	*mtf.Set
	Name string `json:"name"`
}

func NewOper(s *mtf.Set) mtf.Record {
	o := &Oper{Set: s}
	requireFields(s, 1, -1)
	o.Name, _ = ffirn.Apply(s, 1, ffirn.ParseFreeText)
	return o
}

// MsgID identifies the message: MSGID/ACO/originator/serial/month/qualifier.
type MsgID struct {
	*mtf.Set
	MessageType string `json:"message_type"`
	Originator  string `json:"originator"`
	Serial      string `json:"serial,omitempty"`
	Month       string `json:"month,omitempty"`
	Qualifier   string `json:"qualifier,omitempty"`
}

func NewMsgID(s *mtf.Set) mtf.Record {
	m := &MsgID{Set: s}
	requireFields(s, 2, -1)
	m.MessageType, _ = ffirn.Apply(s, 1, ffirn.ParseFreeText)
	m.Originator, _ = ffirn.Apply(s, 2, ffirn.ParseFreeText)
	m.Serial, _ = ffirn.ApplyOptional(s, 3, ffirn.ParseFreeText)
	m.Month, _ = ffirn.ApplyOptional(s, 4, ffirn.ParseFreeText)
	m.Qualifier, _ = ffirn.ApplyOptional(s, 5, ffirn.ParseFreeText)
	return m
}

// TimeFrame is the validity window of a whole message:
// TIMEFRAM/FROM:<dtg>/TO:<dtg or UFN>.
type TimeFrame struct {
	*mtf.Set
	From ffirn.TimePoint `json:"from"`
	To   ffirn.TimePoint `json:"to"`
}

func NewTimeFrame(s *mtf.Set) mtf.Record {
	t := &TimeFrame{Set: s}
	requireFields(s, 2, 2)
	t.From, _ = ffirn.Apply(s, 1, ffirn.ParseTimePoint)
	t.To, _ = ffirn.Apply(s, 2, ffirn.ParseTimePoint)
	return t
}

// Ampn is an amplification remark attached to the preceding set.
type Ampn struct {
	*mtf.Set
	Text string `json:"text"`
}

func NewAmpn(s *mtf.Set) mtf.Record {
	a := &Ampn{Set: s}
	if !requireFields(s, 1, -1) {
		return a
	}
	parts := make([]string, 0, s.FieldCount())
	for _, f := range s.Fields() {
		parts = append(parts, f.Raw())
	}
	a.Text = strings.Join(parts, "/")
	return a
}
