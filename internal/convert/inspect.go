package convert

import (
	"fmt"

	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/registry"
)

// Report is the JSON view of a parsed file printed by the inspect command.
type Report struct {
	Path        string                `json:"path"`
	MessageType string                `json:"message_type"`
	Registered  bool                  `json:"registered"`
	Valid       bool                  `json:"valid"`
	Errors      []mtf.ValidationError `json:"errors"`
	Coverage    Coverage              `json:"coverage"`
	ByTag       registry.Coverage     `json:"by_tag"`
	Records     []RecordReport        `json:"records"`
}

// Coverage counts how many records were built by a registered constructor.
type Coverage struct {
	Records    int `json:"records"`
	Registered int `json:"registered"`
	Invalid    int `json:"invalid"`
}

type RecordReport struct {
	Position   int                   `json:"position"`
	Type       string                `json:"type"`
	Registered bool                  `json:"registered"`
	Fields     []string              `json:"fields"`
	Errors     []mtf.ValidationError `json:"errors,omitempty"`
}

// Inspect parses path without exporting, archiving or publishing anything.
func (c *Converter) Inspect(path string) (Report, error) {
	msg, err := c.parser.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewReport(path, msg), nil
}

func NewReport(path string, msg mtf.Typed) Report {
	rep := Report{
		Path:        path,
		MessageType: msg.Type(),
		Registered:  msg.Registered(),
		Valid:       msg.IsValid(),
		Errors:      msg.Errors(),
	}

	base := msg.Base()
	var records []mtf.Record
	for i := 0; i < base.NumberOfRecords(); i++ {
		r, err := base.Record(i)
		if err != nil {
			continue
		}
		records = append(records, r)
		rr := RecordReport{
			Position:   i,
			Type:       r.Type(),
			Registered: r.Registered(),
			Errors:     r.Errors(),
		}
		for _, f := range r.Fields() {
			rr.Fields = append(rr.Fields, f.Raw())
		}

		rep.Coverage.Records++
		if rr.Registered {
			rep.Coverage.Registered++
		}
		if len(rr.Errors) > 0 {
			rep.Coverage.Invalid++
		}
		rep.Records = append(rep.Records, rr)
	}
	rep.ByTag = registry.Trace(records)
	return rep
}
