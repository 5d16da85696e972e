// Package messages holds the message types that know how to convert
// themselves: the airspace control order (ACO) and the air tasking order
// (ATO).
package messages

import (
	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/registry"
	"usmtf_importer/internal/sets"
	"usmtf_importer/internal/transform"
)

// Registry builds messages keyed by the MSGID message type.
type Registry = registry.Registry[mtf.Typed, *mtf.Message]

// NewRegistry returns an empty registry. Unregistered message types stay
// generic *mtf.Message values.
func NewRegistry() *Registry {
	return registry.New(func(_ string, m *mtf.Message) mtf.Typed { return m })
}

// Exporter is a message that writes itself as scenario files.
type Exporter interface {
	mtf.Typed

	// Export writes file under dir and returns the paths it wrote.
	Export(dir, file string) ([]string, error)
}

// Register adds the ACO and ATO constructors to messages. Their records
// are cast against records, which should have the airspace and mission
// record kinds registered.
func Register(messages *Registry, records *sets.Registry) {
	zones := transform.NewZoneFactory()
	messages.Register("ACO", func(m *mtf.Message) mtf.Typed { return NewACO(m, records, zones) })
	messages.Register("ATO", func(m *mtf.Message) mtf.Typed { return NewATO(m, records) })
}

// headerTags are echoed as comments at the top of every export.
var headerTags = []string{"EXER", "OPER", "MSGID", "AKNLDG", "TIMEFRAM", "TSKCNTRY", "SVCTASK", "AMPN"}

// header collects the header records that precede the first record of type
// body.
func header(m *mtf.Message, body string) *transform.Comment {
	stop := m.NumberOfRecords()
	if first := m.Records(body); len(first) > 0 {
		stop = first[0].Position
	}
	var entries []mtf.Entry
	for _, e := range m.Records(headerTags...) {
		if e.Position < stop {
			entries = append(entries, e)
		}
	}
	return transform.NewRecordComment(entries)
}
