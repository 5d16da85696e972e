package messages

import (
	"path/filepath"

	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/output"
	"usmtf_importer/internal/sets"
	"usmtf_importer/internal/transform"
)

// ACO is an airspace control order. Every ACMID segment becomes one zone.
type ACO struct {
	*mtf.Message
	header *transform.Comment
	zones  []transform.Zone
}

func NewACO(m *mtf.Message, records *sets.Registry, zones *transform.ZoneFactory) *ACO {
	a := &ACO{Message: m, header: header(m, "ACMID")}
	for _, seg := range m.Segments("ACMID") {
		z := transform.BuildZone(zones, transform.NewTransformer(seg, records))
		if !z.IsValid() {
			a.AddErrors(z.Errors())
		}
		a.zones = append(a.zones, z)
	}
	return a
}

func (a *ACO) Header() *transform.Comment { return a.header }
func (a *ACO) Zones() []transform.Zone    { return a.zones }

// Export writes the header and every zone to dir/file. Invalid zones are
// written as comment placeholders.
func (a *ACO) Export(dir, file string) ([]string, error) {
	b := output.NewBuilder()
	b.Add(a.header)
	for _, z := range a.zones {
		b.Add(z)
	}
	path := filepath.Join(dir, file)
	if err := b.Export(path); err != nil {
		return nil, err
	}
	return []string{path}, nil
}
