package messages

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/output"
	"usmtf_importer/internal/sets"
	"usmtf_importer/internal/transform"
)

// TypeDefinitionsDir is the directory, relative to the export directory,
// that holds one platform type file per aircraft type.
const TypeDefinitionsDir = "type_definitions"

var macroPreamble = []string{
	"#Macro Definitions",
	"#These are placeholder variables for the platforms that did not include an actionable position.",
	"#You must fill these out with supported AFSIM position information.",
}

// ATO is an air tasking order. Every MSNACFT mission of every TASKUNIT
// becomes one or more platforms.
type ATO struct {
	*mtf.Message
	header    *transform.Comment
	missions  []*transform.AircraftMission
	platforms []transform.Platform
	macros    *transform.Macros
}

func NewATO(m *mtf.Message, records *sets.Registry) *ATO {
	a := &ATO{Message: m, header: header(m, "TASKUNIT"), macros: transform.NewMacros()}
	for _, seg := range m.Segments("TASKUNIT") {
		a.processTaskUnit(seg, records)
	}
	return a
}

// processTaskUnit builds one mission per MSNACFT of the task unit. Each
// mission sees its own records plus the TASKUNIT and the task unit's
// AMSNDAT.
func (a *ATO) processTaskUnit(seg *mtf.Segment, records *sets.Registry) {
	taskUnit, _ := seg.Find("TASKUNIT")
	missionData, hasData := seg.Find("AMSNDAT")

	for _, sub := range seg.SubSegments("MSNACFT") {
		entries := append([]mtf.Entry(nil), sub.Entries()...)
		entries = append(entries, taskUnit)
		if hasData && !sub.Has("AMSNDAT") {
			entries = append(entries, missionData)
		}

		m := transform.NewAircraftMission(transform.NewTransformer(mtf.NewSegment(a.Message, entries), records))
		a.missions = append(a.missions, m)
		if !m.IsValid() {
			a.AddError(unprocessed(entries), "", "only segments that contain MSNACFT and AMSNDAT are supported")
			a.AddErrors(m.Errors())
			continue
		}
		a.macros.Merge(m.Macros())
		a.platforms = append(a.platforms, m.Platforms()...)
	}
}

func unprocessed(entries []mtf.Entry) string {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "Unable to Process Segment:")
	for _, e := range entries {
		lines = append(lines, e.Record.String())
	}
	return strings.Join(lines, "\n")
}

func (a *ATO) Header() *transform.Comment             { return a.header }
func (a *ATO) Missions() []*transform.AircraftMission { return a.missions }
func (a *ATO) Platforms() []transform.Platform        { return a.platforms }
func (a *ATO) Macros() *transform.Macros              { return a.macros }

// TypeDefinitions returns the distinct platform types in first-use order.
func (a *ATO) TypeDefinitions() []transform.PlatformTypeDefinition {
	seen := make(map[string]bool)
	var out []transform.PlatformTypeDefinition
	for _, p := range a.platforms {
		if !seen[p.TypeDefinition.Type] {
			seen[p.TypeDefinition.Type] = true
			out = append(out, p.TypeDefinition)
		}
	}
	return out
}

// Export writes one file per platform type under dir/type_definitions,
// keeping any that already exist, and the laydown file dir/file that
// includes them.
func (a *ATO) Export(dir, file string) ([]string, error) {
	typesDir := filepath.Join(dir, TypeDefinitionsDir)
	if err := os.MkdirAll(typesDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", output.ErrExport, err)
	}

	var written []string
	includes := output.NewRoot()
	for _, def := range a.TypeDefinitions() {
		path := filepath.Join(typesDir, def.FileName())
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			b := output.NewBuilder()
			b.Add(def)
			if err := b.Export(path); err != nil {
				return written, err
			}
			written = append(written, path)
		}
		includes.SetSpaced("include_once", "./"+TypeDefinitionsDir+"/"+def.FileName())
	}

	preamble := output.NewRoot()
	for _, line := range macroPreamble {
		preamble.Flag(line)
	}

	b := output.NewBuilder()
	b.Add(a.header)
	b.AddBlock(includes, preamble)
	b.Add(a.macros)
	for _, p := range a.platforms {
		b.Add(p)
	}

	path := filepath.Join(dir, file)
	if err := b.Export(path); err != nil {
		return written, err
	}
	return append(written, path), nil
}
