// Package sets implements the specialised USMTF records ("sets") used by the
// ACO and ATO converters. Every constructor validates its fields on
// construction and keeps whatever parsed cleanly, so an invalid record still
// exposes its valid parts.
package sets

import (
	"fmt"
	"sort"
	"strconv"

	"usmtf_importer/internal/ffirn"
	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/registry"
)

// Registry is the record type registry.
type Registry = registry.Registry[mtf.Record, *mtf.Set]

// Constructor builds a specialised record from a generic one.
type Constructor = registry.Constructor[mtf.Record, *mtf.Set]

// NewRegistry returns an empty record registry whose unregistered tags stay
// generic *mtf.Set records.
func NewRegistry() *Registry {
	return registry.New(func(_ string, s *mtf.Set) mtf.Record { return s })
}

var constructors = map[string]Constructor{
	"EXER":     NewExer,
	"OPER":     NewOper,
	"MSGID":    NewMsgID,
	"TIMEFRAM": NewTimeFrame,
	"AMPN":     NewAmpn,

	"ACMID":    NewACMID,
	"EFFLEVEL": NewEffLevel,
	"APERIOD":  NewAPeriod,
	"CIRCLE":   NewCircle,
	"RADARC":   NewRadArc,
	"APOINT":   NewAPoint,
	"POLYGON":  NewPolygon,
	"CORRIDOR": NewCorridor,
	"GEOLINE":  NewGeoLine,
	"ORBIT":    NewOrbit,
	"POLYARC":  NewPolyArc,
	"1TRACK":   NewOneTrack,

	"TASKUNIT": NewTaskUnit,
	"MSNACFT":  NewAircraftMission,
	"AMSNDAT":  NewAircraftMissionData,
	"AMSNLOC":  NewAircraftMissionLocation,
	"ARINFO":   NewAerialRefuelingInfo,
	"CONTROLA": NewAirAssetControl,
	"5REFUEL":  NewAerialRefueling,
	"9PKGDAT":  NewPackageData,
}

// Known returns every record tag this package can register, sorted.
func Known() []string {
	tags := make([]string, 0, len(constructors))
	for tag := range constructors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Register adds the constructors for tags to r. With no tags every known
// record kind is registered.
func Register(r *Registry, tags ...string) error {
	if len(tags) == 0 {
		tags = Known()
	}
	for _, tag := range tags {
		c, ok := constructors[tag]
		if !ok {
			return fmt.Errorf("register %s: unknown record type", tag)
		}
		r.Register(tag, c)
	}
	return nil
}

// requireFields records an error unless s has between lo and hi fields.
// A negative hi means no upper bound.
func requireFields(s *mtf.Set, lo, hi int) bool {
	n := s.FieldCount()
	if n >= lo && (hi < 0 || n <= hi) {
		return true
	}
	want := strconv.Itoa(lo)
	switch {
	case hi < 0:
		want = "at least " + want
	case hi != lo:
		want += "-" + strconv.Itoa(hi)
	}
	s.AddError("Wrong number of fields in "+s.Type(), strconv.Itoa(n), want+" fields")
	return false
}

// findDescriptor returns the 1-indexed position of the first field carrying
// descriptor d.
func findDescriptor(s *mtf.Set, d string) (int, bool) {
	for i, f := range s.Fields() {
		if f.HasDescriptor() && f.Descriptor() == d {
			return i + 1, true
		}
	}
	return 0, false
}

// columns splits a columnar set into its header row and data rows of width
// fields each.
func columns(s *mtf.Set, width int) (header []mtf.Field, rows [][]mtf.Field, ok bool) {
	fields := s.Fields()
	if len(fields) < 2*width || len(fields)%width != 0 {
		s.AddError("Wrong number of fields in columnar "+s.Type(), strconv.Itoa(len(fields)),
			"a header of "+strconv.Itoa(width)+" columns and complete rows of "+strconv.Itoa(width))
		return nil, nil, false
	}
	header = fields[:width]
	for i := width; i < len(fields); i += width {
		rows = append(rows, fields[i:i+width])
	}
	return header, rows, true
}

// cell validates one column of a columnar row and records failures on s.
func cell[T any](s *mtf.Set, row []mtf.Field, col int, g ffirn.Grammar[T]) T {
	r := g(row[col])
	for _, e := range r.Errors {
		s.AddError(e.Summary, e.Value, e.Hint)
	}
	return r.Value
}
