package transform

import (
	"log/slog"
	"math"
	"strconv"

	"usmtf_importer/internal/ffirn"
	"usmtf_importer/internal/geo"
	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/output"
	"usmtf_importer/internal/registry"
	"usmtf_importer/internal/sets"
)

// Zone is an airspace built from one ACMID segment.
type Zone interface {
	output.Exportable

	// Type is the ACMID geometry keyword the zone was built for.
	Type() string
	Name() string
	IsValid() bool
	Errors() []mtf.ValidationError
	LogErrors(logger *slog.Logger)
}

// ZoneFactory builds zones keyed by the ACMID geometry keyword.
type ZoneFactory = registry.Registry[Zone, *Transformer]

// NewZoneFactory returns a factory with every supported geometry
// registered. Unknown geometries produce an invalid placeholder zone.
func NewZoneFactory() *ZoneFactory {
	f := registry.New(func(geometry string, t *Transformer) Zone {
		return newUnsupportedZone(geometry, t)
	})
	for _, g := range []string{sets.GeometryCircle, sets.GeometryRadArc, sets.GeometryPoint} {
		f.Register(g, func(t *Transformer) Zone { return NewCircularZone(g, t) })
	}
	for _, g := range []string{sets.GeometryPolygon, sets.GeometryCorridor, sets.GeometryLine} {
		f.Register(g, func(t *Transformer) Zone { return NewPolygonalZone(g, t) })
	}
	for _, g := range []string{sets.GeometryOrbit, sets.GeometryPolyArc, sets.GeometryTrack} {
		f.Register(g, func(t *Transformer) Zone { return NewCompositeZone(g, t) })
	}
	return f
}

// BuildZone creates the zone for an ACMID segment.
func BuildZone(f *ZoneFactory, t *Transformer) Zone {
	geometry := ""
	if e, ok := t.Segment().Find("ACMID"); ok {
		if a, ok := e.Record.(*sets.ACMID); ok {
			geometry = a.Geometry
		}
	}
	return f.Create(geometry, t)
}

// Band is a vertical extent in feet.
type Band struct {
	Min int
	Max int
}

// newBand converts a vertical dimension, lifting a zero-thickness extent
// by one foot.
func newBand(v ffirn.VerticalDimension) Band {
	b := Band{Min: v.MinFeet(), Max: v.MaxFeet()}
	if b.Min == b.Max {
		b.Max = b.Min + 1
	}
	return b
}

// Circle is a circular or sector outline. Radii are in meters and angles in
// degrees clockwise from true north.
type Circle struct {
	Position  geo.Point
	MinRadius float64
	MaxRadius float64
	Start     float64
	Stop      float64
}

type zoneBase struct {
	*Transformer
	geometry string
	acmid    *sets.ACMID
	level    *sets.EffLevel
	ampn     []*sets.Ampn
}

func newZoneBase(geometry, concept string, t *Transformer) zoneBase {
	z := zoneBase{Transformer: t, geometry: geometry}
	z.acmid, _ = Extract[*sets.ACMID](t, "ACMID", concept)
	z.level, _ = Extract[*sets.EffLevel](t, "EFFLEVEL", concept)
	z.ampn = ExtractAll[*sets.Ampn](t, "AMPN")
	return z
}

func (z *zoneBase) Type() string { return z.geometry }

func (z *zoneBase) Name() string {
	if z.acmid == nil || z.acmid.Name == "" {
		return "UNNAMED"
	}
	return z.acmid.ZoneName()
}

// Band returns the zone's vertical extent from EFFLEVEL.
func (z *zoneBase) Band() Band {
	if z.level == nil {
		return Band{}
	}
	return newBand(z.level.Vertical)
}

func (z *zoneBase) amplify(b *output.Block) {
	for _, a := range z.ampn {
		if a.Text != "" {
			b.Comment(a.Text)
		}
	}
}

// placeholder is rendered instead of an invalid zone.
func (z *zoneBase) placeholder() *output.Block {
	b := output.NewRoot()
	b.Comment("Unable to convert zone " + z.Name() + " (" + z.geometry + "):")
	for _, e := range z.Errors() {
		b.Comment(e.String())
	}
	return b
}

type unsupportedZone struct {
	zoneBase
}

func newUnsupportedZone(geometry string, t *Transformer) Zone {
	z := &unsupportedZone{zoneBase: newZoneBase(geometry, "Zone", t)}
	z.AddError("Unsupported airspace geometry", geometry, "a geometry with a registered zone constructor")
	return z
}

func (z *unsupportedZone) OutputBlock() *output.Block { return z.placeholder() }

func circularBlock(name string, c Circle, band Band) *output.Block {
	b := output.NewBlock("zone", name)
	b.Flag("circular")
	b.SetSpaced("position", c.Position.String())
	b.SetSpaced("minimum_radius", meters(c.MinRadius))
	b.SetSpaced("maximum_radius", meters(c.MaxRadius))
	b.SetSpaced("minimum_altitude", feet(band.Min))
	b.SetSpaced("maximum_altitude", feet(band.Max))
	b.SetSpaced("start_angle", degrees(c.Start))
	b.SetSpaced("stop_angle", degrees(c.Stop))
	return b
}

func polygonalBlock(name string, points []geo.Point, band Band) *output.Block {
	b := output.NewBlock("zone", name)
	b.Flag("polygonal")
	b.Flag("lat_lon")
	for _, p := range points {
		b.SetSpaced("point", p.String())
	}
	b.SetSpaced("minimum_altitude", feet(band.Min))
	b.SetSpaced("maximum_altitude", feet(band.Max))
	return b
}

func meters(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " m"
}

func feet(v int) string { return strconv.Itoa(v) + " ft" }

func degrees(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64) + " deg"
}
