package transform

import (
	"fmt"

	"usmtf_importer/internal/geo"
	"usmtf_importer/internal/output"
	"usmtf_importer/internal/sets"
)

// Part is one child zone of a composite zone. Exactly one of Circle and
// Polygon is set.
type Part struct {
	Name    string
	Circle  *Circle
	Polygon []geo.Point
	Band    Band
}

func (p Part) block() *output.Block {
	if p.Circle != nil {
		return circularBlock(p.Name, *p.Circle, p.Band)
	}
	return polygonalBlock(p.Name, p.Polygon, p.Band)
}

// CompositeZone is built from an ORBIT, POLYARC or 1TRACK segment and is
// rendered as a zone_set of simpler zones.
type CompositeZone struct {
	zoneBase
	Parts []Part
}

func NewCompositeZone(geometry string, t *Transformer) *CompositeZone {
	const concept = "Composite Zone"
	z := &CompositeZone{zoneBase: newZoneBase(geometry, concept, t)}

	switch geometry {
	case sets.GeometryOrbit:
		if o, ok := Extract[*sets.Orbit](t, "ORBIT", concept); ok {
			z.Parts = orbitParts(z.Name(), o, z.Band())
		}
	case sets.GeometryPolyArc:
		if p, ok := Extract[*sets.PolyArc](t, "POLYARC", concept); ok {
			z.Parts = polyArcParts(z.Name(), p, z.Band())
		}
	case sets.GeometryTrack:
		if tr, ok := Extract[*sets.OneTrack](t, "1TRACK", concept); ok {
			z.Parts = trackParts(z.Name(), tr)
		}
	default:
		z.AddError("Not a composite geometry", geometry, "ORBIT, POLYARC or TRACK")
	}
	return z
}

func (z *CompositeZone) OutputBlock() *output.Block {
	if !z.IsValid() {
		return z.placeholder()
	}
	b := output.NewBlock("zone_set", z.Name())
	z.amplify(b)
	for _, p := range z.Parts {
		b.AddBlock(p.block())
	}
	return b
}

// orbitParts builds a racetrack: a semicircular cap on the outer side of
// each orbit point joined by a rectangle. Angles sweep clockwise from start
// to stop. Left and right alignments shift the racetrack by half its width
// off the line between the points.
func orbitParts(name string, o *sets.Orbit, band Band) []Part {
	a, b := o.First.Point(), o.Second.Point()
	half := o.Width.Meters() / 2
	hdg := geo.Heading(a, b)

	switch o.Alignment {
	case sets.AlignLeft:
		a, b = geo.Offset(a, hdg-90, half), geo.Offset(b, hdg-90, half)
	case sets.AlignRight:
		a, b = geo.Offset(a, hdg+90, half), geo.Offset(b, hdg+90, half)
	}
	body := geo.Rectangle(a, b, half, half)

	return []Part{
		{
			Name: name + "_CAP_1",
			Circle: &Circle{
				Position:  a,
				MaxRadius: half,
				Start:     geo.NormalizeHeading(hdg + 90),
				Stop:      geo.NormalizeHeading(hdg + 270),
			},
			Band: band,
		},
		{Name: name + "_BODY", Polygon: body[:], Band: band},
		{
			Name: name + "_CAP_2",
			Circle: &Circle{
				Position:  b,
				MaxRadius: half,
				Start:     geo.NormalizeHeading(hdg - 90),
				Stop:      geo.NormalizeHeading(hdg + 90),
			},
			Band: band,
		},
	}
}

// polyArcParts builds the sector between the two bearings and a polygon
// running from the origin to the end of the arc, through the listed points
// and back to the start of the arc.
func polyArcParts(name string, p *sets.PolyArc, band Band) []Part {
	origin := p.Origin.Point()
	r := p.Radius.Meters()
	start, stop := p.BeginBearing.Degrees, p.EndBearing.Degrees

	poly := []geo.Point{origin, geo.Offset(origin, stop, r)}
	poly = append(poly, points(p.Points)...)
	poly = append(poly, geo.Offset(origin, start, r))

	return []Part{
		{
			Name:   name + "_ARC",
			Circle: &Circle{Position: origin, MaxRadius: r, Start: start, Stop: stop},
			Band:   band,
		},
		{Name: name + "_POLYGON", Polygon: poly, Band: band},
	}
}

// trackParts builds one rectangle per leg with the leg's own widths and
// altitude band.
func trackParts(name string, t *sets.OneTrack) []Part {
	parts := make([]Part, 0, len(t.Legs))
	for _, leg := range t.Legs {
		rect := geo.Rectangle(leg.Begin.Point(), leg.End.Point(), leg.Width.Left.Meters(), leg.Width.Right.Meters())
		parts = append(parts, Part{
			Name:    fmt.Sprintf("%s_LEG_%02d", name, leg.Sequence),
			Polygon: rect[:],
			Band:    newBand(leg.Altitude),
		})
	}
	return parts
}
