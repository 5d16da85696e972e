package transform

import (
	"usmtf_importer/internal/output"
	"usmtf_importer/internal/sets"
)

// pointRadius is the radius given to APOINT zones, which have no extent of
// their own.
const pointRadius = 1000

// CircularZone is built from a CIRCLE, RADARC or APOINT segment.
type CircularZone struct {
	zoneBase
	Circle Circle
}

func NewCircularZone(geometry string, t *Transformer) *CircularZone {
	const concept = "Circular Zone"
	z := &CircularZone{zoneBase: newZoneBase(geometry, concept, t)}
	z.Circle.Stop = 360

	switch geometry {
	case sets.GeometryCircle:
		if c, ok := Extract[*sets.Circle](t, "CIRCLE", concept); ok {
			z.Circle.Position = c.Center.Point()
			z.Circle.MaxRadius = c.Radius.Meters()
		}
	case sets.GeometryRadArc:
		if r, ok := Extract[*sets.RadArc](t, "RADARC", concept); ok {
			z.Circle = Circle{
				Position:  r.Origin.Point(),
				MinRadius: r.InnerRadius.Meters(),
				MaxRadius: r.OuterRadius.Meters(),
				Start:     r.BeginBearing.Degrees,
				Stop:      r.EndBearing.Degrees,
			}
		}
	case sets.GeometryPoint:
		if p, ok := Extract[*sets.APoint](t, "APOINT", concept); ok {
			z.Circle.Position = p.Point.Point()
			z.Circle.MaxRadius = pointRadius
		}
	default:
		z.AddError("Not a circular geometry", geometry, "CIRCLE, RADARC or POINT")
	}
	return z
}

func (z *CircularZone) OutputBlock() *output.Block {
	if !z.IsValid() {
		return z.placeholder()
	}
	b := circularBlock(z.Name(), z.Circle, z.Band())
	z.amplify(b)
	return b
}
