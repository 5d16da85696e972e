package transform

import (
	"usmtf_importer/internal/ffirn"
	"usmtf_importer/internal/geo"
	"usmtf_importer/internal/output"
	"usmtf_importer/internal/sets"
)

// lineWidth is the total width in meters of the wall drawn for a GEOLINE.
const lineWidth = 1

// PolygonalZone is built from a POLYGON, CORRIDOR or GEOLINE segment.
// Corridors and lines are drawn as walls around their centre line.
type PolygonalZone struct {
	zoneBase
	Points []geo.Point
}

func NewPolygonalZone(geometry string, t *Transformer) *PolygonalZone {
	const concept = "Polygonal Zone"
	z := &PolygonalZone{zoneBase: newZoneBase(geometry, concept, t)}

	switch geometry {
	case sets.GeometryPolygon:
		if p, ok := Extract[*sets.Polygon](t, "POLYGON", concept); ok {
			z.Points = points(p.Points)
		}
	case sets.GeometryCorridor:
		if c, ok := Extract[*sets.Corridor](t, "CORRIDOR", concept); ok {
			half := c.Width.Meters() / 2
			z.Points = geo.Wall(points(c.Points), half, half)
		}
	case sets.GeometryLine:
		if l, ok := Extract[*sets.GeoLine](t, "GEOLINE", concept); ok {
			z.Points = geo.Wall(points(l.Points), lineWidth/2.0, lineWidth/2.0)
		}
	default:
		z.AddError("Not a polygonal geometry", geometry, "POLYGON, CORRIDOR or LINE")
	}
	return z
}

func (z *PolygonalZone) OutputBlock() *output.Block {
	if !z.IsValid() {
		return z.placeholder()
	}
	b := polygonalBlock(z.Name(), z.Points, z.Band())
	z.amplify(b)
	return b
}

func points(ll []ffirn.LatLon) []geo.Point {
	out := make([]geo.Point, len(ll))
	for i, l := range ll {
		out[i] = l.Point()
	}
	return out
}
