package sets

import (
	"strconv"

	"usmtf_importer/internal/ffirn"
	"usmtf_importer/internal/mtf"
)

// coordinates validates fields from..FieldCount as coordinates, keeping the
// valid ones in order.
func coordinates(s *mtf.Set, from int) []ffirn.LatLon {
	var pts []ffirn.LatLon
	for i := from; i <= s.FieldCount(); i++ {
		if p, ok := ffirn.Apply(s, i, ffirn.ParseLatLon); ok {
			pts = append(pts, p)
		}
	}
	return pts
}

func requirePoints(s *mtf.Set, pts []ffirn.LatLon, n int) {
	if len(pts) < n {
		s.AddError("Too few points in "+s.Type(), strconv.Itoa(len(pts)), "at least "+strconv.Itoa(n)+" points")
	}
}

// Circle is CIRCLE/<centre>/<radius>//.
type Circle struct {
	*mtf.Set
	Center ffirn.LatLon `json:"center"`
	Radius ffirn.Radius `json:"radius"`
}

func NewCircle(s *mtf.Set) mtf.Record {
	c := &Circle{Set: s}
	requireFields(s, 2, 2)
	c.Center, _ = ffirn.Apply(s, 1, ffirn.ParseLatLon)
	c.Radius, _ = ffirn.Apply(s, 2, ffirn.ParseRadius)
	return c
}

// RadArc is a ring sector:
// RADARC/<origin>/<begin bearing>/<end bearing>/<inner radius>/<outer radius>//.
type RadArc struct {
	*mtf.Set
	Origin       ffirn.LatLon  `json:"origin"`
	BeginBearing ffirn.Bearing `json:"begin_bearing"`
	EndBearing   ffirn.Bearing `json:"end_bearing"`
	InnerRadius  ffirn.Radius  `json:"inner_radius"`
	OuterRadius  ffirn.Radius  `json:"outer_radius"`
}

func NewRadArc(s *mtf.Set) mtf.Record {
	r := &RadArc{Set: s}
	requireFields(s, 5, 5)
	r.Origin, _ = ffirn.Apply(s, 1, ffirn.ParseLatLon)
	r.BeginBearing, _ = ffirn.Apply(s, 2, ffirn.ParseBearing)
	r.EndBearing, _ = ffirn.Apply(s, 3, ffirn.ParseBearing)
	r.InnerRadius, _ = ffirn.Apply(s, 4, ffirn.ParseRadius)
	r.OuterRadius, _ = ffirn.Apply(s, 5, ffirn.ParseRadius)
	if r.IsValid() && r.InnerRadius.Meters() > r.OuterRadius.Meters() {
		s.AddError("Inner radius exceeds outer radius", r.InnerRadius.Raw, "at most "+r.OuterRadius.Raw)
	}
	return r
}

// APoint is a single airspace point.
type APoint struct {
	*mtf.Set
	Point ffirn.LatLon `json:"point"`
}

func NewAPoint(s *mtf.Set) mtf.Record {
	p := &APoint{Set: s}
	requireFields(s, 1, 1)
	p.Point, _ = ffirn.Apply(s, 1, ffirn.ParseLatLon)
	return p
}

// Polygon is POLYGON/<point>/<point>/<point>...//.
type Polygon struct {
	*mtf.Set
	Points []ffirn.LatLon `json:"points"`
}

func NewPolygon(s *mtf.Set) mtf.Record {
	p := &Polygon{Set: s}
	if !requireFields(s, 3, -1) {
		return p
	}
	p.Points = coordinates(s, 1)
	requirePoints(s, p.Points, 3)
	return p
}

// Corridor is CORRIDOR/<full width>/<point>/<point>...//.
type Corridor struct {
	*mtf.Set
	Width  ffirn.Radius   `json:"width"`
	Points []ffirn.LatLon `json:"points"`
}

func NewCorridor(s *mtf.Set) mtf.Record {
	c := &Corridor{Set: s}
	if !requireFields(s, 3, -1) {
		return c
	}
	c.Width, _ = ffirn.Apply(s, 1, ffirn.ParseRadius)
	c.Points = coordinates(s, 2)
	requirePoints(s, c.Points, 2)
	return c
}

// GeoLine is GEOLINE/<point>/<point>...//.
type GeoLine struct {
	*mtf.Set
	Points []ffirn.LatLon `json:"points"`
}

func NewGeoLine(s *mtf.Set) mtf.Record {
	g := &GeoLine{Set: s}
	if !requireFields(s, 2, -1) {
		return g
	}
	g.Points = coordinates(s, 1)
	requirePoints(s, g.Points, 2)
	return g
}

// Orbit alignments relative to the line between the two orbit points.
const (
	AlignCenter = "C"
	AlignLeft   = "L"
	AlignRight  = "R"
)

var parseAlignment = ffirn.Enumerated("Orbit alignment", AlignCenter, AlignLeft, AlignRight)

// Orbit is a racetrack: ORBIT/<point 1>/<point 2>/<width>/<alignment>//.
type Orbit struct {
	*mtf.Set
	First     ffirn.LatLon `json:"first"`
	Second    ffirn.LatLon `json:"second"`
	Width     ffirn.Radius `json:"width"`
	Alignment string       `json:"alignment"`
}

func NewOrbit(s *mtf.Set) mtf.Record {
	o := &Orbit{Set: s, Alignment: AlignCenter}
	requireFields(s, 3, 4)
	o.First, _ = ffirn.Apply(s, 1, ffirn.ParseLatLon)
	o.Second, _ = ffirn.Apply(s, 2, ffirn.ParseLatLon)
	o.Width, _ = ffirn.Apply(s, 3, ffirn.ParseRadius)
	if a, ok := ffirn.ApplyOptional(s, 4, parseAlignment); ok {
		o.Alignment = a
	}
	return o
}

// PolyArc is a sector joined to a polygon:
// POLYARC/<origin>/<radius>/<begin bearing>/<end bearing>/<point>...//.
type PolyArc struct {
	*mtf.Set
	Origin       ffirn.LatLon   `json:"origin"`
	Radius       ffirn.Radius   `json:"radius"`
	BeginBearing ffirn.Bearing  `json:"begin_bearing"`
	EndBearing   ffirn.Bearing  `json:"end_bearing"`
	Points       []ffirn.LatLon `json:"points"`
}

func NewPolyArc(s *mtf.Set) mtf.Record {
	p := &PolyArc{Set: s}
	if !requireFields(s, 5, -1) {
		return p
	}
	p.Origin, _ = ffirn.Apply(s, 1, ffirn.ParseLatLon)
	p.Radius, _ = ffirn.Apply(s, 2, ffirn.ParseRadius)
	p.BeginBearing, _ = ffirn.Apply(s, 3, ffirn.ParseBearing)
	p.EndBearing, _ = ffirn.Apply(s, 4, ffirn.ParseBearing)
	p.Points = coordinates(s, 5)
	requirePoints(s, p.Points, 1)
	return p
}
