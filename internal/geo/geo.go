// Package geo holds the flat-earth geometry used to turn USMTF airspace
// records into zone outlines: headings, offsets, offset rectangles and the
// stitching of corridor walls.
package geo

import (
	"fmt"
	"math"
)

const (
	NMPerLatitude = 60
	MetersPerNM   = 1852
)

// Point is a position in decimal degrees. South and west are negative.
type Point struct {
	Lat float64
	Lon float64
}

// NMPerLongitude returns the length of one degree of longitude at lat.
func NMPerLongitude(lat float64) float64 {
	return NMPerLatitude * math.Cos(radians(lat))
}

func radians(d float64) float64 { return d * math.Pi / 180 }
func degrees(r float64) float64 { return r * 180 / math.Pi }

// NormalizeHeading reduces h to [0,360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// SignedTurn returns the turn from heading cur to heading next in
// (-180,180]. Positive values are right turns.
func SignedTurn(cur, next float64) float64 {
	d := NormalizeHeading(next - cur)
	if d > 180 {
		d -= 360
	}
	return d
}

// Heading returns the true heading in degrees from one point to another,
// assuming a locally flat earth at the latitude of from.
func Heading(from, to Point) float64 {
	dx := (to.Lon - from.Lon) * NMPerLongitude(from.Lat)
	dy := (to.Lat - from.Lat) * NMPerLatitude
	// atan2(x, y) measures clockwise from north.
	return NormalizeHeading(degrees(math.Atan2(dx, dy)))
}

// Offset returns the point meters away from p along heading hdg.
func Offset(p Point, hdg, meters float64) Point {
	nm := meters / MetersPerNM
	h := radians(hdg)
	return Point{
		Lat: p.Lat + nm*math.Cos(h)/NMPerLatitude,
		Lon: p.Lon + nm*math.Sin(h)/NMPerLongitude(p.Lat),
	}
}

// Rectangle returns the corners of the band around the segment begin-end
// extending left meters to its left and right meters to its right, ordered
// begin-left, end-left, end-right, begin-right.
func Rectangle(begin, end Point, left, right float64) [4]Point {
	h := Heading(begin, end)
	return [4]Point{
		Offset(begin, h-90, left),
		Offset(end, h-90, left),
		Offset(end, h+90, right),
		Offset(begin, h+90, right),
	}
}

// LineIntersect returns the intersection of the infinite lines through
// (p1, p2) and (p3, p4), treating longitude as x and latitude as y. The
// boolean is false for parallel lines.
func LineIntersect(p1, p2, p3, p4 Point) (Point, bool) {
	d12x, d12y := p1.Lon-p2.Lon, p1.Lat-p2.Lat
	d34x, d34y := p3.Lon-p4.Lon, p3.Lat-p4.Lat
	denom := d12x*d34y - d12y*d34x
	if math.Abs(denom) < 1e-15 {
		return Point{}, false
	}
	a := p1.Lon*p2.Lat - p1.Lat*p2.Lon
	b := p3.Lon*p4.Lat - p3.Lat*p4.Lon
	return Point{
		Lon: (a*d34x - d12x*b) / denom,
		Lat: (a*d34y - d12y*b) / denom,
	}, true
}

// Wall builds the outline of a band of the given left and right widths
// around the polyline points. Consecutive leg rectangles are joined at the
// intersection of their inside edges so the outline does not cross itself.
// The result runs forward along the left side and back along the right.
func Wall(points []Point, left, right float64) []Point {
	if len(points) < 2 {
		return nil
	}

	var lhs, rhs []Point
	var prev [4]Point
	var prevHeading float64

	for i := 0; i+1 < len(points); i++ {
		rect := Rectangle(points[i], points[i+1], left, right)
		h := Heading(points[i], points[i+1])

		if i == 0 {
			lhs = append(lhs, rect[0])
			rhs = append(rhs, rect[3])
		} else {
			turn := SignedTurn(prevHeading, h)
			switch {
			case turn > 0:
				p, ok := LineIntersect(prev[2], prev[3], rect[2], rect[3])
				if !ok {
					p = prev[2]
				}
				rhs = append(rhs, p)
				lhs = append(lhs, prev[1], rect[0])
			case turn < 0:
				p, ok := LineIntersect(prev[0], prev[1], rect[0], rect[1])
				if !ok {
					p = prev[1]
				}
				lhs = append(lhs, p)
				rhs = append(rhs, prev[2], rect[3])
			default:
				lhs = append(lhs, prev[1])
				rhs = append(rhs, prev[2])
			}
		}

		if i+2 == len(points) {
			lhs = append(lhs, rect[1])
			rhs = append(rhs, rect[2])
		}
		prev, prevHeading = rect, h
	}

	out := make([]Point, 0, len(lhs)+len(rhs))
	out = append(out, lhs...)
	for i := len(rhs) - 1; i >= 0; i-- {
		out = append(out, rhs[i])
	}
	return out
}

// String formats p the way scenario files expect positions, e.g.
// "20:37:00.00n 59:34:00.00e".
func (p Point) String() string {
	return formatDMS(p.Lat, 'n', 's') + " " + formatDMS(p.Lon, 'e', 'w')
}

func formatDMS(v float64, pos, neg byte) string {
	hemi := pos
	if v < 0 {
		hemi = neg
		v = -v
	}
	// Work in hundredths of a second so rounding never yields 60 seconds.
	total := int64(math.Round(v * 360000))
	deg := total / 360000
	rem := total % 360000
	return fmt.Sprintf("%d:%02d:%02d.%02d%c", deg, rem/6000, (rem%6000)/100, rem%100, hemi)
}
