package ffirn

import (
	"usmtf_importer/internal/geo"
	"usmtf_importer/internal/mtf"
)

// LocationKind tells which alternative a Location field matched.
type LocationKind int

const (
	LocationFreeText LocationKind = iota
	LocationCoordinate
	LocationVerifiedCoordinate
	LocationNamed
)

func (k LocationKind) String() string {
	switch k {
	case LocationCoordinate:
		return "coordinate"
	case LocationVerifiedCoordinate:
		return "verified_coordinate"
	case LocationNamed:
		return "named"
	}
	return "free_text"
}

// Location is a field that may hold a coordinate, an ICAO location
// indicator or free text.
type Location struct {
	Kind   LocationKind `json:"kind"`
	LatLon LatLon       `json:"lat_lon"`
	Name   string       `json:"name,omitempty"`
	Raw    string       `json:"raw"`
}

// Point returns the position of coordinate locations.
func (l Location) Point() (geo.Point, bool) {
	if l.Kind == LocationCoordinate || l.Kind == LocationVerifiedCoordinate {
		return l.LatLon.Point(), true
	}
	return geo.Point{}, false
}

// IsFreeForm reports whether the location carries no coordinate.
func (l Location) IsFreeForm() bool {
	_, has := l.Point()
	return !has
}

// ParseICAO accepts a four letter ICAO location indicator, ICAO:KDMA.
func ParseICAO(f mtf.Field) Result[Location] {
	if f.Descriptor() != "ICAO" {
		return fail[Location]("Location is not an ICAO indicator", f.Raw(), "ICAO:XXXX")
	}
	c := &scan{s: f.Content()}
	c.length("ICAO location indicator", 4, 4)
	if !c.failed() {
		for i := 0; i < 4; i++ {
			if ch := c.s[i]; (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
				c.fail("ICAO location indicator is malformed", c.s, "four letters or digits")
				break
			}
		}
	}
	if c.failed() {
		return failWith[Location](c.errors())
	}
	return ok(Location{Kind: LocationNamed, Name: f.Content(), Raw: f.Raw()})
}

func locationOf(kind LocationKind) func(LatLon) Location {
	return func(l LatLon) Location {
		return Location{Kind: kind, LatLon: l, Raw: l.Raw}
	}
}

var location = OneOf(
	Map(ParseLatLon, locationOf(LocationCoordinate)),
	Map(ParseVerifiedLatLon, locationOf(LocationVerifiedCoordinate)),
	ParseICAO,
	Map(ParseFreeText, func(s string) Location {
		return Location{Kind: LocationFreeText, Name: s, Raw: s}
	}),
)

// ParseLocation accepts a coordinate, a verified coordinate, an ICAO
// indicator or free text, in that order of preference.
func ParseLocation(f mtf.Field) Result[Location] { return location(f) }
