package ffirn

import (
	"strconv"

	"usmtf_importer/internal/geo"
	"usmtf_importer/internal/mtf"
)

var (
	latHemispheres = []string{"N", "S"}
	lonHemispheres = []string{"E", "W"}
)

// LatLon is a coordinate in minutes (LATM) or seconds (LATS) precision. The
// parts are only populated when the whole field is valid.
type LatLon struct {
	LatDegree     string `json:"lat_degree"`
	LatMinute     string `json:"lat_minute"`
	LatSecond     string `json:"lat_second,omitempty"`
	LatHemisphere string `json:"lat_hemisphere"`
	LonDegree     string `json:"lon_degree"`
	LonMinute     string `json:"lon_minute"`
	LonSecond     string `json:"lon_second,omitempty"`
	LonHemisphere string `json:"lon_hemisphere"`

	// LatCheck and LonCheck are the check digits of the verified forms.
	LatCheck string `json:"lat_check,omitempty"`
	LonCheck string `json:"lon_check,omitempty"`

	Raw string `json:"raw"`
}

// Point converts the coordinate to decimal degrees.
func (l LatLon) Point() geo.Point {
	return geo.Point{
		Lat: dmsToDecimal(l.LatDegree, l.LatMinute, l.LatSecond, l.LatHemisphere),
		Lon: dmsToDecimal(l.LonDegree, l.LonMinute, l.LonSecond, l.LonHemisphere),
	}
}

// String formats the coordinate for scenario output.
func (l LatLon) String() string { return l.Point().String() }

// dmsToDecimal converts degree, minute and second strings to decimal
// degrees. S and W result in negative values.
func dmsToDecimal(deg, min, sec, dir string) float64 {
	d, _ := strconv.Atoi(deg)
	m, _ := strconv.Atoi(min)
	s := 0
	if sec != "" {
		s, _ = strconv.Atoi(sec)
	}
	v := float64(d) + float64(m)/60.0 + float64(s)/3600.0
	if dir == "S" || dir == "W" {
		v = -v
	}
	return v
}

// latitude checks a latitude of the given precision starting at offset.
// It returns the offset following the hemisphere letter.
func latitude(c *scan, l *LatLon, at int, seconds bool) int {
	l.LatDegree = c.number("Latitude degree", at, at+2, 0, 90)
	l.LatMinute = c.number("Latitude minute", at+2, at+4, 0, 59)
	at += 4
	if seconds {
		l.LatSecond = c.number("Latitude second", at, at+2, 0, 59)
		at += 2
	}
	l.LatHemisphere = c.oneOf("Latitude hemisphere", at, at+1, latHemispheres)
	if !c.failed() && l.LatDegree == "90" && (l.LatMinute != "00" || (seconds && l.LatSecond != "00")) {
		c.fail("Latitude is beyond the pole", c.s, "at most 90 degrees")
	}
	return at + 1
}

func longitude(c *scan, l *LatLon, at int, seconds bool) int {
	l.LonDegree = c.number("Longitude degree", at, at+3, 0, 180)
	l.LonMinute = c.number("Longitude minute", at+3, at+5, 0, 59)
	at += 5
	if seconds {
		l.LonSecond = c.number("Longitude second", at, at+2, 0, 59)
		at += 2
	}
	l.LonHemisphere = c.oneOf("Longitude hemisphere", at, at+1, lonHemispheres)
	if !c.failed() && l.LonDegree == "180" && (l.LonMinute != "00" || (seconds && l.LonSecond != "00")) {
		c.fail("Longitude is beyond the antimeridian", c.s, "at most 180 degrees")
	}
	return at + 1
}

func finishLatLon(c *scan, l LatLon) Result[LatLon] {
	if c.failed() {
		return failWith[LatLon](c.errors())
	}
	return ok(l)
}

// ParseLatM accepts DDMM[NS]DDDMM[EW], e.g. 2037N05934E.
func ParseLatM(f mtf.Field) Result[LatLon] {
	c := &scan{s: f.Content()}
	l := LatLon{Raw: f.Content()}
	c.length("Lat/Lon in minutes", 11, 11)
	at := latitude(c, &l, 0, false)
	longitude(c, &l, at, false)
	return finishLatLon(c, l)
}

// ParseLatS accepts DDMMSS[NS]DDDMMSS[EW], e.g. 203632N0594256E.
func ParseLatS(f mtf.Field) Result[LatLon] {
	c := &scan{s: f.Content()}
	l := LatLon{Raw: f.Content()}
	c.length("Lat/Lon in seconds", 15, 15)
	at := latitude(c, &l, 0, true)
	longitude(c, &l, at, true)
	return finishLatLon(c, l)
}

// parseLatLonByLength picks the precision of an undescribed coordinate from
// its length, as columnar sets such as 1TRACK carry bare coordinates.
func parseLatLonByLength(f mtf.Field) Result[LatLon] {
	switch len(f.Content()) {
	case 11:
		return ParseLatM(f)
	case 15:
		return ParseLatS(f)
	}
	return fail[LatLon]("Lat/Lon has the wrong length", f.Content(), "11 (LATM) or 15 (LATS) characters")
}

var latLon = ByDescriptor(parseLatLonByLength, map[string]Grammar[LatLon]{
	"LATM": ParseLatM,
	"LATS": ParseLatS,
})

// ParseLatLon accepts a LATM or LATS coordinate, chosen by descriptor or,
// without one, by length.
func ParseLatLon(f mtf.Field) Result[LatLon] { return latLon(f) }

func verified(c *scan, l *LatLon, seconds bool) {
	at := latitude(c, l, 0, seconds)
	if !c.failed() {
		l.LatCheck = c.s[at : at+1]
		if !isDigits(l.LatCheck) {
			c.fail("Latitude check digit is not a digit", l.LatCheck, "0-9")
		}
	}
	c.literal("Verified Lat/Lon separator", at+1, at+2, "-")
	at = longitude(c, l, at+2, seconds)
	if !c.failed() {
		l.LonCheck = c.s[at : at+1]
		if !isDigits(l.LonCheck) {
			c.fail("Longitude check digit is not a digit", l.LonCheck, "0-9")
		}
	}
}

// ParseVerifiedLatM accepts DDMM[NS]d-DDDMM[EW]d.
func ParseVerifiedLatM(f mtf.Field) Result[LatLon] {
	c := &scan{s: f.Content()}
	l := LatLon{Raw: f.Content()}
	c.length("Verified Lat/Lon in minutes", 14, 14)
	verified(c, &l, false)
	return finishLatLon(c, l)
}

// ParseVerifiedLatS accepts DDMMSS[NS]d-DDDMMSS[EW]d, e.g. 351025N6-0790125W4.
func ParseVerifiedLatS(f mtf.Field) Result[LatLon] {
	c := &scan{s: f.Content()}
	l := LatLon{Raw: f.Content()}
	c.length("Verified Lat/Lon in seconds", 18, 18)
	verified(c, &l, true)
	return finishLatLon(c, l)
}

var verifiedLatLon = ByDescriptor(nil, map[string]Grammar[LatLon]{
	"VLATM": ParseVerifiedLatM,
	"VLATS": ParseVerifiedLatS,
})

// ParseVerifiedLatLon accepts a VLATM or VLATS coordinate.
func ParseVerifiedLatLon(f mtf.Field) Result[LatLon] { return verifiedLatLon(f) }
