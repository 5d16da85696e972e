package ffirn

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"usmtf_importer/internal/mtf"
)

// RadiusUnits maps each length unit to its size in meters.
var RadiusUnits = map[string]float64{
	"NM": 1852,
	"KM": 1000,
	"HM": 100,
	"M":  1,
	"CM": 0.01,
	"MM": 0.001,
	"FT": 0.3048,
	"HF": 30.48,
	"KF": 304.8,
	"IN": 0.0254,
	"YD": 0.9144,
	"SM": 1609.344,
}

const radiusUnitList = "NM, KM, HM, M, CM, MM, FT, HF, KF, IN, YD, SM"

// Radius is a length with its unit, e.g. 10NM.
type Radius struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Raw   string  `json:"raw"`
}

// Meters converts the radius to meters.
func (r Radius) Meters() float64 { return r.Value * RadiusUnits[r.Unit] }

// ValueString formats the magnitude with six decimals, e.g. "999.900000".
func (r Radius) ValueString() string { return fmt.Sprintf("%f", r.Value) }

func parseLength(name, s string) Result[Radius] {
	if len(s) < 2 || len(s) > 10 {
		return fail[Radius](name+" has the wrong length", s, "2-10 characters")
	}
	i := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	if i < 0 {
		return fail[Radius](name+" has no unit", s, "a number followed by one of "+radiusUnitList)
	}
	if i == 0 {
		return fail[Radius](name+" has no magnitude", s, "a number followed by one of "+radiusUnitList)
	}
	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return fail[Radius](name+" magnitude is not a number", s[:i], "digits with an optional decimal point")
	}
	unit := s[i:]
	if _, ok := RadiusUnits[unit]; !ok {
		return fail[Radius](name+" unit is not a permitted value", unit, "one of "+radiusUnitList)
	}
	return ok(Radius{Value: v, Unit: unit, Raw: s})
}

// ParseRadius accepts a magnitude followed by a unit from RadiusUnits.
func ParseRadius(f mtf.Field) Result[Radius] { return parseLength("Radius", f.Content()) }

// TrackWidth is the left and right extent of a track leg, 30.5NML-60.9NMR.
type TrackWidth struct {
	Left  Radius `json:"left"`
	Right Radius `json:"right"`
}

// ParseTrackWidth accepts <left>L-<right>R where each side is a radius.
func ParseTrackWidth(f mtf.Field) Result[TrackWidth] {
	s := strings.TrimSpace(f.Content())
	left, right, found := strings.Cut(s, "-")
	if !found {
		return fail[TrackWidth]("Track width has no separator", s, "<left>L-<right>R")
	}
	if !strings.HasSuffix(left, "L") {
		return fail[TrackWidth]("Track width left side is not marked L", left, "<left>L-<right>R")
	}
	if !strings.HasSuffix(right, "R") {
		return fail[TrackWidth]("Track width right side is not marked R", right, "<left>L-<right>R")
	}
	l := parseLength("Track left width", strings.TrimSuffix(left, "L"))
	r := parseLength("Track right width", strings.TrimSuffix(right, "R"))
	if !l.OK() || !r.OK() {
		return failWith[TrackWidth](append(l.Errors, r.Errors...))
	}
	return ok(TrackWidth{Left: l.Value, Right: r.Value})
}

// Bearing is a direction in degrees, true (T) or magnetic (M).
type Bearing struct {
	Degrees   float64 `json:"degrees"`
	Reference string  `json:"reference,omitempty"`
	Raw       string  `json:"raw"`
}

var bearingRe = regexp.MustCompile(`^(\d{3}(?:\.\d{1,2})?)([TM]?)$`)

// ParseBearing accepts DDD[.dd][T|M] in [0, 360).
func ParseBearing(f mtf.Field) Result[Bearing] {
	m := bearingRe.FindStringSubmatch(f.Content())
	if m == nil {
		return fail[Bearing]("Bearing is malformed", f.Content(), "three digits with optional decimals and T or M")
	}
	v, _ := strconv.ParseFloat(m[1], 64)
	if v >= 360 {
		return fail[Bearing]("Bearing is out of range", f.Content(), "000-359.99")
	}
	return ok(Bearing{Degrees: v, Reference: m[2], Raw: f.Content()})
}

var frequencyRe = regexp.MustCompile(`^\d{1,4}\.\d{1,3}$`)

// ParseFrequency accepts a radio frequency in MHz, e.g. 243.0.
var ParseFrequency = Matches("Frequency", frequencyRe, "1-4 digits, a decimal point and 1-3 digits")
