package ffirn

import (
	"strconv"
	"strings"

	"usmtf_importer/internal/mtf"
)

var (
	baseReferences = []string{"GL", "MSL"}
	altitudeUnits  = []string{"AGL", "AMSL"}
)

// VerticalDimension is the vertical extent of an airspace. Altitudes are in
// hundreds of feet; a base reference (GL or MSL) stands for zero.
type VerticalDimension struct {
	Form          string `json:"form"`
	BaseReference string `json:"base_reference,omitempty"`
	MinAltitude   string `json:"min_altitude,omitempty"`
	MinUnit       string `json:"min_unit,omitempty"`
	MaxAltitude   string `json:"max_altitude"`
	MaxUnit       string `json:"max_unit"`
	Raw           string `json:"raw"`
}

// MinFeet returns the lower bound in feet.
func (v VerticalDimension) MinFeet() int {
	n, _ := strconv.Atoi(v.MinAltitude)
	return n * 100
}

// MaxFeet returns the upper bound in feet.
func (v VerticalDimension) MaxFeet() int {
	n, _ := strconv.Atoi(v.MaxAltitude)
	return n * 100
}

// altitude checks a three digit altitude followed by AGL or AMSL.
func altitude(c *scan, part string) (alt, unit string) {
	if c.failed() {
		return "", ""
	}
	sub := &scan{s: part}
	sub.length("Altitude", 6, 7)
	alt = sub.number("Altitude", 0, 3, 0, 999)
	if !sub.failed() {
		unit = sub.oneOf("Altitude unit of measure", 3, len(part), altitudeUnits)
	}
	if sub.failed() {
		c.err = sub.err
	}
	return alt, unit
}

// flightLevel checks FL followed by three digits.
func flightLevel(c *scan, part string) string {
	if c.failed() {
		return ""
	}
	sub := &scan{s: part}
	sub.length("Flight level", 5, 5)
	sub.literal("Flight level indicator", 0, 2, "FL")
	fl := sub.number("Flight level", 2, 5, 0, 999)
	if sub.failed() {
		c.err = sub.err
	}
	return fl
}

func baseReference(c *scan, part string) string {
	if c.failed() {
		return ""
	}
	for _, b := range baseReferences {
		if part == b {
			return b
		}
	}
	c.fail("Base reference is not a permitted value", part, "GL or MSL")
	return ""
}

// split cuts a vertical dimension into its lower and upper halves.
func split(c *scan) (string, string) {
	lower, upper, found := strings.Cut(c.s, "-")
	if !found && !c.failed() {
		c.fail("Vertical dimension has no separator", c.s, "<lower>-<upper>")
	}
	return lower, upper
}

func finishVertical(c *scan, v VerticalDimension) Result[VerticalDimension] {
	if !c.failed() && v.MinFeet() > v.MaxFeet() {
		c.fail("Minimum altitude is above maximum altitude", v.Raw, "lower bound first")
	}
	if c.failed() {
		return failWith[VerticalDimension](c.errors())
	}
	return ok(v)
}

// ParseBRRA accepts a base reference to an altitude, GL-100AGL.
func ParseBRRA(f mtf.Field) Result[VerticalDimension] {
	c := &scan{s: f.Content()}
	v := VerticalDimension{Form: "BRRA", Raw: f.Content()}
	c.length("Base reference to altitude", 9, 11)
	lower, upper := split(c)
	v.BaseReference = baseReference(c, lower)
	v.MaxAltitude, v.MaxUnit = altitude(c, upper)
	return finishVertical(c, v)
}

// ParseBRFL accepts a base reference to a flight level, MSL-FL230.
func ParseBRFL(f mtf.Field) Result[VerticalDimension] {
	c := &scan{s: f.Content()}
	v := VerticalDimension{Form: "BRFL", Raw: f.Content()}
	c.length("Base reference to flight level", 8, 9)
	lower, upper := split(c)
	v.BaseReference = baseReference(c, lower)
	v.MaxAltitude, v.MaxUnit = flightLevel(c, upper), "FL"
	return finishVertical(c, v)
}

// ParseRAFL accepts an altitude to a flight level, 100AGL-FL230.
func ParseRAFL(f mtf.Field) Result[VerticalDimension] {
	c := &scan{s: f.Content()}
	v := VerticalDimension{Form: "RAFL", Raw: f.Content()}
	c.length("Altitude to flight level", 12, 13)
	lower, upper := split(c)
	v.MinAltitude, v.MinUnit = altitude(c, lower)
	v.MaxAltitude, v.MaxUnit = flightLevel(c, upper), "FL"
	return finishVertical(c, v)
}

// ParseRARA accepts an altitude to an altitude, 000AGL-020AGL.
func ParseRARA(f mtf.Field) Result[VerticalDimension] {
	c := &scan{s: strings.TrimSpace(f.Content())}
	v := VerticalDimension{Form: "RARA", Raw: c.s}
	c.length("Altitude to altitude", 13, 15)
	lower, upper := split(c)
	v.MinAltitude, v.MinUnit = altitude(c, lower)
	v.MaxAltitude, v.MaxUnit = altitude(c, upper)
	return finishVertical(c, v)
}

// ParseFLFL accepts a flight level to a flight level, FL250-FL290.
func ParseFLFL(f mtf.Field) Result[VerticalDimension] {
	c := &scan{s: f.Content()}
	v := VerticalDimension{Form: "FLFL", Raw: f.Content()}
	c.length("Flight level to flight level", 11, 11)
	lower, upper := split(c)
	v.MinAltitude, v.MinUnit = flightLevel(c, lower), "FL"
	v.MaxAltitude, v.MaxUnit = flightLevel(c, upper), "FL"
	return finishVertical(c, v)
}

var verticalDimension = ByDescriptor(nil, map[string]Grammar[VerticalDimension]{
	"BRRA": ParseBRRA,
	"BRFL": ParseBRFL,
	"RAFL": ParseRAFL,
	"RARA": ParseRARA,
	"FLFL": ParseFLFL,
})

// ParseVerticalDimension selects the vertical dimension form from the field
// descriptor.
func ParseVerticalDimension(f mtf.Field) Result[VerticalDimension] { return verticalDimension(f) }
