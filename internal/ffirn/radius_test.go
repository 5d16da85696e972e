package ffirn

import (
	"strconv"
	"testing"
)

func TestRadiusInMeters(t *testing.T) {
	for unit, factor := range RadiusUnits {
		for _, digits := range []int{0, 1, 40, 999} {
			raw := strconv.Itoa(digits) + unit
			r := ParseRadius(field(raw))
			if !r.OK() {
				t.Errorf("%s: unexpected errors %v", raw, r.Errors)
				continue
			}
			want := float64(digits) * factor
			if !almostEqual(r.Value.Meters(), want, 1e-9) {
				t.Errorf("%s: Meters() = %v, want %v", raw, r.Value.Meters(), want)
			}
		}
	}
}

func TestParseRadius(t *testing.T) {
	tests := []struct {
		input  string
		valid  bool
		meters float64
		value  string
		unit   string
	}{
		{input: "40NM", valid: true, meters: 74080, value: "40.000000", unit: "NM"},
		{input: "40M", valid: true, meters: 40, value: "40.000000", unit: "M"},
		{input: "40IN", valid: true, meters: 1.016, value: "40.000000", unit: "IN"},
		{input: "999.9M", valid: true, meters: 999.9, value: "999.900000", unit: "M"},
		{input: "999"},
		{input: "NM"},
		{input: "10QQ"},
		{input: "1.2.3NM"},
		{input: "12345678901NM"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := ParseRadius(field(tt.input))
			if r.OK() != tt.valid {
				t.Fatalf("OK() = %v, want %v (errors %v)", r.OK(), tt.valid, r.Errors)
			}
			if !tt.valid {
				return
			}
			if !almostEqual(r.Value.Meters(), tt.meters, 1e-9) {
				t.Errorf("Meters() = %v, want %v", r.Value.Meters(), tt.meters)
			}
			if r.Value.ValueString() != tt.value || r.Value.Unit != tt.unit {
				t.Errorf("value/unit = %q %q, want %q %q", r.Value.ValueString(), r.Value.Unit, tt.value, tt.unit)
			}
		})
	}
}

func TestParseTrackWidth(t *testing.T) {
	r := ParseTrackWidth(field("30.5NML-60.9NMR"))
	if !r.OK() {
		t.Fatalf("unexpected errors %v", r.Errors)
	}
	if r.Value.Left.ValueString() != "30.500000" || r.Value.Right.ValueString() != "60.900000" {
		t.Errorf("widths = %+v", r.Value)
	}

	for _, in := range []string{"30.5NML60.9NMR", "30.5NMR-60.9NML", "30.5NML-60.9NM", "XXL-10NMR"} {
		if r := ParseTrackWidth(field(in)); r.OK() {
			t.Errorf("%s: expected failure", in)
		}
	}
}

func TestParseBearing(t *testing.T) {
	tests := []struct {
		input   string
		valid   bool
		degrees float64
	}{
		{input: "090T", valid: true, degrees: 90},
		{input: "359.99M", valid: true, degrees: 359.99},
		{input: "000", valid: true, degrees: 0},
		{input: "360T"},
		{input: "90T"},
		{input: "090X"},
	}

	for _, tt := range tests {
		r := ParseBearing(field(tt.input))
		if r.OK() != tt.valid {
			t.Errorf("%s: OK() = %v, want %v", tt.input, r.OK(), tt.valid)
			continue
		}
		if tt.valid && !almostEqual(r.Value.Degrees, tt.degrees, 1e-9) {
			t.Errorf("%s: Degrees = %v, want %v", tt.input, r.Value.Degrees, tt.degrees)
		}
	}
}
