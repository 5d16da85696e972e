package transform

import (
	"strings"
	"testing"

	"usmtf_importer/internal/geo"
	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/sets"
)

func newRecords(t *testing.T, tags ...string) *sets.Registry {
	t.Helper()
	r := sets.NewRegistry()
	if err := sets.Register(r, tags...); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return r
}

func rec(r *sets.Registry, tag string, raws ...string) mtf.Record {
	fields := make([]mtf.Field, len(raws))
	for i, raw := range raws {
		fields[i] = mtf.NewField(raw)
	}
	return r.Create(tag, mtf.NewSet(tag, fields))
}

func transformer(t *testing.T, r *sets.Registry, recs ...mtf.Record) *Transformer {
	t.Helper()
	msg := mtf.NewMessage("ACO", recs)
	seg, err := msg.Segment(0, msg.NumberOfRecords()-1)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	return NewTransformer(seg, r)
}

func hasError(errs []mtf.ValidationError, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Summary, substr) {
			return true
		}
	}
	return false
}

func TestExtract(t *testing.T) {
	r := newRecords(t)
	circle := rec(r, "CIRCLE", "LATM:2037N05934E", "10NM")
	badCircle := rec(r, "CIRCLE", "LATM:2037N05934E", "10QQ")

	tr := transformer(t, r, circle)
	c, ok := Extract[*sets.Circle](tr, "CIRCLE", "Zone")
	if !ok || c == nil || !tr.IsValid() {
		t.Fatalf("Extract() = %v, %v, errors %v", c, ok, tr.Errors())
	}

	tr = transformer(t, r, circle)
	if _, ok := Extract[*sets.APoint](tr, "APOINT", "Zone"); ok || !hasError(tr.Errors(), "Missing APOINT") {
		t.Errorf("missing required record: ok=%v errors %v", ok, tr.Errors())
	}

	tr = transformer(t, r, circle)
	if _, ok := Extract[*sets.APoint](tr, "APOINT", "Zone", Optional()); ok || !tr.IsValid() {
		t.Errorf("missing optional record: ok=%v errors %v", ok, tr.Errors())
	}

	tr = transformer(t, r, badCircle)
	if c, ok := Extract[*sets.Circle](tr, "CIRCLE", "Zone"); ok || c == nil || !hasError(tr.Errors(), "CIRCLE in Zone") {
		t.Errorf("invalid record: ok=%v errors %v", ok, tr.Errors())
	}

	tr = transformer(t, r, badCircle)
	if _, ok := Extract[*sets.Circle](tr, "CIRCLE", "Zone", SkipValidation()); ok || !tr.IsValid() {
		t.Errorf("skipped validation: ok=%v errors %v", ok, tr.Errors())
	}

	bare := newRecords(t, "ACMID")
	tr = transformer(t, bare, rec(bare, "CIRCLE", "LATM:2037N05934E", "10NM"))
	if _, ok := Extract[*sets.Circle](tr, "CIRCLE", "Zone"); ok ||
		!hasError(tr.Errors(), "to create a Zone you must register a record handling CIRCLE") {
		t.Errorf("unregistered record: ok=%v errors %v", ok, tr.Errors())
	}
}

func TestExtractAll(t *testing.T) {
	r := newRecords(t)
	tr := transformer(t, r,
		rec(r, "AMPN", "FIRST"),
		rec(r, "CIRCLE", "LATM:2037N05934E", "10NM"),
		rec(r, "AMPN", "SECOND"))
	got := ExtractAll[*sets.Ampn](tr, "AMPN")
	if len(got) != 2 || got[0].Text != "FIRST" || got[1].Text != "SECOND" {
		t.Errorf("ExtractAll() = %v", got)
	}
}

func zone(t *testing.T, recs func(r *sets.Registry) []mtf.Record) Zone {
	t.Helper()
	r := newRecords(t)
	return BuildZone(NewZoneFactory(), transformer(t, r, recs(r)...))
}

func TestCircularZones(t *testing.T) {
	tests := []struct {
		name  string
		recs  func(r *sets.Registry) []mtf.Record
		lines []string
	}{
		{
			name: "circle",
			recs: func(r *sets.Registry) []mtf.Record {
				return []mtf.Record{
					rec(r, "ACMID", "ACM:ROZ", "NAME:ROZ 1", "CIRCLE", "USE:ROZ"),
					rec(r, "CIRCLE", "LATM:2037N05934E", "10NM"),
					rec(r, "EFFLEVEL", "FLFL:FL250-FL290"),
					rec(r, "AMPN", "CAUTION"),
				}
			},
			lines: []string{
				"zone ROZ_1",
				"   circular",
				"   position 20:37:00.00n 59:34:00.00e",
				"   minimum_radius 0 m",
				"   maximum_radius 18520 m",
				"   minimum_altitude 25000 ft",
				"   maximum_altitude 29000 ft",
				"   start_angle 0 deg",
				"   stop_angle 360 deg",
				"   # CAUTION",
				"end_zone",
			},
		},
		{
			name: "point",
			recs: func(r *sets.Registry) []mtf.Record {
				return []mtf.Record{
					rec(r, "ACMID", "ACM:ROZ", "NAME:ROZ 2", "POINT"),
					rec(r, "APOINT", "LATS:203632N0594256E"),
					rec(r, "EFFLEVEL", "BRFL:MSL-FL230"),
				}
			},
			lines: []string{
				"zone ROZ_2",
				"   circular",
				"   position 20:36:32.00n 59:42:56.00e",
				"   minimum_radius 0 m",
				"   maximum_radius 1000 m",
				"   minimum_altitude 0 ft",
				"   maximum_altitude 23000 ft",
				"   start_angle 0 deg",
				"   stop_angle 360 deg",
				"end_zone",
			},
		},
		{
			name: "radarc",
			recs: func(r *sets.Registry) []mtf.Record {
				return []mtf.Record{
					rec(r, "ACMID", "ACM:ROZ", "NAME:ARC", "RADARC"),
					rec(r, "RADARC", "LATM:2037N05934E", "090", "180.5", "5NM", "10NM"),
					rec(r, "EFFLEVEL", "RAFL:100AGL-FL230"),
				}
			},
			lines: []string{
				"zone ARC",
				"   circular",
				"   position 20:37:00.00n 59:34:00.00e",
				"   minimum_radius 9260 m",
				"   maximum_radius 18520 m",
				"   minimum_altitude 10000 ft",
				"   maximum_altitude 23000 ft",
				"   start_angle 90 deg",
				"   stop_angle 180.5 deg",
				"end_zone",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := zone(t, tt.recs)
			if !z.IsValid() {
				t.Fatalf("unexpected errors: %v", z.Errors())
			}
			want := strings.Join(tt.lines, "\n") + "\n"
			if got := z.OutputBlock().String(); got != want {
				t.Errorf("got\n%s\nwant\n%s", got, want)
			}
		})
	}
}

func TestPolygonalZoneEqualAltitudes(t *testing.T) {
	z := zone(t, func(r *sets.Registry) []mtf.Record {
		return []mtf.Record{
			rec(r, "ACMID", "ACM:ROZ", "NAME:BOX", "POLYGON"),
			rec(r, "POLYGON", "2037N05934E", "2037N05935E", "2038N05935E"),
			rec(r, "EFFLEVEL", "RARA:100AGL-100AGL"),
		}
	})
	if !z.IsValid() {
		t.Fatalf("unexpected errors: %v", z.Errors())
	}
	out := z.OutputBlock().String()
	if !strings.Contains(out, "   minimum_altitude 10000 ft\n   maximum_altitude 10001 ft\n") {
		t.Errorf("altitudes not separated:\n%s", out)
	}
	if strings.Count(out, "   point ") != 3 || !strings.Contains(out, "   polygonal\n   lat_lon\n") {
		t.Errorf("unexpected polygon:\n%s", out)
	}
}

func TestCorridorAndLineWalls(t *testing.T) {
	centre := []geo.Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: -1, Lon: 1}}

	corridor := zone(t, func(r *sets.Registry) []mtf.Record {
		return []mtf.Record{
			rec(r, "ACMID", "ACM:AAR", "NAME:LANE", "CORRIDOR"),
			rec(r, "CORRIDOR", "2NM", "0000N00000E", "0000N00100E", "0100S00100E"),
			rec(r, "EFFLEVEL", "FLFL:FL250-FL290"),
		}
	}).(*PolygonalZone)
	if !corridor.IsValid() {
		t.Fatalf("unexpected errors: %v", corridor.Errors())
	}
	want := geo.Wall(centre, geo.MetersPerNM, geo.MetersPerNM)
	if len(corridor.Points) != len(want) {
		t.Fatalf("got %d points, want %d", len(corridor.Points), len(want))
	}
	for i := range want {
		if corridor.Points[i] != want[i] {
			t.Errorf("point %d = %v, want %v", i, corridor.Points[i], want[i])
		}
	}

	line := zone(t, func(r *sets.Registry) []mtf.Record {
		return []mtf.Record{
			rec(r, "ACMID", "ACM:FSCL", "NAME:LINE", "LINE"),
			rec(r, "GEOLINE", "0000N00000E", "0000N00100E"),
			rec(r, "EFFLEVEL", "FLFL:FL250-FL290"),
		}
	}).(*PolygonalZone)
	want = geo.Wall(centre[:2], 0.5, 0.5)
	if len(line.Points) != len(want) || line.Points[0] != want[0] {
		t.Errorf("line wall = %v, want %v", line.Points, want)
	}
}

func TestCompositeZones(t *testing.T) {
	orbit := zone(t, func(r *sets.Registry) []mtf.Record {
		return []mtf.Record{
			rec(r, "ACMID", "ACM:ORBIT", "NAME:TRACK 7", "ORBIT"),
			rec(r, "ORBIT", "0000N00000E", "0000N00100E", "10NM", "C"),
			rec(r, "EFFLEVEL", "FLFL:FL250-FL290"),
		}
	}).(*CompositeZone)
	if !orbit.IsValid() || len(orbit.Parts) != 3 {
		t.Fatalf("orbit: %d parts, errors %v", len(orbit.Parts), orbit.Errors())
	}
	if orbit.Parts[0].Circle == nil || orbit.Parts[0].Circle.MaxRadius != 5*geo.MetersPerNM {
		t.Errorf("cap = %+v", orbit.Parts[0].Circle)
	}
	if orbit.Parts[0].Circle.Start != 180 || orbit.Parts[0].Circle.Stop != 0 {
		t.Errorf("western cap sweeps %v to %v", orbit.Parts[0].Circle.Start, orbit.Parts[0].Circle.Stop)
	}
	out := orbit.OutputBlock().String()
	for _, want := range []string{"zone_set TRACK_7\n", "\n   zone TRACK_7_CAP_1\n", "\n   zone TRACK_7_BODY\n", "\n   zone TRACK_7_CAP_2\n", "   end_zone\nend_zone_set\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("orbit output missing %q:\n%s", want, out)
		}
	}

	track := zone(t, func(r *sets.Registry) []mtf.Record {
		return []mtf.Record{
			rec(r, "ACMID", "ACM:AAR", "NAME:TRK", "TRACK"),
			rec(r, "1TRACK",
				"LEG", "LEG-BEGIN", "LEG-END", "LEG-WIDTH", "MINALT-MAXALT",
				"01", "152345N0505657E", "192646N0531226E", "30.5NML-60.9NMR", "050AMSL-100AMSL",
				"02", "192646N0531226E", "202646N0541226E", "10NML-10NMR", "100AMSL-100AMSL"),
			rec(r, "EFFLEVEL", "FLFL:FL250-FL290"),
		}
	}).(*CompositeZone)
	if !track.IsValid() || len(track.Parts) != 2 {
		t.Fatalf("track: %d parts, errors %v", len(track.Parts), track.Errors())
	}
	if track.Parts[0].Name != "TRK_LEG_01" || track.Parts[0].Band != (Band{Min: 5000, Max: 10000}) {
		t.Errorf("leg 1 = %s %+v", track.Parts[0].Name, track.Parts[0].Band)
	}
	if track.Parts[1].Band != (Band{Min: 10000, Max: 10001}) {
		t.Errorf("leg 2 band = %+v", track.Parts[1].Band)
	}

	arc := zone(t, func(r *sets.Registry) []mtf.Record {
		return []mtf.Record{
			rec(r, "ACMID", "ACM:ROZ", "NAME:FAN", "POLYARC"),
			rec(r, "POLYARC", "0000N00000E", "10NM", "000", "090", "0030S00030E"),
			rec(r, "EFFLEVEL", "FLFL:FL250-FL290"),
		}
	}).(*CompositeZone)
	if !arc.IsValid() || len(arc.Parts) != 2 || len(arc.Parts[1].Polygon) != 4 {
		t.Fatalf("polyarc = %+v, errors %v", arc.Parts, arc.Errors())
	}
}

func TestInvalidZonePlaceholder(t *testing.T) {
	z := zone(t, func(r *sets.Registry) []mtf.Record {
		return []mtf.Record{
			rec(r, "ACMID", "ACM:ROZ", "NAME:ROZ 1", "CIRCLE"),
			rec(r, "CIRCLE", "LATM:2037N05934E", "10QQ"),
		}
	})
	if z.IsValid() {
		t.Fatal("expected an invalid zone")
	}
	if !hasError(z.Errors(), "Missing EFFLEVEL") || !hasError(z.Errors(), "CIRCLE in Circular Zone") {
		t.Errorf("errors = %v", z.Errors())
	}
	out := z.OutputBlock().String()
	if !strings.HasPrefix(out, "# Unable to convert zone ROZ_1 (CIRCLE):\n") || strings.Contains(out, "end_zone") {
		t.Errorf("placeholder =\n%s", out)
	}
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if !strings.HasPrefix(line, "# ") {
			t.Errorf("placeholder line %q is not a comment", line)
		}
	}
}

func TestUnsupportedGeometry(t *testing.T) {
	z := zone(t, func(r *sets.Registry) []mtf.Record {
		return []mtf.Record{
			rec(r, "ACMID", "ACM:ROZ", "NAME:BLOB", "ELLIPSE"),
			rec(r, "EFFLEVEL", "FLFL:FL250-FL290"),
		}
	})
	if z.IsValid() || z.Type() != "" || z.Name() != "BLOB" {
		t.Errorf("zone %T %q %q valid=%v", z, z.Type(), z.Name(), z.IsValid())
	}
	if !hasError(z.Errors(), "Unsupported airspace geometry") {
		t.Errorf("errors = %v", z.Errors())
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	z := zone(t, func(r *sets.Registry) []mtf.Record {
		return []mtf.Record{
			rec(r, "ACMID", "ACM:ROZ", "NAME:ROZ 1", "CIRCLE"),
			rec(r, "CIRCLE", "LATM:2037N05934E", "10NM"),
			rec(r, "EFFLEVEL", "FLFL:FL250-FL290"),
		}
	})
	if a, b := z.OutputBlock().String(), z.OutputBlock().String(); a != b {
		t.Errorf("renders differ:\n%s\n%s", a, b)
	}
}
