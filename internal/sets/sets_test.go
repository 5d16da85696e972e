package sets

import (
	"reflect"
	"testing"

	"usmtf_importer/internal/ffirn"
	"usmtf_importer/internal/mtf"
	"usmtf_importer/internal/registry"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	if err := Register(r); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return r
}

func record(r *Registry, tag string, raws ...string) mtf.Record {
	fields := make([]mtf.Field, len(raws))
	for i, raw := range raws {
		fields[i] = mtf.NewField(raw)
	}
	return r.Create(tag, mtf.NewSet(tag, fields))
}

func cast[V mtf.Record](t *testing.T, r *Registry, rec mtf.Record) V {
	t.Helper()
	v, ok := registry.CastIfRegistered[V](r, rec)
	if !ok {
		t.Fatalf("%s was not built by its registered constructor (%T)", rec.Type(), rec)
	}
	return v
}

func TestRegister(t *testing.T) {
	r := newRegistry(t)
	if !reflect.DeepEqual(r.Tags(), Known()) {
		t.Errorf("Tags() = %v, want %v", r.Tags(), Known())
	}

	partial := NewRegistry()
	if err := Register(partial, "CIRCLE", "ACMID"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := partial.Tags(); !reflect.DeepEqual(got, []string{"ACMID", "CIRCLE"}) {
		t.Errorf("Tags() = %v", got)
	}
	if err := Register(partial, "NOPE"); err == nil {
		t.Error("expected an error for an unknown record type")
	}
}

func TestUnregisteredTagStaysGeneric(t *testing.T) {
	r := NewRegistry()
	rec := record(r, "CIRCLE", "LATM:2037N05934E", "10NM")
	if _, ok := rec.(*mtf.Set); !ok {
		t.Fatalf("got %T, want *mtf.Set", rec)
	}
	if rec.Registered() {
		t.Error("fallback record reports Registered()")
	}
}

func TestCircle(t *testing.T) {
	r := newRegistry(t)

	c := cast[*Circle](t, r, record(r, "CIRCLE", "LATM:2037N05934E", "10NM"))
	if !c.IsValid() {
		t.Fatalf("unexpected errors: %v", c.Errors())
	}
	if c.Center.LatDegree != "20" || c.Radius.Meters() != 18520 {
		t.Errorf("got centre %+v radius %v m", c.Center, c.Radius.Meters())
	}

	// The valid centre survives an invalid radius.
	bad := cast[*Circle](t, r, record(r, "CIRCLE", "LATM:2037N05934E", "10QQ"))
	if bad.IsValid() {
		t.Fatal("expected an invalid circle")
	}
	if bad.Center.LonDegree != "059" {
		t.Errorf("Center.LonDegree = %q, want 059", bad.Center.LonDegree)
	}
}

func TestACMID(t *testing.T) {
	r := newRegistry(t)

	a := cast[*ACMID](t, r, record(r, "ACMID", "ACM:ROZ", "NAME:ROZ 1", "CIRCLE", "USE:ROZ"))
	if !a.IsValid() {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	if a.ZoneName() != "ROZ_1" || a.Geometry != GeometryCircle || a.Usage != "ROZ" {
		t.Errorf("got %+v", a)
	}

	bad := cast[*ACMID](t, r, record(r, "ACMID", "ACM:ROZ", "NAME:ROZ 1", "ELLIPSE"))
	if bad.IsValid() {
		t.Error("expected an unknown geometry to be invalid")
	}
}

func TestAPeriod(t *testing.T) {
	r := newRegistry(t)

	tests := []struct {
		name   string
		fields []string
		valid  bool
	}{
		{"discrete", []string{"DISCRETE", "141325ZFEB", "UFN"}, true},
		{"discrete ignores interval fields", []string{"DISCRETE", "141325ZFEB", "UFN", "NEVER", "FOREVER"}, true},
		{"interval", []string{"INTERVAL", "141325ZFEB", "UFN", "WEEKLY", "4WK"}, true},
		{"interval needs frequency", []string{"INTERVAL", "141325ZFEB", "UFN"}, false},
		{"bad mode", []string{"SOMETIMES", "141325ZFEB", "UFN"}, false},
		{"bad begin", []string{"DISCRETE", "UFP", "UFN"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := cast[*APeriod](t, r, record(r, "APERIOD", tt.fields...))
			if a.IsValid() != tt.valid {
				t.Errorf("IsValid() = %v, want %v (errors %v)", a.IsValid(), tt.valid, a.Errors())
			}
		})
	}

	// Valid fields stay readable on an invalid record.
	a := cast[*APeriod](t, r, record(r, "APERIOD", "INTERVAL", "110325ZNOV1000", "UFN", "WEEKLY", "1WEEK"))
	if a.IsValid() {
		t.Fatal("expected an invalid period")
	}
	if a.Begin.Day != "11" || a.End.Qualifier != "UFN" || a.Frequency != "WEEKLY" {
		t.Errorf("got begin %+v end %+v frequency %q", a.Begin, a.End, a.Frequency)
	}
}

func TestPolygonalShapes(t *testing.T) {
	r := newRegistry(t)

	tests := []struct {
		name   string
		tag    string
		fields []string
		valid  bool
	}{
		{"polygon", "POLYGON", []string{"2037N05934E", "2037N05935E", "2038N05935E"}, true},
		{"polygon too small", "POLYGON", []string{"2037N05934E", "2037N05935E"}, false},
		{"polygon bad point", "POLYGON", []string{"2037N05934E", "2037N05935E", "9137N05935E"}, false},
		{"corridor", "CORRIDOR", []string{"10NM", "2037N05934E", "2037N05935E"}, true},
		{"corridor bad width", "CORRIDOR", []string{"10", "2037N05934E", "2037N05935E"}, false},
		{"geoline", "GEOLINE", []string{"2037N05934E", "2037N05935E"}, true},
		{"geoline single point", "GEOLINE", []string{"2037N05934E"}, false},
		{"orbit", "ORBIT", []string{"2037N05934E", "2137N05934E", "20NM", "R"}, true},
		{"orbit default alignment", "ORBIT", []string{"2037N05934E", "2137N05934E", "20NM"}, true},
		{"orbit bad alignment", "ORBIT", []string{"2037N05934E", "2137N05934E", "20NM", "X"}, false},
		{"polyarc", "POLYARC", []string{"2037N05934E", "10NM", "090", "180", "2030N05920E"}, true},
		{"polyarc bad bearing", "POLYARC", []string{"2037N05934E", "10NM", "360", "180", "2030N05920E"}, false},
		{"radarc", "RADARC", []string{"2037N05934E", "090", "180", "5NM", "10NM"}, true},
		{"radarc inverted radii", "RADARC", []string{"2037N05934E", "090", "180", "10NM", "5NM"}, false},
		{"apoint", "APOINT", []string{"LATS:203632N0594256E"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(r, tt.tag, tt.fields...)
			if !rec.Registered() {
				t.Fatalf("%s was not registered", tt.tag)
			}
			if rec.IsValid() != tt.valid {
				t.Errorf("IsValid() = %v, want %v (errors %v)", rec.IsValid(), tt.valid, rec.Errors())
			}
		})
	}

	o := cast[*Orbit](t, r, record(r, "ORBIT", "2037N05934E", "2137N05934E", "20NM"))
	if o.Alignment != AlignCenter {
		t.Errorf("Alignment = %q, want %q", o.Alignment, AlignCenter)
	}
}

func trackFields(rows ...[]string) []string {
	fields := append([]string(nil), trackHeader...)
	for _, row := range rows {
		fields = append(fields, row...)
	}
	return fields
}

func TestOneTrack(t *testing.T) {
	r := newRegistry(t)
	leg1 := []string{"01", "152345N0505657E", "192646N0531226E", "30.5NML-60.9NMR", "050AMSL-100AMSL"}
	leg2 := []string{"02", "192646N0531226E", "202646N0541226E", "10NML-10NMR", "050AMSL-100AMSL"}

	tr := cast[*OneTrack](t, r, record(r, "1TRACK", trackFields(leg1, leg2)...))
	if !tr.IsValid() {
		t.Fatalf("unexpected errors: %v", tr.Errors())
	}
	if len(tr.Legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(tr.Legs))
	}
	leg := tr.Legs[0]
	if leg.Begin.Raw != "152345N0505657E" {
		t.Errorf("Begin = %q", leg.Begin.Raw)
	}
	if leg.Width.Left.ValueString() != "30.500000" || leg.Width.Right.ValueString() != "60.900000" {
		t.Errorf("Width = %s/%s", leg.Width.Left.ValueString(), leg.Width.Right.ValueString())
	}
	if leg.Altitude.MinFeet() != 5000 || leg.Altitude.MaxFeet() != 10000 {
		t.Errorf("Altitude = %d-%d ft", leg.Altitude.MinFeet(), leg.Altitude.MaxFeet())
	}

	invalid := map[string][]string{
		"legs out of sequence": trackFields(leg1, append([]string{"03"}, leg2[1:]...)),
		"incomplete row":       trackFields(leg1, leg2[:4]),
		"header only":          trackFields(),
		"bad width":            trackFields(append(append([]string(nil), leg1[:3]...), "30.5NMR-60.9NML", leg1[4])),
	}
	for name, fields := range invalid {
		t.Run(name, func(t *testing.T) {
			if rec := record(r, "1TRACK", fields...); rec.IsValid() {
				t.Error("expected an invalid track")
			}
		})
	}
}

var arinfo = []string{
	"EXXON 11", "AR123HA", "B:37700", "NAME:BUICK", "170", "ARCT:141325Z",
	"NDAR:141400ZFEB", "KLBS:15.0", "PFREQ:243.0", "SFREQ:121.5", "EN11", "ACTYP:KC135R",
	"BOM", "4", "TNKRS:1,3", "16-72", "4-3-1",
}

func withField(fields []string, i int, v string) []string {
	out := append([]string(nil), fields...)
	out[i-1] = v
	return out
}

func TestAerialRefuelingInfo(t *testing.T) {
	r := newRegistry(t)

	a := cast[*AerialRefuelingInfo](t, r, record(r, "ARINFO", arinfo...))
	if !a.IsValid() {
		t.Fatalf("unexpected errors: %v", a.Errors())
	}
	checks := []struct{ name, got, want string }{
		{"callsign", a.Callsign, "EXXON 11"},
		{"mission number", a.MissionNumber, "AR123HA"},
		{"iff", a.IffSifMode, "37700"},
		{"control point", a.ControlPoint.Name, "BUICK"},
		{"refuel time", a.RefuelTime.Raw, "141325Z"},
		{"refuel end", a.RefuelEndTime.Raw, "141400ZFEB"},
		{"fuel", a.OffloadFuel, "15.0"},
		{"primary", a.PrimaryFrequency, "243.0"},
		{"secondary", a.SecondaryFrequency, "121.5"},
		{"link16", a.Link16Callsign, "EN11"},
		{"aircraft type", a.AircraftType, "KC135R"},
		{"refuel system", a.RefuelSystem, "BOM"},
		{"cell sequence", a.CellSequence, "1,3"},
		{"tacan", a.TacanChannel, "16-72"},
		{"beacon", a.Beacon, "4-3-1"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	if a.AltitudeFeet() != 17000 || a.AircraftInCell != 4 {
		t.Errorf("altitude %d ft, %d aircraft in cell", a.AltitudeFeet(), a.AircraftInCell)
	}
	if a.ControlPoint.Kind != ffirn.LocationFreeText {
		t.Errorf("control point kind = %v", a.ControlPoint.Kind)
	}

	nulls := append(append([]string(nil), arinfo[:6]...), "-", "KLBS:15.0", "PFREQ:243.0",
		"-", "-", "-", "-", "-", "-", "-", "-")
	n := cast[*AerialRefuelingInfo](t, r, record(r, "ARINFO", nulls...))
	if !n.IsValid() {
		t.Fatalf("null fields: unexpected errors: %v", n.Errors())
	}
	if n.RefuelSystem != "" || n.AircraftInCell != 0 || n.Link16Callsign != "-" || n.SecondaryFrequency != "" {
		t.Errorf("null fields: got %+v", n)
	}

	invalid := map[string][]string{
		"altitude":      withField(arinfo, 5, "1000"),
		"fuel":          withField(arinfo, 8, "KLBS:10000.0"),
		"refuel system": withField(arinfo, 13, "NOPE"),
		"cell count":    withField(arinfo, 14, "2000"),
		"tacan":         withField(arinfo, 16, "16-1000"),
		"beacon":        withField(arinfo, 17, "4-7-1"),
	}
	for name, fields := range invalid {
		t.Run(name, func(t *testing.T) {
			if rec := record(r, "ARINFO", fields...); rec.IsValid() {
				t.Error("expected an invalid ARINFO")
			}
		})
	}
}

func TestMissionSets(t *testing.T) {
	r := newRegistry(t)

	tu := cast[*TaskUnit](t, r, record(r, "TASKUNIT", "4 FW", "ICAO:KSEA", "-"))
	if !tu.IsValid() || tu.UnitDesignator != "4 FW" || tu.Location.Kind != ffirn.LocationNamed {
		t.Errorf("TASKUNIT = %+v, errors %v", tu, tu.Errors())
	}
	noLoc := cast[*TaskUnit](t, r, record(r, "TASKUNIT", "4 FW", "-"))
	if noLoc.Location.Raw != "" {
		t.Errorf("null location = %+v", noLoc.Location)
	}

	m := cast[*AircraftMission](t, r, record(r, "MSNACFT", "2", "ACTYP:F15E", "DUDE 01"))
	if !m.IsValid() || m.NumberOfAircraft != 2 || m.AircraftType != "F15E" || m.Callsign != "DUDE 01" {
		t.Errorf("MSNACFT = %+v, errors %v", m, m.Errors())
	}
	if bad := record(r, "MSNACFT", "0", "ACTYP:F15E", "DUDE 01"); bad.IsValid() {
		t.Error("expected zero aircraft to be invalid")
	}

	d := cast[*AircraftMissionData](t, r, record(r, "AMSNDAT", "-", "1001", "-", "-", "-", "CAS", "-", "-",
		"DEPLOC:LATM:2037N05934E", "DEPTIME:141200Z", "ARRLOC:KSEA"))
	if !d.IsValid() {
		t.Fatalf("AMSNDAT errors: %v", d.Errors())
	}
	if _, ok := d.Departure.Point(); !ok || d.MissionNumber != "1001" {
		t.Errorf("AMSNDAT = %+v", d)
	}
	if d.Arrival.Kind != ffirn.LocationFreeText || d.Arrival.Name != "KSEA" {
		t.Errorf("Arrival = %+v", d.Arrival)
	}

	c := cast[*AirAssetControl](t, r, record(r, "CONTROLA", "AWACS", "DARKSTAR", "PFREQ:243.0", "SFREQ:121.5", "2037N05934E"))
	if !c.IsValid() || c.ReportInPoint.Kind != ffirn.LocationCoordinate {
		t.Errorf("CONTROLA = %+v, errors %v", c, c.Errors())
	}

	l := cast[*AircraftMissionLocation](t, r, record(r, "AMSNLOC", "141325ZFEB", "141500ZFEB", "2037N05934E"))
	if !l.IsValid() || l.Location.Kind != ffirn.LocationCoordinate {
		t.Errorf("AMSNLOC = %+v, errors %v", l, l.Errors())
	}
}

func TestColumnarMissionSets(t *testing.T) {
	r := newRegistry(t)

	ref := cast[*AerialRefueling](t, r, record(r, "5REFUEL",
		"RCVR", "MSN", "NUM", "TYPE",
		"VIPER 11", "2001", "2", "F16C",
		"HAWG 21", "2002", "1", "A10C"))
	if !ref.IsValid() {
		t.Fatalf("5REFUEL errors: %v", ref.Errors())
	}
	want := []RefuelInstruction{
		{ReceiverCallsign: "VIPER 11", MissionNumber: "2001", Aircraft: 2, AircraftType: "F16C"},
		{ReceiverCallsign: "HAWG 21", MissionNumber: "2002", Aircraft: 1, AircraftType: "A10C"},
	}
	if !reflect.DeepEqual(ref.Instructions, want) {
		t.Errorf("Instructions = %+v", ref.Instructions)
	}

	pkg := cast[*PackageData](t, r, record(r, "9PKGDAT",
		"PKG", "UNIT", "MSN", "TYPE", "NUM", "ACTYP", "CALLSIGN",
		"A1", "4 FW", "3001", "OCA", "4", "F15E", "RAGE 31"))
	if !pkg.IsValid() || len(pkg.Units) != 1 || pkg.Units[0].Callsign != "RAGE 31" || pkg.Units[0].Aircraft != 4 {
		t.Errorf("9PKGDAT = %+v, errors %v", pkg.Units, pkg.Errors())
	}

	if bad := record(r, "9PKGDAT", "PKG", "UNIT", "MSN", "TYPE", "NUM", "ACTYP", "CALLSIGN", "A1"); bad.IsValid() {
		t.Error("expected an incomplete row to be invalid")
	}
}

func TestHeaderSets(t *testing.T) {
	r := newRegistry(t)

	id := cast[*MsgID](t, r, record(r, "MSGID", "ACO", "CAOC", "1", "FEB"))
	if !id.IsValid() || id.MessageType != "ACO" || id.Month != "FEB" {
		t.Errorf("MSGID = %+v", id)
	}
	tf := cast[*TimeFrame](t, r, record(r, "TIMEFRAM", "FROM:141325ZFEB2020", "TO:UFN"))
	if !tf.IsValid() || tf.From.Year != "2020" || tf.To.Qualifier != "UFN" {
		t.Errorf("TIMEFRAM = %+v, errors %v", tf, tf.Errors())
	}
	a := cast[*Ampn](t, r, record(r, "AMPN", "FIRST PART", "SECOND PART"))
	if a.Text != "FIRST PART/SECOND PART" {
		t.Errorf("AMPN = %q", a.Text)
	}
	if e := record(r, "EXER"); e.IsValid() {
		t.Error("expected an empty EXER to be invalid")
	}
}
