package sets

import (
	"regexp"

	"usmtf_importer/internal/ffirn"
	"usmtf_importer/internal/mtf"
)

var (
	parseOptionalLocation = ffirn.Nullable(ffirn.ParseLocation)

	parseAircraftCount = ffirn.Count("Number of aircraft", 1, 99)
	parseCellCount     = ffirn.Nullable(ffirn.Count("Number of aircraft in cell", 1, 99))
	parseAltitude      = ffirn.Count("Altitude", 0, 999)

	parseOffloadFuel = ffirn.Matches("Offload fuel", regexp.MustCompile(`^\d{1,3}\.\d$`),
		"thousands of pounds, 0.0-999.9")
	parseTacan = ffirn.Nullable(ffirn.Matches("TACAN channel", regexp.MustCompile(`^\d{1,3}-\d{1,3}$`),
		"<receiver channel>-<tanker channel>, 1-3 digits each"))
	parseBeacon = ffirn.Nullable(ffirn.Matches("Beacon code", regexp.MustCompile(`^[0-6]-[0-6]-[0-6]$`),
		"three digits 0-6 separated by '-'"))
	parseRefuelSystem = ffirn.Nullable(ffirn.Enumerated("Refuel system", "BOM", "DRG", "BDA"))
	parseOptionalFreq = ffirn.Nullable(ffirn.ParseFrequency)
	parseOptionalTime = ffirn.Nullable(ffirn.ParseVerifiedTimePoint)
)

// TaskUnit opens a tasked unit's block of an ATO:
// TASKUNIT/<unit designator>/<location>/<comments>//.
type TaskUnit struct {
	*mtf.Set
	UnitDesignator string         `json:"unit_designator"`
	Location       ffirn.Location `json:"location"`
	Comments       string         `json:"comments,omitempty"`
}

func NewTaskUnit(s *mtf.Set) mtf.Record {
	t := &TaskUnit{Set: s}
	requireFields(s, 1, -1)
	t.UnitDesignator, _ = ffirn.Apply(s, 1, ffirn.ParseFreeText)
	t.Location, _ = ffirn.ApplyOptional(s, 2, parseOptionalLocation)
	t.Comments, _ = ffirn.ApplyOptional(s, 3, ffirn.ParseFreeText)
	return t
}

// AircraftMission is MSNACFT/<count>/ACTYP:<type>/<callsign>/...//.
type AircraftMission struct {
	*mtf.Set
	NumberOfAircraft int    `json:"number_of_aircraft"`
	AircraftType     string `json:"aircraft_type"`
	Callsign         string `json:"callsign"`
}

func NewAircraftMission(s *mtf.Set) mtf.Record {
	m := &AircraftMission{Set: s}
	requireFields(s, 3, -1)
	m.NumberOfAircraft, _ = ffirn.Apply(s, 1, parseAircraftCount)
	m.AircraftType, _ = ffirn.Apply(s, 2, ffirn.ParseFreeText)
	m.Callsign, _ = ffirn.Apply(s, 3, ffirn.ParseFreeText)
	return m
}

// AircraftMissionData carries the mission number and the departure and
// arrival locations, which are found by their DEPLOC and ARRLOC
// descriptors.
type AircraftMissionData struct {
	*mtf.Set
	MissionNumber string         `json:"mission_number"`
	Departure     ffirn.Location `json:"departure"`
	Arrival       ffirn.Location `json:"arrival"`
}

func NewAircraftMissionData(s *mtf.Set) mtf.Record {
	d := &AircraftMissionData{Set: s}
	requireFields(s, 2, -1)
	d.MissionNumber, _ = ffirn.Apply(s, 2, ffirn.ParseFreeText)
	if i, ok := findDescriptor(s, "DEPLOC"); ok {
		d.Departure, _ = ffirn.Apply(s, i, ffirn.Inner(parseOptionalLocation))
	}
	if i, ok := findDescriptor(s, "ARRLOC"); ok {
		d.Arrival, _ = ffirn.Apply(s, i, ffirn.Inner(parseOptionalLocation))
	}
	return d
}

// AircraftMissionLocation is the mission area:
// AMSNLOC/<begin>/<end>/<location>//.
type AircraftMissionLocation struct {
	*mtf.Set
	Begin    ffirn.TimePoint `json:"begin"`
	End      ffirn.TimePoint `json:"end"`
	Location ffirn.Location  `json:"location"`
}

func NewAircraftMissionLocation(s *mtf.Set) mtf.Record {
	l := &AircraftMissionLocation{Set: s}
	requireFields(s, 3, -1)
	l.Begin, _ = ffirn.Apply(s, 1, ffirn.ParseVerifiedTimePoint)
	l.End, _ = ffirn.Apply(s, 2, ffirn.ParseVerifiedTimePoint)
	l.Location, _ = ffirn.Apply(s, 3, ffirn.ParseLocation)
	return l
}

// AerialRefuelingInfo describes a tanker track:
//
//	ARINFO/EXXON 11/AR123HA/B:37700/NAME:BUICK/170/ARCT:141325Z
//	/NDAR:141400ZFEB/KLBS:15.0/PFREQ:243.0/SFREQ:121.5/EN11/ACTYP:KC135R
//	/BOM/4/TNKRS:1,3/16-72/4-3-1//
//
// Fields after the refuel time may be null.
type AerialRefuelingInfo struct {
	*mtf.Set
	Callsign           string          `json:"callsign"`
	MissionNumber      string          `json:"mission_number"`
	IffSifMode         string          `json:"iff_sif_mode"`
	ControlPoint       ffirn.Location  `json:"control_point"`
	Altitude           int             `json:"altitude"`
	RefuelTime         ffirn.TimePoint `json:"refuel_time"`
	RefuelEndTime      ffirn.TimePoint `json:"refuel_end_time"`
	OffloadFuel        string          `json:"offload_fuel"`
	PrimaryFrequency   string          `json:"primary_frequency,omitempty"`
	SecondaryFrequency string          `json:"secondary_frequency,omitempty"`
	Link16Callsign     string          `json:"link16_callsign,omitempty"`
	AircraftType       string          `json:"aircraft_type,omitempty"`
	RefuelSystem       string          `json:"refuel_system,omitempty"`
	AircraftInCell     int             `json:"aircraft_in_cell,omitempty"`
	CellSequence       string          `json:"cell_sequence,omitempty"`
	TacanChannel       string          `json:"tacan_channel,omitempty"`
	Beacon             string          `json:"beacon,omitempty"`
}

func NewAerialRefuelingInfo(s *mtf.Set) mtf.Record {
	a := &AerialRefuelingInfo{Set: s}
	requireFields(s, 6, 17)
	a.Callsign, _ = ffirn.Apply(s, 1, ffirn.ParseFreeText)
	a.MissionNumber, _ = ffirn.Apply(s, 2, ffirn.ParseFreeText)
	a.IffSifMode, _ = ffirn.Apply(s, 3, ffirn.ParseFreeText)
	a.ControlPoint, _ = ffirn.Apply(s, 4, ffirn.ParseLocation)
	a.Altitude, _ = ffirn.Apply(s, 5, parseAltitude)
	a.RefuelTime, _ = ffirn.Apply(s, 6, ffirn.ParseVerifiedTimePoint)
	a.RefuelEndTime, _ = ffirn.ApplyOptional(s, 7, parseOptionalTime)
	a.OffloadFuel, _ = ffirn.ApplyOptional(s, 8, ffirn.Nullable(parseOffloadFuel))
	a.PrimaryFrequency, _ = ffirn.ApplyOptional(s, 9, parseOptionalFreq)
	a.SecondaryFrequency, _ = ffirn.ApplyOptional(s, 10, parseOptionalFreq)
	a.Link16Callsign, _ = ffirn.ApplyOptional(s, 11, ffirn.ParseFreeText)
	a.AircraftType, _ = ffirn.ApplyOptional(s, 12, ffirn.ParseFreeText)
	a.RefuelSystem, _ = ffirn.ApplyOptional(s, 13, parseRefuelSystem)
	a.AircraftInCell, _ = ffirn.ApplyOptional(s, 14, parseCellCount)
	a.CellSequence, _ = ffirn.ApplyOptional(s, 15, ffirn.ParseFreeText)
	a.TacanChannel, _ = ffirn.ApplyOptional(s, 16, parseTacan)
	a.Beacon, _ = ffirn.ApplyOptional(s, 17, parseBeacon)
	return a
}

// AltitudeFeet is the refueling altitude in feet.
func (a *AerialRefuelingInfo) AltitudeFeet() int { return a.Altitude * 100 }

// AirAssetControl names the controlling agency of a mission:
// CONTROLA/<agency type>/<callsign>/PFREQ:<f>/SFREQ:<f>/<report-in point>//.
type AirAssetControl struct {
	*mtf.Set
	AgencyType         string         `json:"agency_type"`
	Callsign           string         `json:"callsign"`
	PrimaryFrequency   string         `json:"primary_frequency,omitempty"`
	SecondaryFrequency string         `json:"secondary_frequency,omitempty"`
	ReportInPoint      ffirn.Location `json:"report_in_point"`
}

func NewAirAssetControl(s *mtf.Set) mtf.Record {
	c := &AirAssetControl{Set: s}
	requireFields(s, 2, -1)
	c.AgencyType, _ = ffirn.Apply(s, 1, ffirn.ParseFreeText)
	c.Callsign, _ = ffirn.Apply(s, 2, ffirn.ParseFreeText)
	c.PrimaryFrequency, _ = ffirn.ApplyOptional(s, 3, parseOptionalFreq)
	c.SecondaryFrequency, _ = ffirn.ApplyOptional(s, 4, parseOptionalFreq)
	c.ReportInPoint, _ = ffirn.ApplyOptional(s, 5, parseOptionalLocation)
	return c
}

// RefuelInstruction is one receiver row of a 5REFUEL.
type RefuelInstruction struct {
	ReceiverCallsign string `json:"receiver_callsign"`
	MissionNumber    string `json:"mission_number"`
	Aircraft         int    `json:"aircraft"`
	AircraftType     string `json:"aircraft_type"`
}

// AerialRefueling lists the receivers a tanker refuels, one row each.
type AerialRefueling struct {
	*mtf.Set
	Instructions []RefuelInstruction `json:"instructions"`
}

func NewAerialRefueling(s *mtf.Set) mtf.Record {
	a := &AerialRefueling{Set: s}
	_, rows, ok := columns(s, 4)
	if !ok {
		return a
	}
	for _, row := range rows {
		a.Instructions = append(a.Instructions, RefuelInstruction{
			ReceiverCallsign: cell(s, row, 0, ffirn.ParseFreeText),
			MissionNumber:    cell(s, row, 1, ffirn.ParseFreeText),
			Aircraft:         cell(s, row, 2, parseAircraftCount),
			AircraftType:     cell(s, row, 3, ffirn.ParseFreeText),
		})
	}
	return a
}

// PackageUnit is one row of a 9PKGDAT.
type PackageUnit struct {
	PackageID      string `json:"package_id"`
	UnitDesignator string `json:"unit_designator"`
	MissionNumber  string `json:"mission_number"`
	MissionType    string `json:"mission_type"`
	Aircraft       int    `json:"aircraft"`
	AircraftType   string `json:"aircraft_type"`
	Callsign       string `json:"callsign"`
}

// PackageData lists the units flying in one package.
type PackageData struct {
	*mtf.Set
	Units []PackageUnit `json:"units"`
}

func NewPackageData(s *mtf.Set) mtf.Record {
	p := &PackageData{Set: s}
	_, rows, ok := columns(s, 7)
	if !ok {
		return p
	}
	for _, row := range rows {
		p.Units = append(p.Units, PackageUnit{
			PackageID:      cell(s, row, 0, ffirn.ParseFreeText),
			UnitDesignator: cell(s, row, 1, ffirn.ParseFreeText),
			MissionNumber:  cell(s, row, 2, ffirn.ParseFreeText),
			MissionType:    cell(s, row, 3, ffirn.ParseFreeText),
			Aircraft:       cell(s, row, 4, parseAircraftCount),
			AircraftType:   cell(s, row, 5, ffirn.ParseFreeText),
			Callsign:       cell(s, row, 6, ffirn.ParseFreeText),
		})
	}
	return p
}
