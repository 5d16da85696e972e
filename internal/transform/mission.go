package transform

import (
	"strconv"

	"usmtf_importer/internal/ffirn"
	"usmtf_importer/internal/output"
	"usmtf_importer/internal/sets"
)

// AircraftMission builds the platforms of one MSNACFT mission. Its segment
// holds the mission records plus the TASKUNIT (and AMSNDAT, when present)
// of the enclosing task unit.
type AircraftMission struct {
	*Transformer

	taskUnit      *sets.TaskUnit
	mission       *sets.AircraftMission
	refueling     *sets.AerialRefueling
	packageData   *sets.PackageData
	missionData   *sets.AircraftMissionData
	refuelingInfo *sets.AerialRefuelingInfo
	control       *sets.AirAssetControl
	location      *sets.AircraftMissionLocation

	platforms []Platform
	macros    *Macros
}

func NewAircraftMission(t *Transformer) *AircraftMission {
	const concept = "Aircraft Mission"
	m := &AircraftMission{Transformer: t, macros: NewMacros()}

	m.taskUnit, _ = Extract[*sets.TaskUnit](t, "TASKUNIT", concept)
	m.mission, _ = Extract[*sets.AircraftMission](t, "MSNACFT", concept)
	m.refueling, _ = Extract[*sets.AerialRefueling](t, "5REFUEL", concept, Optional(), SkipValidation())
	m.packageData, _ = Extract[*sets.PackageData](t, "9PKGDAT", concept, Optional(), SkipValidation())
	m.missionData, _ = Extract[*sets.AircraftMissionData](t, "AMSNDAT", concept)
	m.refuelingInfo, _ = Extract[*sets.AerialRefuelingInfo](t, "ARINFO", concept, Optional(), SkipValidation())
	m.control, _ = Extract[*sets.AirAssetControl](t, "CONTROLA", concept, Optional(), SkipValidation())
	m.location, _ = Extract[*sets.AircraftMissionLocation](t, "AMSNLOC", concept, Optional(), SkipValidation())

	m.buildPlatforms()
	return m
}

func (m *AircraftMission) Platforms() []Platform { return m.platforms }
func (m *AircraftMission) Macros() *Macros       { return m.macros }

// MissionLocation returns the AMSNLOC mission area when one was given.
func (m *AircraftMission) MissionLocation() (ffirn.Location, bool) {
	if m.location == nil || !m.location.IsValid() {
		return ffirn.Location{}, false
	}
	return m.location.Location, true
}

// TypeDefinitions returns the distinct platform types in first-use order.
func (m *AircraftMission) TypeDefinitions() []PlatformTypeDefinition {
	seen := make(map[string]bool)
	var out []PlatformTypeDefinition
	for _, p := range m.platforms {
		if !seen[p.TypeDefinition.Type] {
			seen[p.TypeDefinition.Type] = true
			out = append(out, p.TypeDefinition)
		}
	}
	return out
}

// OutputBlock renders each platform preceded by its type definition.
func (m *AircraftMission) OutputBlock() *output.Block {
	root := output.NewRoot()
	for _, p := range m.platforms {
		root.AddBlock(p.TypeDefinition.OutputBlock(), p.OutputBlock())
	}
	return root
}

func (m *AircraftMission) buildPlatforms() {
	if !m.IsValid() {
		return
	}
	category := replaceSpaces(m.taskUnit.UnitDesignator)

	m.addPlatforms(m.mission.Callsign, m.mission.AircraftType, category, m.mission.NumberOfAircraft)

	if m.refueling != nil && m.refueling.IsValid() {
		for _, in := range m.refueling.Instructions {
			m.addPlatforms(in.ReceiverCallsign+"_REFUEL", in.AircraftType, category, in.Aircraft)
		}
	}
	if m.packageData != nil && m.packageData.IsValid() {
		for _, u := range m.packageData.Units {
			m.addPlatforms(u.Callsign+"_PACKAGEDATA", u.AircraftType, replaceSpaces(u.UnitDesignator), u.Aircraft)
		}
	}
}

func (m *AircraftMission) addPlatforms(callsign, aircraftType, category string, count int) {
	def := NewPlatformTypeDefinition(aircraftType)
	for i := 0; i < count; i++ {
		m.platforms = append(m.platforms, Platform{
			Name:           replaceSpaces(callsign) + "_" + strconv.Itoa(i),
			Category:       category,
			Position:       m.position(),
			TypeDefinition: def,
		})
	}
}

// position picks the first populated location in order of preference: the
// task unit, the departure location, the refueling control point and the
// report-in point. Without any, the unit designator names a macro.
func (m *AircraftMission) position() string {
	if loc := m.taskUnit.Location; loc.Raw != "" {
		return m.locate(loc)
	}
	if m.missionData.IsValid() && m.missionData.Departure.Raw != "" {
		return m.locate(m.missionData.Departure)
	}
	if m.refuelingInfo != nil && m.refuelingInfo.IsValid() && m.refuelingInfo.ControlPoint.Raw != "" {
		return m.locate(m.refuelingInfo.ControlPoint)
	}
	if m.control != nil && m.control.IsValid() && m.control.ReportInPoint.Raw != "" {
		return m.locate(m.control.ReportInPoint)
	}
	return m.useMacro(m.taskUnit.UnitDesignator)
}

func (m *AircraftMission) locate(loc ffirn.Location) string {
	if p, ok := loc.Point(); ok {
		return p.String()
	}
	name := loc.Name
	if name == "" {
		name = loc.Raw
	}
	return m.useMacro(name)
}

func (m *AircraftMission) useMacro(name string) string {
	macro := NewPositionMacro(name)
	m.macros.Add(macro)
	return macro.Placeholder()
}
