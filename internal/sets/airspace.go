package sets

import (
	"strings"

	"usmtf_importer/internal/ffirn"
	"usmtf_importer/internal/mtf"
)

// Geometry keywords carried in the third ACMID field.
const (
	GeometryCircle   = "CIRCLE"
	GeometryRadArc   = "RADARC"
	GeometryPoint    = "POINT"
	GeometryPolygon  = "POLYGON"
	GeometryCorridor = "CORRIDOR"
	GeometryLine     = "LINE"
	GeometryOrbit    = "ORBIT"
	GeometryPolyArc  = "POLYARC"
	GeometryTrack    = "TRACK"
)

var parseGeometry = ffirn.Enumerated("Airspace geometry",
	GeometryCircle, GeometryRadArc, GeometryPoint, GeometryPolygon, GeometryCorridor,
	GeometryLine, GeometryOrbit, GeometryPolyArc, GeometryTrack)

// ACMID opens every airspace control means of an ACO:
// ACMID/ACM:<type>/NAME:<name>/<geometry>/USE:<usage>//.
type ACMID struct {
	*mtf.Set
	MeansType string `json:"means_type"`
	Name      string `json:"name"`
	Geometry  string `json:"geometry"`
	Usage     string `json:"usage,omitempty"`
}

func NewACMID(s *mtf.Set) mtf.Record {
	a := &ACMID{Set: s}
	requireFields(s, 3, -1)
	a.MeansType, _ = ffirn.Apply(s, 1, ffirn.ParseFreeText)
	a.Name, _ = ffirn.Apply(s, 2, ffirn.ParseFreeText)
	a.Geometry, _ = ffirn.Apply(s, 3, parseGeometry)
	a.Usage, _ = ffirn.ApplyOptional(s, 4, ffirn.ParseFreeText)
	return a
}

// ZoneName is the airspace name with spaces replaced by underscores.
func (a *ACMID) ZoneName() string {
	return strings.ReplaceAll(strings.TrimSpace(a.Name), " ", "_")
}

// EffLevel is the vertical extent of an airspace.
type EffLevel struct {
	*mtf.Set
	Vertical ffirn.VerticalDimension `json:"vertical"`
}

func NewEffLevel(s *mtf.Set) mtf.Record {
	e := &EffLevel{Set: s}
	requireFields(s, 1, 1)
	e.Vertical, _ = ffirn.Apply(s, 1, ffirn.ParseVerticalDimension)
	return e
}

// APeriod is the activation period of an airspace:
// APERIOD/<mode>/<begin>/<end>/<frequency>/<duration>//. Frequency and
// duration are only checked in INTERVAL mode.
type APeriod struct {
	*mtf.Set
	Mode      string                 `json:"mode"`
	Begin     ffirn.TimePoint        `json:"begin"`
	End       ffirn.TimePoint        `json:"end"`
	Frequency string                 `json:"frequency,omitempty"`
	Duration  ffirn.IntervalDuration `json:"duration"`
}

func NewAPeriod(s *mtf.Set) mtf.Record {
	a := &APeriod{Set: s}
	requireFields(s, 3, 5)
	a.Mode, _ = ffirn.Apply(s, 1, ffirn.ParseAirspaceTimeMode)
	a.Begin, _ = ffirn.Apply(s, 2, ffirn.ParseVerifiedTimePoint)
	a.End, _ = ffirn.Apply(s, 3, ffirn.ParseVerifiedTimePoint)
	if a.Mode != "INTERVAL" {
		return a
	}
	a.Frequency, _ = ffirn.Apply(s, 4, ffirn.ParseIntervalFrequency)
	a.Duration, _ = ffirn.Apply(s, 5, ffirn.ParseIntervalDuration)
	return a
}

// IsDiscrete reports whether the period is a single activation window.
func (a *APeriod) IsDiscrete() bool { return a.Mode == "DISCRETE" }
