package ffirn

import (
	"strings"

	"usmtf_importer/internal/mtf"
)

var durationUnits = []string{"MIN", "HR", "DAY", "WK", "BIWK", "MON", "YR"}

// IntervalDuration is how long an interval airspace period repeats for.
// Exactly one of TimePoint or Duration describes it.
type IntervalDuration struct {
	TimePoint TimePoint `json:"time_point"`
	Duration  string    `json:"duration,omitempty"`
	Quantity  string    `json:"quantity,omitempty"`
	Unit      string    `json:"unit,omitempty"`
}

func parseDurationUFN(f mtf.Field) Result[IntervalDuration] {
	if f.Content() != "UFN" {
		return fail[IntervalDuration]("Interval duration is not UFN", f.Content(), "UFN")
	}
	return ok(IntervalDuration{Duration: "UFN"})
}

func parseDurationQuantity(f mtf.Field) Result[IntervalDuration] {
	s := f.Content()
	if len(s) < 2 || len(s) > 7 {
		return fail[IntervalDuration]("Interval duration has the wrong length", s, "2-7 characters")
	}
	i := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if i <= 0 {
		return fail[IntervalDuration]("Interval duration quantity is missing", s, "1-3 digits followed by a unit")
	}
	if i > 3 {
		return fail[IntervalDuration]("Interval duration quantity is out of range", s[:i], "0-999")
	}
	unit := s[i:]
	for _, u := range durationUnits {
		if unit == u {
			return ok(IntervalDuration{Duration: s, Quantity: s[:i], Unit: unit})
		}
	}
	return fail[IntervalDuration]("Interval duration unit is not a permitted value", unit, "one of "+strings.Join(durationUnits, ", "))
}

var intervalDuration = OneOf(
	parseDurationUFN,
	parseDurationQuantity,
	Map(OneOf(ParseDateTimeGroup, ParseDayTimeMonth), func(t TimePoint) IntervalDuration {
		return IntervalDuration{TimePoint: t}
	}),
)

// ParseIntervalDuration accepts UFN, a quantity with a unit such as 4WK or
// 122DAY, or a date time.
func ParseIntervalDuration(f mtf.Field) Result[IntervalDuration] { return intervalDuration(f) }

var (
	// ParseIntervalFrequency accepts how often an interval period recurs.
	ParseIntervalFrequency = Enumerated("Interval frequency",
		"HOURLY", "DAILY", "WEEKDAYS", "WEEKENDS", "WEEKLY", "BIWEEKLY", "MONTHLY", "YEARLY")

	// ParseAirspaceTimeMode accepts DISCRETE or INTERVAL.
	ParseAirspaceTimeMode = Enumerated("Airspace time mode", "DISCRETE", "INTERVAL")
)
