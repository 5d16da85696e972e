package ffirn

import "usmtf_importer/internal/mtf"

var (
	timeZones = []string{
		"A", "B", "C", "0", "D", "1", "E", "2", "F", "3", "G", "H", "I", "4", "K", "5", "L",
		"6", "M", "N", "O", "P", "7", "Q", "R", "S", "T", "U", "8", "V", "9", "W", "X", "Y", "Z",
	}

	months = []string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

	stopTimeQualifiers = []string{
		"AFTER", "ASOF", "ASAP", "ASAPAFT", "ASAPNLT", "BEFORE", "INDEF",
		"NET", "NLT", "ONCALL", "TBD", "UNK", "UFN",
	}
)

// TimePoint is a parsed USMTF time. Depending on the form that matched only
// some parts are set; a stop-time qualifier such as UFN sets Qualifier only.
type TimePoint struct {
	Day       string `json:"day,omitempty"`
	Hour      string `json:"hour,omitempty"`
	Minute    string `json:"minute,omitempty"`
	TimeZone  string `json:"time_zone,omitempty"`
	Month     string `json:"month,omitempty"`
	Year      string `json:"year,omitempty"`
	Qualifier string `json:"qualifier,omitempty"`
	Context   string `json:"context,omitempty"`
	Raw       string `json:"raw"`
}

// IsQualifier reports whether the time point is a stop-time qualifier.
func (t TimePoint) IsQualifier() bool { return t.Qualifier != "" }

// dayTime checks the DDHHMMZ prefix shared by every numeric form.
func dayTime(c *scan, t *TimePoint) {
	t.Day = c.number("Time Point day", 0, 2, 0, 31)
	t.Hour = c.number("Time Point hour", 2, 4, 0, 23)
	t.Minute = c.number("Time Point minute", 4, 6, 0, 59)
	t.TimeZone = c.oneOf("Time Point time zone", 6, 7, timeZones)
}

func finish(c *scan, t TimePoint) Result[TimePoint] {
	if c.failed() {
		return failWith[TimePoint](c.errors())
	}
	return ok(t)
}

// ParseDateTimeGroup accepts the 14 character form DDHHMMZMONYYYY,
// e.g. 141325ZFEB2020.
func ParseDateTimeGroup(f mtf.Field) Result[TimePoint] {
	c := &scan{s: f.Content()}
	t := TimePoint{Raw: f.Content()}
	c.length("Date time group", 14, 14)
	dayTime(c, &t)
	t.Month = c.oneOf("Time Point month", 7, 10, months)
	t.Year = c.number("Time Point year", 10, 14, 0, 9999)
	return finish(c, t)
}

// ParseDayTimeMonth accepts the 10 character form DDHHMMZMON.
func ParseDayTimeMonth(f mtf.Field) Result[TimePoint] {
	c := &scan{s: f.Content()}
	t := TimePoint{Raw: f.Content()}
	c.length("Day time month", 10, 10)
	dayTime(c, &t)
	t.Month = c.oneOf("Time Point month", 7, 10, months)
	return finish(c, t)
}

// ParseDayTime accepts the 7 character form DDHHMMZ.
func ParseDayTime(f mtf.Field) Result[TimePoint] {
	c := &scan{s: f.Content()}
	t := TimePoint{Raw: f.Content()}
	c.length("Day time", 7, 7)
	dayTime(c, &t)
	return finish(c, t)
}

// ParseStopTimeQualifier accepts one of the enumerated stop-time qualifiers.
func ParseStopTimeQualifier(f mtf.Field) Result[TimePoint] {
	for _, q := range stopTimeQualifiers {
		if f.Content() == q {
			return ok(TimePoint{Qualifier: q, Raw: q})
		}
	}
	return fail[TimePoint]("Stop time qualifier is not a permitted value", f.Content(), "one of AFTER, ASOF, ASAP, ASAPAFT, ASAPNLT, BEFORE, INDEF, NET, NLT, ONCALL, TBD, UNK, UFN")
}

var timePoint = OneOf(ParseDateTimeGroup, ParseDayTimeMonth, ParseStopTimeQualifier)

// ParseTimePoint accepts a date time group, a day time month or a stop-time
// qualifier.
func ParseTimePoint(f mtf.Field) Result[TimePoint] { return timePoint(f) }

// parseDayTimeContext is the day time form followed by a single context
// quantity digit, e.g. 141325Z8.
func parseDayTimeContext(f mtf.Field) Result[TimePoint] {
	s := f.Content()
	if len(s) != 8 {
		return fail[TimePoint]("Day time with context has the wrong length", s, "8 characters")
	}
	r := ParseDayTime(mtf.NewField(s[:7]))
	if !r.OK() {
		return r
	}
	if !isDigits(s[7:]) {
		return fail[TimePoint]("Context quantity is not a digit", s[7:], "0-9")
	}
	r.Value.Context = s[7:]
	r.Value.Raw = s
	return r
}

var verifiedTimePoint = OneOf(ParseDateTimeGroup, ParseDayTimeMonth, ParseDayTime, parseDayTimeContext, ParseStopTimeQualifier)

// ParseVerifiedTimePoint accepts every time point form plus the bare day
// time and the day time with a context quantity digit.
func ParseVerifiedTimePoint(f mtf.Field) Result[TimePoint] { return verifiedTimePoint(f) }
