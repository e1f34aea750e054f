package timestamp

import "regexp"

// Shape describes how much of an absolute timestamp a line prefix carries.
type Shape int

const (
	// ShapeNone means no recognized timestamp prefix.
	ShapeNone Shape = iota
	// ShapeFull carries year, month, day and time of day.
	ShapeFull
	// ShapeMonthDay carries month, day and time of day but no year.
	ShapeMonthDay
	// ShapeTimeOnly carries only the time of day.
	ShapeTimeOnly
)

func (s Shape) String() string {
	switch s {
	case ShapeFull:
		return "full"
	case ShapeMonthDay:
		return "month-day"
	case ShapeTimeOnly:
		return "time-only"
	default:
		return "none"
	}
}

// Format is a recognized timestamp prefix.
type Format struct {
	Name       string         // Human-readable name
	Shape      Shape          // Which fields the format carries
	Pattern    *regexp.Regexp // Compiled regex (set in DefaultFormats)
	PatternStr string         // Pattern source, uses named groups
	Examples   []string       // Example line prefixes
}

const (
	linePrefix = `^\s*\[?`
	timeOfDay  = `(?P<hour>\d{1,2}):(?P<min>\d{2}):(?P<sec>\d{2})(?:[.,](?P<frac>\d{1,9}))?(?:\D|$)`
)

// DefaultFormats returns the built-in prefix formats in priority order.
// A line is classified by the first format that matches it.
func DefaultFormats() []*Format {
	formats := []*Format{
		{
			Name:       "Date time (slash)",
			Shape:      ShapeFull,
			PatternStr: linePrefix + `(?P<year>\d{4}|\d{2})/(?P<month>\d{1,2})/(?P<day>\d{1,2})[ T]+` + timeOfDay,
			Examples:   []string{"2024/01/15 10:30:00", "24/1/15 10:30:00.123"},
		},
		{
			Name:       "Date time (dash)",
			Shape:      ShapeFull,
			PatternStr: linePrefix + `(?P<year>\d{4}|\d{2})-(?P<month>\d{1,2})-(?P<day>\d{1,2})[ T]+` + timeOfDay,
			Examples:   []string{"2024-01-15 10:30:00", "2024-01-15T10:30:00,123"},
		},
		{
			Name:       "Month/day time",
			Shape:      ShapeMonthDay,
			PatternStr: linePrefix + `(?P<month>\d{1,2})/(?P<day>\d{1,2})[ T]+` + timeOfDay,
			Examples:   []string{"12/31 23:59:59", "[1/5 09:30:00.250]"},
		},
		{
			Name:       "Time of day",
			Shape:      ShapeTimeOnly,
			PatternStr: linePrefix + timeOfDay,
			Examples:   []string{"23:59:59", "08:15:02.004"},
		},
	}

	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}
