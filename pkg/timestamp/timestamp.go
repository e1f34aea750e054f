// Package timestamp resolves heterogeneous log-line timestamp prefixes into
// absolute times, inferring a missing year or date from a reference time.
package timestamp

import (
	"strconv"
	"time"
)

// Fields holds the components scanned from a line prefix. Components the
// shape does not carry are zero.
type Fields struct {
	Shape      Shape
	Year       int
	Month      int
	Day        int
	Hour       int
	Minute     int
	Second     int
	Nanosecond int

	// Text is the matched timestamp text without surrounding brackets.
	Text string
}

// Parser classifies line prefixes against an ordered list of formats.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	formats []*Format
}

// NewParser creates a parser over the given formats, or DefaultFormats when
// none are given.
func NewParser(formats ...*Format) *Parser {
	if len(formats) == 0 {
		formats = DefaultFormats()
	}
	return &Parser{formats: formats}
}

var std = NewParser()

// Parse resolves a line prefix with the default formats.
func Parse(line string, reference time.Time) (time.Time, bool) {
	return std.Parse(line, reference)
}

// Scan classifies a line prefix with the default formats.
func Scan(line string) (Fields, bool) {
	return std.Scan(line)
}

// Formats returns the parser's formats in priority order.
func (p *Parser) Formats() []*Format {
	return p.formats
}

// Parse scans line and resolves it against reference. The result is in the
// reference's location. It reports false when no format matches or the
// fields do not form a valid date.
func (p *Parser) Parse(line string, reference time.Time) (time.Time, bool) {
	f, ok := p.Scan(line)
	if !ok {
		return time.Time{}, false
	}
	return Resolve(f, reference)
}

// Scan returns the fields of the first format matching line.
func (p *Parser) Scan(line string) (Fields, bool) {
	_, f, ok := p.Classify(line)
	return f, ok
}

// Classify is Scan that also reports which format matched.
func (p *Parser) Classify(line string) (*Format, Fields, bool) {
	for _, format := range p.formats {
		f, ok := scanFormat(format, line)
		if ok {
			return format, f, true
		}
	}
	return nil, Fields{}, false
}

func scanFormat(format *Format, line string) (Fields, bool) {
	loc := format.Pattern.FindStringSubmatchIndex(line)
	if loc == nil {
		return Fields{}, false
	}

	f := Fields{Shape: format.Shape}
	start, end := -1, -1
	group := func(name string) (int, bool) {
		i := format.Pattern.SubexpIndex(name)
		if i < 0 || loc[2*i] < 0 {
			return 0, false
		}
		s, e := loc[2*i], loc[2*i+1]
		if start < 0 || s < start {
			start = s
		}
		if e > end {
			end = e
		}
		n, err := strconv.Atoi(line[s:e])
		return n, err == nil
	}

	var ok bool
	if format.Shape == ShapeFull {
		if f.Year, ok = group("year"); !ok {
			return Fields{}, false
		}
	}
	if format.Shape == ShapeFull || format.Shape == ShapeMonthDay {
		if f.Month, ok = group("month"); !ok {
			return Fields{}, false
		}
		if f.Day, ok = group("day"); !ok {
			return Fields{}, false
		}
	}
	if f.Hour, ok = group("hour"); !ok {
		return Fields{}, false
	}
	if f.Minute, ok = group("min"); !ok {
		return Fields{}, false
	}
	if f.Second, ok = group("sec"); !ok {
		return Fields{}, false
	}
	if i := format.Pattern.SubexpIndex("frac"); i >= 0 && loc[2*i] >= 0 {
		frac := line[loc[2*i]:loc[2*i+1]]
		for len(frac) < 9 {
			frac += "0"
		}
		f.Nanosecond, _ = strconv.Atoi(frac)
		end = loc[2*i+1]
	}

	if !f.valid() {
		return Fields{}, false
	}
	f.Text = line[start:end]
	return f, true
}

func (f Fields) valid() bool {
	if f.Hour > 23 || f.Minute > 59 || f.Second > 59 {
		return false
	}
	if f.Shape == ShapeTimeOnly {
		return true
	}
	return f.Month >= 1 && f.Month <= 12 && f.Day >= 1 && f.Day <= 31
}

// Resolve turns scanned fields into an absolute time in the reference's
// location. Two-digit years are taken as 20xx. A missing year is chosen
// from the reference year and its neighbours, a missing date from the
// reference day and its neighbours, picking the candidate closest to the
// reference; ties keep the earlier candidate in that order.
func Resolve(f Fields, reference time.Time) (time.Time, bool) {
	loc := reference.Location()

	switch f.Shape {
	case ShapeFull:
		year := f.Year
		if year < 100 {
			year += 2000
		}
		return f.at(year, time.Month(f.Month), f.Day, loc)

	case ShapeMonthDay:
		ry := reference.Year()
		return closest(reference, func(yield func(time.Time, bool)) {
			for _, y := range []int{ry, ry - 1, ry + 1} {
				yield(f.at(y, time.Month(f.Month), f.Day, loc))
			}
		})

	case ShapeTimeOnly:
		y, m, d := reference.Date()
		return closest(reference, func(yield func(time.Time, bool)) {
			for _, off := range []int{0, -1, 1} {
				day := time.Date(y, m, d+off, 0, 0, 0, 0, loc)
				yield(f.at(day.Year(), day.Month(), day.Day(), loc))
			}
		})
	}

	return time.Time{}, false
}

// at builds the time for the given date and reports false when the date
// does not exist (for example February 29 in a common year).
func (f Fields) at(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, month, day, f.Hour, f.Minute, f.Second, f.Nanosecond, loc)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func closest(reference time.Time, candidates func(yield func(time.Time, bool))) (time.Time, bool) {
	var best time.Time
	var bestDiff time.Duration
	found := false

	candidates(func(c time.Time, ok bool) {
		if !ok {
			return
		}
		diff := AbsDiff(c, reference)
		if !found || diff < bestDiff {
			best, bestDiff, found = c, diff, true
		}
	})

	return best, found
}

// AbsDiff returns |a - b|.
func AbsDiff(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
