// Package dates parses the timestamps Halomaps rendered into its pages.
//
// Every date in the mirror is relative to the timezone of the server that
// requested the HTML, including relative dates like "Today @ 3:21 PM".
// Callers resolve those against the page's own render time.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// DefaultZone is the timezone of the machine that ran the mirror script.
const DefaultZone = "America/New_York"

// Halomaps rendered absolute dates in two formats depending on the era of
// the page. Order matters: the short-month format must be tried first.
var formats = []string{
	"Jan 2, 2006 3:04 PM",         // Sep 30, 2006 09:29 PM
	"Mon January 2, 2006 3:04 PM", // Wed January 18, 2023 11:50 PM
}

// clockFormat is the time-of-day portion of relative dates.
const clockFormat = "3:04 PM"

// ParseError reports a date string no known format matches, or a relative
// date with no reference to resolve it against.
type ParseError struct {
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse date %q: %s", e.Value, e.Reason)
}

// Location resolves a timezone name, defaulting to DefaultZone when empty.
func Location(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	return time.LoadLocation(name)
}

// Parse converts a rendered date string to an absolute time in loc.
//
// "Today @ <time>" and "Yesterday @ <time>" take the calendar day from
// reference (minus one day for Yesterday) and the clock time from the
// string itself. reference is the page render time as extracted from the
// footer, and may be empty when the caller knows the date is absolute.
func Parse(value, reference string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)

	if strings.HasPrefix(value, "Today") || strings.HasPrefix(value, "Yesterday") {
		if reference == "" {
			return time.Time{}, &ParseError{Value: value, Reason: "no reference date for relative form"}
		}

		ref, err := parseAbsolute(reference, loc)
		if err != nil {
			return time.Time{}, err
		}

		day, clockStr, ok := strings.Cut(value, " @ ")
		if !ok {
			return time.Time{}, &ParseError{Value: value, Reason: "relative form missing \" @ \" separator"}
		}
		if day == "Yesterday" {
			ref = ref.AddDate(0, 0, -1)
		}

		clock, err := time.ParseInLocation(clockFormat, strings.TrimSpace(clockStr), loc)
		if err != nil {
			return time.Time{}, &ParseError{Value: value, Reason: "bad time of day"}
		}

		return time.Date(
			ref.Year(), ref.Month(), ref.Day(),
			clock.Hour(), clock.Minute(), 0, 0,
			loc,
		), nil
	}

	return parseAbsolute(value, loc)
}

// parseAbsolute tries each known format in order and keeps the first match.
func parseAbsolute(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Value: value, Reason: "no known format matches"}
}
