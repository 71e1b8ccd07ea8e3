// Package timestamp holds the calendar value that moves between the clock source, the editor and
// the display.
package timestamp

import (
	"fmt"
	"time"
)

// Layout is the format accepted by Parse and produced by String.
const Layout = "2006-01-02 15:04:05"

// Timestamp is a calendar time broken into the fields the clock can display and edit.  The fields
// are plain integers rather than a time.Time because the editor can produce values that are not
// valid dates (month 13, day 0) and those have to survive the trip to the clock source unchanged.
type Timestamp struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// FromTime returns the fields of t in t's location.
func FromTime(t time.Time) Timestamp {
	y, mon, d := t.Date()
	h, m, s := t.Clock()
	return Timestamp{Year: y, Month: int(mon), Day: d, Hour: h, Minute: m, Second: s}
}

// Time converts ts to a time.Time in loc.  Out-of-range fields are normalized the way time.Date
// normalizes them.
func (ts Timestamp) Time(loc *time.Location) time.Time {
	return time.Date(ts.Year, time.Month(ts.Month), ts.Day, ts.Hour, ts.Minute, ts.Second, 0, loc)
}

func (ts Timestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second)
}

// Parse reads a timestamp in Layout.
func Parse(s string) (Timestamp, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return FromTime(t), nil
}
