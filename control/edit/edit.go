// Package edit implements the arithmetic behind the clock's +/- buttons.  Every function is total:
// any value and any delta produce a result, and nothing here returns an error.
package edit

import (
	"fmt"

	"github.com/jrockway/segment-clock/control/timestamp"
)

// Brightness limits, inclusive.
const (
	MinBrightness = 1
	MaxBrightness = 15
)

// Field names a value that can be edited.
type Field int

const (
	Hour Field = iota
	Minute
	Second
	Day
	Month
	Year
	Brightness
)

func (f Field) String() string {
	switch f {
	case Hour:
		return "hour"
	case Minute:
		return "minute"
	case Second:
		return "second"
	case Day:
		return "day"
	case Month:
		return "month"
	case Year:
		return "year"
	case Brightness:
		return "brightness"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// wrap maps v into [lo, hi], cycling in both directions.
func wrap(v, lo, hi int) int {
	n := hi - lo + 1
	return lo + ((v-lo)%n+n)%n
}

// HourOf returns hour+delta on a 24-hour dial.
func HourOf(hour, delta int) int { return wrap(hour+delta, 0, 23) }

// MinuteOf returns minute+delta on a 60-minute dial.
func MinuteOf(minute, delta int) int { return wrap(minute+delta, 0, 59) }

// SecondOf returns second+delta on a 60-second dial.
func SecondOf(second, delta int) int { return wrap(second+delta, 0, 59) }

// YearOf returns year+delta.  Years are not bounded.
func YearOf(year, delta int) int { return year + delta }

// MonthOf returns month+delta, cycling through 1..12.
func MonthOf(month, delta int) int { return wrap(month+delta, 1, 12) }

// DayOf returns day+delta, cycling through 1..31.  The length of the month is not considered.
func DayOf(day, delta int) int { return wrap(day+delta, 1, 31) }

// BrightnessOf returns level+delta, cycling through MinBrightness..MaxBrightness.
func BrightnessOf(level, delta int) int { return wrap(level+delta, MinBrightness, MaxBrightness) }

// The Legacy* functions reproduce the first firmware's arithmetic exactly.

// LegacyHourOf goes to 0 after 23 but to 24 below 0.
func LegacyHourOf(hour, delta int) int {
	switch h := hour + delta; {
	case h > 23:
		return 0
	case h < 0:
		return 24
	default:
		return h
	}
}

// LegacyMonthOf does not bound the month.
func LegacyMonthOf(month, delta int) int { return month + delta }

// LegacyDayOf does not bound the day.
func LegacyDayOf(day, delta int) int { return day + delta }

// Rules selects which arithmetic the editor uses.
type Rules int

const (
	// Wrapped keeps every field within its calendar range.
	Wrapped Rules = iota
	// Legacy matches the clock's first firmware, including its hour underflow to 24 and
	// unbounded months and days.
	Legacy
)

func (r Rules) String() string {
	if r == Legacy {
		return "legacy"
	}
	return "wrapped"
}

// Value applies delta to v as field f.
func (r Rules) Value(f Field, v, delta int) int {
	switch f {
	case Hour:
		if r == Legacy {
			return LegacyHourOf(v, delta)
		}
		return HourOf(v, delta)
	case Minute:
		return MinuteOf(v, delta)
	case Second:
		return SecondOf(v, delta)
	case Day:
		if r == Legacy {
			return LegacyDayOf(v, delta)
		}
		return DayOf(v, delta)
	case Month:
		if r == Legacy {
			return LegacyMonthOf(v, delta)
		}
		return MonthOf(v, delta)
	case Year:
		return YearOf(v, delta)
	case Brightness:
		return BrightnessOf(v, delta)
	default:
		return v
	}
}

// Timestamp applies delta to field f of ts and returns the whole new timestamp.  Brightness is not
// part of a timestamp; asking for it returns ts unchanged.
func (r Rules) Timestamp(ts timestamp.Timestamp, f Field, delta int) timestamp.Timestamp {
	switch f {
	case Hour:
		ts.Hour = r.Value(f, ts.Hour, delta)
	case Minute:
		ts.Minute = r.Value(f, ts.Minute, delta)
	case Second:
		ts.Second = r.Value(f, ts.Second, delta)
	case Day:
		ts.Day = r.Value(f, ts.Day, delta)
	case Month:
		ts.Month = r.Value(f, ts.Month, delta)
	case Year:
		ts.Year = r.Value(f, ts.Year, delta)
	}
	return ts
}
