package model

import (
	"fmt"
	"time"
)

// ClockTime is a time of day with minute precision, stored as minutes
// since midnight.  Sail times live in MySQL TIME columns as
// "HH:MM:SS" strings; parsing them into ClockTime once at the
// repository boundary keeps every comparison in one representation
// instead of re-deriving wall-clock strings per call site.  Seconds
// are ignored throughout, matching how slot times are compared.
type ClockTime int

// ParseClock parses "HH:MM" or "HH:MM:SS" into a ClockTime.
func ParseClock(s string) (ClockTime, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return ClockTime(h*60 + m), nil
}

// MustClock is ParseClock for literals in tests and seeds; it panics
// on malformed input.
func MustClock(s string) ClockTime {
	ct, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return ct
}

// ClockOf truncates a time.Time to its time of day.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// String renders the "HH:MM" form used in API payloads.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// SQL renders the "HH:MM:SS" form stored in TIME columns.
func (c ClockTime) SQL() string {
	return c.String() + ":00"
}

// Add returns the clock time shifted by d, clamped to the same day.
func (c ClockTime) Add(d time.Duration) ClockTime {
	v := int(c) + int(d/time.Minute)
	if v < 0 {
		v = 0
	}
	if v > 23*60+59 {
		v = 23*60 + 59
	}
	return ClockTime(v)
}

// DateFormat is the wire and storage format for sail dates.
const DateFormat = "2006-01-02"

// At combines a storage date string with this time of day in the
// given location.  The error reports a malformed date.
func (c ClockTime) At(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateFormat, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	return d.Add(time.Duration(c) * time.Minute), nil
}
