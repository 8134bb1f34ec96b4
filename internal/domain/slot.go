package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

// HH:MM on a 24h clock, leading zero on the hour optional
var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ClockTime is a time of day in minutes since midnight.
type ClockTime int

func ParseClock(s string) (ClockTime, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return ClockTime(hour*60 + minute), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Slot is a half-open interval [Start, End) on a calendar date.
type Slot struct {
	Date  time.Time
	Start ClockTime
	End   ClockTime
}

// NewSlot builds a slot from already-parsed values. Date is truncated to midnight UTC.
func NewSlot(date time.Time, start, end ClockTime) (Slot, error) {
	if start < 0 || end > 24*60 {
		return Slot{}, fmt.Errorf("time out of range")
	}
	if start >= end {
		return Slot{}, fmt.Errorf("end time must be after start time")
	}
	y, mo, d := date.Date()
	return Slot{Date: time.Date(y, mo, d, 0, 0, 0, 0, time.UTC), Start: start, End: end}, nil
}

// ParseSlot parses a YYYY-MM-DD date and two HH:MM times.
func ParseSlot(date, start, end string) (Slot, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return Slot{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	s, err := ParseClock(start)
	if err != nil {
		return Slot{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Slot{}, err
	}
	return NewSlot(d, s, e)
}

func (s Slot) SameDate(other Slot) bool {
	return s.Date.Equal(other.Date)
}

// Overlaps reports whether both slots fall on the same date and their
// intervals intersect. Back-to-back slots do not overlap.
func (s Slot) Overlaps(other Slot) bool {
	if !s.SameDate(other) {
		return false
	}
	return s.Start < other.End && s.End > other.Start
}

// StartsAt combines date and start time into one instant in loc.
func (s Slot) StartsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, mo, d := s.Date.Date()
	return time.Date(y, mo, d, s.Start.Hour(), s.Start.Minute(), 0, 0, loc)
}

// EndsAt combines date and end time into one instant in loc.
func (s Slot) EndsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, mo, d := s.Date.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, loc).Add(time.Duration(s.End) * time.Minute)
}

func (s Slot) DateString() string {
	return s.Date.Format(DateLayout)
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %s-%s", s.DateString(), s.Start, s.End)
}
