// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package xtime provides extensions to the standard time package.
package xtime

import (
	"fmt"
	"time"
)

// dateLayout is the YYYY-MM-DD layout used for all date strings.
const dateLayout = "2006-01-02"

// Date is a calendar date without a time of day or location.
//
// The zero value is the "unknown" date and is rendered as the empty string.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// TimeToDate returns the Date in which t occurs, in t's location.
func TimeToDate(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return TimeToDate(t), nil
}

// String returns the date in YYYY-MM-DD format, or the empty string for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// IsValid reports whether the date is a real calendar date.
func (d Date) IsValid() bool {
	return TimeToDate(d.In(time.UTC)) == d
}

// In returns the time corresponding to midnight of the date in the given location.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d occurs before d2.
func (d Date) Before(d2 Date) bool {
	return d.Compare(d2) < 0
}

// After reports whether d occurs after d2.
func (d Date) After(d2 Date) bool {
	return d.Compare(d2) > 0
}

// Compare returns -1, 0, or +1 depending on whether d is before, equal to, or after d2.
func (d Date) Compare(d2 Date) int {
	switch {
	case d.Year != d2.Year:
		return compareInt(d.Year, d2.Year)
	case d.Month != d2.Month:
		return compareInt(int(d.Month), int(d2.Month))
	default:
		return compareInt(d.Day, d2.Day)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
//
// The empty string decodes to the zero Date.
func (d *Date) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*d = Date{}
		return nil
	}
	date, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = date
	return nil
}

func compareInt(a int, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
