package model

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used on every boundary
const DateLayout = "2006-01-02"

// Gregorian range the engine accepts. 1583 is the first full year of the
// Gregorian calendar.
const (
	MinYear = 1583
	MaxYear = 9999
)

// Date builds a civil date (midnight UTC)
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a civil date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, s, err)
	}
	return t, nil
}

// ValidateDate checks that t is a civil date: midnight UTC, inside the
// supported Gregorian range.
func ValidateDate(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	if t.Location() != time.UTC {
		return fmt.Errorf("%w: %s is not a UTC calendar date", ErrInvalidDate, t)
	}
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0 {
		return fmt.Errorf("%w: %s carries a time component", ErrInvalidDate, t)
	}
	if t.Year() < MinYear || t.Year() > MaxYear {
		return fmt.Errorf("%w: year %d outside %d-%d", ErrInvalidDate, t.Year(), MinYear, MaxYear)
	}
	return nil
}
