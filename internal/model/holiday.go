package model

import (
	"fmt"
	"time"
)

// HolidayScope is the territorial reach of a fixed holiday
type HolidayScope string

const (
	ScopeNational  HolidayScope = "NATIONAL"
	ScopeState     HolidayScope = "STATE"
	ScopeMunicipal HolidayScope = "MUNICIPAL"
)

// FixedHoliday falls on the same month/day every year. Year restricts it to a
// single year (decreed closures, "ponto facultativo"); zero means every year.
type FixedHoliday struct {
	ID           int
	Name         string
	Month        time.Month
	Day          int
	Year         int
	Scope        HolidayScope
	State        string
	Municipality string
}

// Validate checks the month/day pair and that the jurisdiction fields match the scope
func (h FixedHoliday) Validate() error {
	if h.Month < time.January || h.Month > time.December {
		return fmt.Errorf("holiday %q: invalid month %d", h.Name, h.Month)
	}
	// 2000 is a leap year, so Feb 29 is accepted here
	if h.Day < 1 || h.Day > daysIn(h.Month, 2000) {
		return fmt.Errorf("holiday %q: invalid day %d for month %d", h.Name, h.Day, h.Month)
	}
	switch h.Scope {
	case ScopeNational:
	case ScopeState:
		if h.State == "" {
			return fmt.Errorf("holiday %q: state scope requires a state", h.Name)
		}
	case ScopeMunicipal:
		if h.State == "" || h.Municipality == "" {
			return fmt.Errorf("holiday %q: municipal scope requires state and municipality", h.Name)
		}
	default:
		return fmt.Errorf("holiday %q: unknown scope %q", h.Name, h.Scope)
	}
	return nil
}

// OccursIn returns the date of the holiday in year, or false when the holiday
// does not happen that year (one-off holidays, Feb 29 in common years).
func (h FixedHoliday) OccursIn(year int) (time.Time, bool) {
	if h.Year != 0 && h.Year != year {
		return time.Time{}, false
	}
	if h.Day > daysIn(h.Month, year) {
		return time.Time{}, false
	}
	return Date(year, h.Month, h.Day), true
}

// MovingHolidayRule is an observance defined as an offset from Easter Sunday
// (Carnival = -47, Good Friday = -2, Corpus Christi = +60).
type MovingHolidayRule struct {
	ID               int
	Name             string
	OffsetFromEaster int
}

// RecessPeriod is the yearly forensic recess, a closed interval that may wrap
// across the new year (Dec 20 - Jan 6).
type RecessPeriod struct {
	ID         int
	Name       string
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
}

// Validate rejects degenerate recess periods
func (r RecessPeriod) Validate() error {
	if r.StartMonth < time.January || r.StartMonth > time.December ||
		r.EndMonth < time.January || r.EndMonth > time.December {
		return fmt.Errorf("recess %q: invalid month", r.Name)
	}
	if r.StartDay < 1 || r.StartDay > daysIn(r.StartMonth, 2001) ||
		r.EndDay < 1 || r.EndDay > daysIn(r.EndMonth, 2001) {
		return fmt.Errorf("recess %q: invalid day", r.Name)
	}
	if r.StartMonth == r.EndMonth && r.StartDay == r.EndDay {
		return fmt.Errorf("recess %q: start and end must differ", r.Name)
	}
	return nil
}

// WrapsYear reports whether the recess starts in one year and ends in the next
func (r RecessPeriod) WrapsYear() bool {
	if r.EndMonth != r.StartMonth {
		return r.EndMonth < r.StartMonth
	}
	return r.EndDay < r.StartDay
}

// Span returns the interval of the recess that starts in year
func (r RecessPeriod) Span(year int) (start, end time.Time) {
	start = Date(year, r.StartMonth, r.StartDay)
	endYear := year
	if r.WrapsYear() {
		endYear++
	}
	return start, Date(endYear, r.EndMonth, r.EndDay)
}

// HolidayConfig is the full holiday data set the registry is built from. It
// is supplied by a seed file or the database, never hard-coded.
type HolidayConfig struct {
	Fixed  []FixedHoliday
	Moving []MovingHolidayRule
	Recess []RecessPeriod

	// Coverage lists jurisdictions whose local holidays are known to be
	// complete even if they declare none. States and municipalities that
	// appear in Fixed are covered implicitly.
	Coverage []Jurisdiction
}

// Validate validates every entry of the configuration
func (c *HolidayConfig) Validate() error {
	for _, h := range c.Fixed {
		if err := h.Validate(); err != nil {
			return err
		}
	}
	for _, r := range c.Recess {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	for _, m := range c.Moving {
		if m.Name == "" {
			return fmt.Errorf("moving holiday with offset %d has no name", m.OffsetFromEaster)
		}
	}
	return nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
