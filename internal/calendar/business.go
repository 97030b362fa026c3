package calendar

import (
	"fmt"
	"time"

	"github.com/jjenkins/prazos/internal/model"
)

// maxScanDays bounds every day-by-day walk. Real deadlines need at most a few
// hundred days; hitting the bound means the registry marks (almost) every day
// as a holiday.
const maxScanDays = 3660

// HolidayChecker is the part of the registry business-day arithmetic needs
type HolidayChecker interface {
	IsHoliday(date time.Time, j model.Jurisdiction) bool
}

// BusinessCalendar does day-count arithmetic against a holiday registry
type BusinessCalendar struct {
	holidays HolidayChecker
}

// NewBusinessCalendar creates a BusinessCalendar over holidays
func NewBusinessCalendar(holidays HolidayChecker) *BusinessCalendar {
	return &BusinessCalendar{holidays: holidays}
}

// IsWeekend reports whether date is a Saturday or Sunday
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsBusinessDay is false on weekends and on registry holidays
func (c *BusinessCalendar) IsBusinessDay(date time.Time, j model.Jurisdiction) bool {
	if IsWeekend(date) {
		return false
	}
	return !c.holidays.IsHoliday(date, j)
}

// AddCalendarDays adds n plain calendar days
func (c *BusinessCalendar) AddCalendarDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// AddBusinessDays walks forward from date until n business days have been
// counted. The start day itself is never counted, and n == 0 returns date as
// is even when it is not a business day.
func (c *BusinessCalendar) AddBusinessDays(date time.Time, n int, j model.Jurisdiction) (time.Time, error) {
	if n < 0 {
		return time.Time{}, fmt.Errorf("%w: cannot add %d business days", model.ErrInvalidDate, n)
	}

	d := date
	for counted, scanned := 0, 0; counted < n; scanned++ {
		if scanned >= maxScanDays {
			return time.Time{}, fmt.Errorf("%w: no %d business days within %d days of %s", model.ErrInvalidDate, n, maxScanDays, date.Format(model.DateLayout))
		}
		d = d.AddDate(0, 0, 1)
		if c.IsBusinessDay(d, j) {
			counted++
		}
	}
	return d, nil
}

// NextBusinessDay returns date if it is a business day, otherwise the first
// business day after it. It never moves backward.
func (c *BusinessCalendar) NextBusinessDay(date time.Time, j model.Jurisdiction) (time.Time, error) {
	d := date
	for scanned := 0; !c.IsBusinessDay(d, j); scanned++ {
		if scanned >= maxScanDays {
			return time.Time{}, fmt.Errorf("%w: no business day within %d days of %s", model.ErrInvalidDate, maxScanDays, date.Format(model.DateLayout))
		}
		d = d.AddDate(0, 0, 1)
	}
	return d, nil
}

// CountBusinessDays counts business days in (start, end]. It returns 0 when
// end is not after start, and ErrInvalidDate when end lies more than
// maxScanDays after start.
func (c *BusinessCalendar) CountBusinessDays(start, end time.Time, j model.Jurisdiction) (int, error) {
	if end.After(start.AddDate(0, 0, maxScanDays)) {
		return 0, fmt.Errorf("%w: %s is more than %d days after %s", model.ErrInvalidDate,
			end.Format(model.DateLayout), maxScanDays, start.Format(model.DateLayout))
	}
	n := 0
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsBusinessDay(d, j) {
			n++
		}
	}
	return n, nil
}
