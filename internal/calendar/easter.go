// Package calendar resolves Brazilian court holidays and does business-day
// arithmetic over them.
package calendar

import (
	"fmt"
	"time"

	"github.com/jjenkins/prazos/internal/model"
)

// DefaultMovingHolidays are the Easter-based observances of the Brazilian
// judiciary calendar.
var DefaultMovingHolidays = []model.MovingHolidayRule{
	{Name: "Carnaval", OffsetFromEaster: -47},
	{Name: "Sexta-feira Santa", OffsetFromEaster: -2},
	{Name: "Corpus Christi", OffsetFromEaster: 60},
}

// EasterSunday returns Western Easter Sunday for year using the anonymous
// Gregorian (Meeus/Jones/Butcher) algorithm.
func EasterSunday(year int) (time.Time, error) {
	if year < model.MinYear || year > model.MaxYear {
		return time.Time{}, fmt.Errorf("%w: %d is outside the Gregorian range %d-%d", model.ErrInvalidYear, year, model.MinYear, model.MaxYear)
	}

	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451

	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return model.Date(year, time.Month(month), day), nil
}

// MovingHoliday is a resolved occurrence of a moving holiday rule
type MovingHoliday struct {
	Name string
	Date time.Time
}

// MovingHolidays resolves rules against the Easter Sunday of year
func MovingHolidays(year int, rules []model.MovingHolidayRule) ([]MovingHoliday, error) {
	easter, err := EasterSunday(year)
	if err != nil {
		return nil, err
	}

	out := make([]MovingHoliday, 0, len(rules))
	for _, r := range rules {
		out = append(out, MovingHoliday{
			Name: r.Name,
			Date: easter.AddDate(0, 0, r.OffsetFromEaster),
		})
	}
	return out, nil
}
