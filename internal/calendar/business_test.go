package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/prazos/internal/model"
)

// everyDay marks every date as a holiday
type everyDay struct{}

func (everyDay) IsHoliday(time.Time, model.Jurisdiction) bool { return true }

func TestIsBusinessDay(t *testing.T) {
	c := NewBusinessCalendar(newTestRegistry(t))

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"plain monday", model.Date(2025, time.November, 10), true},
		{"saturday", model.Date(2025, time.November, 8), false},
		{"sunday", model.Date(2025, time.November, 9), false},
		{"national holiday", model.Date(2025, time.November, 20), false},
		{"carnival", model.Date(2025, time.March, 4), false},
		{"recess weekday", model.Date(2026, time.January, 5), false},
		{"state holiday", model.Date(2025, time.July, 9), false},
		{"first day after recess", model.Date(2026, time.January, 7), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsBusinessDay(tt.date, saoPaulo))
		})
	}
}

func TestAddCalendarDays(t *testing.T) {
	c := NewBusinessCalendar(newTestRegistry(t))

	assert.Equal(t, model.Date(2025, time.November, 20), c.AddCalendarDays(model.Date(2025, time.November, 10), 10))
	assert.Equal(t, model.Date(2026, time.January, 9), c.AddCalendarDays(model.Date(2025, time.December, 10), 30))
	assert.Equal(t, model.Date(2024, time.March, 1), c.AddCalendarDays(model.Date(2024, time.February, 28), 2))
	assert.Equal(t, model.Date(2025, time.November, 10), c.AddCalendarDays(model.Date(2025, time.November, 10), 0))
}

func TestAddBusinessDays(t *testing.T) {
	c := NewBusinessCalendar(newTestRegistry(t))

	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"friday plus five", model.Date(2025, time.June, 6), 5, model.Date(2025, time.June, 13)},
		{"skips corpus christi", model.Date(2025, time.June, 16), 5, model.Date(2025, time.June, 24)},
		{"skips state holiday", model.Date(2025, time.July, 7), 3, model.Date(2025, time.July, 11)},
		{"skips whole recess", model.Date(2025, time.December, 18), 3, model.Date(2026, time.January, 8)},
		{"zero returns start", model.Date(2025, time.November, 8), 0, model.Date(2025, time.November, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.AddBusinessDays(tt.start, tt.n, saoPaulo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddBusinessDaysErrors(t *testing.T) {
	c := NewBusinessCalendar(newTestRegistry(t))
	_, err := c.AddBusinessDays(model.Date(2025, time.June, 6), -1, saoPaulo)
	assert.ErrorIs(t, err, model.ErrInvalidDate)

	blocked := NewBusinessCalendar(everyDay{})
	_, err = blocked.AddBusinessDays(model.Date(2025, time.June, 6), 1, saoPaulo)
	assert.ErrorIs(t, err, model.ErrInvalidDate)
}

func TestNextBusinessDay(t *testing.T) {
	c := NewBusinessCalendar(newTestRegistry(t))

	tests := []struct {
		name string
		date time.Time
		want time.Time
	}{
		{"business day unchanged", model.Date(2025, time.December, 5), model.Date(2025, time.December, 5)},
		{"saturday to monday", model.Date(2025, time.November, 8), model.Date(2025, time.November, 10)},
		{"good friday to monday", model.Date(2025, time.April, 18), model.Date(2025, time.April, 22)},
		{"inside recess rolls past all of it", model.Date(2025, time.December, 20), model.Date(2026, time.January, 7)},
		{"last recess day", model.Date(2026, time.January, 6), model.Date(2026, time.January, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.NextBusinessDay(tt.date, saoPaulo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, got.Before(tt.date))
		})
	}

	blocked := NewBusinessCalendar(everyDay{})
	_, err := blocked.NextBusinessDay(model.Date(2025, time.June, 6), saoPaulo)
	assert.ErrorIs(t, err, model.ErrInvalidDate)
}

func TestCountBusinessDays(t *testing.T) {
	c := NewBusinessCalendar(newTestRegistry(t))

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"one week", model.Date(2025, time.June, 6), model.Date(2025, time.June, 13), 5},
		{"end before start", model.Date(2025, time.June, 13), model.Date(2025, time.June, 6), 0},
		{"across the recess", model.Date(2025, time.December, 19), model.Date(2026, time.January, 7), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CountBusinessDays(tt.start, tt.end, saoPaulo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountBusinessDaysRejectsFarEnd(t *testing.T) {
	cache := NewYearCache()
	r, err := NewRegistry(testConfig(), cache)
	require.NoError(t, err)
	c := NewBusinessCalendar(r)

	_, err = c.CountBusinessDays(model.Date(2026, time.October, 19), model.Date(9999, time.January, 10), saoPaulo)
	assert.ErrorIs(t, err, model.ErrInvalidDate)
	assert.Equal(t, 0, cache.Len())

	start := model.Date(2026, time.October, 19)
	_, err = c.CountBusinessDays(start, start.AddDate(0, 0, maxScanDays), saoPaulo)
	assert.NoError(t, err)
}
