package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadlineTypeValidate(t *testing.T) {
	valid := DeadlineType{Code: "APELACAO_CRIMINAL", LegalDays: 5, ReadingTimeDays: 10, AreaOfLaw: AreaCriminal}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*DeadlineType)
	}{
		{"empty code", func(d *DeadlineType) { d.Code = "  " }},
		{"zero legal days", func(d *DeadlineType) { d.LegalDays = 0 }},
		{"negative legal days", func(d *DeadlineType) { d.LegalDays = -3 }},
		{"negative reading time", func(d *DeadlineType) { d.ReadingTimeDays = -1 }},
		{"unknown area", func(d *DeadlineType) { d.AreaOfLaw = "TAX" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			assert.ErrorIs(t, d.Validate(), ErrInvalidTemplate)
		})
	}
}

func TestCountingMode(t *testing.T) {
	assert.Equal(t, BusinessDays, (&DeadlineType{CountsInBusinessDays: true}).CountingMode())
	assert.Equal(t, CalendarDays, (&DeadlineType{}).CountingMode())
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate(Date(2025, time.November, 10)))

	loc := time.FixedZone("BRT", -3*60*60)
	for name, d := range map[string]time.Time{
		"zero":           {},
		"time component": time.Date(2025, time.November, 10, 14, 0, 0, 0, time.UTC),
		"non utc":        time.Date(2025, time.November, 10, 0, 0, 0, 0, loc),
		"pre gregorian":  Date(1500, time.January, 1),
	} {
		assert.ErrorIs(t, ValidateDate(d), ErrInvalidDate, name)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-11-10")
	require.NoError(t, err)
	assert.Equal(t, Date(2025, time.November, 10), d)

	_, err = ParseDate("2025-02-30")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("10/11/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestFixedHolidayOccursIn(t *testing.T) {
	leap := FixedHoliday{Name: "bissexto", Month: time.February, Day: 29, Scope: ScopeNational}
	require.NoError(t, leap.Validate())

	_, ok := leap.OccursIn(2025)
	assert.False(t, ok)
	d, ok := leap.OccursIn(2024)
	assert.True(t, ok)
	assert.Equal(t, Date(2024, time.February, 29), d)

	oneOff := FixedHoliday{Name: "decreto", Month: time.March, Day: 3, Year: 2025, Scope: ScopeNational}
	_, ok = oneOff.OccursIn(2026)
	assert.False(t, ok)
}

func TestFixedHolidayValidate(t *testing.T) {
	assert.Error(t, FixedHoliday{Name: "x", Month: 13, Day: 1, Scope: ScopeNational}.Validate())
	assert.Error(t, FixedHoliday{Name: "x", Month: time.April, Day: 31, Scope: ScopeNational}.Validate())
	assert.Error(t, FixedHoliday{Name: "x", Month: time.April, Day: 1, Scope: ScopeMunicipal, State: "SP"}.Validate())
	assert.Error(t, FixedHoliday{Name: "x", Month: time.April, Day: 1, Scope: "WORLD"}.Validate())
	assert.NoError(t, FixedHoliday{Name: "x", Month: time.April, Day: 1, Scope: ScopeState, State: "BA"}.Validate())
}

func TestRecessPeriod(t *testing.T) {
	recess := RecessPeriod{Name: "Recesso forense", StartMonth: time.December, StartDay: 20, EndMonth: time.January, EndDay: 6}
	require.NoError(t, recess.Validate())
	assert.True(t, recess.WrapsYear())

	start, end := recess.Span(2025)
	assert.Equal(t, Date(2025, time.December, 20), start)
	assert.Equal(t, Date(2026, time.January, 6), end)

	july := RecessPeriod{Name: "Férias coletivas", StartMonth: time.July, StartDay: 2, EndMonth: time.July, EndDay: 31}
	assert.False(t, july.WrapsYear())

	same := RecessPeriod{Name: "x", StartMonth: time.July, StartDay: 2, EndMonth: time.July, EndDay: 2}
	assert.Error(t, same.Validate())
}

func TestJurisdictionNormalize(t *testing.T) {
	j := Jurisdiction{State: " rj ", Municipality: " Niterói "}.Normalize()
	assert.Equal(t, Jurisdiction{State: "RJ", Municipality: "Niterói"}, j)
	assert.Equal(t, "RJ/Niterói", j.String())
	assert.Equal(t, "RJ", Jurisdiction{State: "RJ"}.String())
}
