package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/prazos/internal/calendar"
	"github.com/jjenkins/prazos/internal/model"
	"github.com/jjenkins/prazos/seed"
)

func TestParseEmbeddedHolidays(t *testing.T) {
	content, err := seed.Read("", seed.HolidaysFile)
	require.NoError(t, err)

	hs, err := NewParser().ParseHolidays(content)
	require.NoError(t, err)
	assert.Len(t, hs.Checksum, 32)

	scopes := make(map[model.HolidayScope]int)
	for _, h := range hs.Config.Fixed {
		scopes[h.Scope]++
	}
	assert.Equal(t, 9, scopes[model.ScopeNational])
	assert.Equal(t, 8, scopes[model.ScopeState])
	assert.Equal(t, 8, scopes[model.ScopeMunicipal])
	assert.Len(t, hs.Config.Moving, 3)
	require.Len(t, hs.Config.Recess, 1)
	assert.True(t, hs.Config.Recess[0].WrapsYear())
	assert.Contains(t, hs.Config.Coverage, model.Jurisdiction{State: "MG"})

	r, err := calendar.NewRegistry(hs.Config, nil)
	require.NoError(t, err)
	assert.True(t, r.IsHoliday(model.Date(2026, time.April, 3), model.Jurisdiction{State: "RJ"}))
	assert.True(t, r.IsHoliday(model.Date(2026, time.January, 20), model.Jurisdiction{State: "RJ", Municipality: "Rio de Janeiro"}))
	assert.False(t, r.Incomplete(model.Jurisdiction{State: "MG", Municipality: "Belo Horizonte"}))
}

func TestParseEmbeddedDeadlineTypes(t *testing.T) {
	content, err := seed.Read("", seed.DeadlineTypesFile)
	require.NoError(t, err)

	ds, err := NewParser().ParseDeadlineTypes(content)
	require.NoError(t, err)
	require.NotEmpty(t, ds.Types)

	reg, err := NewTemplateRegistry(ds.Types)
	require.NoError(t, err)

	resposta, err := reg.Get("RESPOSTA_ACUSACAO")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultReadingTimeDays, resposta.ReadingTimeDays)
	assert.Equal(t, model.CalendarDays, resposta.CountingMode())
	assert.Equal(t, "CPP art. 396", resposta.LegalBasis)

	contestacao, err := reg.Get("CONTESTACAO")
	require.NoError(t, err)
	assert.Equal(t, model.BusinessDays, contestacao.CountingMode())
	assert.Equal(t, model.AreaCivil, contestacao.AreaOfLaw)
}

func TestParseHolidaysErrors(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"unknown key", "nacionais:\n  - { name: Natal, date: \"12-25\" }\n"},
		{"bad date", "national:\n  - { name: Natal, date: \"25/12\" }\n"},
		{"impossible date", "national:\n  - { name: Natal, date: \"02-30\" }\n"},
		{"state without state", "state:\n  - { name: Data Magna, date: \"03-25\" }\n"},
		{"degenerate recess", "recess:\n  - { name: Recesso, start: \"07-02\", end: \"07-02\" }\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseHolidays([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestParseHolidaysOneOff(t *testing.T) {
	content := []byte("national:\n  - { name: Ponto facultativo, date: \"11-21\", year: 2025 }\n")
	hs, err := NewParser().ParseHolidays(content)
	require.NoError(t, err)
	require.Len(t, hs.Config.Fixed, 1)
	assert.Equal(t, 2025, hs.Config.Fixed[0].Year)
	assert.Equal(t, time.November, hs.Config.Fixed[0].Month)
}

func TestParseDeadlineTypes(t *testing.T) {
	p := NewParser()

	content := []byte(`
deadline_types:
  - code: embargos_declaracao_civel
    legal_days: 5
    counts_in_business_days: true
    reading_time_days: 0
    area_of_law: civil
`)
	ds, err := p.ParseDeadlineTypes(content)
	require.NoError(t, err)
	require.Len(t, ds.Types, 1)
	assert.Equal(t, "EMBARGOS_DECLARACAO_CIVEL", ds.Types[0].Code)
	assert.Equal(t, 0, ds.Types[0].ReadingTimeDays)
	assert.Equal(t, model.AreaCivil, ds.Types[0].AreaOfLaw)

	again, err := p.ParseDeadlineTypes(content)
	require.NoError(t, err)
	assert.Equal(t, ds.Checksum, again.Checksum)

	_, err = p.ParseDeadlineTypes([]byte("deadline_types:\n  - { code: X, legal_days: 0, area_of_law: CIVIL }\n"))
	assert.ErrorIs(t, err, model.ErrInvalidTemplate)

	_, err = p.ParseDeadlineTypes([]byte("deadline_types:\n  - { code: X, legal_days: 3, area_of_law: TAX }\n"))
	assert.ErrorIs(t, err, model.ErrInvalidTemplate)
}
