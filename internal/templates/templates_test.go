package templates

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/prazos/internal/calendar"
	"github.com/jjenkins/prazos/internal/model"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func sampleResult() ResultView {
	return ResultView{
		Type: model.DeadlineType{Code: "RESPOSTA_ACUSACAO", Name: "Resposta à acusação", LegalBasis: "CPP art. 396"},
		Result: &model.CalculationResult{
			DeadlineTypeCode:           "RESPOSTA_ACUSACAO",
			Jurisdiction:               model.Jurisdiction{State: "SP", Municipality: "São Paulo"},
			ExpeditionDate:             model.Date(2025, time.December, 1),
			ReadingDate:                model.Date(2025, time.December, 11),
			RawDeadlineDate:            model.Date(2025, time.December, 20),
			FinalDeadlineDate:          model.Date(2026, time.January, 7),
			LegalDays:                  15,
			EffectiveDays:              30,
			MultiplierApplied:          2,
			CountingMode:               model.CalendarDays,
			JurisdictionDataIncomplete: true,
			Trace: []model.TraceEntry{
				{Rule: model.RuleMultiplier, Reason: "Prazo legal x2 aplicado: parte é a Defensoria Pública"},
			},
		},
		BusinessDaysLeft: 3,
		RecordID:         "f47ac10b-58cc-4372-a567-0e02b2c3d479",
	}
}

func TestFormatLongDate(t *testing.T) {
	assert.Equal(t, "07/01/2026 (quarta-feira)", FormatLongDate(model.Date(2026, time.January, 7)))
	assert.Equal(t, "20/12/2025", FormatDate(model.Date(2025, time.December, 20)))
}

func TestResult(t *testing.T) {
	out := render(t, Result(sampleResult()))

	assert.Contains(t, out, `data-final="2026-01-07"`)
	assert.Contains(t, out, "Vencimento: 07/01/2026 (quarta-feira)")
	assert.Contains(t, out, "Restam 3 dias úteis.")
	assert.Contains(t, out, "30 dias corridos")
	assert.Contains(t, out, "Prazo em dobro")
	assert.Contains(t, out, "apenas feriados nacionais")
	assert.Contains(t, out, "f47ac10b-58cc-4372-a567-0e02b2c3d479")
}

func TestResultDeadlineStatus(t *testing.T) {
	v := sampleResult()
	v.BusinessDaysLeft = 0
	assert.Contains(t, render(t, Result(v)), "O prazo vence hoje.")

	v.BusinessDaysLeft = -1
	assert.Contains(t, render(t, Result(v)), "Prazo vencido.")

	v.BusinessDaysLeft = 1
	assert.Contains(t, render(t, Result(v)), "Resta 1 dia útil.")

	v.BusinessDaysLeft, v.DaysLeftUnknown = 0, true
	out := render(t, Result(v))
	assert.NotContains(t, out, "O prazo vence hoje.")
	assert.NotContains(t, out, "Prazo vencido.")
	assert.Contains(t, out, "Vencimento: 07/01/2026 (quarta-feira)")
}

func TestGroupByArea(t *testing.T) {
	groups := groupByArea([]model.DeadlineType{
		{Code: "APELACAO_CIVEL", AreaOfLaw: model.AreaCivil},
		{Code: "CONTESTACAO", AreaOfLaw: model.AreaCivil},
		{Code: "APELACAO_CRIMINAL", AreaOfLaw: model.AreaCriminal},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "Cível", groups[0].Label)
	assert.Len(t, groups[0].Types, 2)
	assert.Equal(t, "Penal", groups[1].Label)
	assert.Empty(t, groupByArea(nil))
}

func TestCalculatorEscapesInput(t *testing.T) {
	page := CalculatorPage{
		Types: []model.DeadlineType{
			{Code: "CONTESTACAO", Name: "Contestação", AreaOfLaw: model.AreaCivil},
			{Code: "RESPOSTA_ACUSACAO", Name: "Resposta à acusação", AreaOfLaw: model.AreaCriminal},
		},
		Form:  CalculatorForm{DeadlineTypeCode: "CONTESTACAO", Municipality: `"><script>alert(1)</script>`},
		Error: "data inválida",
	}
	out := render(t, Calculator(page))

	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, `<option value="CONTESTACAO" selected>`)
	assert.Contains(t, out, `label="Cível"`)
	assert.Contains(t, out, `label="Penal"`)
	assert.Contains(t, out, "data inválida")
	assert.Contains(t, out, `<html lang="pt-BR">`)
}

func TestHolidays(t *testing.T) {
	out := render(t, Holidays(HolidaysPage{
		Year:         2025,
		Jurisdiction: model.Jurisdiction{State: "SP"},
		Holidays: []calendar.Holiday{
			{Date: model.Date(2025, time.July, 9), Name: "Revolução Constitucionalista", Layer: calendar.LayerState},
		},
	}))

	assert.Contains(t, out, "09/07/2025 (quarta-feira)")
	assert.Contains(t, out, "Revolução Constitucionalista")
	assert.Contains(t, out, "Estadual")
	assert.NotContains(t, out, "não estão cadastrados")
}

func TestHistory(t *testing.T) {
	assert.Contains(t, render(t, History(HistoryPage{})), "desativado")

	v := sampleResult()
	out := render(t, History(HistoryPage{
		Enabled: true,
		Records: []model.CalculationRecord{{ID: "1", CaseRef: "0001234-56.2025.8.26.0050", Result: *v.Result}},
		Summary: map[string]string{"total_calculations": "1"},
	}))
	assert.Contains(t, out, "0001234-56.2025.8.26.0050")
	assert.Contains(t, out, "SP/São Paulo")
	assert.Contains(t, out, "07/01/2026")
	assert.Contains(t, out, `name="processo"`)
}
