package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/prazos/internal/model"
)

func TestResultBuilder(t *testing.T) {
	tmpl := criminalTemplate()
	req := model.CalculationRequest{
		ExpeditionDate:   model.Date(2025, time.November, 10),
		DeadlineTypeCode: tmpl.Code,
		Jurisdiction:     saoPaulo,
	}
	reading := model.Date(2025, time.November, 20)
	raw := model.Date(2025, time.December, 5)

	b := NewResultBuilder(req, &tmpl).
		ReadingTime(req.ExpeditionDate, reading, "leitura").
		Multiplier(reading, 1, 15, "simples").
		Counting(reading, raw, "contagem").
		RollForward(raw, raw, "útil").
		JurisdictionDataIncomplete(true)

	res := b.Build()
	assert.Equal(t, tmpl.Code, res.DeadlineTypeCode)
	assert.Equal(t, reading, res.ReadingDate)
	assert.Equal(t, raw, res.RawDeadlineDate)
	assert.Equal(t, raw, res.FinalDeadlineDate)
	assert.Equal(t, 15, res.LegalDays)
	assert.Equal(t, 15, res.EffectiveDays)
	assert.Equal(t, 1, res.MultiplierApplied)
	assert.Equal(t, model.CalendarDays, res.CountingMode)
	assert.True(t, res.JurisdictionDataIncomplete)
	require.Len(t, res.Trace, 4)

	// further builder calls must not leak into an already built result
	b.RollForward(raw, raw.AddDate(0, 0, 1), "outro")
	assert.Len(t, res.Trace, 4)
	assert.Equal(t, raw, res.FinalDeadlineDate)
}

func TestPortugueseReasons(t *testing.T) {
	r := PortugueseReasons{}
	d := model.Date(2025, time.December, 20)
	next := model.Date(2026, time.January, 7)

	assert.Equal(t, "Sem tempo de leitura: prazo começa a partir da expedição", r.ReadingTime(0, d))
	assert.Equal(t, "Tempo de leitura de 10 dias corridos: ciência presumida em 20/12/2025", r.ReadingTime(10, d))
	assert.Equal(t, "Prazo legal x2 aplicado: parte é a Defensoria Pública", r.Multiplier(2, true, true))
	assert.Equal(t, "Prazo simples: parte não é a Defensoria Pública", r.Multiplier(1, true, false))
	assert.Equal(t, "Prazo simples: tipo de prazo não admite contagem em dobro", r.Multiplier(1, false, true))
	assert.Equal(t, "Contagem de 5 dias úteis: vencimento em 20/12/2025", r.Counting(model.BusinessDays, 5, d))
	assert.Equal(t, "Contagem de 30 dias corridos: vencimento em 20/12/2025", r.Counting(model.CalendarDays, 30, d))
	assert.Equal(t, "Vencimento em 07/01/2026 é dia útil: sem prorrogação", r.RollForward(next, next, ""))
	assert.Equal(t, "Vencimento em 20/12/2025 (Recesso forense) prorrogado para o próximo dia útil: 07/01/2026",
		r.RollForward(d, next, "Recesso forense"))
}

func TestTemplateRegistry(t *testing.T) {
	r, err := NewTemplateRegistry([]model.DeadlineType{criminalTemplate(), civilTemplate()})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	got, err := r.Get(" resposta_acusacao ")
	require.NoError(t, err)
	assert.Equal(t, "RESPOSTA_ACUSACAO", got.Code)

	// callers get a copy
	got.LegalDays = 99
	again, err := r.Get("RESPOSTA_ACUSACAO")
	require.NoError(t, err)
	assert.Equal(t, 15, again.LegalDays)

	_, err = r.Get("NAO_EXISTE")
	assert.ErrorIs(t, err, model.ErrUnknownDeadlineType)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, model.AreaCivil, all[0].AreaOfLaw)
	assert.Equal(t, model.AreaCriminal, all[1].AreaOfLaw)
}

func TestTemplateRegistryRejectsInvalid(t *testing.T) {
	bad := criminalTemplate()
	bad.LegalDays = -1
	_, err := NewTemplateRegistry([]model.DeadlineType{bad})
	assert.ErrorIs(t, err, model.ErrInvalidTemplate)

	dup := criminalTemplate()
	dup.Code = "resposta_acusacao"
	_, err = NewTemplateRegistry([]model.DeadlineType{criminalTemplate(), dup})
	assert.ErrorIs(t, err, model.ErrInvalidTemplate)
}
