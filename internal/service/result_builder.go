package service

import (
	"fmt"
	"time"

	"github.com/jjenkins/prazos/internal/model"
)

// ReasonCatalog produces the human readable reason of each pipeline stage.
// Swapping the catalog changes the trace language without touching the rules.
type ReasonCatalog interface {
	ReadingTime(days int, reading time.Time) string
	Multiplier(multiplier int, doubles, publicDefender bool) string
	Counting(mode model.CountingMode, days int, raw time.Time) string
	RollForward(raw, final time.Time, cause string) string
}

// PortugueseReasons is the default pt-BR catalog
type PortugueseReasons struct{}

const brDate = "02/01/2006"

func (PortugueseReasons) ReadingTime(days int, reading time.Time) string {
	if days == 0 {
		return "Sem tempo de leitura: prazo começa a partir da expedição"
	}
	return fmt.Sprintf("Tempo de leitura de %d dias corridos: ciência presumida em %s", days, reading.Format(brDate))
}

func (PortugueseReasons) Multiplier(multiplier int, doubles, publicDefender bool) string {
	switch {
	case multiplier == 2:
		return "Prazo legal x2 aplicado: parte é a Defensoria Pública"
	case doubles && !publicDefender:
		return "Prazo simples: parte não é a Defensoria Pública"
	default:
		return "Prazo simples: tipo de prazo não admite contagem em dobro"
	}
}

func (PortugueseReasons) Counting(mode model.CountingMode, days int, raw time.Time) string {
	if mode == model.BusinessDays {
		return fmt.Sprintf("Contagem de %d dias úteis: vencimento em %s", days, raw.Format(brDate))
	}
	return fmt.Sprintf("Contagem de %d dias corridos: vencimento em %s", days, raw.Format(brDate))
}

func (PortugueseReasons) RollForward(raw, final time.Time, cause string) string {
	if raw.Equal(final) {
		return fmt.Sprintf("Vencimento em %s é dia útil: sem prorrogação", final.Format(brDate))
	}
	return fmt.Sprintf("Vencimento em %s (%s) prorrogado para o próximo dia útil: %s",
		raw.Format(brDate), cause, final.Format(brDate))
}

// ResultBuilder assembles a CalculationResult stage by stage. It holds no
// rule logic: dates and reasons are computed by the engine.
type ResultBuilder struct {
	result model.CalculationResult
}

// NewResultBuilder starts a result for req under tmpl
func NewResultBuilder(req model.CalculationRequest, tmpl *model.DeadlineType) *ResultBuilder {
	return &ResultBuilder{result: model.CalculationResult{
		DeadlineTypeCode: tmpl.Code,
		Jurisdiction:     req.Jurisdiction,
		ExpeditionDate:   req.ExpeditionDate,
		LegalDays:        tmpl.LegalDays,
		CountingMode:     tmpl.CountingMode(),
		Trace:            make([]model.TraceEntry, 0, 4),
	}}
}

func (b *ResultBuilder) add(rule model.Rule, before, after time.Time, reason string) {
	b.result.Trace = append(b.result.Trace, model.TraceEntry{
		Rule:   rule,
		Before: before,
		After:  after,
		Reason: reason,
	})
}

// ReadingTime records the reading date stage
func (b *ResultBuilder) ReadingTime(expedition, reading time.Time, reason string) *ResultBuilder {
	b.result.ReadingDate = reading
	b.add(model.RuleReadingTime, expedition, reading, reason)
	return b
}

// Multiplier records the doubling stage; the running date does not move
func (b *ResultBuilder) Multiplier(at time.Time, multiplier, effectiveDays int, reason string) *ResultBuilder {
	b.result.MultiplierApplied = multiplier
	b.result.EffectiveDays = effectiveDays
	b.add(model.RuleMultiplier, at, at, reason)
	return b
}

// Counting records the raw deadline
func (b *ResultBuilder) Counting(reading, raw time.Time, reason string) *ResultBuilder {
	b.result.RawDeadlineDate = raw
	b.add(model.RuleCounting, reading, raw, reason)
	return b
}

// RollForward records the final deadline
func (b *ResultBuilder) RollForward(raw, final time.Time, reason string) *ResultBuilder {
	b.result.FinalDeadlineDate = final
	b.add(model.RuleRollForward, raw, final, reason)
	return b
}

// JurisdictionDataIncomplete flags a result computed with national holidays only
func (b *ResultBuilder) JurisdictionDataIncomplete(incomplete bool) *ResultBuilder {
	b.result.JurisdictionDataIncomplete = incomplete
	return b
}

// Build returns the assembled result. The trace slice is copied so later
// builder calls cannot alter a returned result.
func (b *ResultBuilder) Build() *model.CalculationResult {
	out := b.result
	out.Trace = append([]model.TraceEntry(nil), b.result.Trace...)
	return &out
}
