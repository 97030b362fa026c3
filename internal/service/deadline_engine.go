package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jjenkins/prazos/internal/calendar"
	"github.com/jjenkins/prazos/internal/metrics"
	"github.com/jjenkins/prazos/internal/model"
)

// HolidayRegistry is what the engine needs from the holiday registry
type HolidayRegistry interface {
	calendar.HolidayChecker
	HolidayName(date time.Time, j model.Jurisdiction) (string, bool)
	Incomplete(j model.Jurisdiction) bool
	Effective(j model.Jurisdiction) model.Jurisdiction
}

// DeadlineEngine computes legal deadlines. It is stateless: the registry and
// templates it holds are read-only, so one engine serves concurrent requests.
type DeadlineEngine struct {
	registry  HolidayRegistry
	calendar  *calendar.BusinessCalendar
	templates TemplateLookup
	reasons   ReasonCatalog
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewDeadlineEngine creates a DeadlineEngine. metrics and logger may be nil.
func NewDeadlineEngine(registry HolidayRegistry, templates TemplateLookup, m *metrics.Metrics, logger *slog.Logger) *DeadlineEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeadlineEngine{
		registry:  registry,
		calendar:  calendar.NewBusinessCalendar(registry),
		templates: templates,
		reasons:   PortugueseReasons{},
		metrics:   m,
		logger:    logger,
	}
}

// WithReasons returns a copy of the engine that writes traces with catalog
func (e *DeadlineEngine) WithReasons(catalog ReasonCatalog) *DeadlineEngine {
	cp := *e
	cp.reasons = catalog
	return &cp
}

// Calendar exposes the business calendar the engine counts with
func (e *DeadlineEngine) Calendar() *calendar.BusinessCalendar {
	return e.calendar
}

// CalculateByCode resolves the request's deadline type and calculates it
func (e *DeadlineEngine) CalculateByCode(req model.CalculationRequest) (*model.CalculationResult, error) {
	if e.templates == nil {
		return nil, fmt.Errorf("%w: no template registry configured", model.ErrUnknownDeadlineType)
	}
	tmpl, err := e.templates.Get(req.DeadlineTypeCode)
	if err != nil {
		e.metrics.IncrementFailure(failureKind(err))
		return nil, err
	}
	return e.Calculate(req, tmpl)
}

// Calculate runs the fixed deadline pipeline:
//
//  1. reading date: expedition + reading time, in calendar days, never rolled
//  2. multiplier: x2 when the template allows doubling and the party is the
//     public defender
//  3. raw deadline: legal days x multiplier from the reading date, counted in
//     business or calendar days
//  4. final deadline: raw deadline rolled forward to a business day
//
// The stage order is fixed by law and must not change.
func (e *DeadlineEngine) Calculate(req model.CalculationRequest, tmpl *model.DeadlineType) (*model.CalculationResult, error) {
	start := time.Now()
	res, err := e.calculate(req, tmpl)
	if err != nil {
		e.metrics.IncrementFailure(failureKind(err))
		return nil, err
	}

	e.metrics.ObserveCalculateLatency(time.Since(start))
	e.metrics.IncrementCalculation(res.DeadlineTypeCode, string(res.CountingMode))
	if !res.RawDeadlineDate.Equal(res.FinalDeadlineDate) {
		e.metrics.IncrementRolledForward()
	}
	if res.JurisdictionDataIncomplete {
		e.metrics.IncrementIncomplete(e.stateLabel(res.Jurisdiction))
		e.logger.Warn("deadline calculated with national holidays only",
			"deadline_type", res.DeadlineTypeCode,
			"jurisdiction", res.Jurisdiction.String())
	}
	e.logger.Debug("deadline calculated",
		"deadline_type", res.DeadlineTypeCode,
		"expedition", res.ExpeditionDate.Format(model.DateLayout),
		"final", res.FinalDeadlineDate.Format(model.DateLayout))

	return res, nil
}

func (e *DeadlineEngine) calculate(req model.CalculationRequest, tmpl *model.DeadlineType) (*model.CalculationResult, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownDeadlineType, req.DeadlineTypeCode)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	if err := model.ValidateDate(req.ExpeditionDate); err != nil {
		return nil, err
	}

	req.Jurisdiction = req.Jurisdiction.Normalize()
	j := req.Jurisdiction
	b := NewResultBuilder(req, tmpl)

	reading := e.calendar.AddCalendarDays(req.ExpeditionDate, tmpl.ReadingTimeDays)
	b.ReadingTime(req.ExpeditionDate, reading, e.reasons.ReadingTime(tmpl.ReadingTimeDays, reading))

	multiplier := 1
	if tmpl.DoublesForPublicDefender && req.IsPublicDefenderParty {
		multiplier = 2
	}
	effectiveDays := tmpl.LegalDays * multiplier
	b.Multiplier(reading, multiplier, effectiveDays,
		e.reasons.Multiplier(multiplier, tmpl.DoublesForPublicDefender, req.IsPublicDefenderParty))

	var raw time.Time
	if tmpl.CountsInBusinessDays {
		var err error
		raw, err = e.calendar.AddBusinessDays(reading, effectiveDays, j)
		if err != nil {
			return nil, err
		}
	} else {
		raw = e.calendar.AddCalendarDays(reading, effectiveDays)
	}
	b.Counting(reading, raw, e.reasons.Counting(tmpl.CountingMode(), effectiveDays, raw))

	final, err := e.calendar.NextBusinessDay(raw, j)
	if err != nil {
		return nil, err
	}
	if final.Year() > model.MaxYear {
		return nil, fmt.Errorf("%w: deadline %s falls outside the supported range", model.ErrInvalidDate, final.Format(model.DateLayout))
	}
	b.RollForward(raw, final, e.reasons.RollForward(raw, final, e.nonBusinessCause(raw, j)))

	b.JurisdictionDataIncomplete(e.registry.Incomplete(j))
	return b.Build(), nil
}

// stateLabel keeps metric labels to the states the registry knows
func (e *DeadlineEngine) stateLabel(j model.Jurisdiction) string {
	if state := e.registry.Effective(j).State; state != "" {
		return state
	}
	return "unknown"
}

// nonBusinessCause names why date is not a business day
func (e *DeadlineEngine) nonBusinessCause(date time.Time, j model.Jurisdiction) string {
	if name, ok := e.registry.HolidayName(date, j); ok {
		return name
	}
	switch date.Weekday() {
	case time.Saturday:
		return "sábado"
	case time.Sunday:
		return "domingo"
	}
	return ""
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, model.ErrUnknownDeadlineType):
		return "unknown_type"
	case errors.Is(err, model.ErrInvalidDate), errors.Is(err, model.ErrInvalidYear):
		return "invalid_date"
	case errors.Is(err, model.ErrInvalidTemplate):
		return "invalid_template"
	default:
		return "other"
	}
}
