// Package templates renders the HTML views of the deadline calculator.
// Components live in .templ files; run `templ generate` after editing them.
package templates

import (
	"fmt"
	"time"

	"github.com/jjenkins/prazos/internal/calendar"
	"github.com/jjenkins/prazos/internal/model"
)

// CalculatorForm holds the values typed into the calculator form
type CalculatorForm struct {
	DeadlineTypeCode string
	ExpeditionDate   string
	State            string
	Municipality     string
	PublicDefender   bool
	CaseRef          string
}

// ResultView is a calculated deadline ready for display
type ResultView struct {
	Type   model.DeadlineType
	Result *model.CalculationResult
	// BusinessDaysLeft counts business days from today to the final
	// deadline; negative once the deadline has passed
	BusinessDaysLeft int
	// DaysLeftUnknown is set when the deadline is too far ahead to count
	DaysLeftUnknown bool
	RecordID        string
}

// CalculatorPage is the data of the calculator page
type CalculatorPage struct {
	Types  []model.DeadlineType
	Form   CalculatorForm
	Result *ResultView
	Error  string
}

// HolidaysPage is the data of the holiday calendar page
type HolidaysPage struct {
	Year         int
	Jurisdiction model.Jurisdiction
	Holidays     []calendar.Holiday
	Incomplete   bool
	Error        string
}

// HistoryPage is the data of the calculation history page
type HistoryPage struct {
	Records []model.CalculationRecord
	Summary map[string]string
	Enabled bool
	CaseRef string
}

var areaLabels = map[model.AreaOfLaw]string{
	model.AreaCriminal: "Penal",
	model.AreaCivil:    "Cível",
	model.AreaLabor:    "Trabalhista",
	model.AreaOther:    "Outros",
}

var ruleLabels = map[model.Rule]string{
	model.RuleReadingTime: "Tempo de leitura",
	model.RuleMultiplier:  "Prazo em dobro",
	model.RuleCounting:    "Contagem",
	model.RuleRollForward: "Prorrogação",
}

var layerLabels = map[calendar.Layer]string{
	calendar.LayerNationalFixed:  "Nacional",
	calendar.LayerNationalMoving: "Nacional (móvel)",
	calendar.LayerRecess:         "Recesso",
	calendar.LayerState:          "Estadual",
	calendar.LayerMunicipal:      "Municipal",
}

type summaryCard struct {
	Key   string
	Label string
}

var summaryCards = []summaryCard{
	{"total_calculations", "Cálculos"},
	{"rolled_forward", "Prorrogados"},
	{"incomplete_jurisdiction", "Sem feriados locais"},
}

var weekdays = [...]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"}

// FormatDate renders a date as dd/mm/aaaa
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatLongDate renders a date as "dd/mm/aaaa (dia da semana)"
func FormatLongDate(t time.Time) string {
	return FormatDate(t) + " (" + weekdays[t.Weekday()] + ")"
}

// typeGroup is one <optgroup> of the deadline type select
type typeGroup struct {
	Label string
	Types []model.DeadlineType
}

// groupByArea splits types, already ordered by area, into option groups
func groupByArea(types []model.DeadlineType) []typeGroup {
	var groups []typeGroup
	for i, t := range types {
		if i == 0 || t.AreaOfLaw != types[i-1].AreaOfLaw {
			groups = append(groups, typeGroup{Label: areaLabels[t.AreaOfLaw]})
		}
		g := &groups[len(groups)-1]
		g.Types = append(g.Types, t)
	}
	return groups
}

func optionLabel(t model.DeadlineType) string {
	if t.LegalBasis == "" {
		return t.Name
	}
	return t.Name + " (" + t.LegalBasis + ")"
}

type deadlineStatus int

const (
	statusUnknown deadlineStatus = iota
	statusPending
	statusDueToday
	statusOverdue
)

func (v ResultView) status() deadlineStatus {
	switch {
	case v.DaysLeftUnknown:
		return statusUnknown
	case v.BusinessDaysLeft > 0:
		return statusPending
	case v.BusinessDaysLeft == 0:
		return statusDueToday
	default:
		return statusOverdue
	}
}

func daysLeftText(n int) string {
	if n == 1 {
		return "Resta 1 dia útil."
	}
	return fmt.Sprintf("Restam %d dias úteis.", n)
}

type resultRow struct {
	Label string
	Value string
}

func (v ResultView) rows() []resultRow {
	r := v.Result
	rows := []resultRow{
		{"Expedição", FormatLongDate(r.ExpeditionDate)},
		{"Ciência presumida", FormatLongDate(r.ReadingDate)},
		{"Prazo legal", formatDays(r.LegalDays, r.CountingMode)},
		{"Prazo aplicado", formatDays(r.EffectiveDays, r.CountingMode)},
		{"Termo final bruto", FormatLongDate(r.RawDeadlineDate)},
	}
	if v.RecordID != "" {
		rows = append(rows, resultRow{"Registro", v.RecordID})
	}
	return rows
}

func formatDays(n int, mode model.CountingMode) string {
	unit := "dias corridos"
	if mode == model.BusinessDays {
		unit = "dias úteis"
	}
	if n == 1 {
		unit = "dia corrido"
		if mode == model.BusinessDays {
			unit = "dia útil"
		}
	}
	return fmt.Sprintf("%d %s", n, unit)
}
