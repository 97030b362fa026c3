package model

import (
	"fmt"
	"strings"
	"time"
)

// AreaOfLaw classifies the procedural area a deadline type belongs to
type AreaOfLaw string

const (
	AreaCriminal AreaOfLaw = "CRIMINAL"
	AreaCivil    AreaOfLaw = "CIVIL"
	AreaLabor    AreaOfLaw = "LABOR"
	AreaOther    AreaOfLaw = "OTHER"
)

// Valid reports whether a is one of the known areas
func (a AreaOfLaw) Valid() bool {
	switch a {
	case AreaCriminal, AreaCivil, AreaLabor, AreaOther:
		return true
	default:
		return false
	}
}

// CountingMode says how the legal days of a deadline are counted
type CountingMode string

const (
	BusinessDays CountingMode = "BUSINESS_DAYS"
	CalendarDays CountingMode = "CALENDAR_DAYS"
)

// DefaultReadingTimeDays is the presumed reading period of the electronic
// notification system, used when a seed entry omits reading_time_days.
const DefaultReadingTimeDays = 10

// DeadlineType is the template of a procedural deadline (e.g. "apelação
// criminal, 5 dias"). Templates are read-only configuration: a change only
// affects calculations made after it.
type DeadlineType struct {
	ID                       int
	Code                     string
	Name                     string
	LegalBasis               string
	LegalDays                int
	DoublesForPublicDefender bool
	CountsInBusinessDays     bool
	ReadingTimeDays          int
	AreaOfLaw                AreaOfLaw
	Category                 string
	UpdatedAt                time.Time
}

// CountingMode returns the counting mode implied by the template
func (t *DeadlineType) CountingMode() CountingMode {
	if t.CountsInBusinessDays {
		return BusinessDays
	}
	return CalendarDays
}

// Validate rejects malformed templates before they reach a calculation
func (t *DeadlineType) Validate() error {
	if strings.TrimSpace(t.Code) == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidTemplate)
	}
	if t.LegalDays <= 0 {
		return fmt.Errorf("%w: %s: legal days must be positive, got %d", ErrInvalidTemplate, t.Code, t.LegalDays)
	}
	if t.ReadingTimeDays < 0 {
		return fmt.Errorf("%w: %s: reading time days must not be negative, got %d", ErrInvalidTemplate, t.Code, t.ReadingTimeDays)
	}
	if !t.AreaOfLaw.Valid() {
		return fmt.Errorf("%w: %s: unknown area of law %q", ErrInvalidTemplate, t.Code, t.AreaOfLaw)
	}
	return nil
}

// Jurisdiction identifies where the act runs: a state (UF) and optionally a
// municipality within it.
type Jurisdiction struct {
	State        string
	Municipality string
}

// Normalize upper-cases the state and trims both fields so that "sp" and
// "SP " resolve to the same registry entry.
func (j Jurisdiction) Normalize() Jurisdiction {
	return Jurisdiction{
		State:        strings.ToUpper(strings.TrimSpace(j.State)),
		Municipality: strings.TrimSpace(j.Municipality),
	}
}

// String renders the jurisdiction as "SP" or "SP/São Paulo"
func (j Jurisdiction) String() string {
	if j.Municipality == "" {
		return j.State
	}
	return j.State + "/" + j.Municipality
}
