package model

import "time"

// CalculationRequest asks for the deadline of one act
type CalculationRequest struct {
	ExpeditionDate        time.Time
	DeadlineTypeCode      string
	Jurisdiction          Jurisdiction
	IsPublicDefenderParty bool
}

// Rule names the pipeline stage that produced a trace entry
type Rule string

const (
	RuleReadingTime Rule = "READING_TIME"
	RuleMultiplier  Rule = "MULTIPLIER"
	RuleCounting    Rule = "COUNTING"
	RuleRollForward Rule = "ROLL_FORWARD"
)

// TraceEntry records what one stage did to the running date
type TraceEntry struct {
	Rule   Rule      `json:"rule"`
	Before time.Time `json:"before"`
	After  time.Time `json:"after"`
	Reason string    `json:"reason"`
}

// CalculationResult is the immutable outcome of a deadline calculation.
// The engine never persists it; callers store it against the case record.
type CalculationResult struct {
	DeadlineTypeCode           string
	Jurisdiction               Jurisdiction
	ExpeditionDate             time.Time
	ReadingDate                time.Time
	RawDeadlineDate            time.Time
	FinalDeadlineDate          time.Time
	LegalDays                  int
	EffectiveDays              int
	MultiplierApplied          int
	CountingMode               CountingMode
	JurisdictionDataIncomplete bool
	Trace                      []TraceEntry
}

// CalculationRecord is a persisted calculation, as written by the audit log
type CalculationRecord struct {
	ID        string
	CaseRef   string
	Result    CalculationResult
	CreatedAt time.Time
}
