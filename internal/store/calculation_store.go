package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jjenkins/prazos/internal/model"
)

// CalculationStore is the audit log of deadline calculations
type CalculationStore struct {
	db *sql.DB
}

// NewCalculationStore creates a new CalculationStore
func NewCalculationStore(db *sql.DB) *CalculationStore {
	return &CalculationStore{db: db}
}

// Insert records a calculation result against an optional case reference
func (s *CalculationStore) Insert(ctx context.Context, caseRef string, res *model.CalculationResult) (*model.CalculationRecord, error) {
	trace, err := json.Marshal(res.Trace)
	if err != nil {
		return nil, fmt.Errorf("failed to encode trace: %w", err)
	}

	rec := &model.CalculationRecord{
		ID:      uuid.NewString(),
		CaseRef: caseRef,
		Result:  *res,
	}

	query := `
		INSERT INTO calculations (id, case_ref, deadline_type_code, state, municipality,
		                          expedition_date, reading_date, raw_deadline_date, final_deadline_date,
		                          legal_days, effective_days, multiplier, counting_mode,
		                          jurisdiction_incomplete, trace)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at
	`

	// dates are sent as text so the session time zone cannot shift them
	err = s.db.QueryRowContext(ctx, query,
		rec.ID,
		caseRef,
		res.DeadlineTypeCode,
		res.Jurisdiction.State,
		res.Jurisdiction.Municipality,
		res.ExpeditionDate.Format(model.DateLayout),
		res.ReadingDate.Format(model.DateLayout),
		res.RawDeadlineDate.Format(model.DateLayout),
		res.FinalDeadlineDate.Format(model.DateLayout),
		res.LegalDays,
		res.EffectiveDays,
		res.MultiplierApplied,
		string(res.CountingMode),
		res.JurisdictionDataIncomplete,
		trace,
	).Scan(&rec.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert calculation: %w", err)
	}

	return rec, nil
}

const calculationColumns = `
	id, case_ref, deadline_type_code, state, municipality, expedition_date,
	reading_date, raw_deadline_date, final_deadline_date, legal_days,
	effective_days, multiplier, counting_mode, jurisdiction_incomplete, trace, created_at`

func scanCalculation(row interface{ Scan(...any) error }) (*model.CalculationRecord, error) {
	var rec model.CalculationRecord
	var mode string
	var trace []byte
	r := &rec.Result
	err := row.Scan(
		&rec.ID,
		&rec.CaseRef,
		&r.DeadlineTypeCode,
		&r.Jurisdiction.State,
		&r.Jurisdiction.Municipality,
		&r.ExpeditionDate,
		&r.ReadingDate,
		&r.RawDeadlineDate,
		&r.FinalDeadlineDate,
		&r.LegalDays,
		&r.EffectiveDays,
		&r.MultiplierApplied,
		&mode,
		&r.JurisdictionDataIncomplete,
		&trace,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.CountingMode = model.CountingMode(mode)
	r.ExpeditionDate = civilDate(r.ExpeditionDate)
	r.ReadingDate = civilDate(r.ReadingDate)
	r.RawDeadlineDate = civilDate(r.RawDeadlineDate)
	r.FinalDeadlineDate = civilDate(r.FinalDeadlineDate)
	if err := json.Unmarshal(trace, &r.Trace); err != nil {
		return nil, fmt.Errorf("failed to decode trace of %s: %w", rec.ID, err)
	}

	return &rec, nil
}

// GetByID retrieves a calculation by its ID
func (s *CalculationStore) GetByID(ctx context.Context, id string) (*model.CalculationRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	query := `SELECT ` + calculationColumns + ` FROM calculations WHERE id = $1`

	rec, err := scanCalculation(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calculation %s: %w", id, err)
	}

	return rec, nil
}

// GetRecent retrieves the most recent calculations, newest first
func (s *CalculationStore) GetRecent(ctx context.Context, limit int) ([]model.CalculationRecord, error) {
	query := `SELECT ` + calculationColumns + ` FROM calculations ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculations: %w", err)
	}
	defer rows.Close()

	var records []model.CalculationRecord
	for rows.Next() {
		rec, err := scanCalculation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation: %w", err)
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

// GetByCaseRef retrieves every calculation made for a case, oldest first
func (s *CalculationStore) GetByCaseRef(ctx context.Context, caseRef string) ([]model.CalculationRecord, error) {
	query := `SELECT ` + calculationColumns + ` FROM calculations WHERE case_ref = $1 ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, caseRef)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculations for %s: %w", caseRef, err)
	}
	defer rows.Close()

	var records []model.CalculationRecord
	for rows.Next() {
		rec, err := scanCalculation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan calculation: %w", err)
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}
