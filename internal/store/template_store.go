package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jjenkins/prazos/internal/model"
)

// TemplateStore handles database operations for deadline types
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

const templateColumns = `
	id, code, name, legal_basis, legal_days, doubles_for_public_defender,
	counts_in_business_days, reading_time_days, area_of_law, category, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*model.DeadlineType, error) {
	var t model.DeadlineType
	var area string
	err := row.Scan(
		&t.ID,
		&t.Code,
		&t.Name,
		&t.LegalBasis,
		&t.LegalDays,
		&t.DoublesForPublicDefender,
		&t.CountsInBusinessDays,
		&t.ReadingTimeDays,
		&area,
		&t.Category,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.AreaOfLaw = model.AreaOfLaw(area)
	return &t, nil
}

// GetByCode retrieves a deadline type by its code
func (s *TemplateStore) GetByCode(ctx context.Context, code string) (*model.DeadlineType, error) {
	query := `SELECT ` + templateColumns + ` FROM deadline_types WHERE code = $1`

	t, err := scanTemplate(s.db.QueryRowContext(ctx, query, strings.ToUpper(strings.TrimSpace(code))))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deadline type %s: %w", code, err)
	}

	return t, nil
}

// GetAll retrieves all deadline types ordered by area and code
func (s *TemplateStore) GetAll(ctx context.Context) ([]model.DeadlineType, error) {
	query := `SELECT ` + templateColumns + ` FROM deadline_types ORDER BY area_of_law, code`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query deadline types: %w", err)
	}
	defer rows.Close()

	var types []model.DeadlineType
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deadline type: %w", err)
		}
		types = append(types, *t)
	}

	return types, rows.Err()
}

// Upsert inserts or updates a deadline type. It reports whether a new row
// was created.
func (s *TemplateStore) Upsert(ctx context.Context, t *model.DeadlineType) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}

	query := `
		INSERT INTO deadline_types (code, name, legal_basis, legal_days,
		                            doubles_for_public_defender, counts_in_business_days,
		                            reading_time_days, area_of_law, category, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			legal_basis = EXCLUDED.legal_basis,
			legal_days = EXCLUDED.legal_days,
			doubles_for_public_defender = EXCLUDED.doubles_for_public_defender,
			counts_in_business_days = EXCLUDED.counts_in_business_days,
			reading_time_days = EXCLUDED.reading_time_days,
			area_of_law = EXCLUDED.area_of_law,
			category = EXCLUDED.category,
			updated_at = NOW()
		RETURNING id, updated_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := s.db.QueryRowContext(ctx, query,
		strings.ToUpper(strings.TrimSpace(t.Code)),
		t.Name,
		t.LegalBasis,
		t.LegalDays,
		t.DoublesForPublicDefender,
		t.CountsInBusinessDays,
		t.ReadingTimeDays,
		string(t.AreaOfLaw),
		t.Category,
	).Scan(&t.ID, &t.UpdatedAt, &inserted)

	if err != nil {
		return false, fmt.Errorf("failed to upsert deadline type %s: %w", t.Code, err)
	}

	return inserted, nil
}
