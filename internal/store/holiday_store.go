package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/prazos/internal/model"
)

// HolidayStore handles database operations for holidays, recess periods and
// jurisdiction coverage
type HolidayStore struct {
	db *sql.DB
}

// NewHolidayStore creates a new HolidayStore
func NewHolidayStore(db *sql.DB) *HolidayStore {
	return &HolidayStore{db: db}
}

// UpsertFixed inserts or renames a fixed holiday. It reports whether a new
// row was created.
func (s *HolidayStore) UpsertFixed(ctx context.Context, h *model.FixedHoliday) (bool, error) {
	if err := h.Validate(); err != nil {
		return false, err
	}

	query := `
		INSERT INTO fixed_holidays (name, month, day, year, scope, state, municipality)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (scope, state, municipality, month, day, year) DO UPDATE SET
			name = EXCLUDED.name
		RETURNING id, (xmax = 0) AS inserted
	`

	var inserted bool
	err := s.db.QueryRowContext(ctx, query,
		h.Name,
		int(h.Month),
		h.Day,
		h.Year,
		string(h.Scope),
		h.State,
		h.Municipality,
	).Scan(&h.ID, &inserted)

	if err != nil {
		return false, fmt.Errorf("failed to upsert holiday %s: %w", h.Name, err)
	}

	return inserted, nil
}

// UpsertMoving inserts or updates a moving holiday rule by name
func (s *HolidayStore) UpsertMoving(ctx context.Context, m *model.MovingHolidayRule) (bool, error) {
	query := `
		INSERT INTO moving_holidays (name, offset_from_easter)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			offset_from_easter = EXCLUDED.offset_from_easter
		RETURNING id, (xmax = 0) AS inserted
	`

	var inserted bool
	if err := s.db.QueryRowContext(ctx, query, m.Name, m.OffsetFromEaster).Scan(&m.ID, &inserted); err != nil {
		return false, fmt.Errorf("failed to upsert moving holiday %s: %w", m.Name, err)
	}

	return inserted, nil
}

// UpsertRecess inserts or updates a recess period by name
func (s *HolidayStore) UpsertRecess(ctx context.Context, r *model.RecessPeriod) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}

	query := `
		INSERT INTO recess_periods (name, start_month, start_day, end_month, end_day)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			start_month = EXCLUDED.start_month,
			start_day = EXCLUDED.start_day,
			end_month = EXCLUDED.end_month,
			end_day = EXCLUDED.end_day
		RETURNING id, (xmax = 0) AS inserted
	`

	var inserted bool
	err := s.db.QueryRowContext(ctx, query,
		r.Name,
		int(r.StartMonth),
		r.StartDay,
		int(r.EndMonth),
		r.EndDay,
	).Scan(&r.ID, &inserted)

	if err != nil {
		return false, fmt.Errorf("failed to upsert recess %s: %w", r.Name, err)
	}

	return inserted, nil
}

// AddCoverage marks a jurisdiction's local holiday data as complete
func (s *HolidayStore) AddCoverage(ctx context.Context, j model.Jurisdiction) error {
	j = j.Normalize()
	query := `
		INSERT INTO jurisdiction_coverage (state, municipality)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, j.State, j.Municipality); err != nil {
		return fmt.Errorf("failed to add coverage for %s: %w", j, err)
	}

	return nil
}

// LoadConfig reads every holiday table into a single snapshot the registry
// can be built from
func (s *HolidayStore) LoadConfig(ctx context.Context) (model.HolidayConfig, error) {
	var cfg model.HolidayConfig

	fixed, err := s.loadFixed(ctx)
	if err != nil {
		return cfg, err
	}
	cfg.Fixed = fixed

	if cfg.Moving, err = s.loadMoving(ctx); err != nil {
		return cfg, err
	}
	if cfg.Recess, err = s.loadRecess(ctx); err != nil {
		return cfg, err
	}
	if cfg.Coverage, err = s.loadCoverage(ctx); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (s *HolidayStore) loadFixed(ctx context.Context) ([]model.FixedHoliday, error) {
	query := `
		SELECT id, name, month, day, year, scope, state, municipality
		FROM fixed_holidays
		ORDER BY scope, state, municipality, month, day
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixed holidays: %w", err)
	}
	defer rows.Close()

	var holidays []model.FixedHoliday
	for rows.Next() {
		var h model.FixedHoliday
		var month int
		var scope string
		if err := rows.Scan(&h.ID, &h.Name, &month, &h.Day, &h.Year, &scope, &h.State, &h.Municipality); err != nil {
			return nil, fmt.Errorf("failed to scan fixed holiday: %w", err)
		}
		h.Month = time.Month(month)
		h.Scope = model.HolidayScope(scope)
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}

func (s *HolidayStore) loadMoving(ctx context.Context) ([]model.MovingHolidayRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, offset_from_easter FROM moving_holidays ORDER BY offset_from_easter`)
	if err != nil {
		return nil, fmt.Errorf("failed to query moving holidays: %w", err)
	}
	defer rows.Close()

	var rules []model.MovingHolidayRule
	for rows.Next() {
		var m model.MovingHolidayRule
		if err := rows.Scan(&m.ID, &m.Name, &m.OffsetFromEaster); err != nil {
			return nil, fmt.Errorf("failed to scan moving holiday: %w", err)
		}
		rules = append(rules, m)
	}

	return rules, rows.Err()
}

func (s *HolidayStore) loadRecess(ctx context.Context) ([]model.RecessPeriod, error) {
	query := `
		SELECT id, name, start_month, start_day, end_month, end_day
		FROM recess_periods
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recess periods: %w", err)
	}
	defer rows.Close()

	var periods []model.RecessPeriod
	for rows.Next() {
		var r model.RecessPeriod
		var startMonth, endMonth int
		if err := rows.Scan(&r.ID, &r.Name, &startMonth, &r.StartDay, &endMonth, &r.EndDay); err != nil {
			return nil, fmt.Errorf("failed to scan recess period: %w", err)
		}
		r.StartMonth = time.Month(startMonth)
		r.EndMonth = time.Month(endMonth)
		periods = append(periods, r)
	}

	return periods, rows.Err()
}

func (s *HolidayStore) loadCoverage(ctx context.Context) ([]model.Jurisdiction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state, municipality FROM jurisdiction_coverage ORDER BY state, municipality`)
	if err != nil {
		return nil, fmt.Errorf("failed to query coverage: %w", err)
	}
	defer rows.Close()

	var coverage []model.Jurisdiction
	for rows.Next() {
		var j model.Jurisdiction
		if err := rows.Scan(&j.State, &j.Municipality); err != nil {
			return nil, fmt.Errorf("failed to scan coverage: %w", err)
		}
		coverage = append(coverage, j)
	}

	return coverage, rows.Err()
}

// SeedChecksum returns the checksum of the last import of a seed file, or ""
// when it was never imported
func (s *HolidayStore) SeedChecksum(ctx context.Context, fileName string) (string, error) {
	var checksum string
	err := s.db.QueryRowContext(ctx, `SELECT checksum FROM seed_imports WHERE file_name = $1`, fileName).Scan(&checksum)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get checksum for %s: %w", fileName, err)
	}
	return checksum, nil
}

// SaveSeedChecksum records a successful import of a seed file
func (s *HolidayStore) SaveSeedChecksum(ctx context.Context, fileName, checksum string) error {
	query := `
		INSERT INTO seed_imports (file_name, checksum, imported_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (file_name) DO UPDATE SET
			checksum = EXCLUDED.checksum,
			imported_at = EXCLUDED.imported_at
	`

	if _, err := s.db.ExecContext(ctx, query, fileName, checksum); err != nil {
		return fmt.Errorf("failed to save checksum for %s: %w", fileName, err)
	}
	return nil
}
