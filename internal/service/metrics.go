package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MetricsService summarises the calculation audit log and stores the
// summary as metric rows
type MetricsService struct {
	db *sql.DB
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(db *sql.DB) *MetricsService {
	return &MetricsService{db: db}
}

// AuditSummary represents the calculated audit log metrics
type AuditSummary struct {
	TotalCalculations    int
	Doubled              int
	RolledForward        int
	Incomplete           int
	IncompleteRate       float64
	TopDeadlineType      string
	TopDeadlineTypeCount int
	ByDeadlineType       map[string]int
}

// CalculateAndStore calculates audit log metrics and stores them
func (m *MetricsService) CalculateAndStore(ctx context.Context) (*AuditSummary, error) {
	summary := &AuditSummary{ByDeadlineType: make(map[string]int)}

	totalsQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE multiplier = 2),
			COUNT(*) FILTER (WHERE final_deadline_date <> raw_deadline_date),
			COUNT(*) FILTER (WHERE jurisdiction_incomplete)
		FROM calculations
	`
	err := m.db.QueryRowContext(ctx, totalsQuery).Scan(
		&summary.TotalCalculations,
		&summary.Doubled,
		&summary.RolledForward,
		&summary.Incomplete,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate totals: %w", err)
	}

	if summary.TotalCalculations > 0 {
		summary.IncompleteRate = float64(summary.Incomplete) / float64(summary.TotalCalculations)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT deadline_type_code, COUNT(*) AS n
		FROM calculations
		GROUP BY deadline_type_code
		ORDER BY n DESC, deadline_type_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count calculations per type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		var n int
		if err := rows.Scan(&code, &n); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		if summary.TopDeadlineType == "" {
			summary.TopDeadlineType = code
			summary.TopDeadlineTypeCount = n
		}
		summary.ByDeadlineType[code] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count calculations per type: %w", err)
	}

	values := []struct {
		name, value string
	}{
		{"total_calculations", fmt.Sprintf("%d", summary.TotalCalculations)},
		{"doubled", fmt.Sprintf("%d", summary.Doubled)},
		{"rolled_forward", fmt.Sprintf("%d", summary.RolledForward)},
		{"incomplete_jurisdiction", fmt.Sprintf("%d", summary.Incomplete)},
		{"incomplete_rate", fmt.Sprintf("%.4f", summary.IncompleteRate)},
		{"top_deadline_type", summary.TopDeadlineType},
	}
	for _, v := range values {
		if err := m.storeMetric(ctx, v.name, v.value); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// storeMetric stores a single metric value
func (m *MetricsService) storeMetric(ctx context.Context, name, value string) error {
	query := `
		INSERT INTO metrics (metric_name, metric_value, calculated_at)
		VALUES ($1, $2, $3)
	`

	_, err := m.db.ExecContext(ctx, query, name, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store metric %s: %w", name, err)
	}

	return nil
}

// GetLatestMetrics retrieves the most recent value of every metric
func (m *MetricsService) GetLatestMetrics(ctx context.Context) (map[string]string, error) {
	query := `
		SELECT DISTINCT ON (metric_name) metric_name, metric_value
		FROM metrics
		ORDER BY metric_name, calculated_at DESC
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	defer rows.Close()

	metrics := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		metrics[name] = value
	}

	return metrics, rows.Err()
}
