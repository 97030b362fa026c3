package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for deadline calculations
type Metrics struct {
	// Calculations by deadline type and counting mode
	Calculations *prometheus.CounterVec

	// Rejected calculations by error kind
	Failures *prometheus.CounterVec

	// Deadlines moved by the roll-forward stage
	RolledForward prometheus.Counter

	// Results computed with national holidays only
	IncompleteJurisdiction *prometheus.CounterVec

	CalculateLatency prometheus.Histogram
}

// New registers the calculation metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calculations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prazos_calculations_total",
			Help: "Total deadline calculations by deadline type and counting mode",
		}, []string{"deadline_type", "counting_mode"}),

		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prazos_calculation_failures_total",
			Help: "Rejected deadline calculations by error kind",
		}, []string{"kind"}), // kind: "unknown_type", "invalid_date", "invalid_template", "other"

		RolledForward: f.NewCounter(prometheus.CounterOpts{
			Name: "prazos_rolled_forward_total",
			Help: "Deadlines extended because they fell on a non-business day",
		}),

		IncompleteJurisdiction: f.NewCounterVec(prometheus.CounterOpts{
			Name: "prazos_incomplete_jurisdiction_total",
			Help: "Calculations that fell back to national holidays only",
		}, []string{"state"}),

		CalculateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "prazos_calculate_duration_seconds",
			Help:    "Duration of a single deadline calculation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
	}
}

// IncrementCalculation records a successful calculation
func (m *Metrics) IncrementCalculation(deadlineType, countingMode string) {
	if m != nil {
		m.Calculations.WithLabelValues(deadlineType, countingMode).Inc()
	}
}

// IncrementFailure records a rejected calculation
func (m *Metrics) IncrementFailure(kind string) {
	if m != nil {
		m.Failures.WithLabelValues(kind).Inc()
	}
}

// IncrementRolledForward records a roll-forward
func (m *Metrics) IncrementRolledForward() {
	if m != nil {
		m.RolledForward.Inc()
	}
}

// IncrementIncomplete records a national-only fallback for state
func (m *Metrics) IncrementIncomplete(state string) {
	if m != nil {
		m.IncompleteJurisdiction.WithLabelValues(state).Inc()
	}
}

// ObserveCalculateLatency records the duration of one calculation
func (m *Metrics) ObserveCalculateLatency(d time.Duration) {
	if m != nil {
		m.CalculateLatency.Observe(d.Seconds())
	}
}
