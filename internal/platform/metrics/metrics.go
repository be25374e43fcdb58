package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for report runs.
type Metrics struct {
	// Report runs by outcome ("success", "failure")
	Runs *prometheus.CounterVec

	// Items processed by run outcome
	ItemsProcessed prometheus.Counter

	// Problems found by category ("order", "library", ...)
	Problems *prometheus.CounterVec

	// Full run latency, catalog lookup included
	RunLatency prometheus.Histogram
}

// New creates the run metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shelf_inventory_runs_total",
			Help: "Total report runs by outcome",
		}, []string{"outcome"}),

		ItemsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "shelf_inventory_items_processed_total",
			Help: "Total scanned items processed by successful runs",
		}),

		Problems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shelf_inventory_problems_total",
			Help: "Total problems found by category",
		}, []string{"category"}),

		RunLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "shelf_inventory_run_duration_seconds",
			Help:    "Duration of a report run including catalog lookup",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementRun records a run outcome.
func (m *Metrics) IncrementRun(outcome string) {
	if m != nil {
		m.Runs.WithLabelValues(outcome).Inc()
	}
}

// AddItems records processed items.
func (m *Metrics) AddItems(n int) {
	if m != nil {
		m.ItemsProcessed.Add(float64(n))
	}
}

// AddProblems records problems of one category.
func (m *Metrics) AddProblems(category string, n int) {
	if m != nil && n > 0 {
		m.Problems.WithLabelValues(category).Add(float64(n))
	}
}

// ObserveRunLatency records the duration of a run.
func (m *Metrics) ObserveRunLatency(d time.Duration) {
	if m != nil {
		m.RunLatency.Observe(d.Seconds())
	}
}
