// Package metrics holds the prometheus collectors of scans and solver runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "cowan"

// Collector provides scan and solver metrics. A nil *Collector records nothing.
type Collector struct {
	Registry *prometheus.Registry

	CellsCompleted prometheus.Counter
	CellsFailed    prometheus.Counter
	CellDuration   prometheus.Histogram
	ScansTotal     prometheus.Counter

	StageDuration  *prometheus.HistogramVec
	StageFailures  *prometheus.CounterVec
	SolverRequests *prometheus.CounterVec
}

// NewCollector registers the collectors on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Collector{
		Registry: reg,

		CellsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "grid_cells_completed_total",
			Help:      "Grid cells synthesized and scored",
		}),
		CellsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "grid_cells_failed_total",
			Help:      "Grid cells omitted after a worker failure",
		}),
		CellDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "grid_cell_duration_seconds",
			Help:      "Time to broaden, synthesize and score one grid cell",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		ScansTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "grid_scans_total",
			Help:      "Grid scans started",
		}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "solver_stage_duration_seconds",
			Help:      "Structure solver stage duration by stage",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "solver_stage_failures_total",
			Help:      "Structure solver stage failures by stage",
		}, []string{"stage"}),
		SolverRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "solver_requests_total",
			Help:      "Structure solver requests and actual solver runs",
		}, []string{"kind"}),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

func NewTimer(observer prometheus.Observer) *Timer {
	return &Timer{start: time.Now(), observer: observer}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

func (c *Collector) CellTimer() *Timer {
	if c == nil {
		return NewTimer(nil)
	}
	return NewTimer(c.CellDuration)
}

func (c *Collector) CellDone(failed bool) {
	if c == nil {
		return
	}
	if failed {
		c.CellsFailed.Inc()
	} else {
		c.CellsCompleted.Inc()
	}
}

func (c *Collector) ScanStarted() {
	if c != nil {
		c.ScansTotal.Inc()
	}
}

func (c *Collector) StageTimer(stage string) *Timer {
	if c == nil {
		return NewTimer(nil)
	}
	return NewTimer(c.StageDuration.WithLabelValues(stage))
}

func (c *Collector) StageFailed(stage string) {
	if c != nil {
		c.StageFailures.WithLabelValues(stage).Inc()
	}
}

// SolverRequest counts a solver request of kind "request" or "run"; the
// difference is served from the cache.
func (c *Collector) SolverRequest(kind string) {
	if c != nil {
		c.SolverRequests.WithLabelValues(kind).Inc()
	}
}
