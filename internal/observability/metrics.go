package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storm_alert"

// Metrics holds the Prometheus counters, histograms, and gauges for the alert aggregator.
type Metrics struct {
	Ticks           prometheus.Counter
	TickErrors      prometheus.Counter
	TickDuration    prometheus.Histogram
	PipelineRunning prometheus.Gauge

	// Score metrics, refreshed on every successful tick.
	CurrentScore          prometheus.Gauge
	AlertsScored          prometheus.Gauge
	TornadoWarningsActive prometheus.Gauge

	Notifications *prometheus.CounterVec // labels: kind, outcome={sent,error}
	StoreErrors   *prometheus.CounterVec // labels: op={load,save}
	OutlookChecks *prometheus.CounterVec // labels: outcome={unchanged,replaced,error}
}

// NewMetrics creates and registers all aggregator metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Ticks,
		m.TickErrors,
		m.TickDuration,
		m.PipelineRunning,
		m.CurrentScore,
		m.AlertsScored,
		m.TornadoWarningsActive,
		m.Notifications,
		m.StoreErrors,
		m.OutlookChecks,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total aggregation ticks started.",
		}),
		TickErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_errors_total",
			Help:      "Total ticks aborted by a feed error.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Duration of a complete fetch-score-notify cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the aggregator loop is active, 0 when shut down.",
		}),
		CurrentScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_score",
			Help:      "Composite severe weather score from the last tick.",
		}),
		AlertsScored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alerts_scored",
			Help:      "Number of scoring alerts in the last feed batch.",
		}),
		TornadoWarningsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tornado_warnings_active",
			Help:      "Number of tornado warnings in the last feed batch.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by kind and outcome.",
		}, []string{"kind", "outcome"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Durable store failures by operation.",
		}, []string{"op"}),
		OutlookChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outlook_checks_total",
			Help:      "Risk outlook checks by outcome.",
		}, []string{"outcome"}),
	}
}
