package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for calm streak runs.
type Metrics struct {
	Runs        *prometheus.CounterVec // labels: outcome={success,not_found,invalid_input,write_error,error}
	StageErrors *prometheus.CounterVec // labels: stage={extract,transform,load,notify}

	// Last run shape.
	TimeSteps prometheus.Gauge
	GridCells prometheus.Gauge

	// Last run results.
	MeanSpeed    prometheus.Gauge
	MaxSpeed     prometheus.Gauge
	MaxStreak    prometheus.Gauge
	CalmFraction prometheus.Gauge
	LastSuccess  prometheus.Gauge

	StageDuration *prometheus.HistogramVec // labels: stage={extract,transform,load}

	registry *prometheus.Registry
}

// NewMetrics creates all run metrics on a dedicated registry. A batch run has
// no scrape endpoint, so the registry is exported with WriteTextfile instead.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.Runs,
		m.StageErrors,
		m.TimeSteps,
		m.GridCells,
		m.MeanSpeed,
		m.MaxSpeed,
		m.MaxStreak,
		m.CalmFraction,
		m.LastSuccess,
		m.StageDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics for tests that only read
// collector values.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calmstreak",
			Name:      "runs_total",
			Help:      "Completed runs by outcome.",
		}, []string{"outcome"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calmstreak",
			Name:      "stage_errors_total",
			Help:      "Failures by pipeline stage.",
		}, []string{"stage"}),
		TimeSteps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calmstreak",
			Name:      "time_steps",
			Help:      "Time steps in the last processed grid.",
		}),
		GridCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calmstreak",
			Name:      "grid_cells",
			Help:      "Horizontal cells in the last processed grid.",
		}),
		MeanSpeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calmstreak",
			Name:      "mean_wind_speed_meters_per_second",
			Help:      "Mean 10 m wind speed over the last processed grid.",
		}),
		MaxSpeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calmstreak",
			Name:      "max_wind_speed_meters_per_second",
			Help:      "Maximum 10 m wind speed over the last processed grid.",
		}),
		MaxStreak: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calmstreak",
			Name:      "max_calm_streak_steps",
			Help:      "Longest calm streak in the last processed grid.",
		}),
		CalmFraction: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calmstreak",
			Name:      "calm_cell_fraction",
			Help:      "Share of cells in a calm streak at the final time step.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calmstreak",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "calmstreak",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"stage"}),
	}
}

// WriteTextfile writes the registry in Prometheus text format to path,
// atomically replacing any previous file.
func (m *Metrics) WriteTextfile(path string) error {
	if m.registry == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
