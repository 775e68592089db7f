package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics represents the pipeline engine metrics.
type Metrics struct {
	SeriesProcessed   prometheus.Counter
	SeriesFailed      prometheus.Counter
	IndicatorDuration *prometheus.HistogramVec
}

// NewMetrics creates the pipeline metrics and registers them with the provided registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SeriesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "demark_series_processed_total",
			Help: "Total series the indicator pipeline was applied to",
		}),
		SeriesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "demark_series_failed_total",
			Help: "Total series the indicator pipeline failed for",
		}),
		IndicatorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "demark_indicator_duration_seconds",
			Help:    "Indicator apply latency per series",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"indicator"}),
	}

	reg.MustRegister(m.SeriesProcessed, m.SeriesFailed, m.IndicatorDuration)

	return m
}

// observeSuccess records a successfully processed series.
func (m *Metrics) observeSuccess() {
	if m == nil {
		return
	}

	m.SeriesProcessed.Inc()
}

// observeFailure records a failed series.
func (m *Metrics) observeFailure() {
	if m == nil {
		return
	}

	m.SeriesFailed.Inc()
}

// observeDuration records the time an indicator took to apply.
func (m *Metrics) observeDuration(indicator string, d time.Duration) {
	if m == nil {
		return
	}

	m.IndicatorDuration.WithLabelValues(indicator).Observe(d.Seconds())
}
