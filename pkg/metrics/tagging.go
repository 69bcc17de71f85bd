package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TaggingMetrics records metadata for AI suggestion runs.
type TaggingMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	discarded prometheus.Counter
}

// NewTaggingMetrics registers the tagging metrics on the provided registerer.
func NewTaggingMetrics(reg prometheus.Registerer) *TaggingMetrics {
	if reg == nil {
		return &TaggingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tagging_run_duration_seconds",
		Help:    "Duration of AI suggestion runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tagging_run_success",
		Help: "Successful AI suggestion runs.",
	}, []string{"mode"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tagging_run_failure",
		Help: "Failed AI suggestion runs.",
	}, []string{"mode"})
	discarded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tagging_suggestions_discarded_total",
		Help: "Model suggestions dropped by the validation gate.",
	})
	reg.MustRegister(duration, success, failure, discarded)
	return &TaggingMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		discarded: discarded,
	}
}

// ObserveDuration records the duration for a run in the given mode.
func (m *TaggingMetrics) ObserveDuration(mode string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(mode)).Observe(elapsed.Seconds())
}

// IncSuccess increments the success counter for the given mode.
func (m *TaggingMetrics) IncSuccess(mode string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncFailure increments the failure counter for the given mode.
func (m *TaggingMetrics) IncFailure(mode string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(mode)).Inc()
}

// AddDiscarded counts suggestions rejected during validation.
func (m *TaggingMetrics) AddDiscarded(n int) {
	if m == nil || m.discarded == nil || n <= 0 {
		return
	}
	m.discarded.Add(float64(n))
}

func normalizeLabel(mode string) string {
	if mode == "" {
		return "unknown"
	}
	return mode
}
