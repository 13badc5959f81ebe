package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes.
const (
	OutcomeAccepted    = "accepted"
	OutcomeInvalid     = "invalid"
	OutcomeRateLimited = "rate_limited"
	OutcomeHoneypot    = "honeypot"
	OutcomeFastFill    = "fast_fill"
)

// IntakeMetrics exposes counters/histograms for the lead intake flow.
type IntakeMetrics struct {
	submissionsTotal *prometheus.CounterVec
	persistFailures  *prometheus.CounterVec
	submitLatency    prometheus.Histogram
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadintake",
			Subsystem: "form",
			Name:      "submissions_total",
			Help:      "Total lead form submissions by outcome",
		}, []string{"outcome"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadintake",
			Subsystem: "form",
			Name:      "persist_failures_total",
			Help:      "Best-effort persistence failures by sink",
		}, []string{"sink"}),
		submitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadintake",
			Subsystem: "form",
			Name:      "submit_latency_seconds",
			Help:      "Latency of the intake decision sequence",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.persistFailures, m.submitLatency)
	return m
}

func (m *IntakeMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *IntakeMetrics) ObservePersistFailure(sink string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(sink).Inc()
}

func (m *IntakeMetrics) ObserveSubmitLatency(seconds float64) {
	if m == nil {
		return
	}
	m.submitLatency.Observe(seconds)
}
