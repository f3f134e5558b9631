package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSent labels successfully delivered alerts.
	OutcomeSent = "sent"
	// OutcomeFailed labels alerts that no sink accepted.
	OutcomeFailed = "failed"
)

var (
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage_engine",
			Name:      "decisions_total",
			Help:      "Total number of triage decisions, partitioned by priority tier.",
		},
		[]string{"priority"},
	)

	redFlagsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "triage_engine",
			Name:      "red_flag_decisions_total",
			Help:      "Decisions that short-circuited through the red-flag path.",
		},
	)

	safetyViolationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "triage_engine",
			Name:      "safety_violations_total",
			Help:      "Generated outputs rejected by the forbidden-phrase safety gate.",
		},
	)

	decisionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "triage_engine",
			Name:      "decision_seconds",
			Help:      "Triage decision latency in seconds, including persistence.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage_engine",
			Name:      "alerts_total",
			Help:      "Emergency alert attempts, partitioned by delivery method and outcome.",
		},
		[]string{"method", "outcome"},
	)
)

// Register attaches triage-engine collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		decisionsTotal,
		redFlagsTotal,
		safetyViolationsTotal,
		decisionDurationSeconds,
		alertsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveDecision records one completed decision.
func ObserveDecision(duration time.Duration, priority string, redFlag bool) {
	decisionsTotal.WithLabelValues(priority).Inc()
	if redFlag {
		redFlagsTotal.Inc()
	}
	if duration < 0 {
		duration = 0
	}
	decisionDurationSeconds.Observe(duration.Seconds())
}

// ObserveSafetyViolation records a decision withheld by the safety gate.
func ObserveSafetyViolation() {
	safetyViolationsTotal.Inc()
}

// ObserveAlert records one alert attempt for a delivery method.
func ObserveAlert(method string, sent bool) {
	outcome := OutcomeFailed
	if sent {
		outcome = OutcomeSent
	}
	alertsTotal.WithLabelValues(method, outcome).Inc()
}
