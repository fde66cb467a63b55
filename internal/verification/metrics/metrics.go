// Package metrics exposes Prometheus instrumentation for the
// verification pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recomputeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawport_verification_recompute_total",
		Help: "Verification recomputations by outcome.",
	}, []string{"outcome"})

	recomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pawport_verification_recompute_duration_seconds",
		Help:    "Wall time of one verification recomputation.",
		Buckets: prometheus.DefBuckets,
	})

	levelAssignedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawport_verification_level_assigned_total",
		Help: "Verification levels assigned by recomputation.",
	}, []string{"level"})

	reviewFlaggedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawport_verification_review_flagged_total",
		Help: "Recomputations that flagged the dog for human review.",
	})

	fraudFlagsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pawport_verification_fraud_flags_total",
		Help: "Fraud flags raised during recomputation.",
	})
)

// ObserveRecompute records one finished recomputation.
func ObserveRecompute(start time.Time, outcome string) {
	recomputeTotal.WithLabelValues(outcome).Inc()
	recomputeDuration.Observe(time.Since(start).Seconds())
}

// LevelAssigned records the tier a recomputation produced.
func LevelAssigned(level string) {
	levelAssignedTotal.WithLabelValues(level).Inc()
}

// ReviewFlagged records a bundle that requires human review.
func ReviewFlagged() {
	reviewFlaggedTotal.Inc()
}

// FraudFlags records raised fraud flags.
func FraudFlags(n int) {
	if n > 0 {
		fraudFlagsTotal.Add(float64(n))
	}
}
