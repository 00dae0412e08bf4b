// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MythosMUD Contributors

package policy

import (
	"time"

	"github.com/mythosmud/mythosmud/internal/access/policy/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for C5 capability evaluation.
var (
	// evaluateDuration tracks the latency of Evaluate() calls.
	evaluateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "capability_evaluate_duration_seconds",
		Help:    "Histogram of command capability evaluation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// capabilityEvaluations counts evaluations by effect.
	capabilityEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capability_evaluations_total",
		Help: "Total number of command capability evaluations",
	}, []string{"effect"})
)

// RecordEvaluationMetrics records metrics for a completed evaluation.
// This should be called after each Evaluate() call with the duration and effect.
func RecordEvaluationMetrics(duration time.Duration, effect types.Effect) {
	evaluateDuration.Observe(duration.Seconds())
	capabilityEvaluations.WithLabelValues(effect.String()).Inc()
}
