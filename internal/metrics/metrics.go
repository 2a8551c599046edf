// Package metrics exposes the engine's hot-path counters on the default
// prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Events counts action events entering the pipeline, by kind.
	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vigil",
		Name:      "events_total",
		Help:      "Action events processed, by event kind.",
	}, []string{"kind"})

	// Verdicts counts verdicts produced, by check ID.
	Verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vigil",
		Name:      "verdicts_total",
		Help:      "Verdicts produced by checks.",
	}, []string{"check"})

	// Decisions counts terminal pipeline decisions, by kind.
	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vigil",
		Name:      "decisions_total",
		Help:      "Terminal decisions returned to the host.",
	}, []string{"decision"})

	// Escalations counts operator escalations emitted.
	Escalations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vigil",
		Name:      "escalations_total",
		Help:      "Operator escalations emitted.",
	})

	// EvalDuration tracks the Received to Decided latency per event.
	EvalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vigil",
		Name:      "evaluation_duration_seconds",
		Help:      "Time spent evaluating one event.",
		Buckets:   prometheus.ExponentialBuckets(10e-6, 2, 12),
	})

	// EvalTimeouts counts events whose evaluation guard tripped.
	EvalTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vigil",
		Name:      "evaluation_timeouts_total",
		Help:      "Events that failed open after exceeding the time budget.",
	})

	// StaleEvents counts rejected stale or duplicate events.
	StaleEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vigil",
		Name:      "stale_events_total",
		Help:      "Events rejected for timestamp regression or duplication.",
	})
)
