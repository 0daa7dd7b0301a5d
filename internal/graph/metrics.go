package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuildsTotal counts graph builds.
	// Labels: result (success, error)
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphd",
			Subsystem: "graph",
			Name:      "builds_total",
			Help:      "Total number of graph builds",
		},
		[]string{"result"},
	)

	// BuildDuration tracks end-to-end graph build latency.
	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "graphd",
			Subsystem: "graph",
			Name:      "build_duration_seconds",
			Help:      "Duration of graph builds in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// LookupFailuresTotal counts per-document lookups that yielded no edges
	// because of an upstream failure.
	// Labels: stage (embed, query)
	LookupFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphd",
			Subsystem: "graph",
			Name:      "lookup_failures_total",
			Help:      "Per-document similarity lookups that failed and were skipped",
		},
		[]string{"stage"},
	)

	// EdgesDiscovered tracks edge counts per build.
	EdgesDiscovered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "graphd",
			Subsystem: "graph",
			Name:      "edges_per_build",
			Help:      "Number of edges in each built graph",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)
