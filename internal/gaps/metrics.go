package gaps

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SynthesesTotal counts gap synthesis runs.
	// Labels: result (skipped, success, completion_error, malformed)
	SynthesesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphd",
			Subsystem: "gaps",
			Name:      "syntheses_total",
			Help:      "Total number of gap synthesis runs by outcome",
		},
		[]string{"result"},
	)

	// SuggestionsReturned tracks how many suggestions each run produced.
	SuggestionsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "graphd",
			Subsystem: "gaps",
			Name:      "suggestions_per_run",
			Help:      "Number of gap suggestions returned per synthesis",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)
)
