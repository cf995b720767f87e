package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, path, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grammar_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// UpstreamDuration tracks model call latency, including timed-out calls.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grammar_upstream_duration_seconds",
		Help:    "Time spent waiting for the generative model.",
		Buckets: []float64{0.25, 0.5, 1, 2, 3, 5, 7.5, 10, 15},
	}, []string{"model"})

	// UpstreamResults counts requester outcomes: corrected, unchanged,
	// timeout, error, malformed.
	UpstreamResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grammar_upstream_results_total",
		Help: "Outcomes of correction requests sent to the model.",
	}, []string{"result"})

	// CacheLookups counts cache hits and misses per tier (memory, store).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grammar_cache_lookups_total",
		Help: "Correction cache lookups by tier and result.",
	}, []string{"tier", "result"})

	// InputChars tracks the distribution of input text lengths.
	InputChars = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grammar_input_chars",
		Help:    "Number of characters in checked text.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	// CorrectionsReturned tracks how many spans each check reports.
	CorrectionsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grammar_corrections_returned",
		Help:    "Number of correction spans per check response.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})
)
