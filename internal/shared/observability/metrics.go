package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blueprints_resolve_seconds",
		Help:    "Time spent resolving a blueprint dependency closure.",
		Buckets: prometheus.DefBuckets,
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blueprints_graph_nodes_total",
		Help: "Number of blueprints in the last resolved dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blueprints_graph_edges_total",
		Help: "Number of reference edges in the last resolved dependency graph.",
	})

	DroppedReferencesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blueprints_dropped_references_total",
		Help: "Total number of blueprint references dropped during resolution.",
	})

	OracleCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blueprints_oracle_calls_total",
		Help: "Total number of generation oracle calls.",
	}, []string{"outcome"})

	OracleCallDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blueprints_oracle_call_seconds",
		Help:    "Latency of a single generation oracle call.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	GenerationAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blueprints_generation_attempts_total",
		Help: "Total number of generation attempts including retries.",
	})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blueprints_generation_seconds",
		Help:    "Time spent generating one module end to end.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	}, []string{"language"})

	VerificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blueprints_verification_failures_total",
		Help: "Total number of verification stage failures by error kind.",
	}, []string{"kind"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blueprints_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
