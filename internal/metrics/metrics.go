package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NavigationsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pageflow_navigations_enqueued_total",
		Help: "Total number of page submissions placed on the navigation queue.",
	})

	NavigationsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pageflow_navigations_resolved_total",
		Help: "Total number of resolved page submissions, labelled by how the next page was chosen.",
	}, []string{"via"})

	NavigationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pageflow_navigations_dropped_total",
		Help: "Total number of page submissions rejected due to a full queue.",
	})

	NavigationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pageflow_navigation_duration_ms",
		Help:    "End-to-end navigation latency in milliseconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 1000},
	})

	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pageflow_sessions_started_total",
		Help: "Total number of respondent sessions started.",
	})

	SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pageflow_sessions_completed_total",
		Help: "Total number of respondent sessions that reached the end of the survey.",
	})

	LoopsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pageflow_loops_detected_total",
		Help: "Total number of submissions stopped because the next page was already visited.",
	})

	GraphPages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pageflow_graph_pages",
		Help: "Number of pages in the active survey graph.",
	})

	GraphMaxDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pageflow_graph_max_depth",
		Help: "Worst-case progress steps of the active survey graph.",
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pageflow_queue_utilization_ratio",
		Help: "Current navigation queue utilization (0–1).",
	})
)
