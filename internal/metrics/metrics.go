package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Monitor metrics for production observability
var (
	// Sampling metrics
	SamplingPassesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "procsight_sampling_passes_total",
			Help: "Total number of process sampling passes",
		},
	)

	ProcessesSampled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "procsight_processes_sampled",
			Help: "Number of processes observed in the most recent sampling pass",
		},
	)

	CollectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "procsight_collection_errors_total",
			Help: "Total number of failed process table enumerations",
		},
	)

	// Training metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procsight_training_runs_total",
			Help: "Total number of model training attempts",
		},
		[]string{"status"}, // status: success/insufficient_data/error
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "procsight_training_duration_seconds",
			Help:    "Model training duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
	)

	// Detection metrics
	DetectionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procsight_detection_runs_total",
			Help: "Total number of detection passes",
		},
		[]string{"status"}, // status: success/not_trained/error
	)

	DetectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "procsight_detection_duration_seconds",
			Help:    "Detection pass duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
		},
	)

	AnomaliesFlagged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "procsight_anomalies_flagged_total",
			Help: "Total number of processes flagged as anomalous",
		},
	)

	// Report metrics
	ReportsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procsight_reports_persisted_total",
			Help: "Total number of report snapshots written",
		},
		[]string{"sink", "status"}, // sink: sqlite/file
	)
)
