// Package metrics exposes Prometheus metrics for the daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pairing metrics
	TasksGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ostbalance_tasks_generated_total",
			Help: "Total number of migration tasks pushed to the task queue",
		},
	)

	TasksCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ostbalance_tasks_completed_total",
			Help: "Total number of completion signals reconciled",
		},
	)

	// Intake metrics
	InputFilesProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ostbalance_input_files_processed_total",
			Help: "Total number of intake files merged and marked done",
		},
	)

	InputLinesLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ostbalance_input_lines_loaded_total",
			Help: "Total number of intake lines merged into the item cache",
		},
	)

	InputLinesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ostbalance_input_lines_skipped_total",
			Help: "Total number of malformed intake lines skipped",
		},
	)

	// State metrics
	CacheItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ostbalance_cache_items",
			Help: "Number of pending migration items per source target",
		},
		[]string{"source"},
	)

	TargetFillLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ostbalance_target_fill_level_percent",
			Help: "Last sampled capacity utilization per target",
		},
		[]string{"target"},
	)

	FillLevelRefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ostbalance_fill_level_refresh_duration_seconds",
			Help:    "Time taken to sample fill levels in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(TasksGenerated)
	prometheus.MustRegister(TasksCompleted)
	prometheus.MustRegister(InputFilesProcessed)
	prometheus.MustRegister(InputLinesLoaded)
	prometheus.MustRegister(InputLinesSkipped)
	prometheus.MustRegister(CacheItems)
	prometheus.MustRegister(TargetFillLevel)
	prometheus.MustRegister(FillLevelRefreshDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
