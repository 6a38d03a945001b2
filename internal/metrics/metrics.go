// Package metrics provides Prometheus metrics for benchmark runs.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SamplesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todobench_samples_total",
			Help: "Total number of benchmark samples recorded",
		},
		[]string{"frontend", "operation", "degraded"},
	)
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todobench_operation_duration_ms",
			Help:    "Time from mutation to settled paint in milliseconds",
			Buckets: []float64{1, 2, 5, 10, 16, 25, 33, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"frontend", "operation"},
	)
	DegradedMeasurements = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "todobench_degraded_measurements_total",
			Help: "Total number of measurements timed with fixed delays instead of frames",
		},
	)
	StepsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todobench_steps_failed_total",
			Help: "Total number of benchmark steps whose measurement failed",
		},
		[]string{"frontend", "operation"},
	)
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todobench_runs_total",
			Help: "Total number of run-all batteries by outcome",
		},
		[]string{"frontend", "status"},
	)
	CollectionSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "todobench_collection_size",
			Help: "Number of tasks currently published to the front-end",
		},
		[]string{"frontend"},
	)
)

func RecordSample(frontend, operation string, durationMs float64, degraded bool) {
	SamplesRecorded.WithLabelValues(frontend, operation, strconv.FormatBool(degraded)).Inc()
	OperationDuration.WithLabelValues(frontend, operation).Observe(durationMs)
}

func RecordDegraded() {
	DegradedMeasurements.Inc()
}

func RecordStepFailed(frontend, operation string) {
	StepsFailed.WithLabelValues(frontend, operation).Inc()
}

func RecordRun(frontend, status string) {
	RunsTotal.WithLabelValues(frontend, status).Inc()
}

func UpdateCollectionSize(frontend string, size int) {
	CollectionSize.WithLabelValues(frontend).Set(float64(size))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
