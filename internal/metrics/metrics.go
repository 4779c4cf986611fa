// Package metrics provides Prometheus metrics for the timer engine and its
// HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TimerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stint_timer_transitions_total",
			Help: "Total number of timer operations applied, by operation",
		},
		[]string{"operation"},
	)
	TimersByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stint_timers_by_status",
			Help: "Current number of tracked timers by status",
		},
		[]string{"status"},
	)
	TrackedTasks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stint_tracked_tasks",
			Help: "Current number of task ids tracked by the engine",
		},
	)
	BusSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stint_bus_subscribers",
			Help: "Current number of notification bus subscribers",
		},
	)
	SnapshotsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stint_snapshots_persisted_total",
			Help: "Total number of engine snapshots written to the snapshot store",
		},
	)
	SnapshotErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stint_snapshot_errors_total",
			Help: "Total number of failed snapshot writes",
		},
	)
	TimesheetsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stint_timesheets_submitted_total",
			Help: "Total number of day-end timesheet submissions",
		},
	)
	EntriesSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stint_entries_submitted_total",
			Help: "Total number of time entries persisted on submission",
		},
	)
	TasksImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stint_tasks_imported_total",
			Help: "Total number of catalog tasks accepted via CSV import",
		},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stint_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stint_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func RecordTransition(operation string) {
	TimerTransitions.WithLabelValues(operation).Inc()
}

func UpdateTimerGauges(countsByStatus map[string]int) {
	TimersByStatus.Reset()
	total := 0
	for status, count := range countsByStatus {
		TimersByStatus.WithLabelValues(status).Set(float64(count))
		total += count
	}
	TrackedTasks.Set(float64(total))
}

func UpdateBusSubscribers(count int) {
	BusSubscribers.Set(float64(count))
}

func RecordSnapshotPersisted() {
	SnapshotsPersisted.Inc()
}

func RecordSnapshotError() {
	SnapshotErrors.Inc()
}

func RecordSubmission(entries int) {
	TimesheetsSubmitted.Inc()
	EntriesSubmitted.Add(float64(entries))
}

func RecordTasksImported(count int) {
	TasksImported.Add(float64(count))
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
