package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CascadeDuration tracks how long a full progress cascade takes
	// (team assignment -> category -> unit -> project).
	CascadeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "progress_cascade_duration_seconds",
			Help:    "Progress aggregation cascade duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"result"},
	)

	// ScanDuration tracks a full schedule-risk scan.
	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schedule_scan_duration_seconds",
			Help:    "Schedule-risk scan duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"trigger"}, // trigger: poll, http
	)

	// ScheduleAlertCount counts alerts produced by scans.
	ScheduleAlertCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_alert_count",
			Help: "Total number of schedule-risk alerts produced",
		},
		[]string{"kind"}, // kind: delayed, imminent
	)

	// TemplateApplyCount counts template applications and unit clones.
	TemplateApplyCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_apply_count",
			Help: "Total number of template applications and unit clones",
		},
		[]string{"operation", "status"}, // operation: template, clone
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	// SlowQueryCount counts queries above the slow threshold.
	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of slow database queries",
		},
	)

	// NotificationCount counts notifications dispatched by the notifier.
	NotificationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_count",
			Help: "Total number of notifications dispatched",
		},
		[]string{"kind", "status"}, // status: sent, failed, deduped
	)
)

func RecordCascadeDuration(result string, duration time.Duration) {
	CascadeDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func RecordScanDuration(trigger string, duration time.Duration) {
	ScanDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

func IncrementScheduleAlert(kind string) {
	ScheduleAlertCount.WithLabelValues(kind).Inc()
}

func IncrementTemplateApply(operation, status string) {
	TemplateApplyCount.WithLabelValues(operation, status).Inc()
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementSlowQuery() {
	SlowQueryCount.Inc()
}

func IncrementNotification(kind, status string) {
	NotificationCount.WithLabelValues(kind, status).Inc()
}
