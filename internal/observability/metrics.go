package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "watchdog",
		Name:      "tasks_processed_total",
		Help:      "Total number of analysis tasks processed, by outcome",
	}, []string{"outcome"})

	TaskFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "watchdog",
		Name:      "task_failures_total",
		Help:      "Total number of task runs that failed and were left for retry",
	})

	BacklogDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "watchdog",
		Name:      "backlog_depth",
		Help:      "Number of pending analysis tasks",
	})

	ProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "watchdog",
		Name:      "processing_duration_seconds",
		Help:      "Duration of task processing stages",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"stage"})

	PushesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "watchdog",
		Name:      "pushes_sent_total",
		Help:      "Push notifications sent, by delivery result",
	}, []string{"result"})

	CapturesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "watchdog",
		Name:      "captures_uploaded_total",
		Help:      "Total number of capture images uploaded by cameras",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "watchdog",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "watchdog",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
