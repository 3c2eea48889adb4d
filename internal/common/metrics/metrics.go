// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TriggersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trigger_events_processed_total",
			Help: "Total number of trigger events processed, by terminal status",
		},
		[]string{"status"},
	)

	TriggersFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trigger_events_failed_total",
			Help: "Total number of trigger events that failed processing",
		},
		[]string{"error_code"},
	)

	TriggerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "trigger_processing_duration_seconds",
			Help: "Duration of trigger event processing in seconds",
		},
		[]string{"status"},
	)

	TemplateRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "template_render_duration_seconds",
			Help: "Duration of template compilation passes in seconds",
		},
		[]string{"pass"},
	)

	AttachmentsUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trigger_attachments_uploaded_total",
			Help: "Total number of attachments uploaded before enqueue",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_cache_requests_total",
			Help: "Read-through cache requests, by outcome",
		},
		[]string{"entity", "outcome"},
	)
)
