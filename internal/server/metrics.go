package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ledgersense/ledgersense/internal/model"
)

// Metrics holds the Prometheus instruments for the webhook pipeline.
type Metrics struct {
	eventsProcessed  *prometheus.CounterVec
	fallbackUsed     prometheus.Counter
	feedbackReceived *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
}

// NewMetrics registers the pipeline instruments with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		eventsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_processed_total",
				Help: "Total number of webhook events processed",
			},
			[]string{"trigger", "status"},
		),
		fallbackUsed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "classifier_fallback_total",
				Help: "Total number of categorizations served by the keyword fallback",
			},
		),
		feedbackReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedback_received_total",
				Help: "Total number of category corrections received",
			},
			[]string{"correct"},
		),
		pipelineDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webhook_pipeline_duration_milliseconds",
				Help:    "Webhook pipeline duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 16),
			},
		),
	}
}

// ObserveEvent records the outcome of one routed webhook event.
func (m *Metrics) ObserveEvent(trigger string, result model.RouteResult, elapsed time.Duration) {
	m.eventsProcessed.WithLabelValues(trigger, string(result.Status)).Inc()
	if result.UsedFallback {
		m.fallbackUsed.Inc()
	}
	m.pipelineDuration.Observe(float64(elapsed.Milliseconds()))
}

// ObserveFeedback records one stored category correction.
func (m *Metrics) ObserveFeedback(correct bool) {
	label := "false"
	if correct {
		label = "true"
	}
	m.feedbackReceived.WithLabelValues(label).Inc()
}
