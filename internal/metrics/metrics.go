package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookEventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payrelay_webhook_events_total",
		Help: "Total number of webhook events received, labelled by event type.",
	}, []string{"event_type"})

	WebhookVerificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payrelay_webhook_verification_failures_total",
		Help: "Total number of webhook deliveries rejected for bad signature or body.",
	})

	CheckoutSessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payrelay_checkout_sessions_created_total",
		Help: "Total number of hosted checkout sessions created.",
	})

	AttributionDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payrelay_attribution_deliveries_total",
		Help: "Total number of attribution dispatch outcomes, labelled by provider and status.",
	}, []string{"provider", "status"})

	AttributionDeliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payrelay_attribution_delivery_duration_seconds",
		Help:    "Latency of a single attribution provider call.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"provider"})
)
