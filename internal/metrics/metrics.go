package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	readingsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rescue_readings_ingested_total",
			Help: "Total number of processed readings by ingest decision",
		},
		[]string{"action"},
	)
	readingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rescue_readings_rejected_total",
			Help: "Total number of rejected readings by reason",
		},
		[]string{"reason"},
	)
	webhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rescue_webhook_deliveries_total",
			Help: "Total number of webhook delivery attempts by outcome",
		},
		[]string{"status"},
	)
)

// ReadingIngested учитывает принятое решение политики (created/updated/skipped)
func ReadingIngested(action string) {
	readingsIngested.WithLabelValues(action).Inc()
}

// ReadingRejected учитывает отклонённое показание (validation/storage)
func ReadingRejected(reason string) {
	readingsRejected.WithLabelValues(reason).Inc()
}

// WebhookDelivery учитывает исход доставки события подписчику
func WebhookDelivery(status string) {
	webhookDeliveries.WithLabelValues(status).Inc()
}
