package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	OrderStatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_status_transitions_total",
		Help: "Order status transitions by source and target status.",
	}, []string{"from", "to"})

	PriceOffersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_offers_accepted_total",
		Help: "Price offers accepted by clients.",
	})

	DocumentTokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "document_tokens_issued_total",
		Help: "Single-use document download tokens issued.",
	})

	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Notifications persisted, by type.",
	}, []string{"type"})
)
