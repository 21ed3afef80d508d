package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersDeclinedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_declined_total",
		Help: "Total number of order creations declined",
	}, []string{"reason"})

	OrderItemsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_items_dropped_total",
		Help: "Total number of basket items dropped because the product no longer exists",
	})

	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Total number of order status updates",
	}, []string{"status"})

	PaymentIntentSyncsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_intent_syncs_total",
		Help: "Total number of payment intent reconciliations",
	}, []string{"outcome"})

	PaymentIntentSyncLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_intent_sync_latency_seconds",
		Help:    "Latency of payment intent reconciliation",
		Buckets: prometheus.DefBuckets,
	})

	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of buyer notifications sent",
	})

	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Total number of buyer notifications that failed to send",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
