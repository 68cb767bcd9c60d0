package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts storefront API responses by route template and
	// status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Storefront API responses by route and status code",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	// RequestDuration observes handler latency per route template.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Storefront API handler latency in seconds, including store retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// CircuitBreakerState exposes the breaker guarding the document store and
	// the one in the API client.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "State of the breaker in front of a dependency: 0 closed, 1 open, 2 half-open",
		},
		[]string{"service", "circuit_name"},
	)

	// CircuitBreakerFailures counts transient failures a breaker recorded and
	// calls it turned away while open.
	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Transient dependency failures and open-breaker rejections",
		},
		[]string{"service", "circuit_name"},
	)

	// BulkheadActiveRequests is the number of store calls holding a slot.
	BulkheadActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bulkhead_active_requests",
			Help: "Dependency calls currently holding a concurrency slot",
		},
		[]string{"service", "bulkhead_name"},
	)

	// BulkheadRejectedRequests counts calls that waited out the queue without
	// getting a slot and were answered 503.
	BulkheadRejectedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulkhead_rejected_requests_total",
			Help: "Dependency calls turned away after waiting for a concurrency slot",
		},
		[]string{"service", "bulkhead_name"},
	)

	// StoreOperationDuration tracks document store calls including retries
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Document store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	// StoreRetries counts retried store attempts after transient failures
	StoreRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_retries_total",
			Help: "Total number of retried document store attempts",
		},
		[]string{"operation"},
	)

	// OrdersTotal tracks order submissions by outcome
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of order submissions",
		},
		[]string{"outcome"},
	)

	// OrderStatusChanges tracks status updates by target status
	OrderStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_changes_total",
			Help: "Total number of order status updates",
		},
		[]string{"status"},
	)

	// OrderAmount tracks accepted order totals
	OrderAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_amount_rupees",
			Help:    "Accepted order totals in rupees",
			Buckets: []float64{100, 250, 500, 750, 1000, 2000, 5000},
		},
	)

	// MenuChanges tracks catalog writes
	MenuChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menu_changes_total",
			Help: "Total number of catalog writes",
		},
		[]string{"operation"},
	)

	// EventsPublished tracks order events sent to the broker
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_events_published_total",
			Help: "Total number of order events published",
		},
		[]string{"type", "result"},
	)
)

// PrometheusMiddleware records RequestsTotal and RequestDuration for every
// request. Unrouted paths share the "unmatched" label.
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestsTotal.WithLabelValues(
			serviceName,
			c.Request.Method,
			endpoint,
			status,
		).Inc()

		RequestDuration.WithLabelValues(
			serviceName,
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}
