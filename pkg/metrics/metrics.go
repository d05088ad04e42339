package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the portal's own metrics registry, exposed on /api/metrics.
// Using a dedicated registry keeps the endpoint free of default collectors
// registered by third-party libraries.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// Custom histogram buckets optimized for API response times ranging from milliseconds to 30+ seconds
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Upstream Client Metrics (TunasKarier backend)
	UpstreamRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_client_operation_duration_seconds",
			Help:    "Upstream API operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	UpstreamRequestTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_client_operation_total",
			Help: "Total number of upstream API operations",
		},
		[]string{"operation", "status"},
	)

	// Session Metrics
	SessionsCreated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tunaskarier_sessions_created_total",
			Help: "Total number of portal sessions created",
		},
		[]string{"role"},
	)

	SessionsInvalidated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tunaskarier_sessions_invalidated_total",
			Help: "Total number of portal sessions invalidated",
		},
		[]string{"reason"}, // logout, upstream_unauthorized, expired
	)

	GuardRejections = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tunaskarier_guard_rejections_total",
			Help: "Total number of role guard redirects to login",
		},
		[]string{"required_role", "reason"}, // no_session, role_mismatch
	)

	// List Controller Metrics
	ListLoads = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tunaskarier_list_loads_total",
			Help: "Total number of list page loads",
		},
		[]string{"resource", "status"},
	)

	StaleResponsesDiscarded = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tunaskarier_list_stale_responses_discarded_total",
			Help: "Responses discarded because their request generation was superseded",
		},
		[]string{"resource"},
	)

	DeleteConfirmations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tunaskarier_list_delete_confirmations_total",
			Help: "Delete confirmation outcomes",
		},
		[]string{"resource", "outcome"}, // confirmed, cancelled, failed
	)

	// Infrastructure Metrics
	GoRoutines = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
