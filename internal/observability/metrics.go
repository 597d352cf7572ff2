package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	gatewayRequestsTotal  *prometheus.CounterVec
	gatewayLatencySeconds *prometheus.HistogramVec
	gatewayErrorsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for gateway observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		gatewayRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulse",
			Name:      "gateway_requests_total",
			Help:      "Total number of gradebook gateway requests served.",
		}, []string{"method", "route", "status"})

		gatewayLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pulse",
			Name:      "gateway_latency_seconds",
			Help:      "Latency distribution for gradebook gateway requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		gatewayErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulse",
			Name:      "gateway_errors_total",
			Help:      "Total number of error responses returned by gateway endpoints.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(gatewayRequestsTotal, gatewayLatencySeconds, gatewayErrorsTotal)
	})
}

// GatewayRequests exposes the counter for gateway requests.
func GatewayRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return gatewayRequestsTotal
}

// GatewayLatency exposes the latency histogram for gateway requests.
func GatewayLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return gatewayLatencySeconds
}

// GatewayErrors exposes the counter for gateway error responses.
func GatewayErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return gatewayErrorsTotal
}
