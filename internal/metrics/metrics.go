// Package metrics collects and exposes Prometheus metrics for the
// gateway.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers gateway-level counters.
type Collector struct {
	refreshSuccess  prometheus.Counter
	refreshFail     prometheus.Counter
	apiErrors       *prometheus.CounterVec
	taskTransitions *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		refreshSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brainbin_refresh_success_total",
			Help: "Successful token refreshes",
		}),
		refreshFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brainbin_refresh_fail_total",
			Help: "Failed token refreshes (each forces a logout)",
		}),
		apiErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brainbin_api_errors_total",
			Help: "Backend call failures by error class",
		}, []string{"class"}),
		taskTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brainbin_task_transitions_total",
			Help: "Ingestion task state transitions",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brainbin_http_requests_total",
			Help: "Gateway requests by method and status",
		}, []string{"method", "status"}),
		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(c.refreshSuccess, c.refreshFail, c.apiErrors, c.taskTransitions, c.httpRequests)
	return c
}

func (c *Collector) RecordRefreshSuccess() {
	c.refreshSuccess.Inc()
}

func (c *Collector) RecordRefreshFailure() {
	c.refreshFail.Inc()
}

// RecordAPIError counts a backend failure by taxonomy class
// (remote, network, timeout, validation).
func (c *Collector) RecordAPIError(class string) {
	c.apiErrors.WithLabelValues(class).Inc()
}

func (c *Collector) RecordTaskTransition(status string) {
	c.taskTransitions.WithLabelValues(status).Inc()
}

func (c *Collector) RecordHTTPRequest(method, status string) {
	c.httpRequests.WithLabelValues(method, status).Inc()
}

// Handler returns the /metrics endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
