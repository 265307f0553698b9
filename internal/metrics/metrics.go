// Package metrics holds the Prometheus collectors the server exports on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bistro"

// Registry owns a private Prometheus registry and the application collectors.
type Registry struct {
	reg             *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	finalizeOutcome *prometheus.CounterVec
	gateDenials     *prometheus.CounterVec
}

// New registers the process, Go runtime and application collectors on a fresh registry.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		finalizeOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_finalize_total",
			Help:      "Order finalization attempts by outcome.",
		}, []string{"outcome"}),
		gateDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_denials_total",
			Help:      "Requests stopped by the authorization guard chain, by route and status.",
		}, []string{"route", "status"}),
	}
	r.reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		r.httpRequests,
		r.httpDuration,
		r.finalizeOutcome,
		r.gateDenials,
	)
	return r
}

// ObserveHTTP records one finished request.
func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveFinalize records the outcome of one finalize call.
func (r *Registry) ObserveFinalize(outcome string) {
	if r == nil {
		return
	}
	r.finalizeOutcome.WithLabelValues(outcome).Inc()
}

// ObserveDenial records a request rejected by a gate.
func (r *Registry) ObserveDenial(route string, status int) {
	if r == nil {
		return
	}
	r.gateDenials.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Gatherer exposes the underlying registry, e.g. for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
