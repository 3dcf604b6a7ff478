package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// counterLabels maps the names passed to IncrementCounter onto the label
// values of the counter they feed.
var counterLabels = map[string][]string{
	"nodes_created": {"node", "created"},
	"nodes_deleted": {"node", "deleted"},
	"edges_created": {"relationship", "created"},
	"edges_deleted": {"relationship", "deleted"},
	"cache_hits":    {"hit"},
	"cache_misses":  {"miss"},
}

// Collector is a private Prometheus registry shared by the HTTP layer, the
// graph store adapter and the terminal explorer.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// GraphChanges counts successful writes by record kind and action
	GraphChanges *prometheus.CounterVec
	// CacheLookups counts explorer detail cache results
	CacheLookups *prometheus.CounterVec

	DBOperations *prometheus.CounterVec
	DBDuration   *prometheus.HistogramVec
}

func NewCollector(namespace string) *Collector {
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	}
	histogram := func(name, help string, labels ...string) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   prometheus.DefBuckets,
		}, labels)
	}

	c := &Collector{
		registry:     prometheus.NewRegistry(),
		HTTPRequests: counter("http_requests_total", "HTTP requests by route and status", "method", "route", "status"),
		HTTPDuration: histogram("http_request_duration_seconds", "HTTP request latency", "method", "route"),
		GraphChanges: counter("graph_changes_total", "Nodes and relationships created or deleted", "kind", "action"),
		CacheLookups: counter("cache_lookups_total", "Detail cache lookups by result", "result"),
		DBOperations: counter("db_operations_total", "Graph store queries by mode and outcome", "operation", "status"),
		DBDuration:   histogram("db_operation_duration_seconds", "Graph store query latency", "operation"),
	}
	c.registry.MustRegister(c.HTTPRequests, c.HTTPDuration, c.GraphChanges, c.CacheLookups, c.DBOperations, c.DBDuration)
	return c
}

// IncrementCounter bumps a named business counter. Unknown names are ignored.
func (c *Collector) IncrementCounter(name string, tags map[string]string) {
	labels, ok := counterLabels[name]
	if !ok {
		return
	}
	if len(labels) == 1 {
		c.CacheLookups.WithLabelValues(labels...).Inc()
		return
	}
	c.GraphChanges.WithLabelValues(labels...).Inc()
}

// ObserveDBOperation records the outcome and latency of a store call
func (c *Collector) ObserveDBOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.DBOperations.WithLabelValues(operation, status).Inc()
	c.DBDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
