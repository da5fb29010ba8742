// Package metrics defines Prometheus metrics for namedgraph.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "namedgraph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namedgraph_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namedgraph_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	EdgeQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "namedgraph_edges_query_duration_seconds",
			Help:    "EDGES call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"direction", "outcome"},
	)

	EdgesReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "namedgraph_edges_returned",
			Help:    "Edges returned per EDGES call",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	CollectionScans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namedgraph_collection_scans_total",
			Help: "Edge collection scans issued by EDGES, by endpoint side",
		},
		[]string{"side"},
	)

	GraphCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namedgraph_graph_cache_lookups_total",
			Help: "Graph definition cache lookups by result",
		},
		[]string{"result"},
	)

	GraphDefinitions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "namedgraph_graph_definitions",
			Help: "Graph definitions known to this instance",
		},
	)

	DocumentsImported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "namedgraph_documents_imported_total",
			Help: "Documents written through bulk import",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "namedgraph_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		EdgeQueryDuration, EdgesReturned, CollectionScans,
		GraphCacheLookups, GraphDefinitions, DocumentsImported,
		WSConnections,
	)
}
