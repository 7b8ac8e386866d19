package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OperationTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_operation_transitions_total",
		Help: "Total number of async resource transitions by target status",
	}, []string{"container", "operation", "status"})

	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_operation_duration_seconds",
		Help:    "Latency of container operations from pending to settled",
		Buckets: prometheus.DefBuckets,
	}, []string{"container", "operation", "outcome"})

	OperationsSupersededTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_operations_superseded_total",
		Help: "Responses discarded because a newer invocation or a reset happened",
	}, []string{"container", "operation"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_api_request_duration_seconds",
		Help:    "Latency of requests to the storefront REST API",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	PersistWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_persist_writes_total",
		Help: "Total number of persisted state snapshots",
	}, []string{"outcome"})

	RehydrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_rehydrations_total",
		Help: "Startup rehydrations by outcome",
	}, []string{"outcome"})

	StateEventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_state_events_published_total",
		Help: "Transition events handed to the broker",
	}, []string{"outcome"})

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
