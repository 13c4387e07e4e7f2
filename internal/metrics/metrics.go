// Package metrics defines the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration observes HTTP request latency by route and status.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// EngineOperations counts engine operations by name and outcome. The
	// outcome is "ok" or the engine error kind.
	EngineOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "esusu_engine_operations_total",
			Help: "Engine operations by name and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// CollectionsProcessed counts disbursed cycle pots.
	CollectionsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "esusu_collections_processed_total",
			Help: "Cycle pots disbursed.",
		},
	)

	// PotDisbursed accumulates the net amounts paid out to collectors.
	PotDisbursed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "esusu_pot_disbursed_total",
			Help: "Sum of net amounts disbursed to collectors.",
		},
	)
)
