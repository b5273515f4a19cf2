// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pack_http_requests_total",
		Help: "Total HTTP requests by method, path and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pack_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	ReconcileRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pack_reconcile_runs_total",
		Help: "Status recompute passes executed",
	})

	ArchiveOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pack_archive_operations_total",
		Help: "Archive subsystem operations by op (archive/restore/delete) and outcome",
	}, []string{"op", "outcome"})

	LockConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pack_customer_lock_conflicts_total",
		Help: "Operations rejected because the customer was busy",
	})
)
