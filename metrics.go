package prodigyfix

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodigyfix",
			Subsystem: "store",
			Name:      "snapshot_rebuilds_total",
			Help:      "Full mirror rebuilds triggered by subscription snapshots.",
		},
		[]string{"collection"},
	)

	subscriptionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodigyfix",
			Subsystem: "store",
			Name:      "subscription_errors_total",
			Help:      "Error snapshots received on a collection subscription.",
		},
		[]string{"collection"},
	)

	viewWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "prodigyfix",
			Subsystem: "store",
			Name:      "view_write_failures_total",
			Help:      "Remote view-count writes that exhausted retries; the local mirror keeps the increment.",
		},
	)
)
