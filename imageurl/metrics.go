package imageurl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "prodigyfix",
			Subsystem: "imagecache",
			Name:      "hits_total",
			Help:      "Resolutions served from the URL cache.",
		},
	)

	cacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "prodigyfix",
			Subsystem: "imagecache",
			Name:      "misses_total",
			Help:      "Resolutions that had to hit the blob store.",
		},
	)

	cacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "prodigyfix",
			Subsystem: "imagecache",
			Name:      "evictions_total",
			Help:      "Expired entries removed by Sweep.",
		},
	)

	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodigyfix",
			Subsystem: "imageurl",
			Name:      "resolutions_total",
			Help:      "Blob-store resolution outcomes.",
		},
		[]string{"outcome"},
	)
)
