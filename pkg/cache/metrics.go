package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// stateHits tracks successful state record reads.
	stateHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_state_hits_total",
			Help: "Total number of gallery state record hits",
		},
	)

	// stateMisses tracks absent state records.
	stateMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_state_misses_total",
			Help: "Total number of gallery state record misses",
		},
	)

	// stateBlobSize tracks the size of the last state blob read or written.
	stateBlobSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_state_blob_bytes",
			Help: "Size of the gallery state blob in bytes",
		},
	)

	// stateErrors tracks store operation errors.
	stateErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_state_errors_total",
			Help: "Total number of state store operation errors",
		},
		[]string{"operation"}, // "get", "put", "delete"
	)
)
