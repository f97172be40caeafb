package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRecordMetrics() {
	r.RecordOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluso_flow_record_operations_total",
			Help: "Total number of event record loads and saves",
		},
		[]string{"operation", "format", "status"},
	)

	r.RecordSizeBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cluso_flow_record_size_bytes",
			Help:    "Encoded event record size in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"format"},
	)
}
