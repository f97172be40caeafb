package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHistoryMetrics() {
	r.HistoryNavigationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluso_flow_history_navigations_total",
			Help: "Total number of undo and redo steps taken",
		},
		[]string{"direction"},
	)

	r.HistoryDepth = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_flow_history_depth",
			Help: "Number of snapshots held in the undo history",
		},
	)

	r.HistoryPosition = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_flow_history_position",
			Help: "Index of the current snapshot in the undo history",
		},
	)
}
