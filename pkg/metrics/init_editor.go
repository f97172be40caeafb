package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEditorMetrics() {
	r.EditsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluso_flow_edits_total",
			Help: "Total number of committed workflow edits",
		},
		[]string{"operation"},
	)

	r.EditDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cluso_flow_edit_duration_seconds",
			Help:    "Time spent applying a committed edit, including the history snapshot",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
		[]string{"operation"},
	)

	r.RejectedGesturesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cluso_flow_rejected_gestures_total",
			Help: "Gestures ignored because they were illegal in the current state",
		},
		[]string{"gesture"},
	)

	r.SolderState = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cluso_flow_solder_state",
			Help: "Current solder state (1 = active)",
		},
		[]string{"state"},
	)

	r.SelectionSize = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_flow_selection_size",
			Help: "Number of selected nodes",
		},
	)

	r.WorkflowNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_flow_workflow_nodes",
			Help: "Number of nodes in the edited workflow",
		},
	)

	r.WorkflowConnections = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_flow_workflow_connections",
			Help: "Number of connections in the edited workflow",
		},
	)

	r.WorkflowTriggers = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cluso_flow_workflow_triggers",
			Help: "Number of trigger records in the edited workflow",
		},
	)
}
