package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initEditorMetrics()
	r.initHistoryMetrics()
	r.initRecordMetrics()
	r.initSystemMetrics()
	r.SetSolderState("idle")

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordEdit records a committed edit with its duration
func (r *Registry) RecordEdit(operation string, duration time.Duration) {
	r.EditsTotal.WithLabelValues(operation).Inc()
	r.EditDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRejectedGesture counts a gesture that was ignored
func (r *Registry) RecordRejectedGesture(gesture string) {
	r.RejectedGesturesTotal.WithLabelValues(gesture).Inc()
}

// RecordHistoryNavigation counts an undo or redo step
func (r *Registry) RecordHistoryNavigation(direction string) {
	r.HistoryNavigationsTotal.WithLabelValues(direction).Inc()
}

// UpdateHistory sets the history depth and cursor gauges
func (r *Registry) UpdateHistory(depth, position int) {
	r.HistoryDepth.Set(float64(depth))
	r.HistoryPosition.Set(float64(position))
}

// UpdateWorkflow sets the workflow size gauges
func (r *Registry) UpdateWorkflow(nodes, connections, triggers, selected int) {
	r.WorkflowNodes.Set(float64(nodes))
	r.WorkflowConnections.Set(float64(connections))
	r.WorkflowTriggers.Set(float64(triggers))
	r.SelectionSize.Set(float64(selected))
}

// SetSolderState marks state as the only active solder state
func (r *Registry) SetSolderState(state string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range solderStates {
		r.SolderState.WithLabelValues(s).Set(0)
	}
	r.SolderState.WithLabelValues(state).Set(1)
}

// RecordRecordOperation records an event record load or save
func (r *Registry) RecordRecordOperation(operation, format string, err error, size int) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.RecordOperationsTotal.WithLabelValues(operation, format, status).Inc()
	if err == nil {
		r.RecordSizeBytes.WithLabelValues(format).Observe(float64(size))
	}
}

// UpdateSystemMetrics refreshes uptime and Go runtime gauges
func (r *Registry) UpdateSystemMetrics(start time.Time) {
	r.UptimeSeconds.Set(time.Since(start).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
