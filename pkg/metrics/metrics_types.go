package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the editor
type Registry struct {
	// Editor Metrics
	EditsTotal            *prometheus.CounterVec
	EditDuration          *prometheus.HistogramVec
	RejectedGesturesTotal *prometheus.CounterVec
	SolderState           *prometheus.GaugeVec
	SelectionSize         prometheus.Gauge

	// Workflow Metrics
	WorkflowNodes       prometheus.Gauge
	WorkflowConnections prometheus.Gauge
	WorkflowTriggers    prometheus.Gauge

	// History Metrics
	HistoryNavigationsTotal *prometheus.CounterVec
	HistoryDepth            prometheus.Gauge
	HistoryPosition         prometheus.Gauge

	// Record Metrics
	RecordOperationsTotal *prometheus.CounterVec
	RecordSizeBytes       *prometheus.HistogramVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

// Solder states reported by the SolderState gauge
var solderStates = []string{"idle", "soldering", "paused"}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)
