package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/developer-vif/openshift-workload-simulator/internal/cluster"
)

const prefix = "workload_simulator_"

// Metrics holds all Prometheus metrics for the simulator.
// It uses a custom registry to avoid polluting the global default.
type Metrics struct {
	Registry *prometheus.Registry

	// API operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	RateLimitedTotal  prometheus.Counter

	// Cluster gauges, refreshed after every mutation and snapshot
	Nodes             prometheus.Gauge
	Namespaces        prometheus.Gauge
	Deployments       prometheus.Gauge
	Pods              *prometheus.GaugeVec
	CPUAllocated      prometheus.Gauge
	MemoryAllocated   prometheus.Gauge
	CPUAllocatable    prometheus.Gauge
	MemoryAllocatable prometheus.Gauge
	OverSubscribed    prometheus.Gauge
	WorkloadFactor    prometheus.Gauge

	// Snapshot metrics
	SnapshotBuildDuration prometheus.Histogram
	SnapshotSendDuration  prometheus.Histogram
	SnapshotSizeBytes     *prometheus.HistogramVec
	SnapshotSendTotal     *prometheus.CounterVec

	// Transport metrics
	TransportRetries prometheus.Counter
	CompressionRatio prometheus.Gauge

	// State metrics
	ExporterState *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all Prometheus metrics
// registered on a custom registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	sizeBuckets := prometheus.ExponentialBuckets(1024, 4, 10)

	m := &Metrics{
		Registry: reg,

		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "operations_total",
			Help: "Total number of cluster operations by outcome.",
		}, []string{"operation", "result"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "operation_duration_seconds",
			Help:    "Duration of cluster operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation"}),
		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "rate_limited_total",
			Help: "Total number of mutation requests rejected by the rate limiter.",
		}),

		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "nodes",
			Help: "Current number of worker nodes.",
		}),
		Namespaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "namespaces",
			Help: "Current number of namespaces.",
		}),
		Deployments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "deployments",
			Help: "Current number of deployments.",
		}),
		Pods: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "pods",
			Help: "Current number of pods by status.",
		}, []string{"status"}),
		CPUAllocated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "cpu_allocated_cores",
			Help: "CPU allocated on nodes, in cores.",
		}),
		MemoryAllocated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "memory_allocated_gigabytes",
			Help: "Memory allocated on nodes, in GB.",
		}),
		CPUAllocatable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "cpu_allocatable_cores",
			Help: "Allocatable CPU across the node pool, in cores.",
		}),
		MemoryAllocatable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "memory_allocatable_gigabytes",
			Help: "Allocatable memory across the node pool, in GB.",
		}),
		OverSubscribed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "oversubscribed_nodes",
			Help: "Number of nodes whose CPU allocation exceeds allocatable.",
		}),
		WorkloadFactor: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "workload_factor",
			Help: "Current simulated workload factor (0-1).",
		}),

		SnapshotBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    prefix + "snapshot_build_duration_seconds",
			Help:    "Duration of snapshot build operations in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotSendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    prefix + "snapshot_send_duration_seconds",
			Help:    "Duration of snapshot send operations in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		SnapshotSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "snapshot_size_bytes",
			Help:    "Size of snapshots in bytes.",
			Buckets: sizeBuckets,
		}, []string{"type"}),
		SnapshotSendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "snapshot_send_total",
			Help: "Total number of snapshot send attempts.",
		}, []string{"status"}),

		TransportRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "transport_retries_total",
			Help: "Total number of transport retry attempts.",
		}),
		CompressionRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "compression_ratio",
			Help: "Current compression ratio (compressed/original).",
		}),

		ExporterState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "exporter_state",
			Help: "Current exporter state (1 = active, 0 = inactive).",
		}, []string{"state"}),
	}

	reg.MustRegister(
		m.OperationsTotal,
		m.OperationDuration,
		m.RateLimitedTotal,
		m.Nodes,
		m.Namespaces,
		m.Deployments,
		m.Pods,
		m.CPUAllocated,
		m.MemoryAllocated,
		m.CPUAllocatable,
		m.MemoryAllocatable,
		m.OverSubscribed,
		m.WorkloadFactor,
		m.SnapshotBuildDuration,
		m.SnapshotSendDuration,
		m.SnapshotSizeBytes,
		m.SnapshotSendTotal,
		m.TransportRetries,
		m.CompressionRatio,
		m.ExporterState,
	)

	return m
}

// ObserveCluster refreshes the cluster gauges from a state copy.
func (m *Metrics) ObserveCluster(s cluster.State) {
	m.Nodes.Set(float64(len(s.Nodes)))
	m.Namespaces.Set(float64(len(s.Namespaces)))
	m.Deployments.Set(float64(len(s.Deployments)))
	m.Pods.WithLabelValues(string(cluster.PodRunning)).Set(float64(s.RunningPods()))
	m.Pods.WithLabelValues(string(cluster.PodPending)).Set(float64(s.PendingPods()))
	m.CPUAllocated.Set(s.Summary.TotalCPUAllocated)
	m.MemoryAllocated.Set(s.Summary.TotalMemoryAllocated)
	m.CPUAllocatable.Set(s.Summary.TotalAllocatableCPU)
	m.MemoryAllocatable.Set(s.Summary.TotalAllocatableMemory)
	m.WorkloadFactor.Set(s.WorkloadFactor)

	over := 0
	for _, n := range s.Nodes {
		if n.CPUAllocated > n.AllocatableCPU {
			over++
		}
	}
	m.OverSubscribed.Set(float64(over))
}

// ObserveOperation counts one operation outcome. result is "success" or the
// lower-cased error code.
func (m *Metrics) ObserveOperation(operation, result string, seconds float64) {
	m.OperationsTotal.WithLabelValues(operation, result).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}
