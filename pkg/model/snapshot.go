package model

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Nodes                   []NodeInfo       `json:"nodes"`
	Namespaces              []NamespaceInfo  `json:"namespaces"`
	Deployments             []DeploymentInfo `json:"deployments"`
	ClusterSummary          ClusterSummary   `json:"cluster_summary"`
	SimulatedWorkloadFactor float64          `json:"simulated_workload_factor"`
}

// ClusterSnapshot is the full-state payload exported to the backend every
// interval and served on /debug/snapshot.
type ClusterSnapshot struct {
	// Identity
	SnapshotID       string `json:"snapshot_id"`
	ClusterID        string `json:"cluster_id"`
	ClusterName      string `json:"cluster_name"`
	Timestamp        int64  `json:"timestamp"`
	SimulatorVersion string `json:"simulator_version"`

	// Placement policy in effect
	CapacityChecked bool `json:"capacity_checked"`

	// Resources
	Nodes       []NodeInfo       `json:"nodes"`
	Namespaces  []NamespaceInfo  `json:"namespaces"`
	Deployments []DeploymentInfo `json:"deployments"`

	// Computed
	Summary ClusterSummary `json:"summary"`
	Counts  EntityCounts   `json:"counts"`

	// Simulator health
	Health SimulatorHealth `json:"health"`
}

// EntityCounts holds object counts derived from the snapshot.
type EntityCounts struct {
	NodeCount         int `json:"node_count"`
	NamespaceCount    int `json:"namespace_count"`
	DeploymentCount   int `json:"deployment_count"`
	PodCount          int `json:"pod_count"`
	RunningPodCount   int `json:"running_pod_count"`
	PendingPodCount   int `json:"pending_pod_count"`
	OverSubscribedCPU int `json:"oversubscribed_cpu_nodes"`
}

// SimulatorHealth is sent with every snapshot.
type SimulatorHealth struct {
	// Cumulative counters
	SnapshotsSentTotal   uint64 `json:"snapshots_sent_total"`
	SnapshotsFailedTotal uint64 `json:"snapshots_failed_total"`
	SnapshotsTotalCount  uint64 `json:"snapshots_total"`

	// Exporter state
	State       string `json:"state"`
	StateReason string `json:"state_reason,omitempty"`

	LastBuildDurationMs int64 `json:"last_build_duration_ms"`
	LastSendDurationMs  int64 `json:"last_send_duration_ms"`

	// Payload size of the last send
	OriginalSizeBytes   int64   `json:"original_size_bytes"`
	CompressedSizeBytes int64   `json:"compressed_size_bytes"`
	CompressionRatio    float64 `json:"compression_ratio"`

	// Errors
	ActiveErrorsCount int      `json:"active_errors_count"`
	ErrorCodes        []string `json:"error_codes,omitempty"`

	UptimeSeconds int64 `json:"uptime_seconds"`
	StartedAt     int64 `json:"started_at"`
	CollectedAt   int64 `json:"collected_at"`
}
