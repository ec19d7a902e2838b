package model

// NodeUnbound is reported as a pod's node while it is Pending.
const NodeUnbound = "N/A"

// NodeInfo represents a simulated worker node with capacity, system
// reservation, allocation, and the pods bound to it.
type NodeInfo struct {
	Name              string  `json:"name"`
	CPUCapacity       float64 `json:"cpu_capacity"`
	MemoryCapacity    float64 `json:"memory_capacity"`
	AllocatableCPU    float64 `json:"allocatable_cpu"`
	AllocatableMemory float64 `json:"allocatable_memory"`
	CPUAllocated      float64 `json:"cpu_allocated"`
	MemoryAllocated   float64 `json:"memory_allocated"`

	// Percent of allocatable, 0 when allocatable is 0. May exceed 100 when
	// the node is over-subscribed.
	CPUUtilizationPercent    float64 `json:"cpu_utilization_percent"`
	MemoryUtilizationPercent float64 `json:"memory_utilization_percent"`

	Pods []PodInfo `json:"pods"`
}

// PodInfo represents one replica of a deployment.
type PodInfo struct {
	Name          string  `json:"name"`
	CPURequest    float64 `json:"cpu_request"`
	MemoryRequest float64 `json:"memory_request"`
	Status        string  `json:"status"`
	Node          string  `json:"node"`
}

// NamespaceInfo represents a quota container.
type NamespaceInfo struct {
	Name            string  `json:"name"`
	CPUQuota        float64 `json:"cpu_quota"`
	MemoryQuota     float64 `json:"memory_quota"`
	CPUAllocated    float64 `json:"cpu_allocated"`
	MemoryAllocated float64 `json:"memory_allocated"`
	DeploymentCount int     `json:"deployment_count"`

	CPUQuotaUsedPercent    float64 `json:"cpu_quota_used_percent"`
	MemoryQuotaUsedPercent float64 `json:"memory_quota_used_percent"`
}

// DeploymentInfo represents a scalable group of identical pods.
type DeploymentInfo struct {
	Name                    string    `json:"name"`
	Namespace               string    `json:"namespace"`
	ReplicaCount            int       `json:"replica_count"`
	CPURequestPerReplica    float64   `json:"cpu_request_per_replica"`
	MemoryRequestPerReplica float64   `json:"memory_request_per_replica"`
	TotalCPURequest         float64   `json:"total_cpu_request"`
	TotalMemoryRequest      float64   `json:"total_memory_request"`
	RunningPods             int       `json:"running_pods"`
	Pods                    []PodInfo `json:"pods"`
}

// ClusterSummary holds capacity and allocation totals over the node pool.
type ClusterSummary struct {
	TotalNodes              int     `json:"total_nodes"`
	TotalCPUCapacity        float64 `json:"total_cpu_capacity"`
	TotalMemoryCapacity     float64 `json:"total_memory_capacity"`
	TotalAllocatableCPU     float64 `json:"total_allocatable_cpu"`
	TotalAllocatableMemory  float64 `json:"total_allocatable_memory"`
	TotalReservedCPU        float64 `json:"total_reserved_cpu"`
	TotalReservedMemory     float64 `json:"total_reserved_memory"`
	TotalCPUAllocated       float64 `json:"total_cpu_allocated"`
	TotalMemoryAllocated    float64 `json:"total_memory_allocated"`
	TotalCPUAvailable       float64 `json:"total_cpu_available"`
	TotalMemoryAvailable    float64 `json:"total_memory_available"`
	SimulatedWorkloadFactor float64 `json:"simulated_workload_factor"`
}
