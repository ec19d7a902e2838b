package cluster

// NodeState is a point-in-time copy of a worker node.
type NodeState struct {
	Name              string
	CPUCapacity       float64
	MemoryCapacity    float64
	AllocatableCPU    float64
	AllocatableMemory float64
	CPUAllocated      float64
	MemoryAllocated   float64
	// Pods holds the names of pods bound to the node, in bind order.
	Pods []string
}

// PodState is a point-in-time copy of a pod. Node is empty while Pending.
type PodState struct {
	Name          string
	CPURequest    float64
	MemoryRequest float64
	Status        PodStatus
	Node          string
}

// NamespaceState is a point-in-time copy of a namespace.
type NamespaceState struct {
	Name            string
	CPUQuota        float64
	MemoryQuota     float64
	CPUAllocated    float64
	MemoryAllocated float64
	Deployments     []string
}

// DeploymentState is a point-in-time copy of a deployment and its pods.
type DeploymentState struct {
	Name                    string
	Namespace               string
	ReplicaCount            int
	CPURequestPerReplica    float64
	MemoryRequestPerReplica float64
	TotalCPURequest         float64
	TotalMemoryRequest      float64
	RunningPods             int
	Pods                    []PodState
}

// Summary aggregates capacity and allocation over the node pool.
type Summary struct {
	TotalNodes              int
	TotalCPUCapacity        float64
	TotalMemoryCapacity     float64
	TotalAllocatableCPU     float64
	TotalAllocatableMemory  float64
	TotalReservedCPU        float64
	TotalReservedMemory     float64
	TotalCPUAllocated       float64
	TotalMemoryAllocated    float64
	TotalCPUAvailable       float64
	TotalMemoryAvailable    float64
	SimulatedWorkloadFactor float64
}

// State is a consistent copy of the whole cluster taken under one lock.
type State struct {
	Nodes           []NodeState
	Namespaces      []NamespaceState
	Deployments     []DeploymentState
	Summary         Summary
	WorkloadFactor  float64
	CapacityChecked bool
}

// PendingPods counts pods across all deployments that are not bound.
func (s State) PendingPods() int {
	n := 0
	for _, d := range s.Deployments {
		n += len(d.Pods) - d.RunningPods
	}
	return n
}

// RunningPods counts bound pods across all deployments.
func (s State) RunningPods() int {
	n := 0
	for _, d := range s.Deployments {
		n += d.RunningPods
	}
	return n
}

// summaryLocked must be called with c.mu held.
func (c *Cluster) summaryLocked() Summary {
	s := Summary{
		TotalNodes:              len(c.nodes),
		TotalReservedCPU:        float64(len(c.nodes)) * ReservedCPU,
		TotalReservedMemory:     float64(len(c.nodes)) * ReservedMemory,
		SimulatedWorkloadFactor: c.workloadFactor,
	}
	for _, n := range c.nodes {
		s.TotalCPUCapacity += n.cpuCapacity
		s.TotalMemoryCapacity += n.memoryCapacity
		s.TotalAllocatableCPU += n.allocatableCPU()
		s.TotalAllocatableMemory += n.allocatableMemory()
		s.TotalCPUAllocated += n.cpuAllocated
		s.TotalMemoryAllocated += n.memoryAllocated
	}
	// Negative when the pool is over-subscribed.
	s.TotalCPUAvailable = s.TotalAllocatableCPU - s.TotalCPUAllocated
	s.TotalMemoryAvailable = s.TotalAllocatableMemory - s.TotalMemoryAllocated
	return s
}
