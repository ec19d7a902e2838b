package cluster

import "slices"

// Per-node system reservations subtracted from capacity.
const (
	ReservedCPU    = 2.0
	ReservedMemory = 4.0
)

// Default node shape used when a caller does not supply one.
const (
	DefaultNodeCPU    = 128.0
	DefaultNodeMemory = 1500.0
)

// PodRef identifies a pod by its owning deployment and replica index.
type PodRef struct {
	Deployment string
	Index      int
}

// workerNode is a capacity container. It performs no capacity checks itself;
// placement decides fit.
type workerNode struct {
	name            string
	cpuCapacity     float64
	memoryCapacity  float64
	cpuAllocated    float64
	memoryAllocated float64
	pods            []PodRef
}

func newWorkerNode(name string, cpu, memory float64) *workerNode {
	return &workerNode{name: name, cpuCapacity: cpu, memoryCapacity: memory}
}

func (n *workerNode) allocatableCPU() float64 {
	return max(0, n.cpuCapacity-ReservedCPU)
}

func (n *workerNode) allocatableMemory() float64 {
	return max(0, n.memoryCapacity-ReservedMemory)
}

// allocate always succeeds.
func (n *workerNode) allocate(cpu, memory float64) {
	n.cpuAllocated += cpu
	n.memoryAllocated += memory
}

// deallocate clamps at zero so a double release never leaves negative debt.
func (n *workerNode) deallocate(cpu, memory float64) {
	n.cpuAllocated = max(0, n.cpuAllocated-cpu)
	n.memoryAllocated = max(0, n.memoryAllocated-memory)
}

func (n *workerNode) addPod(ref PodRef) {
	n.pods = append(n.pods, ref)
}

// removePod is a no-op when ref is not bound here.
func (n *workerNode) removePod(ref PodRef) {
	if i := slices.Index(n.pods, ref); i >= 0 {
		n.pods = slices.Delete(n.pods, i, i+1)
	}
}

// fits reports whether the remaining allocatable capacity covers the request
// in both dimensions.
func (n *workerNode) fits(cpu, memory float64) bool {
	return n.allocatableCPU()-n.cpuAllocated >= cpu &&
		n.allocatableMemory()-n.memoryAllocated >= memory
}

func (n *workerNode) reset() {
	n.cpuAllocated = 0
	n.memoryAllocated = 0
	n.pods = nil
}

func podName(ref PodRef) string {
	return podNameFor(ref.Deployment, ref.Index)
}

func (n *workerNode) state() NodeState {
	pods := make([]string, len(n.pods))
	for i, ref := range n.pods {
		pods[i] = podName(ref)
	}
	return NodeState{
		Name:              n.name,
		CPUCapacity:       n.cpuCapacity,
		MemoryCapacity:    n.memoryCapacity,
		AllocatableCPU:    n.allocatableCPU(),
		AllocatableMemory: n.allocatableMemory(),
		CPUAllocated:      n.cpuAllocated,
		MemoryAllocated:   n.memoryAllocated,
		Pods:              pods,
	}
}
