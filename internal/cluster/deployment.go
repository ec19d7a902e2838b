package cluster

import "strconv"

// PodStatus is the binding state of a pod.
type PodStatus string

const (
	PodPending PodStatus = "Pending"
	PodRunning PodStatus = "Running"
)

type pod struct {
	name          string
	cpuRequest    float64
	memoryRequest float64
	status        PodStatus
	node          string
}

type deployment struct {
	name                    string
	namespace               string
	replicaCount            int
	cpuRequestPerReplica    float64
	memoryRequestPerReplica float64
	pods                    []pod
}

func podNameFor(deployment string, index int) string {
	return deployment + "-" + strconv.Itoa(index)
}

func newDeployment(name, ns string, replicas int, cpu, memory float64) *deployment {
	d := &deployment{
		name:                    name,
		namespace:               ns,
		replicaCount:            replicas,
		cpuRequestPerReplica:    cpu,
		memoryRequestPerReplica: memory,
	}
	d.regeneratePods()
	return d
}

// regeneratePods replaces the whole pod set with replicaCount fresh Pending
// pods. Callers must unbind the old pods first.
func (d *deployment) regeneratePods() {
	d.pods = make([]pod, d.replicaCount)
	for i := range d.pods {
		d.pods[i] = pod{
			name:          podNameFor(d.name, i),
			cpuRequest:    d.cpuRequestPerReplica,
			memoryRequest: d.memoryRequestPerReplica,
			status:        PodPending,
		}
	}
}

// footprint is the aggregate request charged against the namespace.
func (d *deployment) footprint() (cpu, memory float64) {
	r := float64(d.replicaCount)
	return r * d.cpuRequestPerReplica, r * d.memoryRequestPerReplica
}

func (d *deployment) runningPods() int {
	n := 0
	for _, p := range d.pods {
		if p.status == PodRunning {
			n++
		}
	}
	return n
}

func (d *deployment) state() DeploymentState {
	pods := make([]PodState, len(d.pods))
	for i, p := range d.pods {
		pods[i] = PodState{
			Name:          p.name,
			CPURequest:    p.cpuRequest,
			MemoryRequest: p.memoryRequest,
			Status:        p.status,
			Node:          p.node,
		}
	}
	cpu, mem := d.footprint()
	return DeploymentState{
		Name:                    d.name,
		Namespace:               d.namespace,
		ReplicaCount:            d.replicaCount,
		CPURequestPerReplica:    d.cpuRequestPerReplica,
		MemoryRequestPerReplica: d.memoryRequestPerReplica,
		TotalCPURequest:         cpu,
		TotalMemoryRequest:      mem,
		RunningPods:             d.runningPods(),
		Pods:                    pods,
	}
}
