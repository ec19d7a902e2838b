package cluster

import (
	"slices"

	simerrors "github.com/developer-vif/openshift-workload-simulator/internal/errors"
)

type namespace struct {
	name            string
	cpuQuota        float64
	memoryQuota     float64
	cpuAllocated    float64
	memoryAllocated float64
	deployments     []string
}

// allocateResources commits only when both dimensions stay within quota.
func (ns *namespace) allocateResources(cpu, memory float64) error {
	if ns.cpuAllocated+cpu > ns.cpuQuota || ns.memoryAllocated+memory > ns.memoryQuota {
		return simerrors.New(simerrors.ErrQuotaExceeded, component,
			"namespace %q quota exceeded: requested cpu=%g memory=%g, allocated cpu=%g/%g memory=%g/%g",
			ns.name, cpu, memory, ns.cpuAllocated, ns.cpuQuota, ns.memoryAllocated, ns.memoryQuota)
	}
	ns.cpuAllocated += cpu
	ns.memoryAllocated += memory
	return nil
}

// commit adds to the counters without a quota check. Used to restore a
// footprint that was already admitted once.
func (ns *namespace) commit(cpu, memory float64) {
	ns.cpuAllocated += cpu
	ns.memoryAllocated += memory
}

func (ns *namespace) deallocateResources(cpu, memory float64) {
	ns.cpuAllocated = max(0, ns.cpuAllocated-cpu)
	ns.memoryAllocated = max(0, ns.memoryAllocated-memory)
}

func (ns *namespace) addDeployment(name string) {
	ns.deployments = append(ns.deployments, name)
}

func (ns *namespace) removeDeployment(name string) {
	if i := slices.Index(ns.deployments, name); i >= 0 {
		ns.deployments = slices.Delete(ns.deployments, i, i+1)
	}
}

func (ns *namespace) state() NamespaceState {
	return NamespaceState{
		Name:            ns.name,
		CPUQuota:        ns.cpuQuota,
		MemoryQuota:     ns.memoryQuota,
		CPUAllocated:    ns.cpuAllocated,
		MemoryAllocated: ns.memoryAllocated,
		Deployments:     slices.Clone(ns.deployments),
	}
}
