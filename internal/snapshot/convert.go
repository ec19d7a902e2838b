package snapshot

import (
	"github.com/developer-vif/openshift-workload-simulator/internal/cluster"
	"github.com/developer-vif/openshift-workload-simulator/pkg/model"
)

// Percent returns current as a percentage of total, or 0 when total is not
// positive.
func Percent(current, total float64) float64 {
	if total > 0 {
		return current / total * 100
	}
	return 0
}

// Status converts a cluster state into the GET /api/status body.
func Status(s cluster.State) model.StatusResponse {
	return model.StatusResponse{
		Nodes:                   Nodes(s),
		Namespaces:              Namespaces(s),
		Deployments:             Deployments(s),
		ClusterSummary:          Summary(s.Summary),
		SimulatedWorkloadFactor: s.WorkloadFactor,
	}
}

// Nodes converts every node, resolving bound pod names to full pod entries.
func Nodes(s cluster.State) []model.NodeInfo {
	pods := make(map[string]cluster.PodState)
	for _, d := range s.Deployments {
		for _, p := range d.Pods {
			pods[p.Name] = p
		}
	}

	out := make([]model.NodeInfo, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		info := model.NodeInfo{
			Name:                     n.Name,
			CPUCapacity:              n.CPUCapacity,
			MemoryCapacity:           n.MemoryCapacity,
			AllocatableCPU:           n.AllocatableCPU,
			AllocatableMemory:        n.AllocatableMemory,
			CPUAllocated:             n.CPUAllocated,
			MemoryAllocated:          n.MemoryAllocated,
			CPUUtilizationPercent:    Percent(n.CPUAllocated, n.AllocatableCPU),
			MemoryUtilizationPercent: Percent(n.MemoryAllocated, n.AllocatableMemory),
			Pods:                     make([]model.PodInfo, 0, len(n.Pods)),
		}
		for _, name := range n.Pods {
			if p, ok := pods[name]; ok {
				info.Pods = append(info.Pods, podInfo(p))
			}
		}
		out = append(out, info)
	}
	return out
}

// Namespaces converts every namespace in creation order.
func Namespaces(s cluster.State) []model.NamespaceInfo {
	out := make([]model.NamespaceInfo, 0, len(s.Namespaces))
	for _, ns := range s.Namespaces {
		out = append(out, model.NamespaceInfo{
			Name:                   ns.Name,
			CPUQuota:               ns.CPUQuota,
			MemoryQuota:            ns.MemoryQuota,
			CPUAllocated:           ns.CPUAllocated,
			MemoryAllocated:        ns.MemoryAllocated,
			DeploymentCount:        len(ns.Deployments),
			CPUQuotaUsedPercent:    Percent(ns.CPUAllocated, ns.CPUQuota),
			MemoryQuotaUsedPercent: Percent(ns.MemoryAllocated, ns.MemoryQuota),
		})
	}
	return out
}

// Deployments converts every deployment in list order.
func Deployments(s cluster.State) []model.DeploymentInfo {
	out := make([]model.DeploymentInfo, 0, len(s.Deployments))
	for _, d := range s.Deployments {
		info := model.DeploymentInfo{
			Name:                    d.Name,
			Namespace:               d.Namespace,
			ReplicaCount:            d.ReplicaCount,
			CPURequestPerReplica:    d.CPURequestPerReplica,
			MemoryRequestPerReplica: d.MemoryRequestPerReplica,
			TotalCPURequest:         d.TotalCPURequest,
			TotalMemoryRequest:      d.TotalMemoryRequest,
			RunningPods:             d.RunningPods,
			Pods:                    make([]model.PodInfo, 0, len(d.Pods)),
		}
		for _, p := range d.Pods {
			info.Pods = append(info.Pods, podInfo(p))
		}
		out = append(out, info)
	}
	return out
}

// Summary converts the aggregate summary.
func Summary(s cluster.Summary) model.ClusterSummary {
	return model.ClusterSummary{
		TotalNodes:              s.TotalNodes,
		TotalCPUCapacity:        s.TotalCPUCapacity,
		TotalMemoryCapacity:     s.TotalMemoryCapacity,
		TotalAllocatableCPU:     s.TotalAllocatableCPU,
		TotalAllocatableMemory:  s.TotalAllocatableMemory,
		TotalReservedCPU:        s.TotalReservedCPU,
		TotalReservedMemory:     s.TotalReservedMemory,
		TotalCPUAllocated:       s.TotalCPUAllocated,
		TotalMemoryAllocated:    s.TotalMemoryAllocated,
		TotalCPUAvailable:       s.TotalCPUAvailable,
		TotalMemoryAvailable:    s.TotalMemoryAvailable,
		SimulatedWorkloadFactor: s.SimulatedWorkloadFactor,
	}
}

func podInfo(p cluster.PodState) model.PodInfo {
	node := p.Node
	if node == "" {
		node = model.NodeUnbound
	}
	return model.PodInfo{
		Name:          p.Name,
		CPURequest:    p.CPURequest,
		MemoryRequest: p.MemoryRequest,
		Status:        string(p.Status),
		Node:          node,
	}
}
