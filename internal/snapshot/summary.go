package snapshot

import "github.com/developer-vif/openshift-workload-simulator/pkg/model"

// ComputeCounts calculates entity counts from a snapshot.
func ComputeCounts(snapshot *model.ClusterSnapshot) model.EntityCounts {
	c := model.EntityCounts{
		NodeCount:       len(snapshot.Nodes),
		NamespaceCount:  len(snapshot.Namespaces),
		DeploymentCount: len(snapshot.Deployments),
	}

	for i := range snapshot.Deployments {
		d := &snapshot.Deployments[i]
		c.PodCount += len(d.Pods)
		for j := range d.Pods {
			switch d.Pods[j].Status {
			case "Running":
				c.RunningPodCount++
			case "Pending":
				c.PendingPodCount++
			}
		}
	}

	for i := range snapshot.Nodes {
		n := &snapshot.Nodes[i]
		if n.CPUAllocated > n.AllocatableCPU {
			c.OverSubscribedCPU++
		}
	}

	return c
}
