package cluster

import (
	"cmp"
	"slices"
)

// placePendingPodsLocked binds each Pending pod of d, in pod order, to the
// least CPU-loaded candidate node. Candidates are re-sorted from pool order
// before every pod so consecutive replicas spread across the pool and ties
// keep pool order. Pods with no candidate stay Pending.
func (c *Cluster) placePendingPodsLocked(d *deployment) {
	candidates := make([]*workerNode, len(c.nodes))
	for i := range d.pods {
		p := &d.pods[i]
		if p.status != PodPending {
			continue
		}
		copy(candidates, c.nodes)
		slices.SortStableFunc(candidates, func(a, b *workerNode) int {
			return cmp.Compare(a.cpuAllocated, b.cpuAllocated)
		})
		for _, n := range candidates {
			if c.capacityChecked && !n.fits(p.cpuRequest, p.memoryRequest) {
				continue
			}
			n.allocate(p.cpuRequest, p.memoryRequest)
			n.addPod(PodRef{Deployment: d.name, Index: i})
			p.status = PodRunning
			p.node = n.name
			break
		}
	}
}

// unbindPodsLocked releases every bound pod of d from its node and marks it
// Pending.
func (c *Cluster) unbindPodsLocked(d *deployment) {
	for i := range d.pods {
		p := &d.pods[i]
		if p.node != "" {
			if n, ok := c.nodesByName[p.node]; ok {
				n.deallocate(p.cpuRequest, p.memoryRequest)
				n.removePod(PodRef{Deployment: d.name, Index: i})
			}
		}
		p.node = ""
		p.status = PodPending
	}
}

// reallocateAllLocked clears every node, marks every pod Pending and places
// deployments again in list order.
func (c *Cluster) reallocateAllLocked() {
	for _, n := range c.nodes {
		n.reset()
	}
	for _, d := range c.deployments {
		for i := range d.pods {
			d.pods[i].status = PodPending
			d.pods[i].node = ""
		}
	}
	for _, d := range c.deployments {
		c.placePendingPodsLocked(d)
	}
}
