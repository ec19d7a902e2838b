package cluster

import (
	"fmt"
	"log/slog"
	"math"
)

const (
	maxGeneratedNamespaces = 10
	// namespaceQuotaBuffer sizes a generated namespace quota above its even
	// share of the pool.
	namespaceQuotaBuffer = 1.2
	minGeneratedRequest  = 0.01
)

// generatedCount is ceil(factor*10) clamped to [1, 10], computed on the float
// product.
func generatedCount(factor float64) int {
	return max(1, min(maxGeneratedNamespaces, int(math.Ceil(factor*10))))
}

// generateWorkloadLocked creates sim-ns-{i} namespaces each holding
// sim-dep-{i}-{j} deployments. Every namespace gets 1.2x its even share of
// allocatable capacity as quota and factor times that share as load, split
// evenly across its deployments with 1 to 3 replicas each.
func (c *Cluster) generateWorkloadLocked(factor float64) {
	var totalCPU, totalMemory float64
	for _, n := range c.nodes {
		totalCPU += n.allocatableCPU()
		totalMemory += n.allocatableMemory()
	}

	count := generatedCount(factor)
	shareCPU := totalCPU / float64(count)
	shareMemory := totalMemory / float64(count)
	perDeploymentCPU := totalCPU * factor / float64(count) / float64(count)
	perDeploymentMemory := totalMemory * factor / float64(count) / float64(count)

	for i := range count {
		nsName := fmt.Sprintf("sim-ns-%d", i)
		if _, err := c.createNamespaceLocked(nsName, shareCPU*namespaceQuotaBuffer, shareMemory*namespaceQuotaBuffer); err != nil {
			slog.Debug("workload generation: namespace skipped", "namespace", nsName, "error", err)
			continue
		}
		for j := range count {
			depName := fmt.Sprintf("sim-dep-%d-%d", i, j)
			replicas := c.rng.IntN(3) + 1
			cpu := max(minGeneratedRequest, perDeploymentCPU/float64(replicas))
			memory := max(minGeneratedRequest, perDeploymentMemory/float64(replicas))
			if _, err := c.addDeploymentLocked(depName, nsName, replicas, cpu, memory); err != nil {
				slog.Debug("workload generation: deployment skipped", "deployment", depName, "error", err)
			}
		}
	}
}
