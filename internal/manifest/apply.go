package manifest

import (
	"context"
	"fmt"

	"github.com/developer-vif/openshift-workload-simulator/internal/cluster"
)

// Applier performs the cluster operations a manifest needs. ClusterApplier
// runs them in-process; the API client runs them over HTTP.
type Applier interface {
	SetTotalWorkerNodes(ctx context.Context, count int) error
	SetSimulatedWorkloadFactor(ctx context.Context, factor float64) error
	CreateNamespace(ctx context.Context, name string, cpuQuota, memoryQuota float64) error
	AddDeployment(ctx context.Context, name, namespace string, replicas int, cpuPerReplica, memoryPerReplica float64) error
}

// Result reports how far Apply got.
type Result struct {
	Applied int `json:"applied"`
	Total   int `json:"total"`
}

// Apply runs m against a in order: node count, workload factor, namespaces,
// deployments. The workload factor wipes existing namespaces, which is why it
// comes before them. Apply stops at the first failure.
func Apply(ctx context.Context, a Applier, m *Manifest) (Result, error) {
	res := Result{Total: m.Steps()}

	step := func(desc string, fn func() error) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("manifest: %s: %w", desc, err)
		}
		if err := fn(); err != nil {
			return fmt.Errorf("manifest: %s: %w", desc, err)
		}
		res.Applied++
		return nil
	}

	if m.Nodes != nil {
		n := *m.Nodes
		if err := step(fmt.Sprintf("set nodes to %d", n), func() error {
			return a.SetTotalWorkerNodes(ctx, n)
		}); err != nil {
			return res, err
		}
	}

	if m.WorkloadFactor != nil {
		f := *m.WorkloadFactor
		if err := step(fmt.Sprintf("set workload factor to %g", f), func() error {
			return a.SetSimulatedWorkloadFactor(ctx, f)
		}); err != nil {
			return res, err
		}
	}

	for _, ns := range m.Namespaces {
		if err := step(fmt.Sprintf("create namespace %q", ns.Name), func() error {
			return a.CreateNamespace(ctx, ns.Name, ns.Quota.CPU.Cores(), ns.Quota.Memory.GB())
		}); err != nil {
			return res, err
		}
	}

	for _, d := range m.Deployments {
		if err := step(fmt.Sprintf("add deployment %q", d.Name), func() error {
			return a.AddDeployment(ctx, d.Name, d.Namespace, d.Replicas, d.Resources.CPU.Cores(), d.Resources.Memory.GB())
		}); err != nil {
			return res, err
		}
	}

	return res, nil
}

// ClusterApplier applies manifests directly to a Cluster.
type ClusterApplier struct {
	Cluster *cluster.Cluster
}

func (a ClusterApplier) SetTotalWorkerNodes(_ context.Context, count int) error {
	return a.Cluster.SetTotalWorkerNodes(count)
}

func (a ClusterApplier) SetSimulatedWorkloadFactor(_ context.Context, factor float64) error {
	return a.Cluster.SetSimulatedWorkloadFactor(factor)
}

func (a ClusterApplier) CreateNamespace(_ context.Context, name string, cpuQuota, memoryQuota float64) error {
	_, err := a.Cluster.CreateNamespace(name, cpuQuota, memoryQuota)
	return err
}

func (a ClusterApplier) AddDeployment(_ context.Context, name, namespace string, replicas int, cpuPerReplica, memoryPerReplica float64) error {
	_, err := a.Cluster.AddDeployment(name, namespace, replicas, cpuPerReplica, memoryPerReplica)
	return err
}
