package client

import (
	"context"

	"github.com/developer-vif/openshift-workload-simulator/internal/manifest"
)

// Applier returns a manifest.Applier that runs every step over HTTP.
func (c *Client) Applier() manifest.Applier {
	return remoteApplier{c: c}
}

type remoteApplier struct {
	c *Client
}

func (a remoteApplier) SetTotalWorkerNodes(ctx context.Context, count int) error {
	_, err := a.c.SetNodeCount(ctx, count)
	return err
}

func (a remoteApplier) SetSimulatedWorkloadFactor(ctx context.Context, factor float64) error {
	_, err := a.c.SetWorkloadFactor(ctx, factor)
	return err
}

func (a remoteApplier) CreateNamespace(ctx context.Context, name string, cpuQuota, memoryQuota float64) error {
	_, err := a.c.CreateNamespace(ctx, name, cpuQuota, memoryQuota)
	return err
}

func (a remoteApplier) AddDeployment(ctx context.Context, name, namespace string, replicas int, cpuPerReplica, memoryPerReplica float64) error {
	_, err := a.c.AddDeployment(ctx, name, namespace, replicas, cpuPerReplica, memoryPerReplica)
	return err
}
