package snapshot

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developer-vif/openshift-workload-simulator/internal/cluster"
	"github.com/developer-vif/openshift-workload-simulator/internal/config"
	"github.com/developer-vif/openshift-workload-simulator/internal/errors"
	"github.com/developer-vif/openshift-workload-simulator/internal/observability"
	"github.com/developer-vif/openshift-workload-simulator/pkg/model"
)

func newTestDeps(opts ...cluster.Option) (*cluster.Cluster, *config.Config, *observability.Metrics, *errors.ErrorCollector) {
	opts = append([]cluster.Option{cluster.WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	c := cluster.New(opts...)
	cfg := &config.Config{
		ClusterID:        "test-cluster-id",
		ClusterName:      "test-cluster",
		SimulatorVersion: "v0.1.0",
	}
	m := observability.NewMetrics()
	ec := errors.NewErrorCollector(errors.RealClock{})
	return c, cfg, m, ec
}

func TestBuild_ProducesValidSnapshotWithUUID(t *testing.T) {
	c, cfg, m, ec := newTestDeps()
	builder := NewSnapshotBuilder(c, cfg, m, ec)

	snap := builder.Build(context.Background())

	require.NotNil(t, snap)
	assert.Len(t, snap.SnapshotID, 36, "UUID should be 36 chars")
	assert.Equal(t, "test-cluster-id", snap.ClusterID)
	assert.Equal(t, "test-cluster", snap.ClusterName)
	assert.Equal(t, "v0.1.0", snap.SimulatorVersion)
	assert.Greater(t, snap.Timestamp, int64(0))
}

func TestBuild_UniqueSnapshotIDs(t *testing.T) {
	c, cfg, m, ec := newTestDeps()
	builder := NewSnapshotBuilder(c, cfg, m, ec)

	a := builder.Build(context.Background())
	b := builder.Build(context.Background())
	assert.NotEqual(t, a.SnapshotID, b.SnapshotID)
}

func TestBuild_ConvertsClusterState(t *testing.T) {
	c, cfg, m, ec := newTestDeps()
	_, err := c.CreateNamespace("dev", 10, 20)
	require.NoError(t, err)
	_, err = c.AddDeployment("web", "dev", 2, 1, 2)
	require.NoError(t, err)

	snap := NewSnapshotBuilder(c, cfg, m, ec).Build(context.Background())

	require.Len(t, snap.Nodes, 3)
	require.Len(t, snap.Namespaces, 1)
	require.Len(t, snap.Deployments, 1)

	assert.Equal(t, "worker-node-1", snap.Nodes[0].Name)
	require.Len(t, snap.Nodes[0].Pods, 1)
	assert.Equal(t, "web-0", snap.Nodes[0].Pods[0].Name)
	assert.Equal(t, "Running", snap.Nodes[0].Pods[0].Status)
	assert.Equal(t, "worker-node-1", snap.Nodes[0].Pods[0].Node)

	ns := snap.Namespaces[0]
	assert.Equal(t, 1, ns.DeploymentCount)
	assert.InDelta(t, 20.0, ns.CPUQuotaUsedPercent, 1e-9)
	assert.InDelta(t, 20.0, ns.MemoryQuotaUsedPercent, 1e-9)

	d := snap.Deployments[0]
	assert.Equal(t, 2, d.RunningPods)
	assert.InDelta(t, 2.0, d.TotalCPURequest, 1e-9)

	assert.Equal(t, 3, snap.Summary.TotalNodes)
	assert.InDelta(t, 2.0, snap.Summary.TotalCPUAllocated, 1e-9)

	assert.Equal(t, model.EntityCounts{
		NodeCount:       3,
		NamespaceCount:  1,
		DeploymentCount: 1,
		PodCount:        2,
		RunningPodCount: 2,
	}, snap.Counts)
}

func TestBuild_CapacityCheckedFlag(t *testing.T) {
	c, cfg, m, ec := newTestDeps(cluster.WithCapacityChecked(true))
	snap := NewSnapshotBuilder(c, cfg, m, ec).Build(context.Background())
	assert.True(t, snap.CapacityChecked)
}

func TestBuild_PendingPodsReportUnboundNode(t *testing.T) {
	c, cfg, m, ec := newTestDeps(cluster.WithInitialNodes(0))
	_, err := c.CreateNamespace("dev", 10, 20)
	require.NoError(t, err)
	_, err = c.AddDeployment("web", "dev", 2, 1, 2)
	require.NoError(t, err)

	snap := NewSnapshotBuilder(c, cfg, m, ec).Build(context.Background())

	require.Len(t, snap.Deployments, 1)
	for _, p := range snap.Deployments[0].Pods {
		assert.Equal(t, "Pending", p.Status)
		assert.Equal(t, model.NodeUnbound, p.Node)
	}
	assert.Equal(t, 2, snap.Counts.PendingPodCount)
	assert.Equal(t, 0, snap.Counts.RunningPodCount)
}

func TestBuild_HealthIncludesActiveErrors(t *testing.T) {
	c, cfg, m, ec := newTestDeps()
	ec.Report(errors.SimError{Code: errors.ErrQuotaExceeded, Component: "api", Message: "quota"})

	snap := NewSnapshotBuilder(c, cfg, m, ec).Build(context.Background())

	assert.Equal(t, 1, snap.Health.ActiveErrorsCount)
	assert.Equal(t, []string{string(errors.ErrQuotaExceeded)}, snap.Health.ErrorCodes)
	assert.Greater(t, snap.Health.StartedAt, int64(0))
	assert.GreaterOrEqual(t, snap.Health.CollectedAt, snap.Health.StartedAt)
}

func TestBuild_NilMetricsAndCollector(t *testing.T) {
	c, cfg, _, _ := newTestDeps()
	snap := NewSnapshotBuilder(c, cfg, nil, nil).Build(context.Background())
	require.NotNil(t, snap)
	assert.Equal(t, 0, snap.Health.ActiveErrorsCount)
	assert.Empty(t, snap.Health.ErrorCodes)
}

func TestEntityCounts_ReadsLiveCluster(t *testing.T) {
	c, cfg, m, ec := newTestDeps()
	builder := NewSnapshotBuilder(c, cfg, m, ec)
	assert.Equal(t, 3, builder.EntityCounts().NodeCount)

	require.NoError(t, c.SetTotalWorkerNodes(5))
	assert.Equal(t, 5, builder.EntityCounts().NodeCount)
}
