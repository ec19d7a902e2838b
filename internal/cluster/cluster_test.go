package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	simerrors "github.com/developer-vif/openshift-workload-simulator/internal/errors"
)

func podsByName(s DeploymentState) map[string]PodState {
	m := make(map[string]PodState, len(s.Pods))
	for _, p := range s.Pods {
		m[p.Name] = p
	}
	return m
}

func findDeployment(t *testing.T, c *Cluster, name string) DeploymentState {
	t.Helper()
	for _, d := range c.State().Deployments {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("deployment %q not found", name)
	return DeploymentState{}
}

func findNamespace(t *testing.T, c *Cluster, name string) NamespaceState {
	t.Helper()
	for _, ns := range c.State().Namespaces {
		if ns.Name == name {
			return ns
		}
	}
	t.Fatalf("namespace %q not found", name)
	return NamespaceState{}
}

func TestNew_DefaultPool(t *testing.T) {
	c := newTestCluster()
	s := c.State()

	require.Len(t, s.Nodes, 3)
	for i, n := range s.Nodes {
		assert.Equal(t, []string{"worker-node-1", "worker-node-2", "worker-node-3"}[i], n.Name)
		assert.Equal(t, 128.0, n.CPUCapacity)
		assert.Equal(t, 1500.0, n.MemoryCapacity)
		assert.Equal(t, 126.0, n.AllocatableCPU)
		assert.Equal(t, 1496.0, n.AllocatableMemory)
		assert.Empty(t, n.Pods)
	}

	sum := c.Summary()
	assert.Equal(t, 3, sum.TotalNodes)
	assert.Equal(t, 384.0, sum.TotalCPUCapacity)
	assert.Equal(t, 4500.0, sum.TotalMemoryCapacity)
	assert.Equal(t, 378.0, sum.TotalAllocatableCPU)
	assert.Equal(t, 4488.0, sum.TotalAllocatableMemory)
	assert.Equal(t, 6.0, sum.TotalReservedCPU)
	assert.Equal(t, 12.0, sum.TotalReservedMemory)
	assert.Equal(t, 378.0, sum.TotalCPUAvailable)
	assert.Equal(t, 4488.0, sum.TotalMemoryAvailable)
	assert.Equal(t, 0.0, sum.SimulatedWorkloadFactor)
	assert.False(t, c.CapacityChecked())
}

func TestNew_Options(t *testing.T) {
	c := newTestCluster(WithInitialNodes(1), WithNodeDefaults(8, 32), WithCapacityChecked(true))
	s := c.State()

	require.Len(t, s.Nodes, 1)
	assert.Equal(t, 6.0, s.Nodes[0].AllocatableCPU)
	assert.Equal(t, 28.0, s.Nodes[0].AllocatableMemory)
	assert.True(t, s.CapacityChecked)

	empty := newTestCluster(WithInitialNodes(0))
	assert.Empty(t, empty.State().Nodes)
}

func TestScenario_QuotaGate(t *testing.T) {
	c := newTestCluster()

	_, err := c.CreateNamespace("a", 10, 100)
	require.NoError(t, err)

	d1, err := c.AddDeployment("d1", "a", 2, 3, 40)
	require.NoError(t, err)
	assert.Equal(t, 2, d1.RunningPods)

	ns := findNamespace(t, c, "a")
	assert.Equal(t, 6.0, ns.CPUAllocated)
	assert.Equal(t, 80.0, ns.MemoryAllocated)

	pods := podsByName(d1)
	assert.Equal(t, "worker-node-1", pods["d1-0"].Node)
	assert.Equal(t, "worker-node-2", pods["d1-1"].Node)

	_, err = c.AddDeployment("d2", "a", 1, 5, 30)
	require.Error(t, err)
	assert.Equal(t, simerrors.ErrQuotaExceeded, simerrors.CodeOf(err))

	ns = findNamespace(t, c, "a")
	assert.Equal(t, 6.0, ns.CPUAllocated)
	assert.Equal(t, 80.0, ns.MemoryAllocated)
	assert.Equal(t, []string{"d1"}, ns.Deployments)
	assertInvariants(t, c, false)
}

func TestQuota_AllOrNothingAcrossDimensions(t *testing.T) {
	c := newTestCluster()
	_, err := c.CreateNamespace("a", 100, 10)
	require.NoError(t, err)

	// CPU fits, memory does not.
	_, err = c.AddDeployment("d", "a", 1, 1, 11)
	assert.Equal(t, simerrors.ErrQuotaExceeded, simerrors.CodeOf(err))

	ns := findNamespace(t, c, "a")
	assert.Zero(t, ns.CPUAllocated)
	assert.Zero(t, ns.MemoryAllocated)
	assert.Empty(t, c.State().Deployments)
}

func TestQuota_ExactFitAccepted(t *testing.T) {
	c := newTestCluster()
	_, err := c.CreateNamespace("a", 10, 100)
	require.NoError(t, err)

	_, err = c.AddDeployment("d", "a", 2, 5, 50)
	require.NoError(t, err)
	ns := findNamespace(t, c, "a")
	assert.Equal(t, 10.0, ns.CPUAllocated)
	assert.Equal(t, 100.0, ns.MemoryAllocated)
}

func TestCreateNamespace_Conflict(t *testing.T) {
	c := newTestCluster()

	first, err := c.CreateNamespace("a", 10, 100)
	require.NoError(t, err)
	assert.Equal(t, "a", first.Name)

	_, err = c.CreateNamespace("a", 50, 500)
	assert.Equal(t, simerrors.ErrConflict, simerrors.CodeOf(err))

	ns := findNamespace(t, c, "a")
	assert.Equal(t, 10.0, ns.CPUQuota)
	assert.Equal(t, 100.0, ns.MemoryQuota)
	assert.Len(t, c.State().Namespaces, 1)
}

func TestCreateNamespace_InvalidArguments(t *testing.T) {
	c := newTestCluster()

	tests := []struct {
		name   string
		ns     string
		cpu    float64
		memory float64
	}{
		{"empty name", "", 1, 1},
		{"zero cpu", "a", 0, 1},
		{"negative memory", "a", 1, -1},
		{"nan cpu", "a", math.NaN(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateNamespace(tt.ns, tt.cpu, tt.memory)
			assert.Equal(t, simerrors.ErrInvalidArgument, simerrors.CodeOf(err))
		})
	}
	assert.Empty(t, c.State().Namespaces)
}

func TestAddDeployment_Errors(t *testing.T) {
	c := newTestCluster()
	_, err := c.CreateNamespace("a", 100, 1000)
	require.NoError(t, err)
	_, err = c.AddDeployment("d", "a", 1, 1, 1)
	require.NoError(t, err)

	tests := []struct {
		name     string
		dep      string
		ns       string
		replicas int
		cpu      float64
		memory   float64
		code     simerrors.Code
	}{
		{"unknown namespace", "x", "missing", 1, 1, 1, simerrors.ErrNotFound},
		{"duplicate name", "d", "a", 1, 1, 1, simerrors.ErrConflict},
		{"zero replicas", "x", "a", 0, 1, 1, simerrors.ErrInvalidArgument},
		{"zero cpu", "x", "a", 1, 0, 1, simerrors.ErrInvalidArgument},
		{"zero memory", "x", "a", 1, 1, 0, simerrors.ErrInvalidArgument},
		{"empty name", "", "a", 1, 1, 1, simerrors.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.AddDeployment(tt.dep, tt.ns, tt.replicas, tt.cpu, tt.memory)
			assert.Equal(t, tt.code, simerrors.CodeOf(err))
		})
	}

	ns := findNamespace(t, c, "a")
	assert.Equal(t, 1.0, ns.CPUAllocated)
	assert.Len(t, c.State().Deployments, 1)
	assertInvariants(t, c, false)
}

func TestScaleDeployment_ToZeroFreesFootprint(t *testing.T) {
	c := newTestCluster()
	_, err := c.CreateNamespace("a", 100, 1000)
	require.NoError(t, err)
	_, err = c.AddDeployment("d", "a", 3, 4, 40)
	require.NoError(t, err)

	require.NoError(t, c.ScaleDeployment("d", 0))

	d := findDeployment(t, c, "d")
	assert.Equal(t, 0, d.ReplicaCount)
	assert.Empty(t, d.Pods)
	ns := findNamespace(t, c, "a")
	assert.Zero(t, ns.CPUAllocated)
	assert.Zero(t, ns.MemoryAllocated)
	for _, n := range c.State().Nodes {
		assert.Empty(t, n.Pods)
		assert.Zero(t, n.CPUAllocated)
	}
	assertInvariants(t, c, false)
}

func TestScaleDeployment_RegeneratesPods(t *testing.T) {
	c := newTestCluster()
	_, err := c.CreateNamespace("a", 100, 1000)
	require.NoError(t, err)
	_, err = c.AddDeployment("d", "a", 1, 4, 40)
	require.NoError(t, err)

	require.NoError(t, c.ScaleDeployment("d", 4))

	d := findDeployment(t, c, "d")
	require.Len(t, d.Pods, 4)
	for i, p := range d.Pods {
		assert.Equal(t, podNameFor("d", i), p.Name)
		assert.Equal(t, PodRunning, p.Status)
	}
	// Four pods over three nodes: the least loaded node takes the fourth.
	assert.Equal(t, "worker-node-1", d.Pods[3].Node)
	ns := findNamespace(t, c, "a")
	assert.Equal(t, 16.0, ns.CPUAllocated)
	assertInvariants(t, c, false)
}

func TestScaleDeployment_QuotaFailureKeepsAsymmetry(t *testing.T) {
	c := newTestCluster()
	_, err := c.CreateNamespace("a", 10, 100)
	require.NoError(t, err)
	_, err = c.AddDeployment("d", "a", 2, 3, 40)
	require.NoError(t, err)

	err = c.ScaleDeployment("d", 5)
	require.Error(t, err)
	assert.Equal(t, simerrors.ErrQuotaExceeded, simerrors.CodeOf(err))

	// Namespace counters return to the old footprint.
	ns := findNamespace(t, c, "a")
	assert.Equal(t, 6.0, ns.CPUAllocated)
	assert.Equal(t, 80.0, ns.MemoryAllocated)

	// The deployment keeps the new replica count with unbound pods.
	d := findDeployment(t, c, "d")
	assert.Equal(t, 5, d.ReplicaCount)
	require.Len(t, d.Pods, 5)
	assert.Zero(t, d.RunningPods)
	for _, p := range d.Pods {
		assert.Equal(t, PodPending, p.Status)
		assert.Empty(t, p.Node)
	}
	for _, n := range c.State().Nodes {
		assert.Zero(t, n.CPUAllocated)
		assert.Empty(t, n.Pods)
	}
	assertInvariants(t, c, true)
}

func TestScaleDeployment_Errors(t *testing.T) {
	c := newTestCluster()

	assert.Equal(t, simerrors.ErrNotFound, simerrors.CodeOf(c.ScaleDeployment("missing", 1)))
	assert.Equal(t, simerrors.ErrInvalidRange, simerrors.CodeOf(c.ScaleDeployment("missing", -1)))
}

func TestDeleteDeployment_FreesEverything(t *testing.T) {
	c := newTestCluster()
	_, err := c.CreateNamespace("a", 100, 1000)
	require.NoError(t, err)
	_, err = c.AddDeployment("keep", "a", 2, 1, 10)
	require.NoError(t, err)
	_, err = c.AddDeployment("drop", "a", 3, 5, 50)
	require.NoError(t, err)

	require.NoError(t, c.DeleteDeployment("drop"))

	s := c.State()
	require.Len(t, s.Deployments, 1)
	assert.Equal(t, "keep", s.Deployments[0].Name)
	ns := findNamespace(t, c, "a")
	assert.Equal(t, 2.0, ns.CPUAllocated)
	assert.Equal(t, 20.0, ns.MemoryAllocated)
	assert.Equal(t, []string{"keep"}, ns.Deployments)
	for _, n := range s.Nodes {
		for _, p := range n.Pods {
			assert.NotContains(t, p, "drop-")
		}
	}
	assert.InDelta(t, 2.0, s.Summary.TotalCPUAllocated, epsilon)
	assertInvariants(t, c, false)

	assert.Equal(t, simerrors.ErrNotFound, simerrors.CodeOf(c.DeleteDeployment("drop")))
}

func TestSetTotalWorkerNodes_ShrinkToOne(t *testing.T) {
	c := newTestCluster()
	_, err := c.CreateNamespace("a", 100, 1000)
	require.NoError(t, err)
	_, err = c.AddDeployment("d", "a", 3, 2, 20)
	require.NoError(t, err)

	require.NoError(t, c.SetTotalWorkerNodes(1))

	s := c.State()
	require.Len(t, s.Nodes, 1)
	assert.Equal(t, "worker-node-1", s.Nodes[0].Name)
	assert.Len(t, s.Nodes[0].Pods, 3)
	assert.Equal(t, 6.0, s.Nodes[0].CPUAllocated)
	for _, p := range s.Deployments[0].Pods {
		assert.Equal(t, "worker-node-1", p.Node)
	}
	assertInvariants(t, c, false)
}

func TestSetTotalWorkerNodes_GrowUsesFreshNames(t *testing.T) {
	c := newTestCluster()

	require.NoError(t, c.SetTotalWorkerNodes(1))
	require.NoError(t, c.SetTotalWorkerNodes(3))

	s := c.State()
	require.Len(t, s.Nodes, 3)
	assert.Equal(t, "worker-node-1", s.Nodes[0].Name)
	assert.Equal(t, "worker-node-4", s.Nodes[1].Name)
	assert.Equal(t, "worker-node-5", s.Nodes[2].Name)
}

func TestSetTotalWorkerNodes_SpreadsAfterGrowth(t *testing.T) {
	c := newTestCluster(WithInitialNodes(1))
	_, err := c.CreateNamespace("a", 100, 1000)
	require.NoError(t, err)
	_, err = c.AddDeployment("d", "a", 4, 2, 10)
	require.NoError(t, err)

	require.NoError(t, c.SetTotalWorkerNodes(4))

	for _, n := range c.State().Nodes {
		assert.Len(t, n.Pods, 1, "node %s", n.Name)
	}
	assertInvariants(t, c, false)
}

func TestSetTotalWorkerNodes_ZeroLeavesPodsPending(t *testing.T) {
	c := newTestCluster()
	_, err := c.CreateNamespace("a", 100, 1000)
	require.NoError(t, err)
	_, err = c.AddDeployment("d", "a", 2, 2, 10)
	require.NoError(t, err)

	require.NoError(t, c.SetTotalWorkerNodes(0))

	s := c.State()
	assert.Empty(t, s.Nodes)
	assert.Equal(t, 2, s.PendingPods())
	assert.Equal(t, 0, s.RunningPods())
	assert.Equal(t, simerrors.ErrInvalidRange, simerrors.CodeOf(c.SetTotalWorkerNodes(-1)))
}

func TestSetTotalWorkerNodes_Unchanged(t *testing.T) {
	c := newTestCluster()
	require.NoError(t, c.SetTotalWorkerNodes(3))
	assert.Len(t, c.State().Nodes, 3)
}

func TestAddWorkerNode(t *testing.T) {
	c := newTestCluster()

	n, err := c.AddWorkerNode("", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "worker-node-4", n.Name)
	assert.Equal(t, 128.0, n.CPUCapacity)

	n, err = c.AddWorkerNode("big", 256, 4096)
	require.NoError(t, err)
	assert.Equal(t, "big", n.Name)
	assert.Equal(t, 254.0, n.AllocatableCPU)

	_, err = c.AddWorkerNode("big", 1, 1)
	assert.Equal(t, simerrors.ErrConflict, simerrors.CodeOf(err))

	_, err = c.AddWorkerNode("x", -1, 1)
	assert.Equal(t, simerrors.ErrInvalidArgument, simerrors.CodeOf(err))

	// Generated names skip ones taken explicitly.
	_, err = c.AddWorkerNode("worker-node-7", 0, 0)
	require.NoError(t, err)
	n, err = c.AddWorkerNode("", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "worker-node-8", n.Name)
}

func TestAddWorkerNode_SmallNodeAllocatableClamped(t *testing.T) {
	c := newTestCluster(WithInitialNodes(0))
	n, err := c.AddWorkerNode("tiny", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, n.AllocatableCPU)
	assert.Equal(t, 0.0, n.AllocatableMemory)
}

func TestPlacement_PermissiveOverSubscribes(t *testing.T) {
	c := newTestCluster(WithInitialNodes(1))
	_, err := c.CreateNamespace("a", 1000, 10000)
	require.NoError(t, err)

	d, err := c.AddDeployment("d", "a", 2, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, d.RunningPods)

	n := c.State().Nodes[0]
	assert.Equal(t, 200.0, n.CPUAllocated)
	assert.Greater(t, n.CPUAllocated, n.AllocatableCPU)
	assert.Less(t, c.Summary().TotalCPUAvailable, 0.0)
	assertInvariants(t, c, false)
}

func TestPlacement_CapacityCheckedLeavesPending(t *testing.T) {
	c := newTestCluster(WithInitialNodes(1), WithCapacityChecked(true))
	_, err := c.CreateNamespace("a", 1000, 10000)
	require.NoError(t, err)

	d, err := c.AddDeployment("d", "a", 2, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, d.RunningPods)
	assert.Equal(t, PodPending, d.Pods[1].Status)

	n := c.State().Nodes[0]
	assert.Equal(t, 100.0, n.CPUAllocated)
	assert.LessOrEqual(t, n.CPUAllocated, n.AllocatableCPU)

	// A new node is not used until placement runs again.
	_, err = c.AddWorkerNode("", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, findDeployment(t, c, "d").RunningPods)

	require.NoError(t, c.SetTotalWorkerNodes(3))
	assert.Equal(t, 2, findDeployment(t, c, "d").RunningPods)
	assertInvariants(t, c, false)
}

func TestState_ReturnsCopies(t *testing.T) {
	c := newTestCluster()
	_, err := c.CreateNamespace("a", 100, 1000)
	require.NoError(t, err)
	_, err = c.AddDeployment("d", "a", 1, 1, 1)
	require.NoError(t, err)

	s := c.State()
	s.Nodes[0].Pods[0] = "tampered"
	s.Namespaces[0].Deployments[0] = "tampered"
	s.Deployments[0].Pods[0].Node = "tampered"

	fresh := c.State()
	assert.Equal(t, "d-0", fresh.Nodes[0].Pods[0])
	assert.Equal(t, "d", fresh.Namespaces[0].Deployments[0])
	assert.Equal(t, "worker-node-1", fresh.Deployments[0].Pods[0].Node)
}
