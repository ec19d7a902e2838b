// Package cluster implements the resource accounting and placement engine of
// the simulator: a pool of worker nodes, quota-bounded namespaces, and
// deployments whose pods are bound to nodes.
//
// A Cluster is safe for concurrent use. Every exported method holds a single
// mutex for its whole duration because the accounting spans nodes, namespaces
// and deployments at once. Callers only ever receive copies of the state.
package cluster

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	simerrors "github.com/developer-vif/openshift-workload-simulator/internal/errors"
)

const component = "cluster"

// Cluster owns the node pool, the namespace table and the deployment list.
type Cluster struct {
	mu sync.Mutex

	nodes       []*workerNode
	nodesByName map[string]*workerNode
	nodeCounter int

	namespaces     map[string]*namespace
	namespaceOrder []string

	deployments      []*deployment
	deploymentByName map[string]*deployment

	workloadFactor float64

	defaultCPU      float64
	defaultMemory   float64
	capacityChecked bool
	rng             *rand.Rand
}

// Option configures a Cluster.
type Option func(*config)

type config struct {
	initialNodes    int
	cpu             float64
	memory          float64
	capacityChecked bool
	rng             *rand.Rand
}

// WithInitialNodes sets the size of the pool created by New. Default 3.
func WithInitialNodes(n int) Option {
	return func(c *config) { c.initialNodes = n }
}

// WithNodeDefaults sets the capacity used for generated nodes.
func WithNodeDefaults(cpu, memory float64) Option {
	return func(c *config) {
		c.cpu = cpu
		c.memory = memory
	}
}

// WithCapacityChecked selects the placement policy. When false (the default)
// a pod binds to the least loaded node even if that over-subscribes it. When
// true a node is skipped unless its remaining allocatable capacity covers
// the pod.
func WithCapacityChecked(checked bool) Option {
	return func(c *config) { c.capacityChecked = checked }
}

// WithRand sets the random source used by workload generation.
func WithRand(r *rand.Rand) Option {
	return func(c *config) { c.rng = r }
}

// New builds a cluster with the initial node pool.
func New(opts ...Option) *Cluster {
	cfg := config{
		initialNodes: 3,
		cpu:          DefaultNodeCPU,
		memory:       DefaultNodeMemory,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		seed := uint64(time.Now().UnixNano())
		cfg.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	c := &Cluster{
		nodesByName:      make(map[string]*workerNode),
		namespaces:       make(map[string]*namespace),
		deploymentByName: make(map[string]*deployment),
		defaultCPU:       cfg.cpu,
		defaultMemory:    cfg.memory,
		capacityChecked:  cfg.capacityChecked,
		rng:              cfg.rng,
	}
	for range max(0, cfg.initialNodes) {
		c.addNodeLocked("", cfg.cpu, cfg.memory)
	}
	return c
}

// CapacityChecked reports the placement policy in effect.
func (c *Cluster) CapacityChecked() bool {
	return c.capacityChecked
}

// AddWorkerNode appends a node to the pool. An empty name generates
// worker-node-{counter}; zero capacities take the cluster defaults. Existing
// pods are not rescheduled.
func (c *Cluster) AddWorkerNode(name string, cpu, memory float64) (NodeState, error) {
	if cpu < 0 || memory < 0 || math.IsNaN(cpu) || math.IsNaN(memory) {
		return NodeState{}, simerrors.New(simerrors.ErrInvalidArgument, component,
			"node capacity must be non-negative, got cpu=%g memory=%g", cpu, memory)
	}
	if cpu == 0 {
		cpu = c.defaultCPU
	}
	if memory == 0 {
		memory = c.defaultMemory
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if name != "" {
		if _, ok := c.nodesByName[name]; ok {
			return NodeState{}, simerrors.New(simerrors.ErrConflict, component, "node %q already exists", name)
		}
	}
	return c.addNodeLocked(name, cpu, memory).state(), nil
}

func (c *Cluster) addNodeLocked(name string, cpu, memory float64) *workerNode {
	c.nodeCounter++
	if name == "" {
		name = fmt.Sprintf("worker-node-%d", c.nodeCounter)
		for c.nodesByName[name] != nil {
			c.nodeCounter++
			name = fmt.Sprintf("worker-node-%d", c.nodeCounter)
		}
	}
	n := newWorkerNode(name, cpu, memory)
	c.nodes = append(c.nodes, n)
	c.nodesByName[name] = n
	return n
}

// SetTotalWorkerNodes grows or shrinks the pool to count nodes and then
// re-derives every placement. Shrinking drops the tail of the pool.
func (c *Cluster) SetTotalWorkerNodes(count int) error {
	if count < 0 {
		return simerrors.New(simerrors.ErrInvalidRange, component, "node count must be non-negative, got %d", count)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case count < len(c.nodes):
		for _, n := range c.nodes[count:] {
			delete(c.nodesByName, n.name)
		}
		clear(c.nodes[count:])
		c.nodes = c.nodes[:count]
	case count > len(c.nodes):
		for len(c.nodes) < count {
			c.addNodeLocked("", c.defaultCPU, c.defaultMemory)
		}
	default:
		return nil
	}
	c.reallocateAllLocked()
	return nil
}

// CreateNamespace registers a namespace. A taken name is a Conflict and
// leaves the existing namespace untouched.
func (c *Cluster) CreateNamespace(name string, cpuQuota, memoryQuota float64) (NamespaceState, error) {
	if name == "" {
		return NamespaceState{}, simerrors.New(simerrors.ErrInvalidArgument, component, "namespace name is required")
	}
	if !(cpuQuota > 0) || !(memoryQuota > 0) {
		return NamespaceState{}, simerrors.New(simerrors.ErrInvalidArgument, component,
			"namespace quotas must be positive, got cpu=%g memory=%g", cpuQuota, memoryQuota)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ns, err := c.createNamespaceLocked(name, cpuQuota, memoryQuota)
	if err != nil {
		return NamespaceState{}, err
	}
	return ns.state(), nil
}

func (c *Cluster) createNamespaceLocked(name string, cpuQuota, memoryQuota float64) (*namespace, error) {
	if _, ok := c.namespaces[name]; ok {
		return nil, simerrors.New(simerrors.ErrConflict, component, "namespace %q already exists", name)
	}
	ns := &namespace{name: name, cpuQuota: cpuQuota, memoryQuota: memoryQuota}
	c.namespaces[name] = ns
	c.namespaceOrder = append(c.namespaceOrder, name)
	return ns, nil
}

// AddDeployment charges the deployment's footprint to its namespace and
// places its pods. Nothing changes when the namespace is unknown or its
// quota would be exceeded.
func (c *Cluster) AddDeployment(name, namespaceName string, replicas int, cpuPerReplica, memoryPerReplica float64) (DeploymentState, error) {
	if name == "" {
		return DeploymentState{}, simerrors.New(simerrors.ErrInvalidArgument, component, "deployment name is required")
	}
	if replicas <= 0 {
		return DeploymentState{}, simerrors.New(simerrors.ErrInvalidArgument, component, "replicas must be positive, got %d", replicas)
	}
	if !(cpuPerReplica > 0) || !(memoryPerReplica > 0) {
		return DeploymentState{}, simerrors.New(simerrors.ErrInvalidArgument, component,
			"per-replica requests must be positive, got cpu=%g memory=%g", cpuPerReplica, memoryPerReplica)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.addDeploymentLocked(name, namespaceName, replicas, cpuPerReplica, memoryPerReplica)
	if err != nil {
		return DeploymentState{}, err
	}
	return d.state(), nil
}

func (c *Cluster) addDeploymentLocked(name, namespaceName string, replicas int, cpu, memory float64) (*deployment, error) {
	ns, ok := c.namespaces[namespaceName]
	if !ok {
		return nil, simerrors.New(simerrors.ErrNotFound, component, "namespace %q not found", namespaceName)
	}
	if _, ok := c.deploymentByName[name]; ok {
		return nil, simerrors.New(simerrors.ErrConflict, component, "deployment %q already exists", name)
	}
	r := float64(replicas)
	if err := ns.allocateResources(r*cpu, r*memory); err != nil {
		return nil, err
	}

	d := newDeployment(name, namespaceName, replicas, cpu, memory)
	c.deployments = append(c.deployments, d)
	c.deploymentByName[name] = d
	ns.addDeployment(name)
	c.placePendingPodsLocked(d)
	return d, nil
}

// ScaleDeployment regenerates the deployment's pods at the new replica count.
//
// When the new footprint does not fit the namespace quota, the namespace
// counters are restored to the old footprint but the deployment keeps the
// new replica count with all of its pods Pending and unbound.
func (c *Cluster) ScaleDeployment(name string, replicas int) error {
	if replicas < 0 {
		return simerrors.New(simerrors.ErrInvalidRange, component, "replica count must be non-negative, got %d", replicas)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.deploymentByName[name]
	if !ok {
		return simerrors.New(simerrors.ErrNotFound, component, "deployment %q not found", name)
	}
	ns := c.namespaces[d.namespace]

	oldCPU, oldMemory := d.footprint()
	ns.deallocateResources(oldCPU, oldMemory)
	c.unbindPodsLocked(d)

	d.replicaCount = replicas
	d.regeneratePods()

	newCPU, newMemory := d.footprint()
	if err := ns.allocateResources(newCPU, newMemory); err != nil {
		ns.commit(oldCPU, oldMemory)
		return fmt.Errorf("scale deployment %q to %d: %w", name, replicas, err)
	}
	c.placePendingPodsLocked(d)
	return nil
}

// DeleteDeployment frees the deployment's namespace and node footprint.
func (c *Cluster) DeleteDeployment(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.deploymentByName[name]
	if !ok {
		return simerrors.New(simerrors.ErrNotFound, component, "deployment %q not found", name)
	}
	ns := c.namespaces[d.namespace]
	ns.deallocateResources(d.footprint())
	ns.removeDeployment(name)

	c.unbindPodsLocked(d)
	c.deployments = slices.DeleteFunc(c.deployments, func(x *deployment) bool { return x == d })
	delete(c.deploymentByName, name)
	return nil
}

// SetSimulatedWorkloadFactor wipes all namespaces and deployments and, for a
// positive factor, generates synthetic load proportional to it.
func (c *Cluster) SetSimulatedWorkloadFactor(factor float64) error {
	if math.IsNaN(factor) || factor < 0 || factor > 1 {
		return simerrors.New(simerrors.ErrInvalidRange, component, "workload factor must be within [0, 1], got %g", factor)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.workloadFactor = factor
	c.resetWorkloadLocked()
	if factor > 0 {
		c.generateWorkloadLocked(factor)
	}
	return nil
}

func (c *Cluster) resetWorkloadLocked() {
	for _, n := range c.nodes {
		n.reset()
	}
	c.namespaces = make(map[string]*namespace)
	c.namespaceOrder = nil
	c.deployments = nil
	c.deploymentByName = make(map[string]*deployment)
}

// WorkloadFactor returns the last accepted workload factor.
func (c *Cluster) WorkloadFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workloadFactor
}

// Summary returns the aggregate capacity and allocation of the pool.
func (c *Cluster) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaryLocked()
}

// State returns a consistent copy of every node, namespace and deployment.
func (c *Cluster) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Nodes:           make([]NodeState, 0, len(c.nodes)),
		Namespaces:      make([]NamespaceState, 0, len(c.namespaceOrder)),
		Deployments:     make([]DeploymentState, 0, len(c.deployments)),
		Summary:         c.summaryLocked(),
		WorkloadFactor:  c.workloadFactor,
		CapacityChecked: c.capacityChecked,
	}
	for _, n := range c.nodes {
		s.Nodes = append(s.Nodes, n.state())
	}
	for _, name := range c.namespaceOrder {
		s.Namespaces = append(s.Namespaces, c.namespaces[name].state())
	}
	for _, d := range c.deployments {
		s.Deployments = append(s.Deployments, d.state())
	}
	return s
}
