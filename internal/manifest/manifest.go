// Package manifest loads declarative cluster setups from YAML and applies
// them to a cluster, either in-process or through the HTTP API.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	simerrors "github.com/developer-vif/openshift-workload-simulator/internal/errors"
)

const component = "manifest"

// Manifest describes a cluster setup.
//
//	nodes: 5
//	workloadFactor: 0.2
//	namespaces:
//	  - name: team-a
//	    quota: {cpu: "40", memory: 200Gi}
//	deployments:
//	  - name: api
//	    namespace: team-a
//	    replicas: 3
//	    resources: {cpu: 500m, memory: 2Gi}
type Manifest struct {
	Nodes          *int         `yaml:"nodes,omitempty"`
	WorkloadFactor *float64     `yaml:"workloadFactor,omitempty"`
	Namespaces     []Namespace  `yaml:"namespaces,omitempty"`
	Deployments    []Deployment `yaml:"deployments,omitempty"`
}

// Namespace is a namespace entry with its quota.
type Namespace struct {
	Name  string    `yaml:"name"`
	Quota Resources `yaml:"quota"`
}

// Deployment is a deployment entry with its per-replica requests.
type Deployment struct {
	Name      string    `yaml:"name"`
	Namespace string    `yaml:"namespace"`
	Replicas  int       `yaml:"replicas"`
	Resources Resources `yaml:"resources"`
}

// Resources holds a CPU and a memory amount.
type Resources struct {
	CPU    Quantity `yaml:"cpu"`
	Memory Quantity `yaml:"memory"`
}

// Parse decodes and validates a YAML manifest. Unknown fields are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, simerrors.New(simerrors.ErrManifestInvalid, component, "manifest: document is empty")
		}
		return nil, simerrors.Wrap(simerrors.ErrManifestInvalid, component, err, "manifest: %v", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (m *Manifest) validate() error {
	invalid := func(format string, args ...any) error {
		return simerrors.New(simerrors.ErrManifestInvalid, component, "manifest: "+format, args...)
	}

	if m.Nodes != nil && *m.Nodes < 0 {
		return invalid("nodes must be non-negative, got %d", *m.Nodes)
	}
	if f := m.WorkloadFactor; f != nil && (*f < 0 || *f > 1) {
		return invalid("workloadFactor must be within [0, 1], got %g", *f)
	}

	seen := make(map[string]bool, len(m.Namespaces))
	for i, ns := range m.Namespaces {
		if ns.Name == "" {
			return invalid("namespaces[%d]: name is required", i)
		}
		if seen[ns.Name] {
			return invalid("namespaces[%d]: duplicate name %q", i, ns.Name)
		}
		seen[ns.Name] = true
		if ns.Quota.CPU.IsZero() || ns.Quota.Memory.IsZero() {
			return invalid("namespace %q: quota cpu and memory are required", ns.Name)
		}
	}

	seen = make(map[string]bool, len(m.Deployments))
	for i, d := range m.Deployments {
		if d.Name == "" {
			return invalid("deployments[%d]: name is required", i)
		}
		if seen[d.Name] {
			return invalid("deployments[%d]: duplicate name %q", i, d.Name)
		}
		seen[d.Name] = true
		if d.Namespace == "" {
			return invalid("deployment %q: namespace is required", d.Name)
		}
		if d.Replicas < 1 {
			return invalid("deployment %q: replicas must be at least 1, got %d", d.Name, d.Replicas)
		}
		if d.Resources.CPU.IsZero() || d.Resources.Memory.IsZero() {
			return invalid("deployment %q: resources cpu and memory are required", d.Name)
		}
	}
	return nil
}

// Steps returns the number of operations Apply performs for m.
func (m *Manifest) Steps() int {
	n := len(m.Namespaces) + len(m.Deployments)
	if m.Nodes != nil {
		n++
	}
	if m.WorkloadFactor != nil {
		n++
	}
	return n
}
