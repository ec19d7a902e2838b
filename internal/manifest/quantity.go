package manifest

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/api/resource"
)

const bytesPerGiB = 1 << 30

// Quantity is a Kubernetes resource quantity as written in a manifest,
// e.g. "500m", "2", "4Gi" or "1.5G".
type Quantity struct {
	raw  string
	q    resource.Quantity
	bare bool // no suffix, a plain number
}

// ParseQuantity parses s as a Kubernetes quantity.
func ParseQuantity(s string) (Quantity, error) {
	q, err := resource.ParseQuantity(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	if q.Sign() < 0 {
		return Quantity{}, fmt.Errorf("invalid quantity %q: must not be negative", s)
	}
	_, numErr := strconv.ParseFloat(s, 64)
	return Quantity{raw: s, q: q, bare: numErr == nil}, nil
}

// UnmarshalYAML accepts a scalar string or number.
func (q *Quantity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: quantity must be a scalar", node.Line)
	}
	parsed, err := ParseQuantity(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*q = parsed
	return nil
}

// MarshalYAML writes the quantity back as written.
func (q Quantity) MarshalYAML() (any, error) {
	return q.raw, nil
}

// String returns the quantity as written.
func (q Quantity) String() string {
	return q.raw
}

// IsZero reports whether the quantity is unset or zero.
func (q Quantity) IsZero() bool {
	return q.raw == "" || q.q.IsZero()
}

// Cores returns a CPU quantity in cores: "500m" is 0.5.
func (q Quantity) Cores() float64 {
	return q.q.AsApproximateFloat64()
}

// GB returns a memory quantity in the simulator's memory unit. A plain number
// is already in that unit; a suffixed quantity is bytes converted to GiB.
func (q Quantity) GB() float64 {
	if q.bare {
		return q.q.AsApproximateFloat64()
	}
	return q.q.AsApproximateFloat64() / bytesPerGiB
}
