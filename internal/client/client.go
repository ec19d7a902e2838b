// Package client is a Go client for the simulator's HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"k8s.io/utils/ptr"

	"github.com/developer-vif/openshift-workload-simulator/pkg/model"
)

const (
	DefaultServer  = "http://localhost:5000"
	defaultTimeout = 10 * time.Second
	// maxErrorBody caps how much of a non-JSON error reply ends up in APIError.
	maxErrorBody = 4096
)

// APIError is returned for any non-2xx reply.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (HTTP %d, %s)", e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// Client talks to one simulator instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the server at baseURL, e.g. "http://localhost:5000".
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultServer
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the full cluster view served by GET /api/status.
func (c *Client) Status(ctx context.Context) (*model.StatusResponse, error) {
	var out model.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summary returns the aggregate cluster summary.
func (c *Client) Summary(ctx context.Context) (*model.ClusterSummary, error) {
	var out model.ClusterSummary
	if err := c.do(ctx, http.MethodGet, "/api/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetNodeCount resizes the worker pool.
func (c *Client) SetNodeCount(ctx context.Context, count int) (*model.ActionResponse, error) {
	return c.action(ctx, "/api/set_node_count", model.SetNodeCountRequest{Count: ptr.To(model.Int(count))})
}

// CreateNamespace creates a namespace with the given quotas.
func (c *Client) CreateNamespace(ctx context.Context, name string, cpuQuota, memoryQuota float64) (*model.ActionResponse, error) {
	return c.action(ctx, "/api/create_namespace", model.CreateNamespaceRequest{
		Name:        ptr.To(name),
		CPUQuota:    ptr.To(model.Float(cpuQuota)),
		MemoryQuota: ptr.To(model.Float(memoryQuota)),
	})
}

// AddDeployment creates a deployment in namespace.
func (c *Client) AddDeployment(ctx context.Context, name, namespace string, replicas int, cpuPerReplica, memoryPerReplica float64) (*model.ActionResponse, error) {
	return c.action(ctx, "/api/add_deployment", model.AddDeploymentRequest{
		Name:             ptr.To(name),
		Namespace:        ptr.To(namespace),
		Replicas:         ptr.To(model.Int(replicas)),
		CPUPerReplica:    ptr.To(model.Float(cpuPerReplica)),
		MemoryPerReplica: ptr.To(model.Float(memoryPerReplica)),
	})
}

// ScaleDeployment changes a deployment's replica count.
func (c *Client) ScaleDeployment(ctx context.Context, name string, replicas int) (*model.ActionResponse, error) {
	return c.action(ctx, "/api/scale_deployment", model.ScaleDeploymentRequest{
		Name:            ptr.To(name),
		NewReplicaCount: ptr.To(model.Int(replicas)),
	})
}

// DeleteDeployment removes a deployment.
func (c *Client) DeleteDeployment(ctx context.Context, name string) (*model.ActionResponse, error) {
	return c.action(ctx, "/api/delete_deployment", model.DeleteDeploymentRequest{Name: ptr.To(name)})
}

// SetWorkloadFactor replaces all workload with generated load for factor.
func (c *Client) SetWorkloadFactor(ctx context.Context, factor float64) (*model.ActionResponse, error) {
	return c.action(ctx, "/api/set_simulated_workload_factor", model.SetWorkloadFactorRequest{Factor: ptr.To(model.Float(factor))})
}

func (c *Client) action(ctx context.Context, path string, body any) (*model.ActionResponse, error) {
	var out model.ActionResponse
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func parseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var ar model.ActionResponse
	if err := json.Unmarshal(data, &ar); err == nil && ar.Message != "" {
		apiErr.Code = ar.Code
		apiErr.Message = ar.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
