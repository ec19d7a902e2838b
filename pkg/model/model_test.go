package model

import (
	"encoding/json"
	"testing"
)

func marshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

// assertJSONFieldAbsent verifies that a JSON key is absent when a field is zero/nil (omitempty).
func assertJSONFieldAbsent(t *testing.T, data []byte, key string) {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal to map: %v", err)
	}
	if _, ok := m[key]; ok {
		t.Errorf("expected JSON key %q to be absent (omitempty), but it was present", key)
	}
}

// assertJSONFieldPresent verifies that a JSON key is present.
func assertJSONFieldPresent(t *testing.T, data []byte, key string) {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal to map: %v", err)
	}
	if _, ok := m[key]; !ok {
		t.Errorf("expected JSON key %q to be present, but it was absent", key)
	}
}

func TestNodeInfo_Keys(t *testing.T) {
	data := marshal(t, NodeInfo{Name: "worker-node-1"})
	for _, key := range []string{
		"name", "cpu_capacity", "memory_capacity", "allocatable_cpu", "allocatable_memory",
		"cpu_allocated", "memory_allocated", "cpu_utilization_percent",
		"memory_utilization_percent", "pods",
	} {
		assertJSONFieldPresent(t, data, key)
	}
}

func TestDeploymentInfo_Keys(t *testing.T) {
	data := marshal(t, DeploymentInfo{Name: "web", Pods: []PodInfo{{Name: "web-0", Node: NodeUnbound}}})
	for _, key := range []string{
		"name", "namespace", "replica_count", "cpu_request_per_replica",
		"memory_request_per_replica", "total_cpu_request", "total_memory_request",
		"running_pods", "pods",
	} {
		assertJSONFieldPresent(t, data, key)
	}

	var back DeploymentInfo
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Pods[0].Node != "N/A" {
		t.Errorf("expected unbound pod node N/A, got %q", back.Pods[0].Node)
	}
}

func TestNamespaceInfo_Keys(t *testing.T) {
	data := marshal(t, NamespaceInfo{Name: "a"})
	for _, key := range []string{
		"name", "cpu_quota", "memory_quota", "cpu_allocated", "memory_allocated", "deployment_count",
	} {
		assertJSONFieldPresent(t, data, key)
	}
}

func TestStatusResponse_Keys(t *testing.T) {
	data := marshal(t, StatusResponse{})
	for _, key := range []string{"nodes", "namespaces", "deployments", "cluster_summary", "simulated_workload_factor"} {
		assertJSONFieldPresent(t, data, key)
	}
}

func TestActionResponse_CodeOmitted(t *testing.T) {
	data := marshal(t, ActionResponse{Success: true, Message: "ok"})
	assertJSONFieldAbsent(t, data, "code")

	data = marshal(t, ActionResponse{Message: "no", Code: "NOT_FOUND"})
	assertJSONFieldPresent(t, data, "code")
}

func TestRequests_MissingFieldsStayNil(t *testing.T) {
	var req AddDeploymentRequest
	if err := json.Unmarshal([]byte(`{"name":"web","replicas":0}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Name == nil || *req.Name != "web" {
		t.Fatalf("expected name web, got %v", req.Name)
	}
	if req.Replicas == nil || *req.Replicas != 0 {
		t.Fatalf("expected explicit zero replicas, got %v", req.Replicas)
	}
	if req.Namespace != nil || req.CPUPerReplica != nil || req.MemoryPerReplica != nil {
		t.Errorf("expected absent fields to stay nil: %+v", req)
	}
}

func TestSimulatorHealth_ErrorCodesOmitted(t *testing.T) {
	data := marshal(t, SimulatorHealth{State: "running"})
	assertJSONFieldAbsent(t, data, "error_codes")
	assertJSONFieldAbsent(t, data, "state_reason")
	assertJSONFieldPresent(t, data, "snapshots_total")
}

func TestRequests_QuotedNumbers(t *testing.T) {
	var req AddDeploymentRequest
	body := `{"name":"web","namespace":"dev","replicas":"3","cpu_per_replica":" 0.5 ","memory_per_replica":2}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if *req.Replicas != 3 || *req.CPUPerReplica != 0.5 || *req.MemoryPerReplica != 2 {
		t.Fatalf("unexpected values: replicas=%v cpu=%v mem=%v", *req.Replicas, *req.CPUPerReplica, *req.MemoryPerReplica)
	}
}

func TestRequests_BadNumbersRejected(t *testing.T) {
	for _, body := range []string{
		`{"count":"abc"}`,
		`{"count":""}`,
		`{"count":"2.5"}`,
		`{"count":2.5}`,
		`{"count":true}`,
	} {
		var req SetNodeCountRequest
		if err := json.Unmarshal([]byte(body), &req); err == nil {
			t.Errorf("%s: expected error, got count=%v", body, req.Count)
		}
	}
	for _, body := range []string{`{"factor":"NaN"}`, `{"factor":"Inf"}`, `{"factor":"x"}`} {
		var req SetWorkloadFactorRequest
		if err := json.Unmarshal([]byte(body), &req); err == nil {
			t.Errorf("%s: expected error", body)
		}
	}
}

func TestRequests_NullStaysNil(t *testing.T) {
	var req SetNodeCountRequest
	if err := json.Unmarshal([]byte(`{"count":null}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Count != nil {
		t.Fatalf("expected nil count, got %v", *req.Count)
	}
}

func TestRequests_NumbersMarshalUnquoted(t *testing.T) {
	n, f := Int(4), Float(0.25)
	data := marshal(t, SetNodeCountRequest{Count: &n})
	if string(data) != `{"count":4}` {
		t.Fatalf("unexpected JSON: %s", data)
	}
	data = marshal(t, SetWorkloadFactorRequest{Factor: &f})
	if string(data) != `{"factor":0.25}` {
		t.Fatalf("unexpected JSON: %s", data)
	}
}
