package model

// Request bodies use pointer fields so a missing field can be told apart from
// a zero value. Numeric fields accept quoted numbers too.

// SetNodeCountRequest is the body of POST /api/set_node_count.
type SetNodeCountRequest struct {
	Count *Int `json:"count"`
}

// CreateNamespaceRequest is the body of POST /api/create_namespace.
type CreateNamespaceRequest struct {
	Name        *string `json:"name"`
	CPUQuota    *Float  `json:"cpu_quota"`
	MemoryQuota *Float  `json:"memory_quota"`
}

// AddDeploymentRequest is the body of POST /api/add_deployment.
type AddDeploymentRequest struct {
	Name             *string `json:"name"`
	Namespace        *string `json:"namespace"`
	Replicas         *Int    `json:"replicas"`
	CPUPerReplica    *Float  `json:"cpu_per_replica"`
	MemoryPerReplica *Float  `json:"memory_per_replica"`
}

// ScaleDeploymentRequest is the body of POST /api/scale_deployment.
type ScaleDeploymentRequest struct {
	Name            *string `json:"name"`
	NewReplicaCount *Int    `json:"new_replica_count"`
}

// DeleteDeploymentRequest is the body of POST /api/delete_deployment.
type DeleteDeploymentRequest struct {
	Name *string `json:"name"`
}

// SetWorkloadFactorRequest is the body of POST /api/set_simulated_workload_factor.
type SetWorkloadFactorRequest struct {
	Factor *Float `json:"factor"`
}

// ActionResponse is returned by every mutating endpoint.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
