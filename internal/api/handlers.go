package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	simerrors "github.com/developer-vif/openshift-workload-simulator/internal/errors"
	"github.com/developer-vif/openshift-workload-simulator/internal/snapshot"
	"github.com/developer-vif/openshift-workload-simulator/pkg/model"
)

const component = "api"

const msgMissingData = "Missing data"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAction(w http.ResponseWriter, status int, success bool, message string, code simerrors.Code) {
	writeJSON(w, status, model.ActionResponse{Success: success, Message: message, Code: string(code)})
}

// statusFor maps an operation error to its HTTP status.
func statusFor(err error) int {
	switch simerrors.CodeOf(err) {
	case simerrors.ErrNotFound:
		return http.StatusNotFound
	case simerrors.ErrConflict:
		return http.StatusConflict
	case simerrors.ErrQuotaExceeded:
		return http.StatusUnprocessableEntity
	case simerrors.ErrInvalidRange, simerrors.ErrInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. It writes the error response itself and
// returns false when the body is unusable.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeAction(w, http.StatusRequestEntityTooLarge, false,
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), simerrors.ErrInvalidArgument)
	case errors.Is(err, io.EOF):
		writeAction(w, http.StatusBadRequest, false, msgMissingData, simerrors.ErrInvalidArgument)
	default:
		writeAction(w, http.StatusBadRequest, false, "Invalid JSON body", simerrors.ErrInvalidArgument)
	}
	return false
}

func missing(w http.ResponseWriter, message string) {
	writeAction(w, http.StatusBadRequest, false, message, simerrors.ErrInvalidArgument)
}

// finish records the outcome of a mutation and writes the response.
func (s *Server) finish(w http.ResponseWriter, op string, start time.Time, err error, success string) {
	result := "success"
	if err != nil {
		result = strings.ToLower(string(simerrors.CodeOf(err)))
		if result == "" {
			result = "internal"
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, result, time.Since(start).Seconds())
		s.metrics.ObserveCluster(s.cluster.State())
	}

	if err != nil {
		slog.Warn("operation failed", "operation", op, "code", simerrors.CodeOf(err), "error", err)
		if s.errorCollector != nil {
			s.errorCollector.ReportErr(component, err)
		}
		code := simerrors.CodeOf(err)
		if code == "" {
			code = simerrors.ErrInternal
		}
		writeAction(w, statusFor(err), false, err.Error(), code)
		return
	}

	slog.Info("operation succeeded", "operation", op, "message", success)
	writeAction(w, http.StatusOK, true, success, "")
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, snapshot.Status(s.cluster.State()))
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, snapshot.Summary(s.cluster.Summary()))
}

func (s *Server) handleSetNodeCount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req model.SetNodeCountRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Count == nil {
		missing(w, msgMissingData)
		return
	}

	err := s.cluster.SetTotalWorkerNodes(int(*req.Count))
	s.finish(w, "set_node_count", start, err, fmt.Sprintf("Node count set to %d.", *req.Count))
}

func (s *Server) handleCreateNamespace(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req model.CreateNamespaceRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == nil || *req.Name == "" || req.CPUQuota == nil || req.MemoryQuota == nil {
		missing(w, msgMissingData)
		return
	}

	_, err := s.cluster.CreateNamespace(*req.Name, float64(*req.CPUQuota), float64(*req.MemoryQuota))
	s.finish(w, "create_namespace", start, err,
		fmt.Sprintf("Namespace %s created with CPU: %g and Memory: %g.", *req.Name, *req.CPUQuota, *req.MemoryQuota))
}

func (s *Server) handleAddDeployment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req model.AddDeploymentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == nil || *req.Name == "" || req.Namespace == nil || *req.Namespace == "" ||
		req.Replicas == nil || req.CPUPerReplica == nil || req.MemoryPerReplica == nil {
		missing(w, msgMissingData)
		return
	}

	_, err := s.cluster.AddDeployment(*req.Name, *req.Namespace, int(*req.Replicas),
		float64(*req.CPUPerReplica), float64(*req.MemoryPerReplica))
	s.finish(w, "add_deployment", start, err,
		fmt.Sprintf("Deployment %s created with %d replicas.", *req.Name, *req.Replicas))
}

func (s *Server) handleScaleDeployment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req model.ScaleDeploymentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == nil || *req.Name == "" || req.NewReplicaCount == nil {
		missing(w, "Missing data or invalid replica count")
		return
	}

	err := s.cluster.ScaleDeployment(*req.Name, int(*req.NewReplicaCount))
	s.finish(w, "scale_deployment", start, err,
		fmt.Sprintf("Deployment %s scaled to %d replicas.", *req.Name, *req.NewReplicaCount))
}

func (s *Server) handleDeleteDeployment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req model.DeleteDeploymentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == nil || *req.Name == "" {
		missing(w, "Missing deployment name")
		return
	}

	err := s.cluster.DeleteDeployment(*req.Name)
	s.finish(w, "delete_deployment", start, err, fmt.Sprintf("Deployment %s deleted.", *req.Name))
}

func (s *Server) handleSetWorkloadFactor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req model.SetWorkloadFactorRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Factor == nil {
		missing(w, "Invalid simulated workload factor. Must be between 0.0 and 1.0.")
		return
	}

	err := s.cluster.SetSimulatedWorkloadFactor(float64(*req.Factor))
	s.finish(w, "set_simulated_workload_factor", start, err,
		fmt.Sprintf("Simulated workload factor set to %.1f%%.", *req.Factor*100))
}
