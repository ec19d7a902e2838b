package model

// ExportResponse is returned by the backend on successful snapshot ingestion.
type ExportResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ClusterID  string `json:"cluster_id"`
	ReceivedAt int64  `json:"received_at"`

	Directives Directives `json:"directives"`
}

// ExportErrorResponse is returned on rejection (4xx errors).
type ExportErrorResponse struct {
	Success           bool   `json:"success"`
	Error             string `json:"error"`
	Message           string `json:"message"`
	RetryAfterSeconds *int   `json:"retry_after_seconds,omitempty"`
}

// Directives tell the exporter what to do next.
type Directives struct {
	NextSnapshotInSeconds int  `json:"next_snapshot_in_seconds"`
	RetryAfterSeconds     *int `json:"retry_after_seconds,omitempty"`
}

// Readiness is the body of the health server's /readyz endpoint.
type Readiness struct {
	Ready          bool   `json:"ready"`
	ExporterState  string `json:"exporter_state"`
	ExporterReason string `json:"exporter_reason,omitempty"`
	// BackoffRemainingSeconds is set only while the exporter is in backoff.
	BackoffRemainingSeconds float64 `json:"backoff_remaining_seconds,omitempty"`
	SnapshotsSentTotal      uint64  `json:"snapshots_sent_total"`
	SnapshotsFailedTotal    uint64  `json:"snapshots_failed_total"`
}
