package transport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/developer-vif/openshift-workload-simulator/internal/config"
	simerrors "github.com/developer-vif/openshift-workload-simulator/internal/errors"
	"github.com/developer-vif/openshift-workload-simulator/internal/observability"
	"github.com/developer-vif/openshift-workload-simulator/pkg/model"
)

// SnapshotPath is appended to the export URL.
const SnapshotPath = "/api/v1/simulator/snapshots"

// Client sends ClusterSnapshots to the backend over HTTP with streaming
// zstd compression. It never buffers the full JSON payload in memory.
type Client struct {
	httpClient     *http.Client
	config         *config.Config
	metrics        *observability.Metrics
	errorCollector *simerrors.ErrorCollector
	level          zstd.EncoderLevel
}

// SendResult describes one successful export.
type SendResult struct {
	Response        *model.ExportResponse
	OriginalBytes   int64
	CompressedBytes int64
	Duration        time.Duration
}

// CompressionRatio returns compressed/original, or 0 when nothing was sent.
func (r *SendResult) CompressionRatio() float64 {
	if r.OriginalBytes == 0 {
		return 0
	}
	return float64(r.CompressedBytes) / float64(r.OriginalBytes)
}

// NewClient creates a transport Client with middleware applied.
// Retry is handled at the Send level because the streaming io.Pipe body must
// be re-created on each attempt.
func NewClient(cfg *config.Config, metrics *observability.Metrics, errCollector *simerrors.ErrorCollector) *Client {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	transport := WithAuth(cfg.ExportAPIKey, WithLogging(slog.Default(), base))

	level := zstd.EncoderLevel(cfg.CompressionLevel)
	if level < zstd.SpeedFastest || level > zstd.SpeedBestCompression {
		level = zstd.SpeedDefault
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		config:         cfg,
		metrics:        metrics,
		errorCollector: errCollector,
		level:          level,
	}
}

// Send streams a ClusterSnapshot to the backend. Network errors and 5xx
// replies are retried up to MaxRetries times with exponential backoff; every
// other non-200 reply is returned immediately as a *StatusError.
func (c *Client) Send(ctx context.Context, snapshot *model.ClusterSnapshot) (*SendResult, error) {
	start := time.Now()

	var resp *model.ExportResponse
	var original, compressed int64
	var lastErr error

	maxAttempts := c.config.MaxRetries + 1
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if c.metrics != nil {
				c.metrics.TransportRetries.Inc()
			}
			if err := sleepWithBackoff(ctx, attempt-1); err != nil {
				lastErr = fmt.Errorf("transport: context canceled before attempt %d: %w", attempt+1, err)
				break
			}
		}

		if err := ctx.Err(); err != nil {
			lastErr = fmt.Errorf("transport: context canceled before attempt %d: %w", attempt+1, err)
			break
		}

		r, orig, comp, err := c.doSend(ctx, snapshot)
		original, compressed = orig, comp
		if err != nil {
			lastErr = err
			if !IsRetryable(err) {
				break
			}
			continue
		}

		resp = r
		lastErr = nil
		break
	}

	elapsed := time.Since(start)

	if c.metrics != nil {
		c.metrics.SnapshotSendDuration.Observe(elapsed.Seconds())
		if original > 0 {
			c.metrics.SnapshotSizeBytes.WithLabelValues("original").Observe(float64(original))
		}
		if compressed > 0 {
			c.metrics.SnapshotSizeBytes.WithLabelValues("compressed").Observe(float64(compressed))
		}
		if lastErr != nil {
			c.metrics.SnapshotSendTotal.WithLabelValues("error").Inc()
		} else {
			c.metrics.SnapshotSendTotal.WithLabelValues("success").Inc()
		}
	}

	if lastErr != nil {
		if c.errorCollector != nil {
			code := simerrors.ErrBackendUnreachable
			var se *StatusError
			if stderrors.As(lastErr, &se) && se.IsAuth() {
				code = simerrors.ErrAuthFailed
			}
			c.errorCollector.Report(simerrors.SimError{
				Code:      code,
				Message:   fmt.Sprintf("snapshot send failed: %v", lastErr),
				Component: "transport",
				Timestamp: time.Now().UnixMilli(),
				Err:       lastErr,
			})
		}
		return nil, lastErr
	}

	result := &SendResult{
		Response:        resp,
		OriginalBytes:   original,
		CompressedBytes: compressed,
		Duration:        elapsed,
	}
	if c.metrics != nil {
		c.metrics.CompressionRatio.Set(result.CompressionRatio())
	}
	return result, nil
}

// doSend performs a single HTTP POST with streaming compression.
// Each call creates a fresh io.Pipe so it can be called multiple times for retries.
func (c *Client) doSend(ctx context.Context, snapshot *model.ClusterSnapshot) (*model.ExportResponse, int64, int64, error) {
	pr, pw := io.Pipe()

	// compressed counts what leaves the encoder, original what enters it.
	compressed := NewCountingWriter(pw)
	zw, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(c.level))
	if err != nil {
		_ = pw.Close()
		return nil, 0, 0, fmt.Errorf("transport: failed to create zstd encoder: %w", err)
	}
	original := NewCountingWriter(zw)

	go func() {
		encodeErr := json.NewEncoder(original).Encode(snapshot)
		// Close zstd first to flush, then close the pipe.
		closeErr := zw.Close()
		switch {
		case encodeErr != nil:
			pw.CloseWithError(fmt.Errorf("transport: JSON encode failed: %w", encodeErr))
		case closeErr != nil:
			pw.CloseWithError(fmt.Errorf("transport: zstd close failed: %w", closeErr))
		default:
			_ = pw.Close()
		}
	}()

	url := c.config.ExportURL + SnapshotPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		_ = pr.Close()
		return nil, 0, 0, fmt.Errorf("transport: failed to create request: %w", err)
	}
	// Unblocks the encoder if the backend replies without reading the body.
	defer pr.Close()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "zstd")
	req.Header.Set("X-Cluster-ID", c.config.ClusterID)
	req.Header.Set("X-Simulator-Version", c.config.SimulatorVersion)
	req.Header.Set("X-Snapshot-ID", snapshot.SnapshotID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, original.Count(), compressed.Count(), fmt.Errorf("transport: HTTP request failed: %w", err)
	}

	result, err := ParseResponse(resp)
	if err != nil {
		return nil, original.Count(), compressed.Count(), err
	}

	return result, original.Count(), compressed.Count(), nil
}
