package exporter

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/developer-vif/openshift-workload-simulator/internal/observability"
	"github.com/developer-vif/openshift-workload-simulator/internal/snapshot"
	"github.com/developer-vif/openshift-workload-simulator/internal/transport"
	"github.com/developer-vif/openshift-workload-simulator/pkg/model"
)

// Sender delivers a snapshot to the backend. *transport.Client implements it.
type Sender interface {
	Send(ctx context.Context, snap *model.ClusterSnapshot) (*transport.SendResult, error)
}

// Exporter builds a snapshot every interval, keeps the latest one for the
// health server, and sends it when a Sender is configured.
type Exporter struct {
	builder      *snapshot.SnapshotBuilder
	sender       Sender
	stateMachine *StateMachine
	metrics      *observability.Metrics
	interval     time.Duration

	latestSnapshot atomic.Pointer[model.ClusterSnapshot]
	ready          atomic.Bool

	sent   atomic.Uint64
	failed atomic.Uint64
	built  atomic.Uint64

	mu       sync.Mutex
	lastSend transport.SendResult
	next     time.Duration // backend-requested interval, zero when none is pending
}

// New creates an Exporter. sender may be nil, in which case snapshots are
// built but never sent. metrics may be nil.
func New(
	builder *snapshot.SnapshotBuilder,
	sender Sender,
	stateMachine *StateMachine,
	metrics *observability.Metrics,
	interval time.Duration,
) *Exporter {
	return &Exporter{
		builder:      builder,
		sender:       sender,
		stateMachine: stateMachine,
		metrics:      metrics,
		interval:     interval,
	}
}

// IsReady reports whether the first snapshot has been built.
func (e *Exporter) IsReady() bool {
	return e.ready.Load()
}

// Readiness combines IsReady with the export state machine and send counters.
// Implements health.ReadinessChecker.
func (e *Exporter) Readiness() model.Readiness {
	r := model.Readiness{
		Ready:                e.IsReady(),
		ExporterState:        string(e.stateMachine.State()),
		ExporterReason:       e.stateMachine.StateReason(),
		SnapshotsSentTotal:   e.sent.Load(),
		SnapshotsFailedTotal: e.failed.Load(),
	}
	if e.stateMachine.State() == StateBackoff {
		r.BackoffRemainingSeconds = e.stateMachine.BackoffRemaining().Seconds()
	}
	return r
}

// LatestSnapshot returns the most recent ClusterSnapshot, or nil if none has
// been built yet. Implements health.SnapshotProvider.
func (e *Exporter) LatestSnapshot() *model.ClusterSnapshot {
	return e.latestSnapshot.Load()
}

// Run builds a snapshot immediately and then once per interval until ctx is
// canceled. A stopped exporter keeps building snapshots but no longer sends.
func (e *Exporter) Run(ctx context.Context) error {
	if e.sender == nil {
		e.stateMachine.TransitionTo(StateStopped, "export disabled")
	} else {
		e.stateMachine.TransitionTo(StateRunning, "")
	}
	e.observeState()

	slog.Info("exporter started",
		"interval", e.interval,
		"export_enabled", e.sender != nil,
	)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	current := e.interval
	e.tick(ctx)

	for {
		if next := e.takeNextInterval(); next > 0 && next != current {
			slog.Info("backend changed snapshot interval", "from", current, "to", next)
			current = next
			ticker.Reset(current)
		}

		select {
		case <-ctx.Done():
			slog.Info("exporter stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
		}

		e.tick(ctx)
	}
}

func (e *Exporter) tick(ctx context.Context) {
	switch e.stateMachine.State() {
	case StateRunning:
		e.doSnapshot(ctx, true)
	case StateBackoff:
		if e.stateMachine.IsBackoffExpired() {
			e.stateMachine.TransitionTo(StateRunning, "backoff expired")
			e.doSnapshot(ctx, true)
		} else {
			slog.Debug("in backoff, skipping send",
				"remaining", e.stateMachine.BackoffRemaining())
			e.doSnapshot(ctx, false)
		}
	default:
		e.doSnapshot(ctx, false)
	}
	e.observeState()
}

func (e *Exporter) doSnapshot(ctx context.Context, send bool) {
	snap := e.builder.Build(ctx)
	e.built.Add(1)
	e.fillHealth(snap)
	e.latestSnapshot.Store(snap)
	e.ready.Store(true)

	if !send || e.sender == nil {
		return
	}

	result, err := e.sender.Send(ctx, snap)
	if err != nil {
		e.failed.Add(1)
		if status := transport.StatusCode(err); status != 0 {
			var retryAfter time.Duration
			var se *transport.StatusError
			if stderrors.As(err, &se) {
				retryAfter = se.RetryAfter
			}
			e.stateMachine.HandleHTTPStatus(status, retryAfter)
		}
		slog.Error("snapshot send failed",
			"snapshot_id", snap.SnapshotID,
			"state", e.stateMachine.State(),
			"error", err,
		)
		return
	}

	e.sent.Add(1)
	e.stateMachine.HandleHTTPStatus(200, 0)

	e.mu.Lock()
	e.lastSend = *result
	if result.Response != nil && result.Response.Directives.NextSnapshotInSeconds > 0 {
		e.next = time.Duration(result.Response.Directives.NextSnapshotInSeconds) * time.Second
	}
	e.mu.Unlock()

	slog.Info("snapshot sent",
		"snapshot_id", snap.SnapshotID,
		"compressed_bytes", result.CompressedBytes,
		"duration_ms", result.Duration.Milliseconds(),
	)
}

// fillHealth adds exporter-side counters to the builder's health block.
// Counters reflect sends completed before this snapshot.
func (e *Exporter) fillHealth(snap *model.ClusterSnapshot) {
	h := &snap.Health
	h.SnapshotsSentTotal = e.sent.Load()
	h.SnapshotsFailedTotal = e.failed.Load()
	h.SnapshotsTotalCount = e.built.Load()
	h.State = string(e.stateMachine.State())
	h.StateReason = e.stateMachine.StateReason()

	e.mu.Lock()
	last := e.lastSend
	e.mu.Unlock()
	h.LastSendDurationMs = last.Duration.Milliseconds()
	h.OriginalSizeBytes = last.OriginalBytes
	h.CompressedSizeBytes = last.CompressedBytes
	h.CompressionRatio = last.CompressionRatio()
}

func (e *Exporter) takeNextInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.next
	e.next = 0
	return next
}

func (e *Exporter) observeState() {
	if e.metrics == nil {
		return
	}
	current := e.stateMachine.State()
	for _, s := range AllStates {
		v := 0.0
		if s == current {
			v = 1
		}
		e.metrics.ExporterState.WithLabelValues(string(s)).Set(v)
	}
}
