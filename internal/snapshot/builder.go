package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/developer-vif/openshift-workload-simulator/internal/cluster"
	"github.com/developer-vif/openshift-workload-simulator/internal/config"
	"github.com/developer-vif/openshift-workload-simulator/internal/errors"
	"github.com/developer-vif/openshift-workload-simulator/internal/observability"
	"github.com/developer-vif/openshift-workload-simulator/pkg/model"
)

// SnapshotBuilder reads the cluster once, converts every entity, computes
// counts, and returns a complete ClusterSnapshot.
type SnapshotBuilder struct {
	cluster        *cluster.Cluster
	config         *config.Config
	metrics        *observability.Metrics
	errorCollector *errors.ErrorCollector
	startedAt      time.Time
}

// NewSnapshotBuilder creates a SnapshotBuilder with all required dependencies.
// metrics and errCollector may be nil.
func NewSnapshotBuilder(
	c *cluster.Cluster,
	cfg *config.Config,
	metrics *observability.Metrics,
	errCollector *errors.ErrorCollector,
) *SnapshotBuilder {
	return &SnapshotBuilder{
		cluster:        c,
		config:         cfg,
		metrics:        metrics,
		errorCollector: errCollector,
		startedAt:      time.Now(),
	}
}

// Build takes one consistent copy of the cluster and returns the snapshot.
// Exporter-side health fields are left for the caller to fill.
func (b *SnapshotBuilder) Build(_ context.Context) *model.ClusterSnapshot {
	start := time.Now()

	// Step 1: One lock acquisition for the whole snapshot.
	state := b.cluster.State()

	// Step 2: Convert entities.
	snap := &model.ClusterSnapshot{
		CapacityChecked: state.CapacityChecked,
		Nodes:           Nodes(state),
		Namespaces:      Namespaces(state),
		Deployments:     Deployments(state),
		Summary:         Summary(state.Summary),
	}

	// Step 3: Compute counts.
	snap.Counts = ComputeCounts(snap)

	// Step 4: Set identity fields.
	snap.SnapshotID = uuid.New().String()
	snap.ClusterID = b.config.ClusterID
	snap.ClusterName = b.config.ClusterName
	snap.Timestamp = time.Now().UnixMilli()
	snap.SimulatorVersion = b.config.SimulatorVersion

	// Step 5: Health known to the builder.
	now := time.Now()
	snap.Health.StartedAt = b.startedAt.UnixMilli()
	snap.Health.UptimeSeconds = int64(now.Sub(b.startedAt).Seconds())
	snap.Health.CollectedAt = now.UnixMilli()
	if b.errorCollector != nil {
		snap.Health.ActiveErrorsCount = len(b.errorCollector.GetActiveErrors())
		snap.Health.ErrorCodes = b.errorCollector.GetActiveErrorCodes()
	}

	// Step 6: Track build duration and refresh gauges.
	elapsed := time.Since(start)
	snap.Health.LastBuildDurationMs = elapsed.Milliseconds()
	if b.metrics != nil {
		b.metrics.SnapshotBuildDuration.Observe(elapsed.Seconds())
		b.metrics.ObserveCluster(state)
	}

	return snap
}

// EntityCounts returns counts computed from the live cluster.
// Implements health.ClusterStats.
func (b *SnapshotBuilder) EntityCounts() model.EntityCounts {
	s := b.cluster.State()
	return ComputeCounts(&model.ClusterSnapshot{
		Nodes:       Nodes(s),
		Namespaces:  Namespaces(s),
		Deployments: Deployments(s),
	})
}
