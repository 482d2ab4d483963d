package clustermap

import (
	"context"
	"sync/atomic"

	"github.com/cubefs/cubefs/blobstore/common/trace"
	"github.com/google/uuid"

	"github.com/UIKit0/ambry/metrics"
	"github.com/UIKit0/ambry/proto"
)

// Snapshot is one fully validated, immutable (hardware, partition) layout
// pair. Everything reachable from it is read only for its lifetime.
type Snapshot struct {
	version    string
	hardware   *HardwareLayout
	partitions *PartitionLayout
}

func (s *Snapshot) Version() string {
	return s.version
}

func (s *Snapshot) Hardware() *HardwareLayout {
	return s.hardware
}

func (s *Snapshot) Partitions() *PartitionLayout {
	return s.partitions
}

// buildSnapshot validates the document pair. An empty version means a new
// document pair and gets a fresh one; a restart passes the persisted version
// back in so it survives the process.
func buildSnapshot(ctx context.Context, version string, hardwareDoc *HardwareDoc, partitionDoc *PartitionLayoutDoc) (*Snapshot, error) {
	span := trace.SpanFromContextSafe(ctx)

	hl, err := NewHardwareLayout(hardwareDoc)
	if err != nil {
		span.Warnf("hardware layout rejected: %s", err)
		return nil, err
	}
	pl, err := NewPartitionLayout(hl, partitionDoc)
	if err != nil {
		span.Warnf("partition layout rejected: %s", err)
		return nil, err
	}

	if version == "" {
		version = uuid.NewString()
	}
	return &Snapshot{
		version:    version,
		hardware:   hl,
		partitions: pl,
	}, nil
}

// ClusterMap is the single entry point routing, replication and admission
// collaborators use to map logical keys to physical identifiers. Queries read
// one snapshot reference; Reload swaps it atomically so no query ever sees a
// torn pair of layouts.
type ClusterMap struct {
	current atomic.Value // *Snapshot
}

// NewClusterMap validates the two documents and publishes the first snapshot.
// The documents are owned by the snapshot afterwards and must not be mutated.
func NewClusterMap(ctx context.Context, hardwareDoc *HardwareDoc, partitionDoc *PartitionLayoutDoc) (*ClusterMap, error) {
	return newClusterMap(ctx, "", hardwareDoc, partitionDoc)
}

// NewClusterMapFromRecord rebuilds the cluster map of a persisted record,
// keeping the version the record was published under.
func NewClusterMapFromRecord(ctx context.Context, record *SnapshotRecord) (*ClusterMap, error) {
	return newClusterMap(ctx, record.Version, record.Hardware, record.Partitions)
}

func newClusterMap(ctx context.Context, version string, hardwareDoc *HardwareDoc, partitionDoc *PartitionLayoutDoc) (*ClusterMap, error) {
	snap, err := buildSnapshot(ctx, version, hardwareDoc, partitionDoc)
	if err != nil {
		return nil, err
	}
	c := &ClusterMap{}
	c.publish(ctx, snap)
	return c, nil
}

// Reload is all or nothing: the new documents are validated completely before
// the swap, and on any failure the previous snapshot stays authoritative.
func (c *ClusterMap) Reload(ctx context.Context, hardwareDoc *HardwareDoc, partitionDoc *PartitionLayoutDoc) error {
	snap, err := buildSnapshot(ctx, "", hardwareDoc, partitionDoc)
	if err != nil {
		metrics.ReloadCount.WithLabelValues("failure").Inc()
		return err
	}
	c.publish(ctx, snap)
	metrics.ReloadCount.WithLabelValues("success").Inc()
	return nil
}

func (c *ClusterMap) publish(ctx context.Context, snap *Snapshot) {
	span := trace.SpanFromContextSafe(ctx)
	c.current.Store(snap)
	updateMetrics(snap)
	span.Infof("published cluster map snapshot %s: %d data nodes, %d partitions",
		snap.Version(), len(snap.Hardware().DataNodes()), len(snap.Partitions().Partitions()))
}

// Snapshot returns the currently published snapshot. Callers that issue
// several related queries should hold on to it so all of them observe one
// consistent topology.
func (c *ClusterMap) Snapshot() *Snapshot {
	return c.current.Load().(*Snapshot)
}

func (c *ClusterMap) Version() string {
	return c.Snapshot().Version()
}

func (c *ClusterMap) FindDisk(hostname string, port int, mountPath string) (*Disk, error) {
	return c.Snapshot().Hardware().FindDisk(hostname, port, mountPath)
}

func (c *ClusterMap) GetDataNode(hostname string, port int) (*DataNode, error) {
	return c.Snapshot().Hardware().FindDataNode(hostname, port)
}

func (c *ClusterMap) GetReplicas(id proto.PartitionID) ([]*Replica, error) {
	return c.Snapshot().Partitions().GetReplicas(id)
}

func (c *ClusterMap) GetPeerReplicas(r *Replica) []*Replica {
	return r.PeerReplicas()
}

func (c *ClusterMap) GetReplicaPath(r *Replica) string {
	return r.ReplicaPath()
}

func (c *ClusterMap) ListPartitions() []*Partition {
	return c.Snapshot().Partitions().Partitions()
}

// ListDataNodes returns all data nodes currently in the given hardware state.
func (c *ClusterMap) ListDataNodes(state proto.HardwareState) []*DataNode {
	var nodes []*DataNode
	for _, node := range c.Snapshot().Hardware().DataNodes() {
		if node.State() == state {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func updateMetrics(snap *Snapshot) {
	states := []proto.HardwareState{proto.HardwareStateAvailable, proto.HardwareStateUnavailable}

	nodeCounts := make(map[proto.HardwareState]int)
	diskCounts := make(map[proto.HardwareState]int)
	for _, node := range snap.Hardware().DataNodes() {
		nodeCounts[node.State()]++
		for _, disk := range node.Disks() {
			diskCounts[disk.State()]++
		}
	}
	for _, state := range states {
		metrics.DataNodeCount.WithLabelValues(state.String()).Set(float64(nodeCounts[state]))
		metrics.DiskCount.WithLabelValues(state.String()).Set(float64(diskCounts[state]))
	}
	metrics.PartitionCount.Set(float64(len(snap.Partitions().Partitions())))
	metrics.RawCapacityGB.Set(float64(snap.Hardware().RawCapacityGB()))
}
