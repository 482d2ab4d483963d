package clustermap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apierr "github.com/UIKit0/ambry/errors"
	"github.com/UIKit0/ambry/proto"
)

func testClusterMap(t *testing.T, numNodes, numPartitions int) *ClusterMap {
	cm, err := NewClusterMap(context.Background(), testHardwareDoc(numNodes, 2), testPartitionLayoutDoc(numPartitions, numNodes))
	require.NoError(t, err)
	return cm
}

func TestClusterMapQueries(t *testing.T) {
	cm := testClusterMap(t, 3, 4)

	disk, err := cm.FindDisk("localhost", 6667, "/mnt1")
	require.NoError(t, err)
	require.Equal(t, "/mnt1", disk.MountPath())

	node, err := cm.GetDataNode("localhost", 6668)
	require.NoError(t, err)
	require.Equal(t, 6668, node.Port())

	replicas, err := cm.GetReplicas(2)
	require.NoError(t, err)
	require.Equal(t, 3, len(replicas))
	require.Equal(t, replicas[0].PeerReplicas(), cm.GetPeerReplicas(replicas[0]))
	require.Equal(t, "/mnt0/2", cm.GetReplicaPath(replicas[0]))

	require.Equal(t, 4, len(cm.ListPartitions()))
	require.Equal(t, 3, len(cm.ListDataNodes(proto.HardwareStateAvailable)))
	require.Equal(t, 0, len(cm.ListDataNodes(proto.HardwareStateUnavailable)))

	_, err = cm.GetReplicas(99)
	require.ErrorIs(t, err, apierr.ErrPartitionNotFound)
}

func TestClusterMapReload(t *testing.T) {
	ctx := context.Background()
	cm := testClusterMap(t, 3, 2)
	oldVersion := cm.Version()

	// mark one node unavailable in a fresh document pair
	hardwareDoc := testHardwareDoc(3, 2)
	hardwareDoc.Datacenters[0].DataNodes[1].State = proto.HardwareStateUnavailable
	require.NoError(t, cm.Reload(ctx, hardwareDoc, testPartitionLayoutDoc(2, 3)))

	require.NotEqual(t, oldVersion, cm.Version())
	require.Equal(t, 2, len(cm.ListDataNodes(proto.HardwareStateAvailable)))
	unavailable := cm.ListDataNodes(proto.HardwareStateUnavailable)
	require.Equal(t, 1, len(unavailable))
	require.Equal(t, 6667, unavailable[0].Port())
}

func TestClusterMapReloadRejected(t *testing.T) {
	ctx := context.Background()
	cm := testClusterMap(t, 3, 2)
	version := cm.Version()

	// partition document referencing a disk absent from the hardware document
	badPartitions := testPartitionLayoutDoc(2, 3)
	badPartitions.Partitions[1].Replicas[0].MountPath = "/mnt99"
	err := cm.Reload(ctx, testHardwareDoc(3, 2), badPartitions)
	require.ErrorIs(t, err, apierr.ErrDiskNotFound)

	// previous snapshot stays authoritative and fully queryable
	require.Equal(t, version, cm.Version())
	replicas, err := cm.GetReplicas(1)
	require.NoError(t, err)
	require.Equal(t, 3, len(replicas))

	// duplicate data node is rejected the same way
	badHardware := testHardwareDoc(3, 2)
	badHardware.Datacenters[0].DataNodes[1].Port = 6666
	err = cm.Reload(ctx, badHardware, testPartitionLayoutDoc(2, 3))
	require.ErrorIs(t, err, apierr.ErrDuplicateDataNode)
	require.Equal(t, version, cm.Version())
}

func TestClusterMapSnapshotConsistency(t *testing.T) {
	ctx := context.Background()
	cm := testClusterMap(t, 2, 1)

	snap := cm.Snapshot()
	require.NoError(t, cm.Reload(ctx, testHardwareDoc(3, 2), testPartitionLayoutDoc(1, 3)))

	// the retained snapshot still answers with the old topology
	require.Equal(t, 2, len(snap.Hardware().DataNodes()))
	require.Equal(t, 3, len(cm.Snapshot().Hardware().DataNodes()))
}

func TestClusterMapFromRecord(t *testing.T) {
	cm, err := NewClusterMapFromRecord(context.Background(), &SnapshotRecord{
		Seq:        7,
		Version:    "persisted-version",
		Hardware:   testHardwareDoc(2, 1),
		Partitions: testPartitionLayoutDoc(1, 2),
	})
	require.NoError(t, err)
	require.Equal(t, "persisted-version", cm.Version())
}

func TestClusterMapRoundTrip(t *testing.T) {
	ctx := context.Background()
	cm := testClusterMap(t, 3, 4)
	snap := cm.Snapshot()

	hardwareData, err := snap.Hardware().Doc().Marshal()
	require.NoError(t, err)
	partitionData, err := snap.Partitions().Doc().Marshal()
	require.NoError(t, err)

	hardwareDoc := &HardwareDoc{}
	require.NoError(t, hardwareDoc.Unmarshal(hardwareData))
	partitionDoc := &PartitionLayoutDoc{}
	require.NoError(t, partitionDoc.Unmarshal(partitionData))

	reloaded, err := NewClusterMap(ctx, hardwareDoc, partitionDoc)
	require.NoError(t, err)

	// every query answers identically to the original
	for _, node := range snap.Hardware().DataNodes() {
		got, err := reloaded.GetDataNode(node.Hostname(), node.Port())
		require.NoError(t, err)
		require.Equal(t, node.State(), got.State())
		require.Equal(t, node.CapacityGB(), got.CapacityGB())
		for _, disk := range node.Disks() {
			gotDisk, err := reloaded.FindDisk(node.Hostname(), node.Port(), disk.MountPath())
			require.NoError(t, err)
			require.Equal(t, disk.CapacityGB(), gotDisk.CapacityGB())
			require.Equal(t, disk.State(), gotDisk.State())
		}
	}
	for _, partition := range snap.Partitions().Partitions() {
		replicas, err := reloaded.GetReplicas(partition.ID())
		require.NoError(t, err)
		require.Equal(t, len(partition.Replicas()), len(replicas))
		for i, replica := range partition.Replicas() {
			require.Equal(t, replica.Doc(), replicas[i].Doc())
			require.Equal(t, replica.ReplicaPath(), replicas[i].ReplicaPath())
		}
	}
}
