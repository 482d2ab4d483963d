package clustermap

import (
	"testing"

	"github.com/stretchr/testify/require"

	apierr "github.com/UIKit0/ambry/errors"
	"github.com/UIKit0/ambry/proto"
)

func TestHardwareLayoutFindDisk(t *testing.T) {
	hl, err := NewHardwareLayout(testHardwareDoc(3, testDiskCount))
	require.NoError(t, err)

	disk, err := hl.FindDisk("localhost", 6666, "/mnt3")
	require.NoError(t, err)
	require.Equal(t, "/mnt3", disk.MountPath())
	require.Equal(t, "localhost:6666", disk.DataNode().ID())

	// hostname match is case sensitive
	_, err = hl.FindDisk("Localhost", 6666, "/mnt3")
	require.ErrorIs(t, err, apierr.ErrDiskNotFound)

	_, err = hl.FindDisk("localhost", 6666, "/mnt99")
	require.ErrorIs(t, err, apierr.ErrDiskNotFound)
	_, err = hl.FindDisk("localhost", 7777, "/mnt3")
	require.ErrorIs(t, err, apierr.ErrDiskNotFound)
}

func TestHardwareLayoutFindDataNode(t *testing.T) {
	hl, err := NewHardwareLayout(testHardwareDoc(3, 1))
	require.NoError(t, err)

	node, err := hl.FindDataNode("localhost", 6667)
	require.NoError(t, err)
	require.Equal(t, 6667, node.Port())

	_, err = hl.FindDataNode("localhost", 9999)
	require.ErrorIs(t, err, apierr.ErrDataNodeNotFound)
}

func TestHardwareLayoutDuplicateDataNode(t *testing.T) {
	doc := &HardwareDoc{
		ClusterName: "test-cluster",
		Datacenters: []*DatacenterDoc{
			{Name: "DC1", DataNodes: []*DataNodeDoc{
				testDataNodeDoc("localhost", 6666, proto.HardwareStateAvailable, testDiskDocs(1, 1000)),
			}},
			{Name: "DC2", DataNodes: []*DataNodeDoc{
				testDataNodeDoc("localhost", 6666, proto.HardwareStateAvailable, testDiskDocs(1, 1000)),
			}},
		},
	}
	_, err := NewHardwareLayout(doc)
	require.ErrorIs(t, err, apierr.ErrDuplicateDataNode)
}

func TestHardwareLayoutDuplicateDisk(t *testing.T) {
	doc := &HardwareDoc{
		Datacenters: []*DatacenterDoc{
			{Name: "DC1", DataNodes: []*DataNodeDoc{
				testDataNodeDoc("localhost", 6666, proto.HardwareStateAvailable, []*DiskDoc{
					{MountPath: "/mnt0", State: proto.HardwareStateAvailable, CapacityGB: 1000},
					{MountPath: "/mnt0", State: proto.HardwareStateAvailable, CapacityGB: 1000},
				}),
			}},
		},
	}
	_, err := NewHardwareLayout(doc)
	require.ErrorIs(t, err, apierr.ErrDuplicateDisk)
}

func TestHardwareLayoutCapacity(t *testing.T) {
	hl, err := NewHardwareLayout(testHardwareDoc(2, testDiskCount))
	require.NoError(t, err)
	require.Equal(t, uint64(2*testDiskCount*testDiskCapacityGB), hl.RawCapacityGB())
	require.Equal(t, 2, len(hl.DataNodes()))
	require.Equal(t, 1, len(hl.Datacenters()))
}
