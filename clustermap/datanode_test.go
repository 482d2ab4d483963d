package clustermap

import (
	"testing"

	"github.com/stretchr/testify/require"

	apierr "github.com/UIKit0/ambry/errors"
	"github.com/UIKit0/ambry/proto"
)

const (
	testDiskCount      = 10
	testDiskCapacityGB = 1000
)

func testDatacenter(t *testing.T) *Datacenter {
	dc, err := newDatacenter(&DatacenterDoc{Name: "DC1"})
	require.NoError(t, err)
	return dc
}

func TestDataNodeBasics(t *testing.T) {
	doc := testDataNodeDoc("localhost", 6666, proto.HardwareStateAvailable, testDiskDocs(testDiskCount, testDiskCapacityGB))

	node, err := newDataNode(testDatacenter(t), doc)
	require.NoError(t, err)

	require.Equal(t, "localhost", node.Hostname())
	require.Equal(t, 6666, node.Port())
	require.Equal(t, "localhost:6666", node.ID())
	require.Equal(t, proto.HardwareStateAvailable, node.State())
	require.True(t, node.IsAvailable())

	require.Equal(t, testDiskCount, len(node.Disks()))
	require.Equal(t, uint64(testDiskCount*testDiskCapacityGB), node.CapacityGB())

	disk := node.Disks()[3]
	require.Equal(t, "/mnt3", disk.MountPath())
	require.Equal(t, uint64(testDiskCapacityGB), disk.CapacityGB())
	require.Equal(t, node, disk.DataNode())
}

func TestDataNodeDocRoundTrip(t *testing.T) {
	doc := testDataNodeDoc("localhost", 6666, proto.HardwareStateUnavailable, testDiskDocs(testDiskCount, testDiskCapacityGB))
	hardwareDoc := &HardwareDoc{
		ClusterName: "test-cluster",
		Datacenters: []*DatacenterDoc{{Name: "DC1", DataNodes: []*DataNodeDoc{doc}}},
	}

	data, err := hardwareDoc.Marshal()
	require.NoError(t, err)

	reloaded := &HardwareDoc{}
	require.NoError(t, reloaded.Unmarshal(data))

	node, err := newDataNode(testDatacenter(t), reloaded.Datacenters[0].DataNodes[0])
	require.NoError(t, err)
	require.Equal(t, "localhost", node.Hostname())
	require.Equal(t, 6666, node.Port())
	require.Equal(t, proto.HardwareStateUnavailable, node.State())
	require.Equal(t, uint64(testDiskCount*testDiskCapacityGB), node.CapacityGB())
}

func TestDataNodeValidation(t *testing.T) {
	dc := testDatacenter(t)
	disks := func() []*DiskDoc { return testDiskDocs(testDiskCount, testDiskCapacityGB) }

	// nil datacenter
	_, err := newDataNode(nil, testDataNodeDoc("localhost", 6666, proto.HardwareStateAvailable, disks()))
	require.ErrorIs(t, err, apierr.ErrNilDatacenter)

	// bad hostnames
	_, err = newDataNode(dc, testDataNodeDoc("", 6666, proto.HardwareStateAvailable, disks()))
	require.ErrorIs(t, err, apierr.ErrInvalidHostname)
	_, err = newDataNode(dc, testDataNodeDoc("host name", 6666, proto.HardwareStateAvailable, disks()))
	require.ErrorIs(t, err, apierr.ErrInvalidHostname)
	_, err = newDataNode(dc, testDataNodeDoc("-leading.example.com", 6666, proto.HardwareStateAvailable, disks()))
	require.ErrorIs(t, err, apierr.ErrInvalidHostname)

	// rfc 6761 reserved tld
	_, err = newDataNode(dc, testDataNodeDoc("hostname.invalid", 6666, proto.HardwareStateAvailable, disks()))
	require.ErrorIs(t, err, apierr.ErrReservedHostname)
	_, err = newDataNode(dc, testDataNodeDoc("hostname.INVALID", 6666, proto.HardwareStateAvailable, disks()))
	require.ErrorIs(t, err, apierr.ErrReservedHostname)

	// bad ports
	for _, port := range []int{-1, 0, 100000} {
		_, err = newDataNode(dc, testDataNodeDoc("localhost", port, proto.HardwareStateAvailable, disks()))
		require.ErrorIs(t, err, apierr.ErrInvalidPort)
	}

	// unknown state
	_, err = newDataNode(dc, testDataNodeDoc("localhost", 6666, proto.HardwareStateUnknown, disks()))
	require.ErrorIs(t, err, apierr.ErrInvalidHardwareState)
}

func TestDiskValidation(t *testing.T) {
	dc := testDatacenter(t)

	_, err := newDataNode(dc, testDataNodeDoc("localhost", 6666, proto.HardwareStateAvailable,
		[]*DiskDoc{{MountPath: "", State: proto.HardwareStateAvailable, CapacityGB: 100}}))
	require.ErrorIs(t, err, apierr.ErrInvalidMountPath)

	_, err = newDataNode(dc, testDataNodeDoc("localhost", 6666, proto.HardwareStateAvailable,
		[]*DiskDoc{{MountPath: "/mnt0", State: proto.HardwareStateAvailable, CapacityGB: 0}}))
	require.ErrorIs(t, err, apierr.ErrInvalidCapacity)

	_, err = newDataNode(dc, testDataNodeDoc("localhost", 6666, proto.HardwareStateAvailable,
		[]*DiskDoc{{MountPath: "/mnt0", State: proto.HardwareStateUnknown, CapacityGB: 100}}))
	require.ErrorIs(t, err, apierr.ErrInvalidHardwareState)
}

func TestDatacenterValidation(t *testing.T) {
	_, err := newDatacenter(&DatacenterDoc{Name: ""})
	require.ErrorIs(t, err, apierr.ErrInvalidDatacenter)
}
