package clustermap

import (
	"fmt"

	"github.com/UIKit0/ambry/proto"
)

func testDiskDocs(count int, capacityGB uint64) []*DiskDoc {
	disks := make([]*DiskDoc, 0, count)
	for i := 0; i < count; i++ {
		disks = append(disks, &DiskDoc{
			MountPath:  fmt.Sprintf("/mnt%d", i),
			State:      proto.HardwareStateAvailable,
			CapacityGB: capacityGB,
		})
	}
	return disks
}

func testDataNodeDoc(hostname string, port int, state proto.HardwareState, disks []*DiskDoc) *DataNodeDoc {
	return &DataNodeDoc{
		Hostname: hostname,
		Port:     port,
		State:    state,
		Disks:    disks,
	}
}

// testHardwareDoc builds one datacenter of numNodes nodes on localhost ports
// 6666.. with disksPerNode disks of 1000GB each.
func testHardwareDoc(numNodes, disksPerNode int) *HardwareDoc {
	dc := &DatacenterDoc{Name: "DC1"}
	for i := 0; i < numNodes; i++ {
		dc.DataNodes = append(dc.DataNodes,
			testDataNodeDoc("localhost", 6666+i, proto.HardwareStateAvailable, testDiskDocs(disksPerNode, 1000)))
	}
	return &HardwareDoc{
		ClusterName: "test-cluster",
		Datacenters: []*DatacenterDoc{dc},
	}
}

func testReplicaDoc(port int, mountPath string) *ReplicaDoc {
	return &ReplicaDoc{
		Hostname:  "localhost",
		Port:      port,
		MountPath: mountPath,
	}
}

func testPartitionDoc(id proto.PartitionID, replicas ...*ReplicaDoc) *PartitionDoc {
	return &PartitionDoc{
		ID:                id,
		ReplicationFactor: len(replicas),
		ReplicaCapacityGB: 100,
		Replicas:          replicas,
	}
}

// testPartitionLayoutDoc spreads each partition over the first disk of every
// node built by testHardwareDoc.
func testPartitionLayoutDoc(numPartitions, numNodes int) *PartitionLayoutDoc {
	doc := &PartitionLayoutDoc{}
	for id := 0; id < numPartitions; id++ {
		replicas := make([]*ReplicaDoc, 0, numNodes)
		for i := 0; i < numNodes; i++ {
			replicas = append(replicas, testReplicaDoc(6666+i, "/mnt0"))
		}
		doc.Partitions = append(doc.Partitions, testPartitionDoc(proto.PartitionID(id), replicas...))
	}
	return doc
}
