package clustermap

import (
	"encoding/json"

	"github.com/UIKit0/ambry/proto"
)

// proto for snapshot document encoding/decoding

// DiskDoc describes one storage volume of a data node.
type DiskDoc struct {
	MountPath  string              `json:"mount_path"`
	State      proto.HardwareState `json:"state"`
	CapacityGB uint64              `json:"capacity_gb"`
}

// DataNodeDoc describes one host and the disks it owns.
type DataNodeDoc struct {
	Hostname string              `json:"hostname"`
	Port     int                 `json:"port"`
	State    proto.HardwareState `json:"state"`
	Disks    []*DiskDoc          `json:"disks"`
}

// DatacenterDoc groups the data nodes of one fault domain.
type DatacenterDoc struct {
	Name      string         `json:"name"`
	DataNodes []*DataNodeDoc `json:"data_nodes"`
}

// HardwareDoc is the persisted hardware snapshot document.
type HardwareDoc struct {
	ClusterName string           `json:"cluster_name"`
	Datacenters []*DatacenterDoc `json:"datacenters"`
}

func (d *HardwareDoc) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

func (d *HardwareDoc) Unmarshal(data []byte) error {
	return json.Unmarshal(data, d)
}

// ReplicaDoc is the foreign key into the hardware layout. A replica never
// duplicates the disk it lives on, it re-resolves it at load time.
type ReplicaDoc struct {
	Hostname  string `json:"hostname"`
	Port      int    `json:"port"`
	MountPath string `json:"mount_path"`
}

func (d *ReplicaDoc) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

func (d *ReplicaDoc) Unmarshal(data []byte) error {
	return json.Unmarshal(data, d)
}

// PartitionDoc describes one partition and the replica placement chosen for it.
type PartitionDoc struct {
	ID                proto.PartitionID `json:"id"`
	ReplicationFactor int               `json:"replication_factor"`
	ReplicaCapacityGB uint64            `json:"replica_capacity_gb"`
	Replicas          []*ReplicaDoc     `json:"replicas"`
}

// PartitionLayoutDoc is the persisted partition snapshot document.
type PartitionLayoutDoc struct {
	Partitions []*PartitionDoc `json:"partitions"`
}

func (d *PartitionLayoutDoc) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

func (d *PartitionLayoutDoc) Unmarshal(data []byte) error {
	return json.Unmarshal(data, d)
}

// SnapshotRecord is the unit persisted by Store: the last known good pair of
// documents plus the sequence it was published at.
type SnapshotRecord struct {
	Seq        uint64              `json:"seq"`
	Version    string              `json:"version"`
	Hardware   *HardwareDoc        `json:"hardware"`
	Partitions *PartitionLayoutDoc `json:"partitions"`
}

func (r *SnapshotRecord) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func (r *SnapshotRecord) Unmarshal(data []byte) error {
	return json.Unmarshal(data, r)
}
