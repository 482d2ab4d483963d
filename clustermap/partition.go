package clustermap

import (
	"fmt"
	"path/filepath"
	"strconv"

	apierr "github.com/UIKit0/ambry/errors"
	"github.com/UIKit0/ambry/proto"
)

// Partition is one logical storage unit, realized as a fixed set of replicas
// pinned to specific disks.
type Partition struct {
	info     *PartitionDoc
	replicas []*Replica
}

func newPartition(hl *HardwareLayout, info *PartitionDoc) (*Partition, error) {
	if info.ReplicationFactor <= 0 || len(info.Replicas) != info.ReplicationFactor {
		return nil, fmt.Errorf("%w: partition %d has %d replicas, factor %d",
			apierr.ErrReplicaCount, info.ID, len(info.Replicas), info.ReplicationFactor)
	}
	if info.ReplicaCapacityGB == 0 {
		return nil, fmt.Errorf("%w: partition %d", apierr.ErrInvalidCapacity, info.ID)
	}

	p := &Partition{info: info}
	seen := make(map[diskKey]struct{}, len(info.Replicas))
	for _, replicaDoc := range info.Replicas {
		replica, err := newReplicaFromDoc(hl, p, replicaDoc)
		if err != nil {
			return nil, err
		}

		// a partition must never have two replicas on one disk, they
		// would share fate on a single disk failure
		dk := diskKey{
			hostname:  replicaDoc.Hostname,
			port:      replicaDoc.Port,
			mountPath: replicaDoc.MountPath,
		}
		if _, ok := seen[dk]; ok {
			return nil, fmt.Errorf("%w: partition %d disk %s:%d %s",
				apierr.ErrReplicaSharedDisk, info.ID, replicaDoc.Hostname, replicaDoc.Port, replicaDoc.MountPath)
		}
		seen[dk] = struct{}{}

		p.replicas = append(p.replicas, replica)
	}
	return p, nil
}

func (p *Partition) ID() proto.PartitionID {
	return p.info.ID
}

func (p *Partition) ReplicationFactor() int {
	return p.info.ReplicationFactor
}

func (p *Partition) ReplicaCapacityGB() uint64 {
	return p.info.ReplicaCapacityGB
}

// Replicas returns the replica set in document order.
func (p *Partition) Replicas() []*Replica {
	return p.replicas
}

// PathString is the path segment appended to a disk mount path to form a
// replica directory.
func (p *Partition) PathString() string {
	return strconv.FormatUint(p.info.ID, 10)
}

// ReplicaID is the identity and addressing surface of one replica, narrow
// enough for collaborators and test doubles to implement without a full
// topology behind it.
type ReplicaID interface {
	PartitionID() proto.PartitionID
	DataNodeID() DataNodeID
	MountPath() string
	ReplicaPath() string
	PeerReplicaIDs() []ReplicaID
	CapacityGB() uint64
}

var _ ReplicaID = (*Replica)(nil)

// Replica binds exactly one Partition to exactly one Disk. Both references
// are non-owning and non-nil after construction.
type Replica struct {
	partition *Partition
	disk      *Disk
}

func newReplica(partition *Partition, disk *Disk) (*Replica, error) {
	if partition == nil {
		return nil, apierr.ErrNilPartition
	}
	if disk == nil {
		return nil, apierr.ErrNilDisk
	}
	return &Replica{
		partition: partition,
		disk:      disk,
	}, nil
}

// newReplicaFromDoc resolves the persisted foreign key through the hardware
// layout. A key that no longer resolves means the two snapshot documents are
// out of sync and the whole load is rejected.
func newReplicaFromDoc(hl *HardwareLayout, partition *Partition, info *ReplicaDoc) (*Replica, error) {
	disk, err := hl.FindDisk(info.Hostname, info.Port, info.MountPath)
	if err != nil {
		return nil, fmt.Errorf("partition %d: %w", partition.ID(), err)
	}
	return newReplica(partition, disk)
}

func (r *Replica) PartitionID() proto.PartitionID {
	return r.partition.ID()
}

func (r *Replica) Partition() *Partition {
	return r.partition
}

func (r *Replica) Disk() *Disk {
	return r.disk
}

func (r *Replica) DataNodeID() DataNodeID {
	return r.disk.DataNode()
}

func (r *Replica) MountPath() string {
	return r.disk.MountPath()
}

// ReplicaPath is the on disk directory the storage engine uses for this
// replica. The core guarantees it is unique per (disk, partition) but never
// touches the filesystem.
func (r *Replica) ReplicaPath() string {
	return filepath.Join(r.disk.MountPath(), r.partition.PathString())
}

func (r *Replica) CapacityGB() uint64 {
	return r.partition.ReplicaCapacityGB()
}

// PeerReplicas returns the other replicas of the same partition in document
// order, the fan out set of the replication collaborator.
func (r *Replica) PeerReplicas() []*Replica {
	peers := make([]*Replica, 0, len(r.partition.Replicas())-1)
	for _, peer := range r.partition.Replicas() {
		if peer != r {
			peers = append(peers, peer)
		}
	}
	return peers
}

func (r *Replica) PeerReplicaIDs() []ReplicaID {
	peers := r.PeerReplicas()
	ids := make([]ReplicaID, 0, len(peers))
	for _, peer := range peers {
		ids = append(ids, peer)
	}
	return ids
}

func (r *Replica) Doc() *ReplicaDoc {
	return &ReplicaDoc{
		Hostname:  r.disk.DataNode().Hostname(),
		Port:      r.disk.DataNode().Port(),
		MountPath: r.disk.MountPath(),
	}
}

func (r *Replica) String() string {
	data, err := r.Doc().Marshal()
	if err != nil {
		return ""
	}
	return string(data)
}
