package clustermap

import (
	"fmt"

	apierr "github.com/UIKit0/ambry/errors"
	"github.com/UIKit0/ambry/proto"
)

// PartitionLayout is the validated registry of partitions. Replica placement
// is resolved against one hardware layout at construction time, so a
// published layout can never reference unknown disks.
type PartitionLayout struct {
	info       *PartitionLayoutDoc
	partitions map[proto.PartitionID]*Partition
	list       []*Partition
}

func NewPartitionLayout(hl *HardwareLayout, info *PartitionLayoutDoc) (*PartitionLayout, error) {
	pl := &PartitionLayout{
		info:       info,
		partitions: make(map[proto.PartitionID]*Partition, len(info.Partitions)),
	}
	for _, partitionDoc := range info.Partitions {
		if _, ok := pl.partitions[partitionDoc.ID]; ok {
			return nil, fmt.Errorf("%w: %d", apierr.ErrDuplicatePartition, partitionDoc.ID)
		}
		partition, err := newPartition(hl, partitionDoc)
		if err != nil {
			return nil, err
		}
		pl.partitions[partitionDoc.ID] = partition
		pl.list = append(pl.list, partition)
	}
	return pl, nil
}

func (pl *PartitionLayout) GetPartition(id proto.PartitionID) (*Partition, error) {
	partition, ok := pl.partitions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", apierr.ErrPartitionNotFound, id)
	}
	return partition, nil
}

func (pl *PartitionLayout) GetReplicas(id proto.PartitionID) ([]*Replica, error) {
	partition, err := pl.GetPartition(id)
	if err != nil {
		return nil, err
	}
	return partition.Replicas(), nil
}

// Partitions returns all partitions in document order.
func (pl *PartitionLayout) Partitions() []*Partition {
	return pl.list
}

func (pl *PartitionLayout) Doc() *PartitionLayoutDoc {
	return pl.info
}
