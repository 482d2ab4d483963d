package clustermap

import (
	"fmt"

	apierr "github.com/UIKit0/ambry/errors"
)

type nodeKey struct {
	hostname string
	port     int
}

type diskKey struct {
	hostname  string
	port      int
	mountPath string
}

// HardwareLayout is the validated registry of datacenters, data nodes and
// disks, with a derived index for O(1) disk lookup. It is immutable once
// constructed; health changes arrive as a whole new layout.
type HardwareLayout struct {
	info        *HardwareDoc
	datacenters []*Datacenter
	nodes       map[nodeKey]*DataNode
	disks       map[diskKey]*Disk
}

func NewHardwareLayout(info *HardwareDoc) (*HardwareLayout, error) {
	hl := &HardwareLayout{
		info:  info,
		nodes: make(map[nodeKey]*DataNode),
		disks: make(map[diskKey]*Disk),
	}
	for _, dcDoc := range info.Datacenters {
		dc, err := newDatacenter(dcDoc)
		if err != nil {
			return nil, err
		}
		for _, node := range dc.DataNodes() {
			nk := nodeKey{hostname: node.Hostname(), port: node.Port()}
			if _, ok := hl.nodes[nk]; ok {
				return nil, fmt.Errorf("%w: %s", apierr.ErrDuplicateDataNode, node.ID())
			}
			hl.nodes[nk] = node

			for _, disk := range node.Disks() {
				dk := diskKey{hostname: node.Hostname(), port: node.Port(), mountPath: disk.MountPath()}
				if _, ok := hl.disks[dk]; ok {
					return nil, fmt.Errorf("%w: %s %s", apierr.ErrDuplicateDisk, node.ID(), disk.MountPath())
				}
				hl.disks[dk] = disk
			}
		}
		hl.datacenters = append(hl.datacenters, dc)
	}
	return hl, nil
}

// FindDisk answers the foreign key lookup used by replica resolution. The
// hostname match is case sensitive.
func (hl *HardwareLayout) FindDisk(hostname string, port int, mountPath string) (*Disk, error) {
	disk, ok := hl.disks[diskKey{hostname: hostname, port: port, mountPath: mountPath}]
	if !ok {
		return nil, fmt.Errorf("%w: %s:%d %s", apierr.ErrDiskNotFound, hostname, port, mountPath)
	}
	return disk, nil
}

func (hl *HardwareLayout) FindDataNode(hostname string, port int) (*DataNode, error) {
	node, ok := hl.nodes[nodeKey{hostname: hostname, port: port}]
	if !ok {
		return nil, fmt.Errorf("%w: %s:%d", apierr.ErrDataNodeNotFound, hostname, port)
	}
	return node, nil
}

func (hl *HardwareLayout) Datacenters() []*Datacenter {
	return hl.datacenters
}

// DataNodes returns all data nodes in document order.
func (hl *HardwareLayout) DataNodes() []*DataNode {
	var nodes []*DataNode
	for _, dc := range hl.datacenters {
		nodes = append(nodes, dc.DataNodes()...)
	}
	return nodes
}

func (hl *HardwareLayout) RawCapacityGB() uint64 {
	var total uint64
	for _, dc := range hl.datacenters {
		for _, node := range dc.DataNodes() {
			total += node.CapacityGB()
		}
	}
	return total
}

func (hl *HardwareLayout) Doc() *HardwareDoc {
	return hl.info
}
