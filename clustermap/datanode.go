package clustermap

import (
	"fmt"
	"regexp"
	"strings"

	apierr "github.com/UIKit0/ambry/errors"
	"github.com/UIKit0/ambry/proto"
)

// rfc 6761 reserves the "invalid" top level domain; a hostname under it can
// never resolve and is rejected at construction time.
const reservedTLD = "invalid"

var hostnameRegexp = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func validateHostname(hostname string) error {
	if hostname == "" || len(hostname) > 255 || !hostnameRegexp.MatchString(hostname) {
		return fmt.Errorf("%w: %q", apierr.ErrInvalidHostname, hostname)
	}
	lower := strings.ToLower(strings.TrimSuffix(hostname, "."))
	if lower == reservedTLD || strings.HasSuffix(lower, "."+reservedTLD) {
		return fmt.Errorf("%w: %q", apierr.ErrReservedHostname, hostname)
	}
	return nil
}

// Disk is one physical storage volume, owned by exactly one DataNode. The
// node reference is non-owning.
type Disk struct {
	info *DiskDoc
	node *DataNode
}

func newDisk(node *DataNode, info *DiskDoc) (*Disk, error) {
	d := &Disk{
		info: info,
		node: node,
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Disk) validate() error {
	if d.node == nil {
		return apierr.ErrNilDataNode
	}
	if d.info.MountPath == "" {
		return apierr.ErrInvalidMountPath
	}
	if d.info.CapacityGB == 0 {
		return fmt.Errorf("%w: disk %s", apierr.ErrInvalidCapacity, d.info.MountPath)
	}
	if !d.info.State.IsValid() {
		return fmt.Errorf("%w: disk %s", apierr.ErrInvalidHardwareState, d.info.MountPath)
	}
	return nil
}

func (d *Disk) MountPath() string {
	return d.info.MountPath
}

func (d *Disk) State() proto.HardwareState {
	return d.info.State
}

func (d *Disk) CapacityGB() uint64 {
	return d.info.CapacityGB
}

func (d *Disk) DataNode() *DataNode {
	return d.node
}

func (d *Disk) IsAvailable() bool {
	return d.info.State == proto.HardwareStateAvailable
}

// DataNodeID is the addressing surface replication and routing collaborators
// depend on, so they never need the concrete topology types.
type DataNodeID interface {
	ID() string
	Hostname() string
	Port() int
	State() proto.HardwareState
}

var _ DataNodeID = (*DataNode)(nil)

// DataNode is one host of a datacenter and owns an ordered set of disks.
type DataNode struct {
	info  *DataNodeDoc
	dc    *Datacenter
	disks []*Disk
}

func newDataNode(dc *Datacenter, info *DataNodeDoc) (*DataNode, error) {
	n := &DataNode{
		info: info,
		dc:   dc,
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	for _, diskDoc := range info.Disks {
		disk, err := newDisk(n, diskDoc)
		if err != nil {
			return nil, fmt.Errorf("data node %s: %w", n.ID(), err)
		}
		n.disks = append(n.disks, disk)
	}
	return n, nil
}

func (n *DataNode) validate() error {
	if n.dc == nil {
		return apierr.ErrNilDatacenter
	}
	if err := validateHostname(n.info.Hostname); err != nil {
		return err
	}
	if n.info.Port <= proto.MinPort || n.info.Port > proto.MaxPort {
		return fmt.Errorf("%w: %d", apierr.ErrInvalidPort, n.info.Port)
	}
	if !n.info.State.IsValid() {
		return fmt.Errorf("%w: data node %s", apierr.ErrInvalidHardwareState, n.ID())
	}
	return nil
}

func (n *DataNode) ID() string {
	return fmt.Sprintf("%s:%d", n.info.Hostname, n.info.Port)
}

func (n *DataNode) Hostname() string {
	return n.info.Hostname
}

func (n *DataNode) Port() int {
	return n.info.Port
}

func (n *DataNode) State() proto.HardwareState {
	return n.info.State
}

func (n *DataNode) Datacenter() *Datacenter {
	return n.dc
}

func (n *DataNode) Disks() []*Disk {
	return n.disks
}

// CapacityGB is always recomputed from the owned disks so it can not drift
// from the disk set.
func (n *DataNode) CapacityGB() uint64 {
	var total uint64
	for _, disk := range n.disks {
		total += disk.CapacityGB()
	}
	return total
}

func (n *DataNode) IsAvailable() bool {
	return n.info.State == proto.HardwareStateAvailable
}

// Datacenter is a named fault domain grouping data nodes.
type Datacenter struct {
	info  *DatacenterDoc
	nodes []*DataNode
}

func newDatacenter(info *DatacenterDoc) (*Datacenter, error) {
	if info.Name == "" {
		return nil, apierr.ErrInvalidDatacenter
	}
	dc := &Datacenter{info: info}
	for _, nodeDoc := range info.DataNodes {
		node, err := newDataNode(dc, nodeDoc)
		if err != nil {
			return nil, fmt.Errorf("datacenter %s: %w", info.Name, err)
		}
		dc.nodes = append(dc.nodes, node)
	}
	return dc, nil
}

func (dc *Datacenter) Name() string {
	return dc.info.Name
}

func (dc *Datacenter) DataNodes() []*DataNode {
	return dc.nodes
}
