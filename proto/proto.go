package proto

const (
	// Valid data node ports fall in (MinPort, MaxPort].
	MinPort = 0
	MaxPort = 65535
)

type PartitionID = uint64
