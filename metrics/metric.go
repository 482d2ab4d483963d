package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Registry = prometheus.NewRegistry()

	DataNodeCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ClusterMap",
		Name:      "datanode_count",
		Help:      "number of data nodes in the published snapshot by state",
	}, []string{"state"})

	DiskCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ClusterMap",
		Name:      "disk_count",
		Help:      "number of disks in the published snapshot by state",
	}, []string{"state"})

	PartitionCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ClusterMap",
		Name:      "partition_count",
		Help:      "number of partitions in the published snapshot",
	})

	RawCapacityGB = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ClusterMap",
		Name:      "raw_capacity_gb",
		Help:      "total disk capacity of the published snapshot in GB",
	})

	ReloadCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ClusterMap",
		Name:      "reload_count",
		Help:      "snapshot reload attempts by result",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(
		DataNodeCount,
		DiskCount,
		PartitionCount,
		RawCapacityGB,
		ReloadCount,
	)
}
