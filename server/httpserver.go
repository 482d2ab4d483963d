package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cubefs/cubefs/blobstore/common/profile"
	"github.com/cubefs/cubefs/blobstore/common/rpc"
	"github.com/cubefs/cubefs/blobstore/util/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/UIKit0/ambry/clustermap"
	"github.com/UIKit0/ambry/metrics"
	"github.com/UIKit0/ambry/proto"
)

const (
	defaultShutdownTimeoutS      = 10
	defaultReadRequestTimeoutS   = 30
	defaultWriteResponseTimeoutS = 30
)

type HttpServer struct {
	httpServer *http.Server

	*Server
}

func NewHttpServer(server *Server) *HttpServer {
	return &HttpServer{Server: server}
}

func (h *HttpServer) Serve(addr string) {
	ph := profile.NewProfileHandler(addr)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      rpc.MiddlewareHandlerWith(h.newHandler(), ph),
		ReadTimeout:  defaultReadRequestTimeoutS * time.Second,
		WriteTimeout: defaultWriteResponseTimeoutS * time.Second,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server exits:", err)
		}
	}()
	h.httpServer = httpServer

	log.Info("http server is running at:", addr)
}

func (h *HttpServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeoutS*time.Second)
	defer cancel()

	h.httpServer.Shutdown(ctx)
}

func (h *HttpServer) newHandler() *rpc.Router {
	rpc.GET("/disk/get", h.GetDisk, rpc.OptArgsQuery())
	rpc.GET("/datanode/get", h.GetDataNode, rpc.OptArgsQuery())
	rpc.GET("/datanode/list", h.ListDataNodes, rpc.OptArgsQuery())
	rpc.GET("/partition/replicas", h.GetReplicas, rpc.OptArgsQuery())
	rpc.GET("/partition/list", h.ListPartitions)
	rpc.POST("/reload", h.Reload, rpc.OptArgsBody())
	rpc.POST("/refresh", h.Refresh)
	rpc.GET("/stats", h.Stats)
	rpc.GET("/metrics", h.Metrics)

	return rpc.DefaultRouter
}

type DiskArgs struct {
	Hostname  string `json:"hostname"`
	Port      int    `json:"port"`
	MountPath string `json:"mount_path"`
}

func (h *HttpServer) GetDisk(c *rpc.Context) {
	args := new(DiskArgs)
	if err := c.ParseArgs(args); err != nil {
		c.RespondError(err)
		return
	}
	disk, err := h.cm.FindDisk(args.Hostname, args.Port, args.MountPath)
	if err != nil {
		c.RespondError(rpc.NewError(http.StatusNotFound, "NotFound", err))
		return
	}
	c.RespondJSON(&DiskRet{
		Hostname:   disk.DataNode().Hostname(),
		Port:       disk.DataNode().Port(),
		MountPath:  disk.MountPath(),
		State:      disk.State(),
		CapacityGB: disk.CapacityGB(),
	})
}

type DiskRet struct {
	Hostname   string              `json:"hostname"`
	Port       int                 `json:"port"`
	MountPath  string              `json:"mount_path"`
	State      proto.HardwareState `json:"state"`
	CapacityGB uint64              `json:"capacity_gb"`
}

type DataNodeArgs struct {
	Hostname string `json:"hostname"`
	Port     int    `json:"port"`
}

type DataNodeRet struct {
	Datacenter string              `json:"datacenter"`
	Hostname   string              `json:"hostname"`
	Port       int                 `json:"port"`
	State      proto.HardwareState `json:"state"`
	CapacityGB uint64              `json:"capacity_gb"`
	Disks      []*DiskRet          `json:"disks"`
}

func newDataNodeRet(node *clustermap.DataNode) *DataNodeRet {
	ret := &DataNodeRet{
		Datacenter: node.Datacenter().Name(),
		Hostname:   node.Hostname(),
		Port:       node.Port(),
		State:      node.State(),
		CapacityGB: node.CapacityGB(),
	}
	for _, disk := range node.Disks() {
		ret.Disks = append(ret.Disks, &DiskRet{
			Hostname:   node.Hostname(),
			Port:       node.Port(),
			MountPath:  disk.MountPath(),
			State:      disk.State(),
			CapacityGB: disk.CapacityGB(),
		})
	}
	return ret
}

func (h *HttpServer) GetDataNode(c *rpc.Context) {
	args := new(DataNodeArgs)
	if err := c.ParseArgs(args); err != nil {
		c.RespondError(err)
		return
	}
	node, err := h.cm.GetDataNode(args.Hostname, args.Port)
	if err != nil {
		c.RespondError(rpc.NewError(http.StatusNotFound, "NotFound", err))
		return
	}
	c.RespondJSON(newDataNodeRet(node))
}

type ListDataNodesArgs struct {
	State string `json:"state"`
}

func (h *HttpServer) ListDataNodes(c *rpc.Context) {
	args := new(ListDataNodesArgs)
	if err := c.ParseArgs(args); err != nil {
		c.RespondError(err)
		return
	}
	state, err := proto.ParseHardwareState(args.State)
	if err != nil {
		c.RespondError(rpc.NewError(http.StatusBadRequest, "BadRequest", err))
		return
	}
	nodes := h.cm.ListDataNodes(state)
	ret := make([]*DataNodeRet, 0, len(nodes))
	for _, node := range nodes {
		ret = append(ret, newDataNodeRet(node))
	}
	c.RespondJSON(ret)
}

type ReplicasArgs struct {
	PartitionID proto.PartitionID `json:"partition_id"`
}

type ReplicaRet struct {
	Hostname    string `json:"hostname"`
	Port        int    `json:"port"`
	MountPath   string `json:"mount_path"`
	ReplicaPath string `json:"replica_path"`
	CapacityGB  uint64 `json:"capacity_gb"`
}

func (h *HttpServer) GetReplicas(c *rpc.Context) {
	args := new(ReplicasArgs)
	if err := c.ParseArgs(args); err != nil {
		c.RespondError(err)
		return
	}
	replicas, err := h.cm.GetReplicas(args.PartitionID)
	if err != nil {
		c.RespondError(rpc.NewError(http.StatusNotFound, "NotFound", err))
		return
	}
	ret := make([]*ReplicaRet, 0, len(replicas))
	for _, replica := range replicas {
		ret = append(ret, &ReplicaRet{
			Hostname:    replica.DataNodeID().Hostname(),
			Port:        replica.DataNodeID().Port(),
			MountPath:   replica.MountPath(),
			ReplicaPath: replica.ReplicaPath(),
			CapacityGB:  replica.CapacityGB(),
		})
	}
	c.RespondJSON(ret)
}

type PartitionRet struct {
	ID                proto.PartitionID `json:"id"`
	ReplicationFactor int               `json:"replication_factor"`
	ReplicaCapacityGB uint64            `json:"replica_capacity_gb"`
}

func (h *HttpServer) ListPartitions(c *rpc.Context) {
	partitions := h.cm.ListPartitions()
	ret := make([]*PartitionRet, 0, len(partitions))
	for _, partition := range partitions {
		ret = append(ret, &PartitionRet{
			ID:                partition.ID(),
			ReplicationFactor: partition.ReplicationFactor(),
			ReplicaCapacityGB: partition.ReplicaCapacityGB(),
		})
	}
	c.RespondJSON(ret)
}

type ReloadArgs struct {
	Hardware   *clustermap.HardwareDoc        `json:"hardware"`
	Partitions *clustermap.PartitionLayoutDoc `json:"partitions"`
}

func (h *HttpServer) Reload(c *rpc.Context) {
	args := new(ReloadArgs)
	if err := c.ParseArgs(args); err != nil {
		c.RespondError(err)
		return
	}
	if args.Hardware == nil || args.Partitions == nil {
		c.RespondError(rpc.NewError(http.StatusBadRequest, "BadRequest", errors.New("both documents are required")))
		return
	}
	if err := h.Server.Reload(c.Request.Context(), args.Hardware, args.Partitions); err != nil {
		c.RespondError(rpc.NewError(http.StatusUnprocessableEntity, "ValidationFailed", err))
		return
	}
	c.RespondStatus(http.StatusOK)
}

func (h *HttpServer) Refresh(c *rpc.Context) {
	if err := h.Server.Refresh(c.Request.Context()); err != nil {
		c.RespondError(rpc.NewError(http.StatusUnprocessableEntity, "ValidationFailed", err))
		return
	}
	c.RespondStatus(http.StatusOK)
}

type StatsRet struct {
	Version       string `json:"version"`
	Datacenters   int    `json:"datacenters"`
	DataNodes     int    `json:"data_nodes"`
	Partitions    int    `json:"partitions"`
	RawCapacityGB uint64 `json:"raw_capacity_gb"`
}

func (h *HttpServer) Stats(c *rpc.Context) {
	snap := h.cm.Snapshot()
	c.RespondJSON(&StatsRet{
		Version:       snap.Version(),
		Datacenters:   len(snap.Hardware().Datacenters()),
		DataNodes:     len(snap.Hardware().DataNodes()),
		Partitions:    len(snap.Partitions().Partitions()),
		RawCapacityGB: snap.Hardware().RawCapacityGB(),
	})
}

func (h *HttpServer) Metrics(c *rpc.Context) {
	promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}).ServeHTTP(c.Writer, c.Request)
}
