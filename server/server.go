// Copyright 2023 The Ambry Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/cubefs/cubefs/blobstore/common/trace"
	"golang.org/x/sync/singleflight"

	"github.com/UIKit0/ambry/clustermap"
	"github.com/UIKit0/ambry/common/kvstore"
	apierr "github.com/UIKit0/ambry/errors"
)

type Config struct {
	ClusterName string `json:"cluster_name"`

	StorePath string         `json:"store_path"`
	KVOption  kvstore.Option `json:"kv_option"`

	// bootstrap documents, read only when the store holds no snapshot yet
	// and on explicit refresh requests
	HardwareFile  string `json:"hardware_file"`
	PartitionFile string `json:"partition_file"`
}

type snapshotStore interface {
	Save(ctx context.Context, record *clustermap.SnapshotRecord) error
	LoadLatest(ctx context.Context) (*clustermap.SnapshotRecord, error)
}

// Server owns the cluster map, its persistence and the reload entry points.
// Concurrent refresh requests collapse into one document read.
type Server struct {
	cfg *Config

	cm      *clustermap.ClusterMap
	store   snapshotStore
	kvStore kvstore.Store

	seq          uint64
	reloadLock   sync.Mutex
	refreshGroup singleflight.Group
}

func NewServer(ctx context.Context, cfg *Config) (*Server, error) {
	span := trace.SpanFromContextSafe(ctx)

	// copy the option so repeated opens from one config do not accumulate
	// column family entries
	kvOption := cfg.KVOption
	kvOption.CreateIfMissing = true
	cols := make([]kvstore.CF, 0, len(cfg.KVOption.ColumnFamily)+1)
	for _, col := range cfg.KVOption.ColumnFamily {
		if col != clustermap.CF {
			cols = append(cols, col)
		}
	}
	kvOption.ColumnFamily = append(cols, clustermap.CF)
	kvStore, err := kvstore.NewKVStore(ctx, cfg.StorePath, kvstore.RocksdbLsmKVType, &kvOption)
	if err != nil {
		span.Errorf("open snapshot store at %s failed: %s", cfg.StorePath, err)
		return nil, err
	}

	store, err := clustermap.NewStore(kvStore)
	if err != nil {
		kvStore.Close()
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		store:   store,
		kvStore: kvStore,
	}
	if err = s.load(ctx); err != nil {
		kvStore.Close()
		return nil, err
	}
	return s, nil
}

// load builds the initial cluster map from the newest persisted snapshot, or
// from the bootstrap document files when the store is empty.
func (s *Server) load(ctx context.Context) error {
	span := trace.SpanFromContextSafe(ctx)

	record, err := s.store.LoadLatest(ctx)
	if err != nil && !errors.Is(err, apierr.ErrNoSnapshot) {
		return err
	}
	if err == nil {
		span.Infof("loading persisted snapshot seq[%d] version[%s]", record.Seq, record.Version)
		cm, err := clustermap.NewClusterMapFromRecord(ctx, record)
		if err != nil {
			return err
		}
		s.cm = cm
		s.seq = record.Seq
		return nil
	}

	span.Infof("no persisted snapshot, bootstrapping from %s and %s", s.cfg.HardwareFile, s.cfg.PartitionFile)
	hardwareDoc, partitionDoc, err := s.readDocs()
	if err != nil {
		return err
	}
	cm, err := clustermap.NewClusterMap(ctx, hardwareDoc, partitionDoc)
	if err != nil {
		return err
	}
	s.cm = cm
	return s.persist(ctx, hardwareDoc, partitionDoc)
}

func (s *Server) readDocs() (*clustermap.HardwareDoc, *clustermap.PartitionLayoutDoc, error) {
	hardwareData, err := os.ReadFile(s.cfg.HardwareFile)
	if err != nil {
		return nil, nil, err
	}
	partitionData, err := os.ReadFile(s.cfg.PartitionFile)
	if err != nil {
		return nil, nil, err
	}

	hardwareDoc := &clustermap.HardwareDoc{}
	if err = hardwareDoc.Unmarshal(hardwareData); err != nil {
		return nil, nil, err
	}
	if err = s.checkCluster(hardwareDoc); err != nil {
		return nil, nil, err
	}
	partitionDoc := &clustermap.PartitionLayoutDoc{}
	if err = partitionDoc.Unmarshal(partitionData); err != nil {
		return nil, nil, err
	}
	return hardwareDoc, partitionDoc, nil
}

// Reload validates and publishes the given documents, then persists them as
// the new last known good snapshot. On validation failure the previous
// snapshot keeps serving and nothing is persisted. On persist failure the
// in-memory map already serves the new topology and only the store is
// behind; a later successful reload catches it up.
func (s *Server) Reload(ctx context.Context, hardwareDoc *clustermap.HardwareDoc, partitionDoc *clustermap.PartitionLayoutDoc) error {
	s.reloadLock.Lock()
	defer s.reloadLock.Unlock()

	if err := s.checkCluster(hardwareDoc); err != nil {
		return err
	}
	if err := s.cm.Reload(ctx, hardwareDoc, partitionDoc); err != nil {
		return err
	}
	return s.persist(ctx, hardwareDoc, partitionDoc)
}

// Refresh re-reads the bootstrap document files and reloads from them.
func (s *Server) Refresh(ctx context.Context) error {
	_, err, _ := s.refreshGroup.Do("refresh", func() (interface{}, error) {
		hardwareDoc, partitionDoc, err := s.readDocs()
		if err != nil {
			return nil, err
		}
		return nil, s.Reload(ctx, hardwareDoc, partitionDoc)
	})
	return err
}

func (s *Server) checkCluster(doc *clustermap.HardwareDoc) error {
	if s.cfg.ClusterName != "" && doc.ClusterName != s.cfg.ClusterName {
		return fmt.Errorf("hardware document is for cluster %q, want %q", doc.ClusterName, s.cfg.ClusterName)
	}
	return nil
}

func (s *Server) persist(ctx context.Context, hardwareDoc *clustermap.HardwareDoc, partitionDoc *clustermap.PartitionLayoutDoc) error {
	// seq advances only once the record is durable
	if err := s.store.Save(ctx, &clustermap.SnapshotRecord{
		Seq:        s.seq + 1,
		Version:    s.cm.Version(),
		Hardware:   hardwareDoc,
		Partitions: partitionDoc,
	}); err != nil {
		return err
	}
	s.seq++
	return nil
}

func (s *Server) ClusterMap() *clustermap.ClusterMap {
	return s.cm
}

func (s *Server) Close() {
	s.kvStore.Close()
}
