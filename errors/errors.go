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

package errors

import "errors"

// lookup errors, reported to the caller against the current snapshot
var (
	ErrDiskNotFound      = errors.New("disk not found")
	ErrDataNodeNotFound  = errors.New("data node not found")
	ErrPartitionNotFound = errors.New("partition not found")
	ErrNoSnapshot        = errors.New("no persisted snapshot")
)

// validation errors, fatal to the snapshot being constructed
var (
	ErrInvalidHostname      = errors.New("hostname is not a valid dns name")
	ErrReservedHostname     = errors.New("hostname uses a reserved top level domain")
	ErrInvalidPort          = errors.New("port out of range")
	ErrInvalidHardwareState = errors.New("unknown hardware state")
	ErrInvalidMountPath     = errors.New("mount path is empty")
	ErrInvalidCapacity      = errors.New("capacity must be positive")
	ErrInvalidDatacenter    = errors.New("datacenter name is empty")

	ErrDuplicateDataNode  = errors.New("duplicate data node host and port")
	ErrDuplicateDisk      = errors.New("duplicate disk mount path on data node")
	ErrDuplicatePartition = errors.New("duplicate partition id")
	ErrReplicaSharedDisk  = errors.New("partition replicas share a disk")
	ErrReplicaCount       = errors.New("replica count does not match replication factor")

	ErrNilPartition  = errors.New("replica partition can not be nil")
	ErrNilDisk       = errors.New("replica disk can not be nil")
	ErrNilDataNode   = errors.New("disk data node can not be nil")
	ErrNilDatacenter = errors.New("data node datacenter can not be nil")
)
