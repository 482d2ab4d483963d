package clustermap

import (
	"context"
	"encoding/binary"

	"github.com/cubefs/cubefs/blobstore/common/trace"

	"github.com/UIKit0/ambry/common/kvstore"
	apierr "github.com/UIKit0/ambry/errors"
)

const CF = kvstore.CF("clustermap")

var (
	snapshotKeyPrefix = []byte("s")
	keyInfix          = []byte("/")
)

// Store persists the last known good snapshot documents so a restarting
// process can serve the previous topology before the config distribution
// collaborator delivers a fresh one. Records are keyed by sequence, newest
// wins at load time.
type Store struct {
	kvStore kvstore.Store
}

func NewStore(kvStore kvstore.Store) (*Store, error) {
	if !kvStore.CheckColumns(CF) {
		if err := kvStore.CreateColumn(CF); err != nil {
			return nil, err
		}
	}
	return &Store{kvStore: kvStore}, nil
}

func (s *Store) Save(ctx context.Context, record *SnapshotRecord) error {
	span := trace.SpanFromContextSafe(ctx)

	data, err := record.Marshal()
	if err != nil {
		return err
	}
	if err = s.kvStore.SetRaw(ctx, CF, encodeSnapshotKey(record.Seq), data); err != nil {
		span.Errorf("persist snapshot seq[%d] failed: %s", record.Seq, err)
		return err
	}
	return s.kvStore.FlushCF(ctx, CF)
}

// LoadLatest returns the newest persisted record, or ErrNoSnapshot when the
// store has never been written.
func (s *Store) LoadLatest(ctx context.Context) (*SnapshotRecord, error) {
	lr := s.kvStore.List(ctx, CF, encodeSnapshotKeyPrefix())
	defer lr.Close()

	kg, vg, err := lr.ReadLast()
	if err != nil {
		return nil, err
	}
	if kg == nil || vg == nil {
		return nil, apierr.ErrNoSnapshot
	}
	defer kg.Close()
	defer vg.Close()

	record := &SnapshotRecord{}
	if err = record.Unmarshal(vg.Value()); err != nil {
		return nil, err
	}
	return record, nil
}

func encodeSnapshotKey(seq uint64) []byte {
	prefix := encodeSnapshotKeyPrefix()
	ret := make([]byte, len(prefix)+8)
	copy(ret, prefix)
	binary.BigEndian.PutUint64(ret[len(prefix):], seq)
	return ret
}

func encodeSnapshotKeyPrefix() []byte {
	ret := make([]byte, 0, len(snapshotKeyPrefix)+len(keyInfix))
	ret = append(ret, snapshotKeyPrefix...)
	ret = append(ret, keyInfix...)
	return ret
}
