// Package store is the semantic wrapper the rest of dservice uses to talk to
// the content-addressed block store: pin add/remove/list, block get/put/
// remove, DAG import/export, and directory listing (spec.md §4.1). It is
// built the same way the teacher builds every layer of its DAG stack: a
// small wrapper around a boxo primitive, composed bottom-up.
package store

import (
	"context"
	"fmt"
	"os"

	blockstore "github.com/ipfs/boxo/blockstore"
	blockformat "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	badgerds "github.com/ipfs/go-ds-badger"
	pebbleds "github.com/ipfs/go-ds-pebble"
	mc "github.com/multiformats/go-multicodec"
	mh "github.com/multiformats/go-multihash"
)

// Backend selects the datastore implementation backing the blockstore and
// the pin index.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
	BackendPebble Backend = "pebble"
)

// openDatastore opens the batching key-value store for the given backend,
// mirroring the teacher's persistent.New backend switch.
func openDatastore(backend Backend, path string) (ds.Batching, error) {
	switch backend {
	case "", BackendMemory:
		return dssync.MutexWrap(ds.NewMapDatastore()), nil
	case BackendBadger:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create datastore dir: %w", err)
		}
		return badgerds.NewDatastore(path, nil)
	case BackendPebble:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create datastore dir: %w", err)
		}
		bds, err := pebbleds.NewDatastore(path, nil)
		if err != nil {
			return nil, err
		}
		return bds, nil
	default:
		return nil, fmt.Errorf("unknown datastore backend %q", backend)
	}
}

// NewV1Prefix builds a CIDv1 prefix, defaulting to raw/sha2-256 like the
// teacher's block.NewV1Prefix.
func NewV1Prefix(codec mc.Code, mhType uint64, mhLength int) *cid.Prefix {
	if codec == 0 {
		codec = mc.Raw
	}
	if mhType == 0 {
		mhType = mh.SHA2_256
	}
	if mhLength == 0 {
		mhLength = -1
	}
	return &cid.Prefix{Version: 1, Codec: uint64(codec), MhType: mhType, MhLength: mhLength}
}

func computeCID(data []byte, prefix *cid.Prefix) (cid.Cid, error) {
	if prefix == nil {
		prefix = NewV1Prefix(0, 0, 0)
	}
	return prefix.Sum(data)
}

// blockWrapper is the thinnest layer: a blockstore.Blockstore with a couple
// of convenience constructors, following 00-block-cid/pkg/block.go.
type blockWrapper struct {
	blockstore.Blockstore
}

func newBlockWrapper(bs ds.Batching) *blockWrapper {
	return &blockWrapper{Blockstore: blockstore.NewBlockstore(bs)}
}

func (b *blockWrapper) putWithCID(ctx context.Context, data []byte, c cid.Cid) error {
	blk, err := blockformat.NewBlockWithCid(data, c)
	if err != nil {
		return err
	}
	return b.Put(ctx, blk)
}

func (b *blockWrapper) putV1(ctx context.Context, data []byte, prefix *cid.Prefix) (cid.Cid, error) {
	c, err := computeCID(data, prefix)
	if err != nil {
		return cid.Undef, err
	}
	if err := b.putWithCID(ctx, data, c); err != nil {
		return cid.Undef, err
	}
	return c, nil
}
