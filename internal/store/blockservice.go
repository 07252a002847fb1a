package store

import (
	blockservice "github.com/ipfs/boxo/blockservice"
	blockstore "github.com/ipfs/boxo/blockstore"
	offline "github.com/ipfs/boxo/exchange/offline"
)

// newBlockService wraps a blockstore in boxo's blockservice using the
// offline exchange, following 03-bitswap-blockservice/pkg/blockservice.go's
// blockservice.New(bstore, exchange) wiring. dservice never gossips blocks
// with peer dservices, so the exchange is the no-op offline one rather than
// a bitswap session: every block this node serves must already be local.
func newBlockService(bs blockstore.Blockstore) blockservice.BlockService {
	return blockservice.New(bs, offline.Exchange(bs))
}
