package network

import (
	"fmt"

	"github.com/libp2p/go-libp2p/core/protocol"
)

// Protocols is the set of notification protocols spoken on a chain. The
// protocol IDs are derived from the chain identifier, except grandpa which
// is chain-agnostic on the wire.
type Protocols struct {
	// BlockAnnounce is the primary protocol: a peer is considered live
	// only while a block announce stream with it is open.
	BlockAnnounce protocol.ID
	Transactions  protocol.ID
	Grandpa       protocol.ID
	Sync          protocol.ID
}

// NewProtocols derives the notification protocol set for the given chain id.
func NewProtocols(chainID string) Protocols {
	return Protocols{
		BlockAnnounce: protocol.ID(fmt.Sprintf("/%s/block-announces/1", chainID)),
		Transactions:  protocol.ID(fmt.Sprintf("/%s/transactions/1", chainID)),
		Grandpa:       protocol.ID("/paritytech/grandpa/1"),
		Sync:          protocol.ID(fmt.Sprintf("/%s/sync/2", chainID)),
	}
}

// Reserved lists the protocols whose stream slots are reserved for a peer
// at promotion, to be opened lazily by their owning services.
func (p Protocols) Reserved() []protocol.ID {
	return []protocol.ID{p.Transactions, p.Grandpa}
}

// All lists every notification protocol the node accepts inbound.
func (p Protocols) All() []protocol.ID {
	return []protocol.ID{p.BlockAnnounce, p.Transactions, p.Grandpa, p.Sync}
}
