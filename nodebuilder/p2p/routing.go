package p2p

import (
	"context"
	"fmt"
	"time"

	"github.com/ipfs/go-datastore"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/libp2p/go-libp2p/core/routing"
	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

const routingRefreshPeriod = time.Minute

// newDHT assembles the Kademlia DHT the node discovers peers through. Both
// node types serve the routing table, a kagome network has no client-only
// participants.
func newDHT(
	ctx context.Context,
	lc fx.Lifecycle,
	tp node.Type,
	network Network,
	bootstrappers Bootstrappers,
	host HostBase,
	dataStore datastore.Batching,
) (*dht.IpfsDHT, error) {
	switch tp {
	case node.Full, node.Authority:
	default:
		return nil, fmt.Errorf("p2p: unsupported node type: %s", tp)
	}

	// a bootstrapper seeds the network and takes no seeds itself,
	// dht.Bootstrap would deadlock in the OnStart hook otherwise
	if isBootstrapper() {
		bootstrappers = nil
	}

	d, err := dht.New(ctx, host,
		dht.Mode(dht.ModeServer),
		dht.BootstrapPeers(bootstrappers...),
		dht.ProtocolPrefix(protocol.ID("/"+network.String())),
		dht.RoutingTableRefreshPeriod(routingRefreshPeriod),
		dht.Datastore(dataStore),
	)
	if err != nil {
		return nil, fmt.Errorf("p2p: construct dht: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: d.Bootstrap,
		OnStop: func(context.Context) error {
			return d.Close()
		},
	})
	return d, nil
}

func peerRouting(dht *dht.IpfsDHT) routing.PeerRouting {
	return dht
}
