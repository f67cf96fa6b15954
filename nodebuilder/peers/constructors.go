package peers

import (
	"context"
	"errors"

	"github.com/ipfs/go-datastore"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/host"

	"github.com/rotkonetworks/kagome/libs/pidstore"
	"github.com/rotkonetworks/kagome/network"
	modp2p "github.com/rotkonetworks/kagome/nodebuilder/p2p"
	chainsync "github.com/rotkonetworks/kagome/sync"
)

// ErrNoBootstrappers is returned when the node has no bootstrap peers to
// maintain a peer set with and dev mode is off.
var ErrNoBootstrappers = errors.New(
	"peers: no bootstrap peers configured, refusing to start (enable dev mode to run standalone)")

// protocols derives the notification protocol set of the network. Live
// chains namespace their protocols by genesis hash, a private net has no
// fixed genesis and falls back to its name.
func protocols(net modp2p.Network) (network.Protocols, error) {
	gen, err := modp2p.GenesisFor(net)
	if err != nil {
		return network.Protocols{}, err
	}
	if gen == "" {
		return network.NewProtocols(net.String()), nil
	}
	return network.NewProtocols(gen), nil
}

func streamEngine(host host.Host) *network.StreamEngine {
	return network.NewStreamEngine(host)
}

func discovery(host host.Host, d *dht.IpfsDHT) network.Discovery {
	return network.NewDHTDiscovery(host, d)
}

func peerIDStore(ctx context.Context, ds datastore.Batching) (network.PeerIDStore, error) {
	return pidstore.NewPeerIDStore(ctx, ds)
}

func newPeerManager(
	cfg Config,
	host host.Host,
	disc network.Discovery,
	streams *network.StreamEngine,
	syncClients *chainsync.Clients,
	protocols network.Protocols,
	bootstrappers modp2p.Bootstrappers,
	pidstore network.PeerIDStore,
) (*network.PeerManager, error) {
	if len(bootstrappers) == 0 && !cfg.DevMode {
		return nil, ErrNoBootstrappers
	}

	return network.NewPeerManager(
		cfg.parameters(),
		host,
		disc,
		streams,
		syncClients,
		protocols,
		bootstrappers,
		network.WithPeerIDStore(pidstore),
	)
}
