package network

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
)

// walkInterval is how often the routing table is inspected for peers
// we have not surfaced yet.
var walkInterval = 10 * time.Second

const (
	// rediscoveryTTL bounds how long a surfaced peer is muted before the
	// walk may offer it again, e.g. after it has been evicted.
	rediscoveryTTL = 5 * time.Minute

	seenPeersLimit = 1024
)

// Discovery surfaces candidate peers to dial and records contacts the
// peer manager wants remembered.
type Discovery interface {
	Start(context.Context) error
	Stop(context.Context) error
	// AddPeer records the peer's addresses and offers the peer to the
	// routing layer. Bootstrap contacts keep their addresses for the
	// lifetime of the process.
	AddPeer(ctx context.Context, pi peer.AddrInfo, bootstrap bool) error
	// OnPeerDiscovered registers the callback invoked for every newly
	// surfaced peer. It must be set before Start.
	OnPeerDiscovered(func(peer.ID))
}

// DHTDiscovery implements Discovery over a Kademlia DHT. It periodically
// diffs the routing table and surfaces peers that have not been offered
// recently. The DHT itself is owned by the caller; only the walk loop is
// managed here.
type DHTDiscovery struct {
	host host.Host
	dht  *dht.IpfsDHT

	seen         *expirable.LRU[peer.ID, struct{}]
	onDiscovered func(peer.ID)

	cancel context.CancelFunc
	done   chan struct{}
}

func NewDHTDiscovery(h host.Host, d *dht.IpfsDHT) *DHTDiscovery {
	return &DHTDiscovery{
		host: h,
		dht:  d,
		seen: expirable.NewLRU[peer.ID, struct{}](seenPeersLimit, nil, rediscoveryTTL),
		done: make(chan struct{}),
	}
}

func (d *DHTDiscovery) OnPeerDiscovered(fn func(peer.ID)) {
	d.onDiscovered = fn
}

func (d *DHTDiscovery) Start(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	if err := d.dht.Bootstrap(ctx); err != nil {
		cancel()
		return fmt.Errorf("network: bootstrapping DHT: %w", err)
	}

	go d.walk(ctx)
	return nil
}

func (d *DHTDiscovery) Stop(ctx context.Context) error {
	d.cancel()
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *DHTDiscovery) AddPeer(_ context.Context, pi peer.AddrInfo, bootstrap bool) error {
	ttl := peerstore.RecentlyConnectedAddrTTL
	if bootstrap {
		ttl = peerstore.PermanentAddrTTL
	}
	d.host.Peerstore().AddAddrs(pi.ID, pi.Addrs, ttl)

	if pi.ID == d.host.ID() {
		// own addresses only seed the peerstore
		return nil
	}
	if _, err := d.dht.RoutingTable().TryAddPeer(pi.ID, true, !bootstrap); err != nil {
		return fmt.Errorf("network: offering peer to routing table: %w", err)
	}
	return nil
}

// RoutingTableSize reports how many peers the DHT currently routes through.
func (d *DHTDiscovery) RoutingTableSize() int {
	return d.dht.RoutingTable().Size()
}

func (d *DHTDiscovery) walk(ctx context.Context) {
	defer close(d.done)

	ticker := time.NewTicker(walkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range d.dht.RoutingTable().ListPeers() {
				if p == d.host.ID() || d.seen.Contains(p) {
					continue
				}
				d.seen.Add(p, struct{}{})
				if d.onDiscovered != nil {
					d.onDiscovered(p)
				}
			}
		}
	}
}
