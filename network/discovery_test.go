package network

import (
	"context"
	"testing"
	"time"

	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	basic "github.com/libp2p/go-libp2p/p2p/host/basic"
	"github.com/libp2p/go-libp2p/p2p/host/eventbus"
	swarmt "github.com/libp2p/go-libp2p/p2p/net/swarm/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDHTDiscovery(t *testing.T) {
	walkInterval = time.Millisecond * 50 // defined in discovery.go

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	t.Cleanup(cancel)

	boot, _ := dhtHost(t, ctx)

	hst, d := dhtHost(t, ctx)
	require.NoError(t, hst.Connect(ctx, *host.InfoFromHost(boot)))

	disc := NewDHTDiscovery(hst, d)
	discovered := make(chan peer.ID, 8)
	disc.OnPeerDiscovered(func(p peer.ID) {
		discovered <- p
	})
	require.NoError(t, disc.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, disc.Stop(ctx))
	})

	select {
	case p := <-discovered:
		assert.Equal(t, boot.ID(), p)
	case <-ctx.Done():
		t.Fatal("did not discover the bootstrapper in time")
	}
	assert.Positive(t, disc.RoutingTableSize())

	// a surfaced peer is muted, further walks must not offer it again
	select {
	case p := <-discovered:
		t.Fatalf("peer %s surfaced twice", p)
	case <-time.After(walkInterval * 4):
	}
}

func TestDHTDiscoveryAddPeer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)

	hstA, dhtA := dhtHost(t, ctx)
	hstB, _ := dhtHost(t, ctx)

	disc := NewDHTDiscovery(hstA, dhtA)

	require.NoError(t, disc.AddPeer(ctx, *host.InfoFromHost(hstB), false))
	assert.Equal(t, 1, disc.RoutingTableSize())
	// addresses are remembered so the peer can be dialed later
	assert.NotEmpty(t, hstA.Peerstore().Addrs(hstB.ID()))

	// adding ourselves only seeds the address book
	require.NoError(t, disc.AddPeer(ctx, *host.InfoFromHost(hstA), true))
	assert.Equal(t, 1, disc.RoutingTableSize())
}

func dhtHost(t *testing.T, ctx context.Context) (host.Host, *dht.IpfsDHT) {
	t.Helper()
	bus := eventbus.NewBus()
	swarm := swarmt.GenSwarm(t, swarmt.OptDisableTCP, swarmt.EventBus(bus))
	hst, err := basic.NewHost(swarm, &basic.HostOpts{EventBus: bus})
	require.NoError(t, err)
	hst.Start()

	d, err := dht.New(ctx, hst,
		dht.Mode(dht.ModeServer),
		dht.ProtocolPrefix("/test"),
	)
	require.NoError(t, err)
	return hst, d
}
