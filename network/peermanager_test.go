package network

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	"github.com/libp2p/go-libp2p/core/host"
	libnet "github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotkonetworks/kagome/libs/pidstore"
	chainsync "github.com/rotkonetworks/kagome/sync"
)

func TestPeerManagerBootstrapsOnStart(t *testing.T) {
	hosts := testPeers(t, 4)
	self := hosts[0]

	protos := NewProtocols("test")
	boots := make([]peer.AddrInfo, 0, len(hosts))
	// own info in the bootstrap list must be skipped
	boots = append(boots, *host.InfoFromHost(self))
	for _, h := range hosts[1:] {
		h.SetStreamHandler(protos.BlockAnnounce, func(libnet.Stream) {})
		boots = append(boots, *host.InfoFromHost(h))
	}

	m, disc, _ := testManager(t, self, testParameters(), boots)
	startManager(t, m)
	require.False(t, m.Passive())

	require.Eventually(t, func() bool {
		return m.ActivePeersCount() == 3
	}, time.Second*5, time.Millisecond*10)
	require.Eventually(t, func() bool {
		_, queued, connecting := m.peerCounts()
		return queued == 0 && connecting == 0
	}, time.Second*5, time.Millisecond*10)

	active := activePeers(m)
	for _, h := range hosts[1:] {
		assert.Contains(t, active, h.ID())
		assert.True(t, m.syncClients.Has(h.ID()))
		assert.True(t, m.streams.IsAlive(h.ID(), m.protocols.BlockAnnounce))
	}
	assert.NotContains(t, active, self.ID())

	// the node registered itself as a bootstrap contact and, through
	// promotion, every peer as a regular one
	isBoot, known := disc.contact(self.ID())
	require.True(t, known)
	assert.True(t, isBoot)
	isBoot, known = disc.contact(hosts[1].ID())
	require.True(t, known)
	assert.False(t, isBoot)

	requireInvariants(t, m)
}

func TestPeerManagerPassiveMode(t *testing.T) {
	hosts := testPeers(t, 1)
	m, disc, _ := testManager(t, hosts[0], testParameters(), nil)
	require.NoError(t, m.Stop(context.Background()), "stop before start is a no-op")

	startManager(t, m)
	require.True(t, m.Passive())
	require.Error(t, m.Start(context.Background()), "second start must fail")

	m.lk.Lock()
	require.Nil(t, m.timer, "passive mode must not arm the alignment loop")
	m.lk.Unlock()

	// inbound promotions still work
	m.UpdatePeerStatus("peer1", Status{Roles: RoleFull})
	assert.Equal(t, 1, m.ActivePeersCount())

	ctx := context.Background()
	require.NoError(t, m.Stop(ctx))
	require.NoError(t, m.Stop(ctx), "stop is idempotent")

	// post-stop discovery signals are dropped
	disc.discover("peer2")
	_, queued, _ := m.peerCounts()
	assert.Zero(t, queued)
}

func TestPeerManagerInboundStatusActivates(t *testing.T) {
	hosts := testPeers(t, 1)
	m, disc, mock := testManager(t, hosts[0], testParameters(), nil)
	startManager(t, m)

	st := Status{Roles: RoleAuthority, BestBlock: BlockInfo{Number: 7}}

	// a status from a peer the manager is still dialing activates it
	dialing := peer.ID("peer1")
	m.lk.Lock()
	m.connecting[dialing] = struct{}{}
	m.lk.Unlock()

	m.UpdatePeerStatus(dialing, st)
	got, ok := m.PeerStatus(dialing)
	require.True(t, ok)
	assert.Equal(t, st, got)
	assert.True(t, m.syncClients.Has(dialing))

	active, queued, connecting := m.peerCounts()
	assert.EqualValues(t, 1, active)
	assert.Zero(t, queued)
	assert.Zero(t, connecting)

	// same for a peer still sitting in the connect queue
	queuedPeer := peer.ID("peer2")
	disc.discover(queuedPeer)
	m.UpdatePeerStatus(queuedPeer, st)
	active, queued, _ = m.peerCounts()
	assert.EqualValues(t, 2, active)
	assert.Zero(t, queued)

	// a later status replaces the stored one and refreshes last seen
	mock.Add(time.Minute)
	st2 := Status{Roles: RoleFull, BestBlock: BlockInfo{Number: 9}}
	m.UpdatePeerStatus(dialing, st2)
	got, _ = m.PeerStatus(dialing)
	assert.Equal(t, st2, got)
	for _, p := range m.Peers() {
		if p.ID == dialing {
			assert.Equal(t, mock.Now(), p.LastSeen)
		}
	}

	requireInvariants(t, m)
}

func TestPeerManagerConnectToDequeues(t *testing.T) {
	hosts := testPeers(t, 2)
	m, disc, _ := testManager(t, hosts[0], testParameters(), nil)
	startManager(t, m)

	candidate := hosts[1]
	candidate.SetStreamHandler(m.protocols.BlockAnnounce, func(libnet.Stream) {})

	disc.discover(candidate.ID())
	_, queued, _ := m.peerCounts()
	require.EqualValues(t, 1, queued)

	// an externally requested dial must pull the peer out of the queue,
	// not leave it queued and connecting at once
	m.ConnectTo(*host.InfoFromHost(candidate))
	m.lk.Lock()
	assert.False(t, m.queue.has(candidate.ID()))
	m.lk.Unlock()
	requireInvariants(t, m)

	require.Eventually(t, func() bool {
		return m.ActivePeersCount() == 1
	}, time.Second*5, time.Millisecond*10)
	requireInvariants(t, m)
}

func TestPeerManagerIgnoresSelf(t *testing.T) {
	hosts := testPeers(t, 1)
	m, disc, _ := testManager(t, hosts[0], testParameters(), nil)
	startManager(t, m)

	self := m.host.ID()
	m.UpdatePeerStatus(self, Status{Roles: RoleFull})
	assert.Zero(t, m.ActivePeersCount())

	disc.discover(self)
	_, queued, _ := m.peerCounts()
	assert.Zero(t, queued)

	m.ConnectTo(peer.AddrInfo{ID: self, Addrs: m.host.Addrs()})
	_, _, connecting := m.peerCounts()
	assert.Zero(t, connecting, "a self dial must not start")

	m.lk.Lock()
	m.promote(self)
	m.lk.Unlock()
	assert.Zero(t, m.ActivePeersCount())

	requireInvariants(t, m)
}

func TestPeerManagerBestBlockAndKeepAlive(t *testing.T) {
	hosts := testPeers(t, 1)
	m, _, mock := testManager(t, hosts[0], testParameters(), nil)
	startManager(t, m)

	p := peer.ID("peer1")
	hash, err := BlockHashFromHex("b0a8d493285c2df73290dfb7e61f870f17b41801197a149ca93654499ea3dafe")
	require.NoError(t, err)

	// best block and keepalive are dropped for peers that are not active
	m.UpdateBestBlock(p, BlockInfo{Number: 3, Hash: hash})
	m.KeepAlive(p)
	_, ok := m.PeerStatus(p)
	require.False(t, ok)
	assert.Zero(t, m.ActivePeersCount())

	m.UpdatePeerStatus(p, Status{Roles: RoleFull, BestBlock: BlockInfo{Number: 3}})

	mock.Add(time.Minute)
	m.UpdateBestBlock(p, BlockInfo{Number: 4, Hash: hash})
	st, ok := m.PeerStatus(p)
	require.True(t, ok)
	assert.EqualValues(t, 4, st.BestBlock.Number)
	assert.Equal(t, hash, st.BestBlock.Hash)
	assert.Equal(t, RoleFull, st.Roles, "best block update must not clobber the rest of the status")

	mock.Add(time.Minute)
	m.KeepAlive(p)
	require.Len(t, m.Peers(), 1)
	assert.Equal(t, mock.Now(), m.Peers()[0].LastSeen)

	visited := 0
	m.ForOnePeer(p, func(peer.ID) { visited++ })
	m.ForOnePeer("ghost", func(peer.ID) { visited += 100 })
	assert.Equal(t, 1, visited)
}

func TestPeerManagerAlign(t *testing.T) {
	t.Run("dead peer is swept", func(t *testing.T) {
		hosts := testPeers(t, 1)
		m, _, _ := testManager(t, hosts[0], testParameters(), nil)
		startManager(t, m)

		// active, but without a live block announce stream
		m.UpdatePeerStatus("peer1", Status{Roles: RoleFull})
		require.Equal(t, 1, m.ActivePeersCount())
		require.True(t, m.syncClients.Has("peer1"))

		m.onAlignTimer()

		assert.Zero(t, m.ActivePeersCount())
		assert.False(t, m.syncClients.Has("peer1"))
		requireInvariants(t, m)
	})

	t.Run("stale peer over the soft limit is evicted", func(t *testing.T) {
		hosts := testPeers(t, 4)
		params := testParameters()
		params.TargetCount = 1
		params.SoftLimit = 2
		m, _, mock := testManager(t, hosts[0], params, nil)
		startManager(t, m)

		for _, h := range hosts[1:] {
			liveStream(t, m, h)
			m.UpdatePeerStatus(h.ID(), Status{Roles: RoleFull})
		}
		require.Equal(t, 3, m.ActivePeersCount())

		stale := hosts[1]
		mock.Add(params.PeerTTL / 2)
		m.KeepAlive(hosts[2].ID())
		m.KeepAlive(hosts[3].ID())
		mock.Add(params.PeerTTL/2 + time.Second)

		m.onAlignTimer()

		assert.Equal(t, 2, m.ActivePeersCount())
		assert.NotContains(t, activePeers(m), stale.ID())
		assert.False(t, m.streams.IsAlive(stale.ID(), m.protocols.BlockAnnounce))
		assert.False(t, m.syncClients.Has(stale.ID()))
		requireInvariants(t, m)
	})

	t.Run("fresh peers over the soft limit are spared", func(t *testing.T) {
		hosts := testPeers(t, 4)
		params := testParameters()
		params.TargetCount = 1
		params.SoftLimit = 2
		m, _, _ := testManager(t, hosts[0], params, nil)
		startManager(t, m)

		for _, h := range hosts[1:] {
			liveStream(t, m, h)
			m.UpdatePeerStatus(h.ID(), Status{Roles: RoleFull})
		}

		m.onAlignTimer()

		assert.Equal(t, 3, m.ActivePeersCount(), "peers inside the ttl ride out the soft limit")
		requireInvariants(t, m)
	})

	t.Run("above the hard limit the oldest is evicted unconditionally", func(t *testing.T) {
		hosts := testPeers(t, 5)
		params := testParameters()
		params.TargetCount = 1
		params.SoftLimit = 2
		params.HardLimit = 3
		m, _, mock := testManager(t, hosts[0], params, nil)
		startManager(t, m)

		for _, h := range hosts[1:] {
			liveStream(t, m, h)
			m.UpdatePeerStatus(h.ID(), Status{Roles: RoleFull})
			mock.Add(time.Second)
		}
		require.Equal(t, 4, m.ActivePeersCount())

		m.onAlignTimer()

		assert.Equal(t, 3, m.ActivePeersCount(), "hard limit must hold after the pass")
		assert.NotContains(t, activePeers(m), hosts[1].ID(), "the oldest peer goes first")
		requireInvariants(t, m)
	})

	t.Run("grows from the queue front", func(t *testing.T) {
		hosts := testPeers(t, 2)
		m, disc, _ := testManager(t, hosts[0], testParameters(), nil)
		startManager(t, m)

		candidate := hosts[1]
		candidate.SetStreamHandler(m.protocols.BlockAnnounce, func(libnet.Stream) {})
		m.host.Peerstore().AddAddrs(candidate.ID(), candidate.Addrs(), peerstore.PermanentAddrTTL)

		disc.discover(candidate.ID())
		_, queued, _ := m.peerCounts()
		require.EqualValues(t, 1, queued)

		m.onAlignTimer()

		require.Eventually(t, func() bool {
			return m.ActivePeersCount() == 1
		}, time.Second*5, time.Millisecond*10)
		assert.Contains(t, activePeers(m), candidate.ID())
		assert.True(t, m.syncClients.Has(candidate.ID()))
		_, queued, connecting := m.peerCounts()
		assert.Zero(t, queued)
		assert.Zero(t, connecting)
		requireInvariants(t, m)
	})

	t.Run("growth stops at the target", func(t *testing.T) {
		hosts := testPeers(t, 2)
		params := testParameters()
		params.TargetCount = 1
		params.SoftLimit = 1
		m, disc, _ := testManager(t, hosts[0], params, nil)
		startManager(t, m)

		liveStream(t, m, hosts[1])
		m.UpdatePeerStatus(hosts[1].ID(), Status{Roles: RoleFull})

		disc.discover("waiting")
		m.onAlignTimer()

		// at the target the queue is left untouched
		active, queued, connecting := m.peerCounts()
		assert.EqualValues(t, 1, active)
		assert.EqualValues(t, 1, queued)
		assert.Zero(t, connecting)
		requireInvariants(t, m)
	})

	t.Run("queued peer without addresses is dropped", func(t *testing.T) {
		hosts := testPeers(t, 1)
		m, disc, _ := testManager(t, hosts[0], testParameters(), nil)
		startManager(t, m)

		disc.discover("peer1")
		m.onAlignTimer()

		active, queued, connecting := m.peerCounts()
		assert.Zero(t, active)
		assert.Zero(t, queued)
		assert.Zero(t, connecting)

		// the peer stays eligible for rediscovery
		disc.discover("peer1")
		_, queued, _ = m.peerCounts()
		assert.EqualValues(t, 1, queued)
	})

	t.Run("withheld promotion at the hard limit", func(t *testing.T) {
		hosts := testPeers(t, 4)
		params := testParameters()
		params.TargetCount = 2
		params.SoftLimit = 2
		params.HardLimit = 2
		m, disc, _ := testManager(t, hosts[0], params, nil)
		startManager(t, m)

		// two live peers put the set at the hard limit
		for _, h := range hosts[1:3] {
			liveStream(t, m, h)
			m.UpdatePeerStatus(h.ID(), Status{Roles: RoleFull})
		}

		// identify completes for a third peer while its dial is in flight
		extra := hosts[3]
		m.host.Peerstore().AddAddrs(extra.ID(), extra.Addrs(), peerstore.PermanentAddrTTL)
		m.lk.Lock()
		m.connecting[extra.ID()] = struct{}{}
		m.promote(extra.ID())
		m.lk.Unlock()

		// the peer is not promoted, but its transport connection survives
		assert.Equal(t, 2, m.ActivePeersCount())
		_, _, connecting := m.peerCounts()
		assert.Zero(t, connecting)
		assert.Equal(t, libnet.Connected, m.host.Network().Connectedness(extra.ID()))
		assert.False(t, m.streams.IsAlive(extra.ID(), m.protocols.BlockAnnounce))

		// it stays routable and rediscoverable
		isBoot, known := disc.contact(extra.ID())
		require.True(t, known)
		assert.False(t, isBoot)
		disc.discover(extra.ID())
		_, queued, _ := m.peerCounts()
		assert.EqualValues(t, 1, queued)
		requireInvariants(t, m)
	})

	t.Run("failed stream open cleans the peer up", func(t *testing.T) {
		hosts := testPeers(t, 2)
		m, disc, _ := testManager(t, hosts[0], testParameters(), nil)
		startManager(t, m)

		// the candidate does not speak block announce
		candidate := hosts[1]
		m.host.Peerstore().AddAddrs(candidate.ID(), candidate.Addrs(), peerstore.PermanentAddrTTL)
		disc.discover(candidate.ID())

		m.onAlignTimer()

		require.Eventually(t, func() bool {
			active, queued, connecting := m.peerCounts()
			return active == 0 && queued == 0 && connecting == 0
		}, time.Second*5, time.Millisecond*10)
		assert.False(t, m.syncClients.Has(candidate.ID()))
		assert.False(t, m.streams.IsAlive(candidate.ID(), m.protocols.BlockAnnounce))

		disc.discover(candidate.ID())
		_, queued, _ := m.peerCounts()
		assert.EqualValues(t, 1, queued)
		requireInvariants(t, m)
	})
}

func TestPeerManagerPersistsActivePeers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)

	hosts := testPeers(t, 2)
	ds := dssync.MutexWrap(datastore.NewMapDatastore())
	pids, err := pidstore.NewPeerIDStore(ctx, ds)
	require.NoError(t, err)

	m1, _, _ := testManager(t, hosts[0], testParameters(), nil, WithPeerIDStore(pids))
	require.NoError(t, m1.Start(ctx))
	m1.UpdatePeerStatus(hosts[1].ID(), Status{Roles: RoleFull})
	require.NoError(t, m1.Stop(ctx))

	loaded, err := pids.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []peer.ID{hosts[1].ID()}, loaded)

	// a fresh manager over the same store requeues the remembered peer
	m2, _, _ := testManager(t, hosts[0], testParameters(), nil, WithPeerIDStore(pids))
	require.NoError(t, m2.Start(ctx))
	t.Cleanup(func() { require.NoError(t, m2.Stop(ctx)) })

	_, queued, _ := m2.peerCounts()
	assert.EqualValues(t, 1, queued)
	m2.lk.Lock()
	assert.True(t, m2.queue.has(hosts[1].ID()))
	m2.lk.Unlock()
}

func TestPeerManagerWithMetrics(t *testing.T) {
	hosts := testPeers(t, 1)
	m, _, _ := testManager(t, hosts[0], testParameters(), nil)
	require.NoError(t, m.WithMetrics())
	startManager(t, m)

	m.UpdatePeerStatus("peer1", Status{Roles: RoleFull})
	m.onAlignTimer()
	assert.Zero(t, m.ActivePeersCount())
}

func testParameters() Parameters {
	return Parameters{
		TargetCount: 3,
		SoftLimit:   5,
		HardLimit:   6,
		PeerTTL:     10 * time.Minute,
		AlignPeriod: 15 * time.Second,
	}
}

func testPeers(t *testing.T, n int) []host.Host {
	t.Helper()
	mn, err := mocknet.FullMeshConnected(n)
	require.NoError(t, err)
	return mn.Hosts()
}

func testManager(
	t *testing.T,
	h host.Host,
	params Parameters,
	bootstrappers []peer.AddrInfo,
	opts ...Option,
) (*PeerManager, *fakeDiscovery, *clock.Mock) {
	t.Helper()
	disc := newFakeDiscovery(h)
	mock := clock.NewMock()
	opts = append(opts, WithClock(mock))
	m, err := NewPeerManager(
		params,
		h,
		disc,
		NewStreamEngine(h),
		chainsync.NewClients(),
		NewProtocols("test"),
		bootstrappers,
		opts...,
	)
	require.NoError(t, err)
	return m, disc, mock
}

func startManager(t *testing.T, m *PeerManager) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)
	require.NoError(t, m.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, m.Stop(ctx))
	})
}

// liveStream opens a block announce stream from h to the manager's host and
// waits until the manager's engine tracks it, so the liveness sweep sees the
// peer as alive. Protocol negotiation is lazy, the responder's handler only
// fires once data flows, hence the write.
func liveStream(t *testing.T, m *PeerManager, h host.Host) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	s, err := h.NewStream(ctx, m.host.ID(), m.protocols.BlockAnnounce)
	require.NoError(t, err)
	_, err = s.Write([]byte{0})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return m.streams.IsAlive(h.ID(), m.protocols.BlockAnnounce)
	}, time.Second*3, time.Millisecond*5)
}

func activePeers(m *PeerManager) map[peer.ID]struct{} {
	set := make(map[peer.ID]struct{})
	m.ForEachPeer(func(p peer.ID) { set[p] = struct{}{} })
	return set
}

// requireInvariants checks that active, queued and connecting are pairwise
// disjoint, that the queue's order and set agree, and that the node itself
// is in none of them.
func requireInvariants(t *testing.T, m *PeerManager) {
	t.Helper()
	m.lk.Lock()
	defer m.lk.Unlock()

	require.Equal(t, len(m.queue.order), len(m.queue.set))
	for _, p := range m.queue.order {
		require.True(t, m.queue.has(p))
		require.False(t, m.registry.has(p))
		require.NotContains(t, m.connecting, p)
	}
	for p := range m.connecting {
		require.False(t, m.registry.has(p))
	}

	self := m.host.ID()
	require.False(t, m.registry.has(self))
	require.False(t, m.queue.has(self))
	require.NotContains(t, m.connecting, self)
}

// fakeDiscovery stands in for the DHT-backed discovery: it seeds the host's
// address book the way the real one does and hands the discovered-peer
// callback to the test.
type fakeDiscovery struct {
	lk           sync.Mutex
	host         host.Host
	onDiscovered func(peer.ID)
	contacts     map[peer.ID]bool
}

func newFakeDiscovery(h host.Host) *fakeDiscovery {
	return &fakeDiscovery{host: h, contacts: make(map[peer.ID]bool)}
}

func (d *fakeDiscovery) Start(context.Context) error { return nil }

func (d *fakeDiscovery) Stop(context.Context) error { return nil }

func (d *fakeDiscovery) AddPeer(_ context.Context, pi peer.AddrInfo, bootstrap bool) error {
	d.host.Peerstore().AddAddrs(pi.ID, pi.Addrs, peerstore.PermanentAddrTTL)
	d.lk.Lock()
	defer d.lk.Unlock()
	d.contacts[pi.ID] = bootstrap
	return nil
}

func (d *fakeDiscovery) OnPeerDiscovered(fn func(peer.ID)) {
	d.onDiscovered = fn
}

// discover fires the discovered-peer callback the way the walk loop does.
func (d *fakeDiscovery) discover(p peer.ID) {
	d.onDiscovered(p)
}

// contact reports the bootstrap flag the contact was last registered with.
func (d *fakeDiscovery) contact(p peer.ID) (bootstrap, known bool) {
	d.lk.Lock()
	defer d.lk.Unlock()
	bootstrap, known = d.contacts[p]
	return bootstrap, known
}
