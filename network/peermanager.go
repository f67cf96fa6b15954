package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	logging "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p/core/event"
	"github.com/libp2p/go-libp2p/core/host"
	libnet "github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"

	chainsync "github.com/rotkonetworks/kagome/sync"
)

var log = logging.Logger("network")

// dialTimeout bounds a single outbound connection attempt.
const dialTimeout = 30 * time.Second

// PeerIDStore persists known good peers between runs.
type PeerIDStore interface {
	Put(context.Context, []peer.ID) error
	Load(context.Context) ([]peer.ID, error)
}

// PeerState is a point-in-time view of an active peer.
type PeerState struct {
	ID       peer.ID
	LastSeen time.Time
	Status   Status
}

// PeerManager owns the node's peer set. Discovery and identify events feed
// it asynchronously; a periodic alignment pass evicts dead, stale and
// excess peers and grows the set toward the configured target. It also
// serves as the status and keepalive surface for the protocol handlers.
//
// A peer id is in at most one of the active registry, the connect queue
// and the connecting set at any observable point.
type PeerManager struct {
	lk sync.Mutex

	params        Parameters
	host          host.Host
	discovery     Discovery
	streams       *StreamEngine
	syncClients   *chainsync.Clients
	protocols     Protocols
	bootstrappers []peer.AddrInfo

	registry   *peerRegistry
	queue      *connectQueue
	connecting map[peer.ID]struct{}

	clock clock.Clock
	timer *clock.Timer

	pidstore    PeerIDStore
	identifySub event.Subscription
	metrics     *metrics

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool
}

func NewPeerManager(
	params Parameters,
	h host.Host,
	discovery Discovery,
	streams *StreamEngine,
	syncClients *chainsync.Clients,
	protocols Protocols,
	bootstrappers []peer.AddrInfo,
	opts ...Option,
) (*PeerManager, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	m := &PeerManager{
		params:        params,
		host:          h,
		discovery:     discovery,
		streams:       streams,
		syncClients:   syncClients,
		protocols:     protocols,
		bootstrappers: bootstrappers,
		registry:      newPeerRegistry(),
		queue:         newConnectQueue(),
		connecting:    make(map[peer.ID]struct{}),
		clock:         clock.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Start subscribes to identify and discovery events, seeds discovery with
// the node's own info and the bootstrap peers, and runs the first
// alignment pass. Without bootstrap peers the manager starts passive: it
// accepts inbound connections and promotions but never arms the alignment
// loop.
func (m *PeerManager) Start(ctx context.Context) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.started {
		return errors.New("network: peer manager already started")
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.streams.RegisterInbound(m.protocols.All()...)

	sub, err := m.host.EventBus().Subscribe(&event.EvtPeerIdentificationCompleted{})
	if err != nil {
		return fmt.Errorf("network: subscribing to identify events: %w", err)
	}
	m.identifySub = sub
	go m.listenIdentify(sub)

	m.discovery.OnPeerDiscovered(m.onDiscovered)

	self := peer.AddrInfo{ID: m.host.ID(), Addrs: m.host.Addrs()}
	if err := m.discovery.AddPeer(ctx, self, true); err != nil {
		log.Warnw("failed to add own info to discovery", "err", err)
	}
	for _, b := range m.bootstrappers {
		if err := m.discovery.AddPeer(ctx, b, true); err != nil {
			log.Warnw("failed to add bootstrap peer to discovery", "peer", b.ID, "err", err)
		}
	}
	if err := m.discovery.Start(ctx); err != nil {
		return fmt.Errorf("network: starting discovery: %w", err)
	}

	if m.pidstore != nil {
		ids, err := m.pidstore.Load(ctx)
		if err != nil {
			log.Warnw("failed to load previously seen peers", "err", err)
		}
		for _, p := range ids {
			m.processDiscovered(p)
		}
	}

	if m.Passive() {
		log.Warn("no bootstrap peers configured - peer set maintenance is passive")
		return nil
	}

	m.align()
	return nil
}

// Stop cancels the alignment timer and marks the manager stopped, turning
// every in-flight dial and stream completion into a no-op. The current
// active set is persisted for the next run.
func (m *PeerManager) Stop(ctx context.Context) error {
	m.lk.Lock()
	if !m.started || m.stopped {
		m.lk.Unlock()
		return nil
	}
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
	}
	m.cancel()
	sub := m.identifySub
	active := make([]peer.ID, 0, m.registry.size())
	m.registry.forEach(func(p peer.ID, _ *activePeer) {
		active = append(active, p)
	})
	m.lk.Unlock()

	if sub != nil {
		if err := sub.Close(); err != nil {
			log.Warnw("failed to close identify subscription", "err", err)
		}
	}
	m.streams.UnregisterInbound(m.protocols.All()...)

	if err := m.discovery.Stop(ctx); err != nil {
		log.Warnw("failed to stop discovery", "err", err)
	}

	if m.pidstore != nil && len(active) > 0 {
		if err := m.pidstore.Put(ctx, active); err != nil {
			log.Warnw("failed to persist active peers", "err", err)
		}
	}
	if err := m.metrics.close(); err != nil {
		log.Warnw("failed to close metrics", "err", err)
	}
	return nil
}

// Passive reports whether the node runs without bootstrap peers and thus
// never aligns the peer set on its own.
func (m *PeerManager) Passive() bool {
	return len(m.bootstrappers) == 0
}

func (m *PeerManager) listenIdentify(sub event.Subscription) {
	for {
		select {
		case <-m.ctx.Done():
			return
		case e, ok := <-sub.Out():
			if !ok {
				return
			}
			ev := e.(event.EvtPeerIdentificationCompleted)
			m.lk.Lock()
			if !m.stopped {
				m.promote(ev.Peer)
			}
			m.lk.Unlock()
		}
	}
}

func (m *PeerManager) onDiscovered(p peer.ID) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.stopped {
		return
	}
	m.processDiscovered(p)
}

// align runs one maintenance pass and rearms the timer: sweep dead peers,
// evict over hard limit, evict the oldest stale peer over soft limit, then
// grow from the queue or re-seed from bootstrap peers. Callers must hold lk.
func (m *PeerManager) align() {
	now := m.clock.Now()

	var dead []peer.ID
	m.registry.forEach(func(p peer.ID, _ *activePeer) {
		if !m.streams.IsAlive(p, m.protocols.BlockAnnounce) {
			dead = append(dead, p)
		}
	})
	for _, p := range dead {
		log.Debugw("found dead peer", "peer", p)
		m.disconnect(p)
		m.metrics.observeEviction(m.ctx, evictionDead)
	}

	for uint(m.registry.size()) > m.params.HardLimit {
		p, _, ok := m.registry.oldest()
		if !ok {
			break
		}
		log.Debugw("hard limit of active peers exceeded", "peer", p)
		m.disconnect(p)
		m.metrics.observeEviction(m.ctx, evictionCapacity)
	}
	if uint(m.registry.size()) > m.params.SoftLimit {
		if p, seen, ok := m.registry.oldest(); ok {
			if seen.Add(m.params.PeerTTL).Before(now) {
				log.Debugw("found stale peer", "peer", p)
				m.disconnect(p)
				m.metrics.observeEviction(m.ctx, evictionStale)
			}
		}
	}

	if uint(m.registry.size()) < m.params.TargetCount {
		if p, ok := m.queue.popFront(); ok {
			m.connectTo(p)
			log.Debugw("peers remaining in connect queue", "count", m.queue.len())
		} else if len(m.connecting) == 0 {
			log.Debug("connect queue is empty, reusing bootstrap peers")
			for _, b := range m.bootstrappers {
				if b.ID == m.host.ID() {
					continue
				}
				m.connectTo(b.ID)
			}
		}
	}

	m.metrics.observeAlign(m.ctx)
	m.timer = m.clock.AfterFunc(m.params.AlignPeriod, m.onAlignTimer)
}

func (m *PeerManager) onAlignTimer() {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.stopped {
		return
	}
	m.align()
}

// ConnectTo dials the peer with the supplied addresses and promotes it on
// success. The addresses are retained only briefly; discovery refreshes
// them for peers that prove useful.
func (m *PeerManager) ConnectTo(pi peer.AddrInfo) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if !m.started || m.stopped {
		return
	}
	m.connectToInfo(pi)
}

func (m *PeerManager) connectToInfo(pi peer.AddrInfo) {
	if len(pi.Addrs) > 0 {
		m.host.Peerstore().AddAddrs(pi.ID, pi.Addrs, peerstore.TempAddrTTL)
	}
	m.connectTo(pi.ID)
}

// connectTo resolves addresses and issues an asynchronous dial. The peer
// joins the connecting set, leaving the queue if it sat there, only once a
// dial is actually in flight, so an aborted attempt leaves it
// rediscoverable. Callers must hold lk.
func (m *PeerManager) connectTo(p peer.ID) {
	if p == m.host.ID() {
		return
	}
	addrs := m.host.Peerstore().Addrs(p)
	if len(addrs) == 0 {
		log.Debugw("no addresses found for peer", "peer", p)
		return
	}
	if m.host.Network().Connectedness(p) == libnet.CannotConnect {
		log.Debugw("can not connect to peer", "peer", p)
		return
	}
	if _, ok := m.connecting[p]; ok {
		return
	}
	m.queue.remove(p)
	m.connecting[p] = struct{}{}

	log.Debugw("connecting to peer", "peer", p)
	go m.dial(peer.AddrInfo{ID: p, Addrs: addrs})
}

// dial performs the blocking connection attempt and re-enters the manager
// with the result.
func (m *PeerManager) dial(pi peer.AddrInfo) {
	ctx, cancel := context.WithTimeout(m.ctx, dialTimeout)
	defer cancel()
	err := m.host.Connect(ctx, pi)

	m.lk.Lock()
	defer m.lk.Unlock()
	if m.stopped {
		return
	}
	delete(m.connecting, pi.ID)
	m.metrics.observeDial(ctx, err)
	if err != nil {
		log.Debugw("failed to connect to peer", "peer", pi.ID, "err", err)
		return
	}

	conns := m.host.Network().ConnsToPeer(pi.ID)
	if len(conns) == 0 {
		return
	}
	if remote := conns[0].RemotePeer(); remote != pi.ID {
		log.Warnw("dialed peer reported unexpected identity", "peer", pi.ID, "remote", remote)
		return
	}
	// identity is confirmed by the connection, no need to wait for identify
	m.promote(pi.ID)
}

// promote turns an established transport connection into an active peer.
// At the hard limit promotion is withheld: the transport connection stays
// open but no streams are granted. Callers must hold lk.
func (m *PeerManager) promote(p peer.ID) {
	if p == m.host.ID() {
		return
	}
	addrs := m.host.Peerstore().Addrs(p)
	if len(addrs) == 0 {
		log.Debugw("no addresses provided for connected peer", "peer", p)
		return
	}

	if uint(m.registry.size()) >= m.params.HardLimit {
		delete(m.connecting, p)
		log.Debugw("promotion withheld, hard limit of active peers reached", "peer", p)
		m.metrics.observePromotion(m.ctx, "withheld")
	} else if !m.streams.IsAlive(p, m.protocols.BlockAnnounce) {
		m.streams.NewOutgoingStream(m.ctx, p, m.protocols.BlockAnnounce, func(err error) {
			m.streamOpened(p, err)
		})
	}

	// keep the peer routable regardless of the promotion outcome
	if err := m.discovery.AddPeer(m.ctx, peer.AddrInfo{ID: p, Addrs: addrs}, false); err != nil {
		log.Debugw("failed to add peer to discovery", "peer", p, "err", err)
	}
}

// streamOpened finalizes a promotion once the block announce stream
// attempt resolves.
func (m *PeerManager) streamOpened(p peer.ID, err error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.stopped {
		return
	}
	delete(m.connecting, p)
	if err != nil {
		log.Warnw("failed to open block announce stream", "peer", p, "err", err)
		m.disconnect(p)
		m.metrics.observePromotion(m.ctx, "failed")
		return
	}

	if m.registry.add(p, m.clock.Now(), nil) {
		m.queue.remove(p)
		m.streams.Reserve(p, m.protocols.Reserved()...)
		m.syncClients.Add(p)
		log.Debugw("peer promoted", "peer", p, "active", m.registry.size())
		m.metrics.observePromotion(m.ctx, "promoted")
	}
}

// disconnect drops the peer from the active set, resets its streams and
// clears per-peer sync state. Callers must hold lk.
func (m *PeerManager) disconnect(p peer.ID) {
	if m.registry.remove(p) {
		m.streams.Del(p)
		log.Debugw("disconnected from peer", "peer", p, "active", m.registry.size())
	}
	m.syncClients.Remove(p)
}

// processDiscovered enqueues a discovered peer unless it is the node
// itself, already active, or already being dialed. Callers must hold lk.
func (m *PeerManager) processDiscovered(p peer.ID) {
	if p == m.host.ID() {
		return
	}
	if m.registry.has(p) {
		return
	}
	if _, ok := m.connecting[p]; ok {
		return
	}
	if m.queue.push(p) {
		log.Debugw("peer enqueued", "peer", p, "queued", m.queue.len())
	}
}

// UpdatePeerStatus records the handshake status reported by the peer. A
// status from a peer that is not active yet implies a live inbound link:
// the peer is moved out of the queue and the connecting set and becomes
// active immediately.
func (m *PeerManager) UpdatePeerStatus(p peer.ID, status Status) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if p == m.host.ID() {
		return
	}
	now := m.clock.Now()
	if m.registry.setStatus(p, now, &status) {
		return
	}
	delete(m.connecting, p)
	m.queue.remove(p)
	m.registry.add(p, now, &status)
	m.syncClients.Add(p)
}

// UpdateBestBlock records the peer's new chain head. Ignored unless the
// peer is active.
func (m *PeerManager) UpdateBestBlock(p peer.ID, block BlockInfo) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.registry.setBestBlock(p, m.clock.Now(), block)
}

// KeepAlive refreshes the peer's last seen time. Ignored unless the peer
// is active.
func (m *PeerManager) KeepAlive(p peer.ID) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.registry.refresh(p, m.clock.Now())
}

// PeerStatus returns the status the peer reported last. The zero Status
// is returned for an active peer that has not reported one yet.
func (m *PeerManager) PeerStatus(p peer.ID) (Status, bool) {
	m.lk.Lock()
	defer m.lk.Unlock()
	return m.registry.status(p)
}

func (m *PeerManager) ActivePeersCount() int {
	m.lk.Lock()
	defer m.lk.Unlock()
	return m.registry.size()
}

// ForEachPeer invokes fn for every active peer. fn must not call back
// into the manager.
func (m *PeerManager) ForEachPeer(fn func(peer.ID)) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.registry.forEach(func(p peer.ID, _ *activePeer) {
		fn(p)
	})
}

// ForOnePeer invokes fn only if the peer is active. fn must not call back
// into the manager.
func (m *PeerManager) ForOnePeer(p peer.ID, fn func(peer.ID)) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if m.registry.has(p) {
		fn(p)
	}
}

// Peers returns a point-in-time view of every active peer.
func (m *PeerManager) Peers() []PeerState {
	m.lk.Lock()
	defer m.lk.Unlock()
	peers := make([]PeerState, 0, m.registry.size())
	m.registry.forEach(func(p peer.ID, entry *activePeer) {
		st := Status{}
		if entry.status != nil {
			st = *entry.status
		}
		peers = append(peers, PeerState{ID: p, LastSeen: entry.lastSeen, Status: st})
	})
	return peers
}

func (m *PeerManager) peerCounts() (active, queued, connecting int64) {
	m.lk.Lock()
	defer m.lk.Unlock()
	return int64(m.registry.size()), int64(m.queue.len()), int64(len(m.connecting))
}
