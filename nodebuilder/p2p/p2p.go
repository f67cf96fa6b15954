package p2p

import (
	"context"
	"fmt"
	"time"

	libhost "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/metrics"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/libp2p/go-libp2p/p2p/host/autonat"
	rcmgr "github.com/libp2p/go-libp2p/p2p/host/resource-manager"
	"github.com/libp2p/go-libp2p/p2p/net/conngater"
	"github.com/libp2p/go-libp2p/p2p/protocol/ping"
)

var _ Module = (*API)(nil)

// ConnectionState describes one live transport connection to a peer.
type ConnectionState struct {
	Info network.ConnectionState
	// NumStreams is the number of streams multiplexed over the connection.
	NumStreams int
	// Direction reports who opened the connection, us or the peer.
	Direction network.Direction
	// Opened is when the connection was established.
	Opened time.Time
	// Limited marks a relayed or otherwise restricted connection.
	Limited bool
}

// Module exposes the node's libp2p host for inspection and low-level
// control. It operates below the peer manager: connections made or closed
// here do not grant or revoke protocol streams.
type Module interface {
	// Info returns the host's own address information.
	Info(context.Context) (peer.AddrInfo, error)
	// Network returns the name of the network the host is part of.
	Network(context.Context) (string, error)
	// Peers lists every peer with at least one live connection.
	Peers(context.Context) ([]peer.ID, error)
	// PeerInfo returns the addresses the peerstore holds for the peer.
	PeerInfo(ctx context.Context, id peer.ID) (peer.AddrInfo, error)

	// Connect ensures a transport connection to the given peer exists.
	Connect(ctx context.Context, pi peer.AddrInfo) error
	// ClosePeer closes every connection to the given peer.
	ClosePeer(ctx context.Context, id peer.ID) error
	// Connectedness reports whether the peer is reachable right now.
	Connectedness(ctx context.Context, id peer.ID) (network.Connectedness, error)
	// ConnectionState describes each live connection to the peer.
	// Usually there is exactly one.
	ConnectionState(ctx context.Context, id peer.ID) ([]ConnectionState, error)
	// NATStatus reports whether the host believes it is publicly reachable.
	NATStatus(context.Context) (network.Reachability, error)

	// BlockPeer denies the peer any future connection and closes the
	// current ones.
	BlockPeer(ctx context.Context, p peer.ID) error
	// UnblockPeer lifts a previous BlockPeer.
	UnblockPeer(ctx context.Context, p peer.ID) error
	// ListBlockedPeers lists the peers currently denied by the gater.
	ListBlockedPeers(context.Context) ([]peer.ID, error)
	// Protect pins the peer under the given tag so the connection manager
	// never trims it.
	Protect(ctx context.Context, id peer.ID, tag string) error
	// Unprotect drops the tag's pin and reports whether other tags still
	// protect the peer.
	Unprotect(ctx context.Context, id peer.ID, tag string) (bool, error)
	// IsProtected reports whether the peer is pinned under the given tag.
	IsProtected(ctx context.Context, id peer.ID, tag string) (bool, error)

	// BandwidthStats aggregates traffic across all peers and protocols.
	BandwidthStats(context.Context) (metrics.Stats, error)
	// BandwidthForPeer aggregates all traffic exchanged with the peer.
	BandwidthForPeer(ctx context.Context, id peer.ID) (metrics.Stats, error)
	// BandwidthForProtocol aggregates traffic of a single protocol across
	// all peers.
	BandwidthForProtocol(ctx context.Context, proto protocol.ID) (metrics.Stats, error)

	// ResourceState reports the resource manager's current usage.
	ResourceState(context.Context) (rcmgr.ResourceManagerStat, error)

	// Ping measures the round trip time to the peer.
	Ping(ctx context.Context, peer peer.ID) (time.Duration, error)
}

type module struct {
	host      HostBase
	gater     *conngater.BasicConnectionGater
	bandwidth *metrics.BandwidthCounter
	resources network.ResourceManager
	networkID Network
}

func newModule(
	host HostBase,
	gater *conngater.BasicConnectionGater,
	bandwidth *metrics.BandwidthCounter,
	resources network.ResourceManager,
	network Network,
) Module {
	return &module{
		host:      host,
		gater:     gater,
		bandwidth: bandwidth,
		resources: resources,
		networkID: network,
	}
}

func (m *module) Info(context.Context) (peer.AddrInfo, error) {
	return *libhost.InfoFromHost(m.host), nil
}

func (m *module) Network(context.Context) (string, error) {
	return m.networkID.String(), nil
}

func (m *module) Peers(context.Context) ([]peer.ID, error) {
	return m.host.Network().Peers(), nil
}

func (m *module) PeerInfo(_ context.Context, id peer.ID) (peer.AddrInfo, error) {
	return m.host.Peerstore().PeerInfo(id), nil
}

func (m *module) Connect(ctx context.Context, pi peer.AddrInfo) error {
	return m.host.Connect(ctx, pi)
}

func (m *module) ClosePeer(_ context.Context, id peer.ID) error {
	return m.host.Network().ClosePeer(id)
}

func (m *module) Connectedness(_ context.Context, id peer.ID) (network.Connectedness, error) {
	return m.host.Network().Connectedness(id), nil
}

func (m *module) ConnectionState(_ context.Context, id peer.ID) ([]ConnectionState, error) {
	conns := m.host.Network().ConnsToPeer(id)
	if len(conns) == 0 {
		return nil, fmt.Errorf("p2p: no connections to peer %s", id)
	}

	states := make([]ConnectionState, len(conns))
	for i, conn := range conns {
		stat := conn.Stat()
		states[i] = ConnectionState{
			Info:       conn.ConnState(),
			NumStreams: stat.NumStreams,
			Direction:  stat.Direction,
			Opened:     stat.Opened,
			Limited:    stat.Limited,
		}
	}

	return states, nil
}

type natStatusHost interface {
	GetAutoNat() autonat.AutoNAT
}

func (m *module) NATStatus(context.Context) (network.Reachability, error) {
	withNat, ok := m.host.(natStatusHost)
	if !ok {
		return 0, fmt.Errorf("p2p: host %T does not expose its AutoNAT", m.host)
	}
	return withNat.GetAutoNat().Status(), nil
}

func (m *module) BlockPeer(_ context.Context, p peer.ID) error {
	if err := m.gater.BlockPeer(p); err != nil {
		return err
	}
	if err := m.host.Network().ClosePeer(p); err != nil {
		log.Warnw("closing connection to blocked peer", "peer", p, "err", err)
	}
	return nil
}

func (m *module) UnblockPeer(_ context.Context, p peer.ID) error {
	return m.gater.UnblockPeer(p)
}

func (m *module) ListBlockedPeers(context.Context) ([]peer.ID, error) {
	return m.gater.ListBlockedPeers(), nil
}

func (m *module) Protect(_ context.Context, id peer.ID, tag string) error {
	m.host.ConnManager().Protect(id, tag)
	return nil
}

func (m *module) Unprotect(_ context.Context, id peer.ID, tag string) (bool, error) {
	return m.host.ConnManager().Unprotect(id, tag), nil
}

func (m *module) IsProtected(_ context.Context, id peer.ID, tag string) (bool, error) {
	return m.host.ConnManager().IsProtected(id, tag), nil
}

func (m *module) BandwidthStats(context.Context) (metrics.Stats, error) {
	return m.bandwidth.GetBandwidthTotals(), nil
}

func (m *module) BandwidthForPeer(_ context.Context, id peer.ID) (metrics.Stats, error) {
	return m.bandwidth.GetBandwidthForPeer(id), nil
}

func (m *module) BandwidthForProtocol(_ context.Context, proto protocol.ID) (metrics.Stats, error) {
	return m.bandwidth.GetBandwidthForProtocol(proto), nil
}

func (m *module) ResourceState(context.Context) (rcmgr.ResourceManagerStat, error) {
	state, ok := m.resources.(rcmgr.ResourceManagerState)
	if !ok {
		return rcmgr.ResourceManagerStat{}, fmt.Errorf(
			"p2p: resource manager %T does not report state", m.resources)
	}
	return state.Stat(), nil
}

func (m *module) Ping(ctx context.Context, peer peer.ID) (time.Duration, error) {
	// ping.Ping honors ctx itself, the result channel closes on cancellation
	res := <-ping.Ping(ctx, m.host, peer)
	return res.RTT, res.Error
}

// API carries Module over the RPC boundary.
type API struct {
	Internal struct {
		Info                 func(context.Context) (peer.AddrInfo, error)                         `perm:"admin"`
		Network              func(context.Context) (string, error)                                `perm:"admin"`
		Peers                func(context.Context) ([]peer.ID, error)                             `perm:"admin"`
		PeerInfo             func(ctx context.Context, id peer.ID) (peer.AddrInfo, error)         `perm:"admin"`
		Connect              func(ctx context.Context, pi peer.AddrInfo) error                    `perm:"admin"`
		ClosePeer            func(ctx context.Context, id peer.ID) error                          `perm:"admin"`
		Connectedness        func(ctx context.Context, id peer.ID) (network.Connectedness, error) `perm:"admin"`
		ConnectionState      func(context.Context, peer.ID) ([]ConnectionState, error)            `perm:"admin"`
		NATStatus            func(context.Context) (network.Reachability, error)                  `perm:"admin"`
		BlockPeer            func(ctx context.Context, p peer.ID) error                           `perm:"admin"`
		UnblockPeer          func(ctx context.Context, p peer.ID) error                           `perm:"admin"`
		ListBlockedPeers     func(context.Context) ([]peer.ID, error)                             `perm:"admin"`
		Protect              func(ctx context.Context, id peer.ID, tag string) error              `perm:"admin"`
		Unprotect            func(ctx context.Context, id peer.ID, tag string) (bool, error)      `perm:"admin"`
		IsProtected          func(ctx context.Context, id peer.ID, tag string) (bool, error)      `perm:"admin"`
		BandwidthStats       func(context.Context) (metrics.Stats, error)                         `perm:"admin"`
		BandwidthForPeer     func(ctx context.Context, id peer.ID) (metrics.Stats, error)         `perm:"admin"`
		BandwidthForProtocol func(ctx context.Context, proto protocol.ID) (metrics.Stats, error)  `perm:"admin"`
		ResourceState        func(context.Context) (rcmgr.ResourceManagerStat, error)             `perm:"admin"`
		Ping                 func(ctx context.Context, peer peer.ID) (time.Duration, error)       `perm:"admin"`
	}
}

func (api *API) Info(ctx context.Context) (peer.AddrInfo, error) {
	return api.Internal.Info(ctx)
}

func (api *API) Network(ctx context.Context) (string, error) {
	return api.Internal.Network(ctx)
}

func (api *API) Peers(ctx context.Context) ([]peer.ID, error) {
	return api.Internal.Peers(ctx)
}

func (api *API) PeerInfo(ctx context.Context, id peer.ID) (peer.AddrInfo, error) {
	return api.Internal.PeerInfo(ctx, id)
}

func (api *API) Connect(ctx context.Context, pi peer.AddrInfo) error {
	return api.Internal.Connect(ctx, pi)
}

func (api *API) ClosePeer(ctx context.Context, id peer.ID) error {
	return api.Internal.ClosePeer(ctx, id)
}

func (api *API) Connectedness(ctx context.Context, id peer.ID) (network.Connectedness, error) {
	return api.Internal.Connectedness(ctx, id)
}

func (api *API) ConnectionState(ctx context.Context, id peer.ID) ([]ConnectionState, error) {
	return api.Internal.ConnectionState(ctx, id)
}

func (api *API) NATStatus(ctx context.Context) (network.Reachability, error) {
	return api.Internal.NATStatus(ctx)
}

func (api *API) BlockPeer(ctx context.Context, p peer.ID) error {
	return api.Internal.BlockPeer(ctx, p)
}

func (api *API) UnblockPeer(ctx context.Context, p peer.ID) error {
	return api.Internal.UnblockPeer(ctx, p)
}

func (api *API) ListBlockedPeers(ctx context.Context) ([]peer.ID, error) {
	return api.Internal.ListBlockedPeers(ctx)
}

func (api *API) Protect(ctx context.Context, id peer.ID, tag string) error {
	return api.Internal.Protect(ctx, id, tag)
}

func (api *API) Unprotect(ctx context.Context, id peer.ID, tag string) (bool, error) {
	return api.Internal.Unprotect(ctx, id, tag)
}

func (api *API) IsProtected(ctx context.Context, id peer.ID, tag string) (bool, error) {
	return api.Internal.IsProtected(ctx, id, tag)
}

func (api *API) BandwidthStats(ctx context.Context) (metrics.Stats, error) {
	return api.Internal.BandwidthStats(ctx)
}

func (api *API) BandwidthForPeer(ctx context.Context, id peer.ID) (metrics.Stats, error) {
	return api.Internal.BandwidthForPeer(ctx, id)
}

func (api *API) BandwidthForProtocol(ctx context.Context, proto protocol.ID) (metrics.Stats, error) {
	return api.Internal.BandwidthForProtocol(ctx, proto)
}

func (api *API) ResourceState(ctx context.Context) (rcmgr.ResourceManagerStat, error) {
	return api.Internal.ResourceState(ctx)
}

func (api *API) Ping(ctx context.Context, peer peer.ID) (time.Duration, error) {
	return api.Internal.Ping(ctx, peer)
}
