package system

import (
	"context"

	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
	"github.com/rotkonetworks/kagome/nodebuilder/peers"
)

var _ Module = (*API)(nil)

// NetworkState is a brief snapshot of the host's view of the network.
type NetworkState struct {
	PeerID            peer.ID   `json:"peerId"`
	ListenedAddresses []string  `json:"listenedAddresses"`
	ConnectedPeers    []peer.ID `json:"connectedPeers"`
}

// Module mirrors the system_* RPC surface substrate-based chains expose to
// operators and tooling.
type Module interface {
	// Name returns the implementation name of the node.
	Name(context.Context) (string, error)
	// Version returns the version of the running binary.
	Version(context.Context) (string, error)
	// Chain returns the name of the network the node is running on.
	Chain(context.Context) (string, error)
	// NodeRoles returns the roles the node runs with.
	NodeRoles(context.Context) ([]string, error)
	// Health reports whether the node is sufficiently connected.
	Health(context.Context) (peers.Health, error)
	// Peers lists the currently active peers and their chain positions.
	Peers(context.Context) ([]peers.PeerInfo, error)
	// LocalPeerID returns the peer ID of the host.
	LocalPeerID(context.Context) (peer.ID, error)
	// LocalListenAddresses returns the multiaddresses the host listens on,
	// qualified with the host's peer ID.
	LocalListenAddresses(context.Context) ([]string, error)
	// NetworkState returns a snapshot of the host's network state.
	NetworkState(context.Context) (NetworkState, error)
}

type module struct {
	host    host.Host
	peers   peers.Module
	tp      node.Type
	network p2p.Network
}

func newModule(host host.Host, peersMod peers.Module, tp node.Type, network p2p.Network) Module {
	return &module{
		host:    host,
		peers:   peersMod,
		tp:      tp,
		network: network,
	}
}

func (m *module) Name(context.Context) (string, error) {
	return "kagome", nil
}

func (m *module) Version(context.Context) (string, error) {
	return node.GetBuildInfo().GetSemanticVersion(), nil
}

func (m *module) Chain(context.Context) (string, error) {
	return m.network.String(), nil
}

func (m *module) NodeRoles(context.Context) ([]string, error) {
	return []string{m.tp.String()}, nil
}

func (m *module) Health(ctx context.Context) (peers.Health, error) {
	return m.peers.Health(ctx)
}

func (m *module) Peers(ctx context.Context) ([]peers.PeerInfo, error) {
	return m.peers.Peers(ctx)
}

func (m *module) LocalPeerID(context.Context) (peer.ID, error) {
	return m.host.ID(), nil
}

func (m *module) LocalListenAddresses(context.Context) ([]string, error) {
	addrs, err := peer.AddrInfoToP2pAddrs(host.InfoFromHost(m.host))
	if err != nil {
		return nil, err
	}

	out := make([]string, len(addrs))
	for i, addr := range addrs {
		out[i] = addr.String()
	}
	return out, nil
}

func (m *module) NetworkState(ctx context.Context) (NetworkState, error) {
	addrs, err := m.LocalListenAddresses(ctx)
	if err != nil {
		return NetworkState{}, err
	}

	return NetworkState{
		PeerID:            m.host.ID(),
		ListenedAddresses: addrs,
		ConnectedPeers:    m.host.Network().Peers(),
	}, nil
}

// API carries Module over the RPC boundary.
type API struct {
	Internal struct {
		Name                 func(context.Context) (string, error)       `perm:"read"`
		Version              func(context.Context) (string, error)       `perm:"read"`
		Chain                func(context.Context) (string, error)       `perm:"read"`
		NodeRoles            func(context.Context) ([]string, error)     `perm:"read"`
		Health               func(context.Context) (peers.Health, error) `perm:"read"`
		Peers                func(context.Context) ([]peers.PeerInfo, error) `perm:"read"`
		LocalPeerID          func(context.Context) (peer.ID, error)      `perm:"read"`
		LocalListenAddresses func(context.Context) ([]string, error)     `perm:"read"`
		NetworkState         func(context.Context) (NetworkState, error) `perm:"admin"`
	}
}

func (api *API) Name(ctx context.Context) (string, error) {
	return api.Internal.Name(ctx)
}

func (api *API) Version(ctx context.Context) (string, error) {
	return api.Internal.Version(ctx)
}

func (api *API) Chain(ctx context.Context) (string, error) {
	return api.Internal.Chain(ctx)
}

func (api *API) NodeRoles(ctx context.Context) ([]string, error) {
	return api.Internal.NodeRoles(ctx)
}

func (api *API) Health(ctx context.Context) (peers.Health, error) {
	return api.Internal.Health(ctx)
}

func (api *API) Peers(ctx context.Context) ([]peers.PeerInfo, error) {
	return api.Internal.Peers(ctx)
}

func (api *API) LocalPeerID(ctx context.Context) (peer.ID, error) {
	return api.Internal.LocalPeerID(ctx)
}

func (api *API) LocalListenAddresses(ctx context.Context) ([]string, error) {
	return api.Internal.LocalListenAddresses(ctx)
}

func (api *API) NetworkState(ctx context.Context) (NetworkState, error) {
	return api.Internal.NetworkState(ctx)
}
