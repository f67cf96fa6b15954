package peers

import (
	"context"
	"fmt"

	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/rotkonetworks/kagome/network"
)

var _ Module = (*API)(nil)

// Info summarizes the peer set against its configured limits.
type Info struct {
	Active    int  `json:"active"`
	Target    uint `json:"target"`
	SoftLimit uint `json:"softLimit"`
	HardLimit uint `json:"hardLimit"`
	Passive   bool `json:"passive"`
}

// PeerInfo describes one active peer and its reported chain position.
type PeerInfo struct {
	PeerID     peer.ID           `json:"peerId"`
	Roles      network.Roles     `json:"roles"`
	BestHash   network.BlockHash `json:"bestHash"`
	BestNumber uint64            `json:"bestNumber"`
}

// Health is the liveness summary served to operators.
type Health struct {
	Peers           int  `json:"peers"`
	IsSyncing       bool `json:"isSyncing"`
	ShouldHavePeers bool `json:"shouldHavePeers"`
}

// Module represents all accessible methods related to the node's peer set.
type Module interface {
	// Info returns the state of the peer set and its configured limits.
	Info(context.Context) (Info, error)
	// Peers lists every active peer together with its reported chain position.
	Peers(context.Context) ([]PeerInfo, error)
	// PeerStatus returns the handshake status the given active peer reported
	// last. Errors for peers that are not active.
	PeerStatus(ctx context.Context, id peer.ID) (network.Status, error)
	// Count reports the number of active peers.
	Count(context.Context) (int, error)
	// Health reports whether the node is sufficiently connected.
	Health(context.Context) (Health, error)
	// Connect dials the given peer and grants it protocol streams on success.
	Connect(ctx context.Context, pi peer.AddrInfo) error
}

// module provides the peer set surface over the peer manager.
type module struct {
	manager *network.PeerManager
	cfg     Config
}

func newModule(manager *network.PeerManager, cfg Config) Module {
	return &module{
		manager: manager,
		cfg:     cfg,
	}
}

func (m *module) Info(context.Context) (Info, error) {
	return Info{
		Active:    m.manager.ActivePeersCount(),
		Target:    m.cfg.TargetCount,
		SoftLimit: m.cfg.SoftLimit,
		HardLimit: m.cfg.HardLimit,
		Passive:   m.manager.Passive(),
	}, nil
}

func (m *module) Peers(context.Context) ([]PeerInfo, error) {
	states := m.manager.Peers()
	infos := make([]PeerInfo, len(states))
	for i, st := range states {
		infos[i] = PeerInfo{
			PeerID:     st.ID,
			Roles:      st.Status.Roles,
			BestHash:   st.Status.BestBlock.Hash,
			BestNumber: st.Status.BestBlock.Number,
		}
	}
	return infos, nil
}

func (m *module) PeerStatus(_ context.Context, id peer.ID) (network.Status, error) {
	status, ok := m.manager.PeerStatus(id)
	if !ok {
		return network.Status{}, fmt.Errorf("peers: peer %s is not active", id)
	}
	return status, nil
}

func (m *module) Count(context.Context) (int, error) {
	return m.manager.ActivePeersCount(), nil
}

func (m *module) Health(context.Context) (Health, error) {
	return Health{
		Peers: m.manager.ActivePeersCount(),
		// the sync engine owns major sync detection once it lands
		IsSyncing:       false,
		ShouldHavePeers: !m.manager.Passive(),
	}, nil
}

func (m *module) Connect(_ context.Context, pi peer.AddrInfo) error {
	m.manager.ConnectTo(pi)
	return nil
}

// API carries Module over the RPC boundary.
type API struct {
	Internal struct {
		Info       func(context.Context) (Info, error)                            `perm:"read"`
		Peers      func(context.Context) ([]PeerInfo, error)                      `perm:"read"`
		PeerStatus func(ctx context.Context, id peer.ID) (network.Status, error)  `perm:"read"`
		Count      func(context.Context) (int, error)                             `perm:"read"`
		Health     func(context.Context) (Health, error)                          `perm:"read"`
		Connect    func(ctx context.Context, pi peer.AddrInfo) error              `perm:"admin"`
	}
}

func (api *API) Info(ctx context.Context) (Info, error) {
	return api.Internal.Info(ctx)
}

func (api *API) Peers(ctx context.Context) ([]PeerInfo, error) {
	return api.Internal.Peers(ctx)
}

func (api *API) PeerStatus(ctx context.Context, id peer.ID) (network.Status, error) {
	return api.Internal.PeerStatus(ctx, id)
}

func (api *API) Count(ctx context.Context) (int, error) {
	return api.Internal.Count(ctx)
}

func (api *API) Health(ctx context.Context) (Health, error) {
	return api.Internal.Health(ctx)
}

func (api *API) Connect(ctx context.Context, pi peer.AddrInfo) error {
	return api.Internal.Connect(ctx, pi)
}
