// Package swamp links multiple in-process kagome nodes into a private
// network for integration tests. Nodes listen on real localhost sockets,
// so test cases exercise the full dial, identify and stream grant path
// instead of a mocked transport.
package swamp

import (
	"context"
	"testing"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/logs"
	"github.com/rotkonetworks/kagome/nodebuilder"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
)

const (
	// DefaultTestTimeout bounds a single integration test case.
	DefaultTestTimeout = time.Minute * 2
	// DefaultPollInterval is how often wait helpers re-check a condition.
	DefaultPollInterval = time.Millisecond * 50
)

// Swamp holds the nodes of an in-process private network, grouped by type.
type Swamp struct {
	t              *testing.T
	FullNodes      []*nodebuilder.Node
	AuthorityNodes []*nodebuilder.Node
}

// NewSwamp creates an empty Swamp. Nodes are added with the New*Node
// methods and stopped automatically when the test finishes.
func NewSwamp(t *testing.T) *Swamp {
	if testing.Verbose() {
		logs.SetDebugLogging()
	}
	return &Swamp{t: t}
}

// DefaultTestConfig tailors the node defaults to an in-process network:
// random localhost ports, dev mode, and a short alignment period so tests
// observe maintenance passes without waiting for production timers.
func DefaultTestConfig(tp node.Type) *nodebuilder.Config {
	cfg := nodebuilder.DefaultConfig(tp)
	cfg.RPC.Port = "0"
	cfg.P2P.ListenAddresses = []string{"/ip4/127.0.0.1/tcp/0"}
	cfg.P2P.NoAnnounceAddresses = []string{}
	cfg.Peers.DevMode = true
	cfg.Peers.AlignPeriod = 100 * time.Millisecond
	return cfg
}

// NewFullNode creates a Full node with the default test config.
func (s *Swamp) NewFullNode(options ...fx.Option) *nodebuilder.Node {
	return s.NewNodeWithConfig(node.Full, DefaultTestConfig(node.Full), options...)
}

// NewAuthorityNode creates an Authority node with the default test config.
func (s *Swamp) NewAuthorityNode(options ...fx.Option) *nodebuilder.Node {
	return s.NewNodeWithConfig(node.Authority, DefaultTestConfig(node.Authority), options...)
}

// NewNodeWithConfig creates a node of the given type over an in-memory
// store and records it in the swamp's node slice for its type.
func (s *Swamp) NewNodeWithConfig(tp node.Type, cfg *nodebuilder.Config, options ...fx.Option) *nodebuilder.Node {
	store := nodebuilder.MockStore(s.t, cfg)
	nd, err := nodebuilder.New(tp, p2p.Private, store, options...)
	require.NoError(s.t, err)

	switch tp {
	case node.Full:
		s.FullNodes = append(s.FullNodes, nd)
	case node.Authority:
		s.AuthorityNodes = append(s.AuthorityNodes, nd)
	}
	return nd
}

// StartNode starts the node and registers a stop with the test cleanup,
// so test cases do not stop nodes manually.
func (s *Swamp) StartNode(ctx context.Context, nd *nodebuilder.Node) {
	require.NoError(s.t, nd.Start(ctx))
	s.t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		require.NoError(s.t, nd.Stop(ctx))
	})
}

// AddrInfo returns the node's dialable address info. Valid only after the
// node has started, as listen ports are allocated on start.
func AddrInfo(nd *nodebuilder.Node) peer.AddrInfo {
	return peer.AddrInfo{ID: nd.Host.ID(), Addrs: nd.Host.Addrs()}
}

// Bootstrappers overrides the network's bootstrap peers with the given
// started nodes, turning the consuming node's peer maintenance active.
func Bootstrappers(nodes ...*nodebuilder.Node) fx.Option {
	bs := make(p2p.Bootstrappers, 0, len(nodes))
	for _, nd := range nodes {
		bs = append(bs, AddrInfo(nd))
	}
	return fx.Replace(bs)
}

// Connect dials from node a to node b through the peers module and blocks
// until both sides report the other as an active peer.
func (s *Swamp) Connect(ctx context.Context, a, b *nodebuilder.Node) {
	require.NoError(s.t, a.PeersServ.Connect(ctx, AddrInfo(b)))
	s.WaitPeerActive(a, b.Host.ID())
	s.WaitPeerActive(b, a.Host.ID())
}

// Disconnect force-closes every transport connection between the two
// nodes. Streams die with the connections, so the next alignment pass on
// a non-passive node sweeps the peer out.
func (s *Swamp) Disconnect(a, b *nodebuilder.Node) {
	require.NoError(s.t, a.Host.Network().ClosePeer(b.Host.ID()))
}

// WaitActivePeers blocks until the node reports the given number of
// active peers.
func (s *Swamp) WaitActivePeers(nd *nodebuilder.Node, count int) {
	require.Eventually(s.t, func() bool {
		return nd.PeerManager.ActivePeersCount() == count
	}, DefaultTestTimeout, DefaultPollInterval)
}

// WaitPeerActive blocks until p joins the node's active set.
func (s *Swamp) WaitPeerActive(nd *nodebuilder.Node, p peer.ID) {
	require.Eventually(s.t, func() bool {
		_, ok := nd.PeerManager.PeerStatus(p)
		return ok
	}, DefaultTestTimeout, DefaultPollInterval)
}
