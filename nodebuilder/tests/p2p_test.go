//go:build p2p || integration

package tests

import (
	"context"
	"testing"

	libnet "github.com/libp2p/go-libp2p/core/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotkonetworks/kagome/network"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/tests/swamp"
)

/*
Test-Case: Connect promotes the peer on both sides
Steps:
- Create a Full and an Authority node
- Start both
- Connect the Full node to the Authority node through the peers module
- Check that each side reports the other as an active peer
*/
func TestConnectPromotion(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), swamp.DefaultTestTimeout)
	t.Cleanup(cancel)

	sw := swamp.NewSwamp(t)
	full := sw.NewFullNode()
	auth := sw.NewAuthorityNode()

	sw.StartNode(ctx, full)
	sw.StartNode(ctx, auth)

	sw.Connect(ctx, full, auth)

	require.Equal(t, 1, full.PeerManager.ActivePeersCount())
	require.Equal(t, 1, auth.PeerManager.ActivePeersCount())

	// no handshake has been exchanged yet, so the status is the zero value
	st, ok := full.PeerManager.PeerStatus(auth.Host.ID())
	require.True(t, ok)
	assert.Equal(t, network.Status{}, st)
}

/*
Test-Case: A node with bootstrap peers grows its peer set on its own
Steps:
- Create and start a seed node
- Create a second node with the seed as its only bootstrap peer
- Start it and wait without connecting manually
- Check that the alignment loop dialed the seed and promoted it
*/
func TestBootstrapGrowth(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), swamp.DefaultTestTimeout)
	t.Cleanup(cancel)

	sw := swamp.NewSwamp(t)
	seed := sw.NewFullNode()
	sw.StartNode(ctx, seed)

	nd := sw.NewFullNode(swamp.Bootstrappers(seed))
	sw.StartNode(ctx, nd)

	require.False(t, nd.PeerManager.Passive())
	sw.WaitPeerActive(nd, seed.Host.ID())
	sw.WaitPeerActive(seed, nd.Host.ID())
}

/*
Test-Case: A dropped connection is swept and re-established
Steps:
- Grow a node from its bootstrap seed
- Force-close the transport connection between the two
- Check that the node sweeps the dead peer and dials the seed again
*/
func TestReconnectAfterDrop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), swamp.DefaultTestTimeout)
	t.Cleanup(cancel)

	sw := swamp.NewSwamp(t)
	seed := sw.NewFullNode()
	sw.StartNode(ctx, seed)

	nd := sw.NewFullNode(swamp.Bootstrappers(seed))
	sw.StartNode(ctx, nd)
	sw.WaitPeerActive(nd, seed.Host.ID())

	conns := nd.Host.Network().ConnsToPeer(seed.Host.ID())
	require.NotEmpty(t, conns)

	sw.Disconnect(nd, seed)
	require.True(t, conns[0].IsClosed())

	require.Eventually(t, func() bool {
		fresh := nd.Host.Network().ConnsToPeer(seed.Host.ID())
		return len(fresh) > 0 && !fresh[0].IsClosed()
	}, swamp.DefaultTestTimeout, swamp.DefaultPollInterval)
	sw.WaitPeerActive(nd, seed.Host.ID())
}

/*
Test-Case: The hard limit withholds promotion but keeps the transport
Steps:
- Create a node whose peer limits are all one
- Fill its single active slot with a first peer
- Connect a second peer to it
- Check that the second peer got a connection but no active slot
*/
func TestHardLimitWithholdsPromotion(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), swamp.DefaultTestTimeout)
	t.Cleanup(cancel)

	sw := swamp.NewSwamp(t)

	cfg := swamp.DefaultTestConfig(node.Full)
	cfg.Peers.TargetCount = 1
	cfg.Peers.SoftLimit = 1
	cfg.Peers.HardLimit = 1
	limited := sw.NewNodeWithConfig(node.Full, cfg)

	first := sw.NewFullNode()
	second := sw.NewFullNode()

	sw.StartNode(ctx, limited)
	sw.StartNode(ctx, first)
	sw.StartNode(ctx, second)

	sw.Connect(ctx, limited, first)

	require.NoError(t, second.PeersServ.Connect(ctx, swamp.AddrInfo(limited)))
	sw.WaitPeerActive(second, limited.Host.ID())

	// the limited node keeps the transport open without granting a slot,
	// so the peer stays reachable for a later alignment pass
	assert.Equal(t, 1, limited.PeerManager.ActivePeersCount())
	_, ok := limited.PeerManager.PeerStatus(second.Host.ID())
	assert.False(t, ok)
	assert.Equal(t, libnet.Connected, limited.Host.Network().Connectedness(second.Host.ID()))
}
