package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotkonetworks/kagome/api/rpc/client"
	"github.com/rotkonetworks/kagome/api/rpc/perms"
	"github.com/rotkonetworks/kagome/libs/authtoken"
	"github.com/rotkonetworks/kagome/nodebuilder"
	"github.com/rotkonetworks/kagome/nodebuilder/tests/swamp"
)

func getAdminClient(ctx context.Context, nd *nodebuilder.Node, t *testing.T) *client.Client {
	t.Helper()

	signer := nd.AdminSigner
	jwt, err := authtoken.NewSignedJWT(signer, perms.AllPerms, time.Minute)
	require.NoError(t, err)

	cli, err := client.NewClient(ctx, "http://"+nd.RPCServer.ListenAddr(), jwt)
	require.NoError(t, err)

	return cli
}

/*
Test-Case: The RPC surface reflects the live peer set
Steps:
- Start a Full and an Authority node
- Connect them over the Full node's RPC, not by reaching into it
- Check the peer listing, count, status and health endpoints
*/
func TestRPCPeerSurface(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), swamp.DefaultTestTimeout)
	t.Cleanup(cancel)

	sw := swamp.NewSwamp(t)
	full := sw.NewFullNode()
	auth := sw.NewAuthorityNode()

	sw.StartNode(ctx, full)
	sw.StartNode(ctx, auth)

	cli := getAdminClient(ctx, full, t)
	defer cli.Close()

	count, err := cli.Peers.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	err = cli.Peers.Connect(ctx, swamp.AddrInfo(auth))
	require.NoError(t, err)
	sw.WaitPeerActive(full, auth.Host.ID())

	count, err = cli.Peers.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	peers, err := cli.Peers.Peers(ctx)
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, auth.Host.ID(), peers[0].PeerID)

	st, err := cli.Peers.PeerStatus(ctx, auth.Host.ID())
	require.NoError(t, err)
	assert.Zero(t, st.BestBlock.Number)

	health, err := cli.Peers.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, health.Peers)
	assert.False(t, health.IsSyncing)
	// without bootstrap peers the node maintains nothing on its own
	assert.False(t, health.ShouldHavePeers)

	info, err := cli.Peers.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Active)
	assert.True(t, info.Passive)
}
