package nodebuilder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotkonetworks/kagome/api/rpc/client"
	"github.com/rotkonetworks/kagome/api/rpc/perms"
	"github.com/rotkonetworks/kagome/libs/authtoken"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

func TestRPCCallsUnderlyingNode(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)

	nd := TestNode(t, node.Full)
	err := nd.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		err := nd.Stop(ctx)
		require.NoError(t, err)
	})

	token, err := authtoken.NewSignedJWT(nd.AdminSigner, perms.AllPerms, time.Minute)
	require.NoError(t, err)

	cli, err := client.NewClient(ctx, "http://"+nd.RPCServer.ListenAddr(), token)
	require.NoError(t, err)
	t.Cleanup(cli.Close)

	info, err := cli.Node.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, node.APIVersion, info.APIVersion)
	assert.Equal(t, node.Full, info.Type)

	chain, err := cli.System.Chain(ctx)
	require.NoError(t, err)
	assert.Equal(t, "private", chain)

	id, err := cli.System.LocalPeerID(ctx)
	require.NoError(t, err)
	assert.Equal(t, nd.Host.ID(), id)

	count, err := cli.Peers.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	peersInfo, err := cli.Peers.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, nd.Config.Peers.TargetCount, peersInfo.Target)
	assert.True(t, peersInfo.Passive)
}

func TestRPCPermissions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)

	nd := TestNode(t, node.Full)
	err := nd.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		err := nd.Stop(ctx)
		require.NoError(t, err)
	})

	token, err := authtoken.NewSignedJWT(nd.AdminSigner, perms.ReadPerms, time.Minute)
	require.NoError(t, err)

	cli, err := client.NewClient(ctx, "http://"+nd.RPCServer.ListenAddr(), token)
	require.NoError(t, err)
	t.Cleanup(cli.Close)

	// read methods are served for a read token
	_, err = cli.System.Chain(ctx)
	require.NoError(t, err)

	// admin methods are not
	_, err = cli.Node.Info(ctx)
	require.Error(t, err)
	_, err = cli.System.NetworkState(ctx)
	require.Error(t, err)
}
