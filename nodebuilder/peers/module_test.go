package peers

import (
	"context"
	"testing"
	"time"

	"github.com/ipfs/go-datastore"
	ds_sync "github.com/ipfs/go-datastore/sync"
	"github.com/libp2p/go-libp2p/core/peer"
	mocknet "github.com/libp2p/go-libp2p/p2p/net/mock"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotkonetworks/kagome/network"
	modp2p "github.com/rotkonetworks/kagome/nodebuilder/p2p"
	chainsync "github.com/rotkonetworks/kagome/sync"
)

func TestProtocolsDerivation(t *testing.T) {
	// live networks namespace their protocols by genesis hash
	protos, err := protocols(modp2p.Polkadot)
	require.NoError(t, err)
	gen, err := modp2p.GenesisFor(modp2p.Polkadot)
	require.NoError(t, err)
	assert.Contains(t, string(protos.BlockAnnounce), gen)

	// a private network has no genesis and falls back to its name
	protos, err = protocols(modp2p.Private)
	require.NoError(t, err)
	assert.Equal(t, "/private/block-announces/1", string(protos.BlockAnnounce))

	_, err = protocols(modp2p.Network("mainnet"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.HardLimit = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.TargetCount = cfg.SoftLimit + 1
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.AlignPeriod = 0
	require.Error(t, cfg.Validate())
}

func TestFlags(t *testing.T) {
	cfg := DefaultConfig()

	cmd := &cobra.Command{}
	cmd.Flags().AddFlagSet(Flags())
	require.NoError(t, cmd.Flags().Set(peersTargetFlag, "5"))
	require.NoError(t, cmd.Flags().Set(peersTTLFlag, "1m"))
	require.NoError(t, cmd.Flags().Set(peersDevFlag, "true"))

	require.NoError(t, ParseFlags(cmd, &cfg))
	assert.Equal(t, uint(5), cfg.TargetCount)
	assert.Equal(t, time.Minute, cfg.PeerTTL)
	assert.True(t, cfg.DevMode)
	// untouched flags keep the config's values
	assert.Equal(t, DefaultConfig().SoftLimit, cfg.SoftLimit)
	assert.Equal(t, DefaultConfig().AlignPeriod, cfg.AlignPeriod)
}

func TestNewPeerManagerRequiresBootstrappers(t *testing.T) {
	net, err := mocknet.FullMeshConnected(1)
	require.NoError(t, err)
	host := net.Hosts()[0]

	cfg := DefaultConfig()
	_, err = newPeerManager(
		cfg,
		host,
		&discoveryStub{},
		network.NewStreamEngine(host),
		chainsync.NewClients(),
		network.NewProtocols("private"),
		nil,
		testPeerIDStore(t),
	)
	require.ErrorIs(t, err, ErrNoBootstrappers)

	cfg.DevMode = true
	manager, err := newPeerManager(
		cfg,
		host,
		&discoveryStub{},
		network.NewStreamEngine(host),
		chainsync.NewClients(),
		network.NewProtocols("private"),
		nil,
		testPeerIDStore(t),
	)
	require.NoError(t, err)
	require.True(t, manager.Passive())
}

func testPeerIDStore(t *testing.T) network.PeerIDStore {
	t.Helper()
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())
	pids, err := peerIDStore(context.Background(), ds)
	require.NoError(t, err)
	return pids
}

type discoveryStub struct{}

func (d *discoveryStub) Start(context.Context) error { return nil }

func (d *discoveryStub) Stop(context.Context) error { return nil }

func (d *discoveryStub) AddPeer(context.Context, peer.AddrInfo, bool) error { return nil }

func (d *discoveryStub) OnPeerDiscovered(func(peer.ID)) {}
