package nodebuilder

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
)

// MockStore provides an in-memory Store pre-loaded with the given config.
func MockStore(t *testing.T, cfg *Config) Store {
	t.Helper()

	store := NewMemStore()
	require.NoError(t, store.PutConfig(cfg))
	return store
}

// TestNode builds a Private-network node around an in-memory store,
// suitable for lifecycle tests.
func TestNode(t *testing.T, tp node.Type, opts ...fx.Option) *Node {
	return TestNodeWithConfig(t, tp, DefaultConfig(tp), opts...)
}

func TestNodeWithConfig(t *testing.T, tp node.Type, cfg *Config, opts ...fx.Option) *Node {
	// 0 lets the kernel pick free ports, parallel tests must not collide
	cfg.RPC.Port = "0"
	cfg.P2P.ListenAddresses = []string{"/ip4/127.0.0.1/tcp/0"}
	cfg.P2P.NoAnnounceAddresses = []string{}
	// the Private network ships no bootstrappers, so the peer manager must
	// not demand them
	cfg.Peers.DevMode = true

	nd, err := New(tp, p2p.Private, MockStore(t, cfg), opts...)
	require.NoError(t, err)
	return nd
}
