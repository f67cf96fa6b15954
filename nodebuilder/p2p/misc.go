package p2p

import (
	"time"

	"github.com/ipfs/go-datastore"
	"github.com/libp2p/go-libp2p/core/connmgr"
	"github.com/libp2p/go-libp2p/core/peerstore"
	"github.com/libp2p/go-libp2p/p2p/host/peerstore/pstoremem"
	"github.com/libp2p/go-libp2p/p2p/net/conngater"
	connmgri "github.com/libp2p/go-libp2p/p2p/net/connmgr"

	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

// connManagerConfig configures connection manager.
type connManagerConfig struct {
	// Low and High are watermarks governing the number of connections that'll be maintained.
	Low, High int
	// GracePeriod is the amount of time a newly opened connection is given before it becomes subject
	// to pruning.
	GracePeriod time.Duration
}

// defaultConnManagerConfig returns defaults for ConnManagerConfig.
func defaultConnManagerConfig(tp node.Type) connManagerConfig {
	switch tp {
	case node.Authority:
		return connManagerConfig{
			Low:         100,
			High:        200,
			GracePeriod: time.Minute,
		}
	default:
		return connManagerConfig{
			Low:         50,
			High:        100,
			GracePeriod: time.Minute,
		}
	}
}

// connectionManager provides a constructor for ConnectionManager.
func connectionManager(cfg *Config, bpeers Bootstrappers) (connmgr.ConnManager, error) {
	fpeers, err := cfg.mutualPeers()
	if err != nil {
		return nil, err
	}
	cm, err := connmgri.NewConnManager(
		cfg.ConnManager.Low,
		cfg.ConnManager.High,
		connmgri.WithGracePeriod(cfg.ConnManager.GracePeriod),
	)
	if err != nil {
		return nil, err
	}
	for _, info := range fpeers {
		cm.Protect(info.ID, "protected-mutual")
	}
	for _, info := range bpeers {
		cm.Protect(info.ID, "protected-bootstrap")
	}

	return cm, nil
}

// connectionGater constructs a BasicConnectionGater.
func connectionGater(ds datastore.Batching) (*conngater.BasicConnectionGater, error) {
	return conngater.NewBasicConnectionGater(ds)
}

// peerStore constructs an in-memory PeerStore.
func peerStore() (peerstore.Peerstore, error) {
	return pstoremem.NewPeerstore()
}
