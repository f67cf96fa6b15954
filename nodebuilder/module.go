package nodebuilder

import (
	"context"

	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/nodebuilder/gateway"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
	"github.com/rotkonetworks/kagome/nodebuilder/peers"
	"github.com/rotkonetworks/kagome/nodebuilder/rpc"
	"github.com/rotkonetworks/kagome/nodebuilder/sync"
	"github.com/rotkonetworks/kagome/nodebuilder/system"
)

// ConstructModule assembles the dependency graph of a Node out of its
// subsystem modules. Everything the subsystems share, the store handles,
// the bootstrappers and the lifecycle-bound context, is supplied here.
func ConstructModule(tp node.Type, network p2p.Network, cfg *Config, store Store) fx.Option {
	// open the keystore up front so a broken one fails construction
	// instead of the first component that needs a key
	if _, err := store.Keystore(); err != nil {
		return fx.Error(err)
	}

	base := fx.Options(
		fx.Supply(tp, network, cfg),
		fx.Supply(node.StorePath(store.Path())),
		fx.Provide(store.Keystore),
		fx.Provide(store.Datastore),
		fx.Provide(p2p.BootstrappersFor),
		// a context that closes when the app stops, for components
		// running outside any single lifecycle hook
		fx.Provide(func(lc fx.Lifecycle) context.Context {
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
			return ctx
		}),
		fx.Invoke(invokeWatchdog),
	)

	return fx.Module(
		"node",
		base,
		p2p.ConstructModule(tp, &cfg.P2P),
		sync.ConstructModule(),
		peers.ConstructModule(tp, &cfg.Peers),
		system.ConstructModule(),
		node.ConstructModule(tp),
		rpc.ConstructModule(tp, &cfg.RPC),
		gateway.ConstructModule(tp, &cfg.Gateway),
	)
}
