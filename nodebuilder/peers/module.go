package peers

import (
	"context"

	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/network"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

func ConstructModule(tp node.Type, cfg *Config) fx.Option {
	// sanitize config values before constructing module
	cfgErr := cfg.Validate()

	baseComponents := fx.Options(
		fx.Supply(*cfg),
		fx.Error(cfgErr),
		fx.Provide(protocols),
		fx.Provide(streamEngine),
		fx.Provide(discovery),
		fx.Provide(peerIDStore),
		fx.Provide(fx.Annotate(
			newPeerManager,
			fx.OnStart(func(ctx context.Context, manager *network.PeerManager) error {
				return manager.Start(ctx)
			}),
			fx.OnStop(func(ctx context.Context, manager *network.PeerManager) error {
				return manager.Stop(ctx)
			}),
		)),
		fx.Provide(newModule),
		// the manager must run even when nothing pulls it through the API
		fx.Invoke(func(*network.PeerManager) {}),
	)

	switch tp {
	case node.Full, node.Authority:
		return fx.Module(
			"peers",
			baseComponents,
		)
	default:
		panic("invalid node type")
	}
}
