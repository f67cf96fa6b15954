package gateway

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/api/gateway"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

var log = logging.Logger("module/gateway")

func ConstructModule(tp node.Type, cfg *Config) fx.Option {
	// the gateway is optional, the module stays empty unless enabled
	if !cfg.Enabled {
		return fx.Options()
	}
	log.Warn("gateway is enabled, the endpoints are unauthenticated")

	// sanitize config values before constructing module
	cfgErr := cfg.Validate()

	baseComponents := fx.Options(
		fx.Supply(cfg),
		fx.Error(cfgErr),
		fx.Provide(fx.Annotate(
			server,
			fx.OnStart(func(ctx context.Context, server *gateway.Server) error {
				return server.Start(ctx)
			}),
			fx.OnStop(func(ctx context.Context, server *gateway.Server) error {
				return server.Stop(ctx)
			}),
		)),
	)

	switch tp {
	case node.Full, node.Authority:
		return fx.Module(
			"gateway",
			baseComponents,
			fx.Invoke(Handler),
		)
	default:
		panic("invalid node type")
	}
}
