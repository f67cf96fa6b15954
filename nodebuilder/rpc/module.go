package rpc

import (
	"context"

	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/api/rpc"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

// ConstructModule wires the JSON-RPC server and hangs every module API off
// it. Both node types expose the same surface, an Authority differs only in
// the components backing the handlers.
func ConstructModule(tp node.Type, cfg *Config) fx.Option {
	switch tp {
	case node.Full, node.Authority:
	default:
		panic("rpc: invalid node type")
	}

	// sanitize config values before constructing module
	cfgErr := cfg.Validate()
	if cfg.SkipAuth {
		log.Warn("RPC authentication is disabled, all endpoints are open")
	}

	return fx.Module(
		"rpc",
		fx.Supply(cfg),
		fx.Error(cfgErr),
		fx.Provide(fx.Annotate(
			server,
			fx.OnStart(func(ctx context.Context, server *rpc.Server) error {
				return server.Start(ctx)
			}),
			fx.OnStop(func(ctx context.Context, server *rpc.Server) error {
				return server.Stop(ctx)
			}),
		)),
		fx.Invoke(registerEndpoints),
	)
}
