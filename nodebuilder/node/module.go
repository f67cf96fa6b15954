package node

import (
	"go.uber.org/fx"
)

// ConstructModule wires the admin API of the node: build info, auth token
// minting and log level control. The node Type itself is supplied app-wide
// by the caller.
func ConstructModule(tp Type) fx.Option {
	switch tp {
	case Full, Authority:
	default:
		panic("node: invalid node type")
	}

	return fx.Module(
		"node",
		fx.Provide(secret),
		fx.Provide(newModule),
	)
}
