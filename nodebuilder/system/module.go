package system

import (
	"go.uber.org/fx"
)

func ConstructModule() fx.Option {
	return fx.Module(
		"system",
		fx.Provide(newModule),
	)
}
