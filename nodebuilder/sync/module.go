package sync

import (
	"go.uber.org/fx"

	chainsync "github.com/rotkonetworks/kagome/sync"
)

// ConstructModule provides the per-peer sync client set. The block request
// machinery and the peer manager share it.
func ConstructModule() fx.Option {
	return fx.Module(
		"sync",
		fx.Provide(chainsync.NewClients),
	)
}
