package nodebuilder

import (
	"context"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/raulk/go-watchdog"
	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

// The watchdog hooks into global runtime state, it must start only once even
// when tests run several Node instances inside one process.
var onceWatchdog sync.Once

var logWatchdog = logging.Logger("watchdog")

// invokeWatchdog arms a memory watchdog that forces GC runs at rising heap
// watermarks to head off OOM kills. Past 90% usage it also drops heap
// profiles into the node store for post-mortem digging.
func invokeWatchdog(lc fx.Lifecycle, path node.StorePath) (errOut error) {
	onceWatchdog.Do(func() {
		watchdog.Logger = logWatchdog
		watchdog.HeapProfileDir = string(path)
		watchdog.HeapProfileMaxCaptures = 10
		watchdog.HeapProfileThreshold = 0.9

		policy := watchdog.NewWatermarkPolicy(0.50, 0.60, 0.70, 0.85, 0.90, 0.925, 0.95)
		err, stop := watchdog.SystemDriven(0, time.Second*5, policy)
		if err != nil {
			errOut = err
			return
		}

		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				stop()
				return nil
			},
		})
	})
	return
}
