package peers

import (
	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/network"
)

// WithMetrics enables metrics collection on the peer manager.
func WithMetrics() fx.Option {
	return fx.Invoke(func(m *network.PeerManager) error {
		return m.WithMetrics()
	})
}
