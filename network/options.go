package network

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
)

// Parameters govern peer-set maintenance.
type Parameters struct {
	// TargetCount is the number of active peers the node grows toward.
	TargetCount uint
	// SoftLimit is the active peer count above which the oldest peer is
	// evicted once it falls outside PeerTTL.
	SoftLimit uint
	// HardLimit caps the active peer set. Above it the oldest peers are
	// evicted unconditionally and promotions are withheld.
	HardLimit uint
	// PeerTTL is how long an active peer may stay silent before it is
	// considered stale.
	PeerTTL time.Duration
	// AlignPeriod is the delay between maintenance passes.
	AlignPeriod time.Duration
}

// DefaultParameters returns the parameters used on public networks.
func DefaultParameters() Parameters {
	return Parameters{
		TargetCount: 25,
		SoftLimit:   40,
		HardLimit:   50,
		PeerTTL:     10 * time.Minute,
		AlignPeriod: 15 * time.Second,
	}
}

const errSuffix = "value should be positive and non-zero"

func (p Parameters) Validate() error {
	if p.HardLimit == 0 {
		return fmt.Errorf("network: invalid hard limit: %v, %s", p.HardLimit, errSuffix)
	}
	if p.PeerTTL <= 0 {
		return fmt.Errorf("network: invalid peer ttl: %v, %s", p.PeerTTL, errSuffix)
	}
	if p.AlignPeriod <= 0 {
		return fmt.Errorf("network: invalid align period: %v, %s", p.AlignPeriod, errSuffix)
	}
	if p.TargetCount > p.SoftLimit || p.SoftLimit > p.HardLimit {
		return fmt.Errorf("network: limits must be ordered: target %d <= soft %d <= hard %d",
			p.TargetCount, p.SoftLimit, p.HardLimit)
	}
	return nil
}

// Option configures a PeerManager.
type Option func(*PeerManager)

// WithClock replaces the wall clock, mainly to steer timers and timestamps
// in tests.
func WithClock(c clock.Clock) Option {
	return func(m *PeerManager) {
		m.clock = c
	}
}

// WithPeerIDStore persists the active peer set across restarts: previously
// good peers are enqueued on start and the current active set is saved on
// stop.
func WithPeerIDStore(ps PeerIDStore) Option {
	return func(m *PeerManager) {
		m.pidstore = ps
	}
}
