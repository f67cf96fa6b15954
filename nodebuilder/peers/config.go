package peers

import (
	"fmt"
	"time"

	"github.com/rotkonetworks/kagome/network"
)

// Config combines the tunables of the peer set maintenance loop.
type Config struct {
	// TargetCount is the number of active peers the node grows toward.
	TargetCount uint
	// SoftLimit is the active peer count above which the oldest peer is
	// evicted once it goes stale.
	SoftLimit uint
	// HardLimit caps the active peer set.
	HardLimit uint
	// PeerTTL is how long an active peer may stay silent before it is
	// considered stale.
	PeerTTL time.Duration
	// AlignPeriod is the delay between maintenance passes.
	AlignPeriod time.Duration
	// DevMode permits running without bootstrap peers for local setups.
	DevMode bool
}

// DefaultConfig returns the peer manager defaults used on public networks.
func DefaultConfig() Config {
	params := network.DefaultParameters()
	return Config{
		TargetCount: params.TargetCount,
		SoftLimit:   params.SoftLimit,
		HardLimit:   params.HardLimit,
		PeerTTL:     params.PeerTTL,
		AlignPeriod: params.AlignPeriod,
	}
}

// parameters converts the config into the network package's parameter set.
func (cfg *Config) parameters() network.Parameters {
	return network.Parameters{
		TargetCount: cfg.TargetCount,
		SoftLimit:   cfg.SoftLimit,
		HardLimit:   cfg.HardLimit,
		PeerTTL:     cfg.PeerTTL,
		AlignPeriod: cfg.AlignPeriod,
	}
}

// Validate performs basic validation of the config.
func (cfg *Config) Validate() error {
	if err := cfg.parameters().Validate(); err != nil {
		return fmt.Errorf("modpeers misconfiguration: %w", err)
	}
	return nil
}
