package peers

import (
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var (
	peersTargetFlag      = "peers.target"
	peersSoftLimitFlag   = "peers.soft-limit"
	peersHardLimitFlag   = "peers.hard-limit"
	peersTTLFlag         = "peers.ttl"
	peersAlignPeriodFlag = "peers.align-period"
	peersDevFlag         = "peers.dev"
)

// Flags gives a set of peer manager flags.
func Flags() *flag.FlagSet {
	flags := &flag.FlagSet{}
	def := DefaultConfig()

	flags.Uint(
		peersTargetFlag,
		def.TargetCount,
		"Number of active peers the node grows toward",
	)
	flags.Uint(
		peersSoftLimitFlag,
		def.SoftLimit,
		"Active peer count above which the oldest stale peer is evicted",
	)
	flags.Uint(
		peersHardLimitFlag,
		def.HardLimit,
		"Hard cap on the active peer set",
	)
	flags.Duration(
		peersTTLFlag,
		def.PeerTTL,
		"How long an active peer may stay silent before it counts as stale",
	)
	flags.Duration(
		peersAlignPeriodFlag,
		def.AlignPeriod,
		"Delay between peer set maintenance passes",
	)
	flags.Bool(
		peersDevFlag,
		false,
		"Allow running without bootstrap peers. The node serves inbound peers "+
			"but does not maintain a peer set of its own",
	)

	return flags
}

// ParseFlags parses peer manager flags from the given cmd and saves them to the
// passed config. Values are only overridden when the flag was set explicitly,
// so a config file keeps its say otherwise.
func ParseFlags(cmd *cobra.Command, cfg *Config) error {
	if cmd.Flag(peersTargetFlag).Changed {
		v, err := cmd.Flags().GetUint(peersTargetFlag)
		if err != nil {
			return err
		}
		cfg.TargetCount = v
	}
	if cmd.Flag(peersSoftLimitFlag).Changed {
		v, err := cmd.Flags().GetUint(peersSoftLimitFlag)
		if err != nil {
			return err
		}
		cfg.SoftLimit = v
	}
	if cmd.Flag(peersHardLimitFlag).Changed {
		v, err := cmd.Flags().GetUint(peersHardLimitFlag)
		if err != nil {
			return err
		}
		cfg.HardLimit = v
	}
	if cmd.Flag(peersTTLFlag).Changed {
		v, err := cmd.Flags().GetDuration(peersTTLFlag)
		if err != nil {
			return err
		}
		cfg.PeerTTL = v
	}
	if cmd.Flag(peersAlignPeriodFlag).Changed {
		v, err := cmd.Flags().GetDuration(peersAlignPeriodFlag)
		if err != nil {
			return err
		}
		cfg.AlignPeriod = v
	}
	if cmd.Flag(peersDevFlag).Changed {
		v, err := cmd.Flags().GetBool(peersDevFlag)
		if err != nil {
			return err
		}
		cfg.DevMode = v
	}
	return nil
}
