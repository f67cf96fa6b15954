package p2p

import (
	"fmt"

	"github.com/multiformats/go-multiaddr"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var (
	p2pMutualFlag  = "p2p.mutual"
	p2pNetworkFlag = "p2p.network"
)

// Flags declares the p2p flags a node command takes.
func Flags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.StringSlice(
		p2pMutualFlag,
		nil,
		"Multiaddrs of peers to hold a mutual connection with, comma-separated. "+
			"Mutual connections survive connection trimming and peer scoring, "+
			"and both peers have to list each other. See multiformats.io/multiaddr",
	)
	flags.String(
		p2pNetworkFlag,
		DefaultNetwork.String(),
		fmt.Sprintf("The network to join, one of %s. Must be passed on "+
			"both init and start to take effect", listProvidedNetworks()),
	)

	return flags
}

// ParseFlags folds the p2p flags of the command into the config.
func ParseFlags(cmd *cobra.Command, cfg *Config) error {
	mutual, err := cmd.Flags().GetStringSlice(p2pMutualFlag)
	if err != nil {
		return err
	}
	if len(mutual) == 0 {
		return nil
	}

	for _, addr := range mutual {
		if _, err := multiaddr.NewMultiaddr(addr); err != nil {
			return fmt.Errorf("cmd: parse %s flag: %w", p2pMutualFlag, err)
		}
	}

	cfg.MutualPeers = mutual
	return nil
}

// ParseNetwork resolves the network flag against the known networks and
// their aliases, falling back to the build's default network.
func ParseNetwork(cmd *cobra.Command) (Network, error) {
	parsed := cmd.Flag(p2pNetworkFlag).Value.String()
	switch parsed {
	case "":
		return "", fmt.Errorf("no network provided, allowed values: %s", listProvidedNetworks())
	case DefaultNetwork.String():
		return DefaultNetwork, nil
	default:
		if net, err := Network(parsed).Validate(); err == nil {
			return net, nil
		}
		return "", fmt.Errorf("invalid network specified: %s, allowed values: %s", parsed, listProvidedNetworks())
	}
}
