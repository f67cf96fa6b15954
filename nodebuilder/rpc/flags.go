package rpc

import (
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var log = logging.Logger("module/rpc")

const (
	addrFlag = "rpc.addr"
	portFlag = "rpc.port"
	authFlag = "rpc.skip-auth"
)

// Flags gives a set of hardcoded node/rpc package flags.
func Flags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.String(
		addrFlag,
		"",
		fmt.Sprintf("Set a custom RPC listen address (default: %s)", defaultBindAddress),
	)
	flags.String(
		portFlag,
		"",
		fmt.Sprintf("Set a custom RPC port (default: %s)", defaultPort),
	)
	flags.Bool(
		authFlag,
		false,
		"Skips authentication for RPC requests",
	)

	return flags
}

// ParseFlags applies RPC flags to the config.
func ParseFlags(cmd *cobra.Command, cfg *Config) {
	if v := cmd.Flag(addrFlag).Value.String(); v != "" {
		cfg.Address = v
	}
	if v := cmd.Flag(portFlag).Value.String(); v != "" {
		cfg.Port = v
	}
	if ok, err := cmd.Flags().GetBool(authFlag); err == nil && ok {
		log.Warn("RPC authentication is disabled, only do this in development environments")
		cfg.SkipAuth = true
	}
}
