package gateway

import (
	"fmt"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

const (
	enabledFlag = "gateway"
	addrFlag    = "gateway.addr"
	portFlag    = "gateway.port"
)

// Flags declares the REST gateway flags of a node command.
func Flags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.Bool(
		enabledFlag,
		false,
		"Serves the REST gateway",
	)
	flags.String(
		addrFlag,
		"",
		fmt.Sprintf("Address for the gateway to listen on (default: %s)", defaultBindAddress),
	)
	flags.String(
		portFlag,
		"",
		fmt.Sprintf("Port for the gateway to listen on (default: %s)", defaultPort),
	)

	return flags
}

// ParseFlags applies gateway flags to the config. Address and port are kept
// even while the gateway stays disabled, they take effect once it is enabled.
func ParseFlags(cmd *cobra.Command, cfg *Config) {
	if cmd.Flags().Changed(enabledFlag) {
		if enabled, err := cmd.Flags().GetBool(enabledFlag); err == nil {
			cfg.Enabled = enabled
		}
	}

	addr, port := cmd.Flag(addrFlag), cmd.Flag(portFlag)
	if !cfg.Enabled && (addr.Changed || port.Changed) {
		log.Warn("gateway address or port configured while the gateway stays disabled")
	}
	if v := addr.Value.String(); v != "" {
		cfg.Address = v
	}
	if v := port.Value.String(); v != "" {
		cfg.Port = v
	}
}
