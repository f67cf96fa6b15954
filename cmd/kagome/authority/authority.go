package authority

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cmdnode "github.com/rotkonetworks/kagome/cmd"
	"github.com/rotkonetworks/kagome/nodebuilder/gateway"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
	"github.com/rotkonetworks/kagome/nodebuilder/peers"
	"github.com/rotkonetworks/kagome/nodebuilder/rpc"
)

// NewCommand builds the command tree of an authority node. The surface
// matches the full node's, the node type is what changes the components
// assembled at start.
func NewCommand(options ...func(*cobra.Command, []*pflag.FlagSet)) *cobra.Command {
	flags := []*pflag.FlagSet{
		cmdnode.NodeFlags(),
		p2p.Flags(),
		peers.Flags(),
		cmdnode.MiscFlags(),
		rpc.Flags(),
		gateway.Flags(),
	}

	cmd := &cobra.Command{
		Use:   "authority [subcommand]",
		Args:  cobra.NoArgs,
		Short: "Runs and manages an authority node.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cmdnode.PersistentPreRunEnv(cmd, node.Authority, args)
		},
	}
	for _, option := range options {
		option(cmd, flags)
	}
	return cmd
}

// WithSubcommands attaches the store and lifecycle subcommands of the node.
func WithSubcommands() func(*cobra.Command, []*pflag.FlagSet) {
	return func(c *cobra.Command, flags []*pflag.FlagSet) {
		c.AddCommand(
			cmdnode.Init(flags...),
			cmdnode.Start(cmdnode.WithFlagSet(flags)),
			cmdnode.AuthCmd(flags...),
			cmdnode.ResetStore(flags...),
			cmdnode.RemoveConfigCmd(flags...),
			cmdnode.UpdateConfigCmd(flags...),
		)
	}
}
