package cmd

import (
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/rotkonetworks/kagome/nodebuilder"
)

// RemoveConfigCmd constructs the command that deletes the stored config.
func RemoveConfigCmd(fsets ...*flag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config-remove",
		Short: "Deletes the config from the node store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return nodebuilder.RemoveConfig(StorePath(ctx))
		},
	}
	for _, set := range fsets {
		cmd.Flags().AddFlagSet(set)
	}
	return cmd
}

// UpdateConfigCmd constructs the command that refills a stale config with
// current defaults.
func UpdateConfigCmd(fsets ...*flag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use: "config-update",
		Short: "Refills fields missing from an old config with their current defaults. " +
			"Customized values survive, check the result anyway.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return nodebuilder.UpdateConfig(NodeType(ctx), StorePath(ctx))
		},
	}
	for _, set := range fsets {
		cmd.Flags().AddFlagSet(set)
	}
	return cmd
}
