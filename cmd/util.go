package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/rotkonetworks/kagome/nodebuilder/gateway"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
	"github.com/rotkonetworks/kagome/nodebuilder/peers"
	rpc_cfg "github.com/rotkonetworks/kagome/nodebuilder/rpc"
)

// PrintOutput renders a command result, or the error it failed with, as an
// indented JSON envelope on stdout. formatData, when given, reshapes the
// result first.
func PrintOutput(data interface{}, err error, formatData func(interface{}) interface{}) error {
	switch {
	case err != nil:
		data = err.Error()
	case formatData != nil:
		data = formatData(data)
	}

	resp := struct {
		Result interface{} `json:"result"`
	}{
		Result: data,
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}

// PersistentPreRunEnv collects everything a node command needs into its
// context: the node type, the network, the config loaded from the store and
// any flag overrides on top of it.
func PersistentPreRunEnv(cmd *cobra.Command, nodeType node.Type, _ []string) error {
	ctx := WithNodeType(cmd.Context(), nodeType)

	parsedNetwork, err := p2p.ParseNetwork(cmd)
	if err != nil {
		return err
	}
	ctx = WithNetwork(ctx, parsedNetwork)

	// picks up the config of an initialized store, when there is one
	ctx, err = ParseNodeFlags(ctx, cmd, Network(ctx))
	if err != nil {
		return err
	}
	cfg := NodeConfig(ctx)

	if err := p2p.ParseFlags(cmd, &cfg.P2P); err != nil {
		return err
	}
	if err := peers.ParseFlags(cmd, &cfg.Peers); err != nil {
		return err
	}
	rpc_cfg.ParseFlags(cmd, &cfg.RPC)
	gateway.ParseFlags(cmd, &cfg.Gateway)

	ctx, err = ParseMiscFlags(ctx, cmd)
	if err != nil {
		return err
	}

	ctx = WithNodeConfig(ctx, &cfg)
	cmd.SetContext(ctx)
	return nil
}

// WithFlagSet attaches the given flag sets to a command.
func WithFlagSet(fset []*flag.FlagSet) func(*cobra.Command) {
	return func(c *cobra.Command) {
		for _, set := range fset {
			c.Flags().AddFlagSet(set)
		}
	}
}
