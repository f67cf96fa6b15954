package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/rotkonetworks/kagome/nodebuilder"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
)

const (
	nodeStoreFlag  = "node.store"
	nodeConfigFlag = "node.config"
)

// NodeFlags declares the store and config flags every node command carries.
func NodeFlags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.String(
		nodeStoreFlag,
		"",
		"Root directory of the node store, ~/.kagome-<type>[-<network>] when unset",
	)
	flags.String(
		nodeConfigFlag,
		"",
		"Config TOML to use instead of the one inside the store",
	)

	return flags
}

// ParseNodeFlags resolves the store path and seeds the context with a config,
// preferring an explicitly given config file over the one inside the store.
func ParseNodeFlags(ctx context.Context, cmd *cobra.Command, network p2p.Network) (context.Context, error) {
	store := cmd.Flag(nodeStoreFlag).Value.String()
	if store == "" {
		var err error
		store, err = nodebuilder.DefaultNodeStorePath(NodeType(ctx), network)
		if err != nil {
			return ctx, err
		}
	}
	ctx = WithStorePath(ctx, store)

	if path := cmd.Flag(nodeConfigFlag).Value.String(); path != "" {
		cfg, err := nodebuilder.LoadConfig(path)
		if err != nil {
			return ctx, fmt.Errorf("cmd: load config from %s flag: %w", nodeConfigFlag, err)
		}
		return WithNodeConfig(ctx, cfg), nil
	}

	// no config flag, load the config of an initialized store when present
	expanded, err := homedir.Expand(filepath.Clean(StorePath(ctx)))
	if err != nil {
		return ctx, err
	}
	if cfg, err := nodebuilder.LoadConfig(filepath.Join(expanded, "config.toml")); err == nil {
		ctx = WithNodeConfig(ctx, cfg)
	}
	return ctx, nil
}
