package cmd

import (
	"context"

	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/nodebuilder"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
)

// Commands build their environment up in the context before running: the
// node type and network they were invoked for, the store path, the loaded
// config and any extra fx options. The accessors below read and write it.

type (
	nodeTypeKey  struct{}
	networkKey   struct{}
	storePathKey struct{}
	configKey    struct{}
	optionsKey   struct{}
)

// NodeType pulls the node type out of the command environment.
func NodeType(ctx context.Context) node.Type {
	return ctx.Value(nodeTypeKey{}).(node.Type)
}

// WithNodeType records the node type a command runs for.
func WithNodeType(ctx context.Context, tp node.Type) context.Context {
	return context.WithValue(ctx, nodeTypeKey{}, tp)
}

// Network pulls the network out of the command environment.
func Network(ctx context.Context) p2p.Network {
	return ctx.Value(networkKey{}).(p2p.Network)
}

// WithNetwork records the network a command runs against.
func WithNetwork(ctx context.Context, network p2p.Network) context.Context {
	return context.WithValue(ctx, networkKey{}, network)
}

// StorePath pulls the node store path out of the command environment.
func StorePath(ctx context.Context) string {
	return ctx.Value(storePathKey{}).(string)
}

// WithStorePath records where the node store sits.
func WithStorePath(ctx context.Context, storePath string) context.Context {
	return context.WithValue(ctx, storePathKey{}, storePath)
}

// NodeConfig pulls the loaded node config out of the command environment.
func NodeConfig(ctx context.Context) nodebuilder.Config {
	cfg, _ := ctx.Value(configKey{}).(nodebuilder.Config)
	return cfg
}

// WithNodeConfig stores a copy of the config, flag overrides included.
func WithNodeConfig(ctx context.Context, config *nodebuilder.Config) context.Context {
	return context.WithValue(ctx, configKey{}, *config)
}

// NodeOptions pulls the fx options accumulated by flag parsing.
func NodeOptions(ctx context.Context) []fx.Option {
	options, ok := ctx.Value(optionsKey{}).([]fx.Option)
	if !ok {
		return []fx.Option{}
	}
	return options
}

// WithNodeOptions appends fx options for the node to start with.
func WithNodeOptions(ctx context.Context, opts ...fx.Option) context.Context {
	return context.WithValue(ctx, optionsKey{}, append(NodeOptions(ctx), opts...))
}
