package cmd

import (
	"errors"
	"os/signal"
	"syscall"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/rotkonetworks/kagome/nodebuilder"
)

var log = logging.Logger("cmd")

// Start constructs the command that runs a node daemon of any type.
func Start(options ...func(*cobra.Command)) *cobra.Command {
	cmd := &cobra.Command{
		Use: "start",
		Short: `Starts the node daemon. The first stopping signal shuts it down gracefully, a second one terminates it.
Flags passed here override the stored config for this run only, nothing is persisted.`,
		Aliases:      []string{"run", "daemon"},
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx := cmd.Context()
			// carries the stored config plus any flag overrides
			cfg := NodeConfig(ctx)

			store, err := nodebuilder.OpenStore(StorePath(ctx))
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, store.Close())
			}()

			nd, err := nodebuilder.NewWithConfig(NodeType(ctx), Network(ctx), store, &cfg, NodeOptions(ctx)...)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			if err := nd.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			// stop listening on the start context, the next signal belongs
			// to the shutdown context below
			cancel()

			ctx, cancel = signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return nd.Stop(ctx)
		},
	}
	for _, option := range options {
		option(cmd)
	}
	return cmd
}
