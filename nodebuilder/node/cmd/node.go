package cmd

import (
	"errors"
	"strings"

	"github.com/filecoin-project/go-jsonrpc/auth"
	"github.com/spf13/cobra"

	rpc "github.com/rotkonetworks/kagome/api/rpc/client"
	cmdnode "github.com/rotkonetworks/kagome/cmd"
)

func init() {
	newTokenCmd.Flags().Duration("ttl", 0, "Lifetime of the signed token, unlimited when zero")
	Cmd.AddCommand(infoCmd, versionCmd, logLevelCmd, verifyPermsCmd, newTokenCmd)
}

var Cmd = &cobra.Command{
	Use:               "node [command]",
	Short:             "Administration of the running node.",
	Args:              cobra.NoArgs,
	PersistentPreRunE: cmdnode.InitClient,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Args:  cobra.NoArgs,
	Short: "Reports the node type and API version.",
	RunE: func(c *cobra.Command, _ []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			info, err := client.Node.Info(c.Context())
			return cmdnode.PrintOutput(info, err, nil)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Args:  cobra.NoArgs,
	Short: "Reports the build information of the running node, not of this binary.",
	RunE: func(c *cobra.Command, _ []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			version, err := client.Node.Version(c.Context())
			return cmdnode.PrintOutput(version, err, nil)
		})
	},
}

var logLevelCmd = &cobra.Command{
	Use:   "log-level <component>:<level>...",
	Args:  cobra.MinimumNArgs(1),
	Short: "Changes log levels on the running node.",
	Long: "Each argument names a logging component and its new level, like" +
		" `peermanager:debug`. Levels are DEBUG, INFO, WARN, ERROR, DPANIC," +
		" PANIC and FATAL in either case. The component `*` addresses every" +
		" registered logger at once.",
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			for _, arg := range args {
				component, level, ok := strings.Cut(arg, ":")
				if !ok {
					return errors.New("cmd: log-level arg must be in form <component>:<level>")
				}

				if err := client.Node.LogLevelSet(c.Context(), component, level); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var verifyPermsCmd = &cobra.Command{
	Use:   "permissions <token>",
	Args:  cobra.ExactArgs(1),
	Short: "Reports the permissions carried by the given token.",
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			perms, err := client.Node.AuthVerify(c.Context(), args[0])
			return cmdnode.PrintOutput(perms, err, nil)
		})
	},
}

var newTokenCmd = &cobra.Command{
	Use:   "set-permissions <permission>...",
	Args:  cobra.MinimumNArgs(1),
	Short: "Signs and returns a new token carrying the given permissions.",
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			perms := make([]auth.Permission, len(args))
			for i, p := range args {
				perms[i] = auth.Permission(p)
			}

			ttl, err := c.Flags().GetDuration("ttl")
			if err != nil {
				return err
			}
			if ttl != 0 {
				token, err := client.Node.AuthNewWithExpiry(c.Context(), perms, ttl)
				return cmdnode.PrintOutput(token, err, nil)
			}

			token, err := client.Node.AuthNew(c.Context(), perms)
			return cmdnode.PrintOutput(token, err, nil)
		})
	},
}
