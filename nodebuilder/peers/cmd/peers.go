package cmd

import (
	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/spf13/cobra"

	rpc "github.com/rotkonetworks/kagome/api/rpc/client"
	cmdnode "github.com/rotkonetworks/kagome/cmd"
)

func init() {
	Cmd.AddCommand(
		infoCmd,
		listCmd,
		statusCmd,
		countCmd,
		healthCmd,
		connectCmd,
	)
}

var Cmd = &cobra.Command{
	Use:               "peers [command]",
	Short:             "Inspects the maintained peer set of the running node.",
	Args:              cobra.NoArgs,
	PersistentPreRunE: cmdnode.InitClient,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Reports the state of the peer set and its configured limits.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			info, err := client.Peers.Info(c.Context())
			return cmdnode.PrintOutput(info, err, nil)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the active peers together with their reported chain positions.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			peers, err := client.Peers.Peers(c.Context())
			return cmdnode.PrintOutput(peers, err, nil)
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <peer-id>",
	Short: "Reports the handshake status the given active peer sent last.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}

			status, err := client.Peers.PeerStatus(c.Context(), pid)
			return cmdnode.PrintOutput(status, err, nil)
		})
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Reports the number of active peers.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			count, err := client.Peers.Count(c.Context())

			formatter := func(data interface{}) interface{} {
				return struct {
					Peers int `json:"peers"`
				}{data.(int)}
			}
			return cmdnode.PrintOutput(count, err, formatter)
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Reports whether the node is sufficiently connected.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			health, err := client.Peers.Health(c.Context())
			return cmdnode.PrintOutput(health, err, nil)
		})
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect <peer-id> <multiaddr>",
	Short: "Dials the given peer and grants it protocol streams on success.",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}
			addr, err := ma.NewMultiaddr(args[1])
			if err != nil {
				return err
			}

			err = client.Peers.Connect(c.Context(), peer.AddrInfo{
				ID:    pid,
				Addrs: []ma.Multiaddr{addr},
			})
			if err != nil {
				return cmdnode.PrintOutput(nil, err, nil)
			}

			info, err := client.Peers.Info(c.Context())
			return cmdnode.PrintOutput(info, err, nil)
		})
	},
}
